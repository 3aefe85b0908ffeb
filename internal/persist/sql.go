package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const schema = `CREATE TABLE IF NOT EXISTS game_snapshots (
	channel_id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	payload    TEXT NOT NULL,
	updated_at BIGINT NOT NULL
)`

// SQLStore keeps snapshots in a game_snapshots table.
type SQLStore struct {
	db       *sql.DB
	numbered bool // $1 placeholders instead of ?
}

func newSQLStore(ctx context.Context, db *sql.DB, numbered bool) (*SQLStore, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create snapshot table: %w", err)
	}
	return &SQLStore{db: db, numbered: numbered}, nil
}

// rebind rewrites ? placeholders for drivers that number them.
func (s *SQLStore) rebind(query string) string {
	if !s.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Save stores or replaces the channel's snapshot.
func (s *SQLStore) Save(ctx context.Context, rec Record) error {
	if strings.TrimSpace(rec.Channel) == "" {
		return fmt.Errorf("channel is required")
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO game_snapshots (channel_id, session_id, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (channel_id) DO UPDATE SET
			session_id = excluded.session_id,
			payload = excluded.payload,
			updated_at = excluded.updated_at`),
		rec.Channel, rec.SessionID, string(rec.Payload), rec.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", rec.Channel, err)
	}
	return nil
}

// Load returns the channel's snapshot.
func (s *SQLStore) Load(ctx context.Context, channel string) (Record, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT channel_id, session_id, payload, updated_at FROM game_snapshots WHERE channel_id = ?`), channel)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load snapshot %s: %w", channel, err)
	}
	return rec, nil
}

// LoadAll returns every snapshot ordered by channel.
func (s *SQLStore) LoadAll(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT channel_id, session_id, payload, updated_at FROM game_snapshots ORDER BY channel_id`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes the channel's snapshot.
func (s *SQLStore) Delete(ctx context.Context, channel string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM game_snapshots WHERE channel_id = ?`), channel)
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", channel, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec     Record
		payload string
		updated int64
	)
	if err := row.Scan(&rec.Channel, &rec.SessionID, &payload, &updated); err != nil {
		return Record{}, err
	}
	rec.Payload = []byte(payload)
	rec.UpdatedAt = time.UnixMilli(updated)
	return rec, nil
}

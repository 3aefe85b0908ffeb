package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

const snapshotBucket = "snapshots"

// BoltStore keeps snapshots in a BoltDB file, keyed by channel.
type BoltStore struct {
	db *bbolt.DB
}

type boltRecord struct {
	SessionID string          `json:"session_id"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OpenBolt opens (or creates) a BoltDB snapshot file at path.
func OpenBolt(path string) (*BoltStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(snapshotBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create snapshot bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Save stores or replaces the channel's snapshot.
func (s *BoltStore) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(rec.Channel) == "" {
		return fmt.Errorf("channel is required")
	}
	if !json.Valid(rec.Payload) {
		return fmt.Errorf("save snapshot %s: payload is not JSON", rec.Channel)
	}
	value, err := json.Marshal(boltRecord{SessionID: rec.SessionID, Payload: rec.Payload, UpdatedAt: rec.UpdatedAt})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(snapshotBucket)).Put([]byte(rec.Channel), value)
	})
}

// Load returns the channel's snapshot.
func (s *BoltStore) Load(ctx context.Context, channel string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	var rec Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket([]byte(snapshotBucket)).Get([]byte(channel))
		if value == nil {
			return ErrNotFound
		}
		var err error
		rec, err = decodeBolt(channel, value)
		return err
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// LoadAll returns every snapshot ordered by channel. Entries that cannot
// be decoded are returned with a nil payload so the caller can skip them.
func (s *BoltStore) LoadAll(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(snapshotBucket)).ForEach(func(k, v []byte) error {
			rec, err := decodeBolt(string(k), v)
			if err != nil {
				rec = Record{Channel: string(k)}
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return out, nil
}

// Delete removes the channel's snapshot.
func (s *BoltStore) Delete(ctx context.Context, channel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(snapshotBucket))
		if b.Get([]byte(channel)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(channel))
	})
}

// Close closes the BoltDB file.
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func decodeBolt(channel string, value []byte) (Record, error) {
	var br boltRecord
	if err := json.Unmarshal(value, &br); err != nil {
		return Record{}, fmt.Errorf("unmarshal snapshot %s: %w", channel, err)
	}
	return Record{Channel: channel, SessionID: br.SessionID, Payload: br.Payload, UpdatedAt: br.UpdatedAt}, nil
}

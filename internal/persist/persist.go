// Package persist stores session snapshots so games survive a restart.
package persist

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no snapshot exists for a channel.
var ErrNotFound = errors.New("snapshot not found")

// Record is one stored snapshot.
type Record struct {
	Channel   string
	SessionID string
	Payload   []byte
	UpdatedAt time.Time
}

// Store is a snapshot backend.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context, channel string) (Record, error)
	LoadAll(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, channel string) error
	Close() error
}

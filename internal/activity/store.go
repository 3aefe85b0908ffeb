// Package activity tracks when players last acted and evicts the ones who
// went quiet while they still owed an action.
package activity

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// Store is an expiring key-value store that reports expirations.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
	// Expired delivers the keys of entries whose TTL ran out.
	Expired() <-chan string
}

const (
	keyPrefix = "wolfden"
	keySuffix = "active"
)

// Record names a player's activity marker in one session.
type Record struct {
	Channel string
	Session string
	Player  string
}

// Key encodes the record as wolfden:<channel>:<session>:<player>:active.
func (r Record) Key() string {
	return strings.Join([]string{
		keyPrefix,
		url.QueryEscape(r.Channel),
		url.QueryEscape(r.Session),
		url.QueryEscape(r.Player),
		keySuffix,
	}, ":")
}

// ParseKey decodes a key produced by Record.Key. Anything else, including
// keys other applications put in a shared store, is rejected.
func ParseKey(key string) (Record, bool) {
	parts := strings.Split(key, ":")
	if len(parts) != 5 || parts[0] != keyPrefix || parts[4] != keySuffix {
		return Record{}, false
	}
	var fields [3]string
	for i, raw := range parts[1:4] {
		v, err := url.QueryUnescape(raw)
		if err != nil || v == "" {
			return Record{}, false
		}
		fields[i] = v
	}
	return Record{Channel: fields[0], Session: fields[1], Player: fields[2]}, true
}

package activity

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value    string
	deadline time.Time
}

// MemoryStore is an in-process Store. Expired entries are found by Sweep,
// which Run calls on a ticker.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	expired  chan string
	interval time.Duration
	now      func() time.Time
}

// NewMemoryStore creates a store that sweeps every interval.
func NewMemoryStore(interval time.Duration) *MemoryStore {
	if interval <= 0 {
		interval = time.Second
	}
	return &MemoryStore{
		entries:  make(map[string]memoryEntry),
		expired:  make(chan string, 64),
		interval: interval,
		now:      time.Now,
	}
}

// Set stores value under key for ttl.
func (m *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: value, deadline: m.now().Add(ttl)}
	return nil
}

// Get returns the value under key if it has not expired.
func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || !m.now().Before(e.deadline) {
		return "", false, nil
	}
	return e.value, true, nil
}

// Delete removes key without reporting it as expired.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Expired implements Store.
func (m *MemoryStore) Expired() <-chan string {
	return m.expired
}

// Sweep publishes and removes every entry expired at now. Entries that do
// not fit in the feed stay until the next sweep.
func (m *MemoryStore) Sweep(now time.Time) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for key, e := range m.entries {
		if now.Before(e.deadline) {
			continue
		}
		select {
		case m.expired <- key:
			delete(m.entries, key)
			out = append(out, key)
		default:
			return out
		}
	}
	return out
}

// Run sweeps until ctx is cancelled.
func (m *MemoryStore) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Sweep(m.now())
		case <-ctx.Done():
			return nil
		}
	}
}

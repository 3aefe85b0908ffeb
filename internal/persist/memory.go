package persist

import (
	"context"
	"sort"
	"sync"
)

// Memory is a Store that keeps snapshots in process memory.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

// Save stores or replaces the channel's snapshot.
func (m *Memory) Save(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.Payload = append([]byte(nil), rec.Payload...)
	m.records[rec.Channel] = rec
	return nil
}

// Load returns the channel's snapshot.
func (m *Memory) Load(_ context.Context, channel string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[channel]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// LoadAll returns every snapshot ordered by channel.
func (m *Memory) LoadAll(_ context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out, nil
}

// Delete removes the channel's snapshot.
func (m *Memory) Delete(_ context.Context, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[channel]; !ok {
		return ErrNotFound
	}
	delete(m.records, channel)
	return nil
}

// Close implements Store.
func (m *Memory) Close() error { return nil }

package activity

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type fakeRemover struct {
	mu      sync.Mutex
	verdict Verdict
	calls   []Record
}

func (f *fakeRemover) RemoveInactive(_ context.Context, rec Record) (Verdict, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, rec)
	return f.verdict, nil
}

func (f *fakeRemover) seen() []Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Record(nil), f.calls...)
}

func newWatchdog(verdict Verdict) (*Watchdog, *MemoryStore, *fakeRemover) {
	store := NewMemoryStore(time.Second)
	w := NewWatchdog(store, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := &fakeRemover{verdict: verdict}
	w.SetRemover(r)
	return w, store, r
}

func TestOnExpiredIgnoresMalformedKeys(t *testing.T) {
	w, _, r := newWatchdog(Removed)
	w.OnExpired(context.Background(), "user:1:last_active")
	w.OnExpired(context.Background(), "garbage")
	if len(r.calls) != 0 {
		t.Fatalf("remover called for malformed keys: %+v", r.calls)
	}
}

func TestOnExpiredRoutesToRemover(t *testing.T) {
	w, _, r := newWatchdog(Removed)
	rec := Record{Channel: "c1", Session: "s1", Player: "u1"}
	w.OnExpired(context.Background(), rec.Key())
	if len(r.calls) != 1 || r.calls[0] != rec {
		t.Fatalf("calls = %+v", r.calls)
	}
}

func TestOnExpiredRearmsPendingPlayers(t *testing.T) {
	w, store, _ := newWatchdog(Pending)
	rec := Record{Channel: "c1", Session: "s1", Player: "u1"}
	w.OnExpired(context.Background(), rec.Key())

	if _, ok, _ := store.Get(context.Background(), rec.Key()); !ok {
		t.Fatal("expected record to be re-armed")
	}
}

func TestRecordActivityStoresDeadline(t *testing.T) {
	w, _, _ := newWatchdog(Ignored)
	t0 := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return t0 }
	rec := Record{Channel: "c1", Session: "s1", Player: "u1"}

	if err := w.RecordActivity(context.Background(), rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	got, ok, err := w.LastDeadline(context.Background(), rec)
	if err != nil || !ok {
		t.Fatalf("LastDeadline: %v %v", ok, err)
	}
	if !got.Equal(t0.Add(time.Minute)) {
		t.Fatalf("deadline = %v", got)
	}
}

func TestRunConsumesFeed(t *testing.T) {
	w, store, r := newWatchdog(Ignored)
	rec := Record{Channel: "c1", Session: "s1", Player: "u1"}
	_ = store.Set(context.Background(), rec.Key(), "x", time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()
	store.Sweep(time.Now().Add(time.Second))

	deadline := time.Now().Add(2 * time.Second)
	for len(r.seen()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("expiry never reached the remover")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done
}

package activity

import (
	"context"
	"testing"
	"time"
)

func TestKeyRoundTrip(t *testing.T) {
	rec := Record{Channel: "guild:42/general", Session: "s-1", Player: "user 7"}
	got, ok := ParseKey(rec.Key())
	if !ok {
		t.Fatalf("ParseKey(%q) failed", rec.Key())
	}
	if got != rec {
		t.Fatalf("ParseKey = %+v, want %+v", got, rec)
	}
}

func TestParseKeyRejectsForeignKeys(t *testing.T) {
	keys := []string{
		"",
		"user:123:last_active",
		"wolfden:c1:s1:u1",
		"wolfden:c1:s1:u1:idle",
		"other:c1:s1:u1:active",
		"wolfden::s1:u1:active",
		"wolfden:c1:s1:%zz:active",
		"wolfden:c1:s1:u1:active:extra",
	}
	for _, k := range keys {
		if rec, ok := ParseKey(k); ok {
			t.Fatalf("ParseKey(%q) = %+v, want rejection", k, rec)
		}
	}
}

func TestMemoryStoreExpires(t *testing.T) {
	m := NewMemoryStore(time.Second)
	t0 := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return t0 }
	ctx := context.Background()

	_ = m.Set(ctx, "a", "1", time.Minute)
	_ = m.Set(ctx, "b", "2", time.Hour)

	if v, ok, _ := m.Get(ctx, "a"); !ok || v != "1" {
		t.Fatalf("Get(a) = %q, %v", v, ok)
	}
	expired := m.Sweep(t0.Add(2 * time.Minute))
	if len(expired) != 1 || expired[0] != "a" {
		t.Fatalf("Sweep = %v", expired)
	}
	select {
	case k := <-m.Expired():
		if k != "a" {
			t.Fatalf("feed delivered %q", k)
		}
	default:
		t.Fatal("expected expiry on the feed")
	}
	if _, ok, _ := m.Get(ctx, "a"); ok {
		t.Fatal("expired key still readable")
	}
}

func TestMemoryStoreDeleteDoesNotPublish(t *testing.T) {
	m := NewMemoryStore(time.Second)
	ctx := context.Background()
	_ = m.Set(ctx, "a", "1", time.Millisecond)
	_ = m.Delete(ctx, "a")
	if got := m.Sweep(time.Now().Add(time.Hour)); len(got) != 0 {
		t.Fatalf("deleted key expired: %v", got)
	}
}

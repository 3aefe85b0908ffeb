package roster

import (
	"testing"
	"time"

	"github.com/aaronzipp/wolfden/internal/apperr"
	"github.com/aaronzipp/wolfden/internal/models"
)

var t0 = time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)

func who(id string) models.Identity {
	return models.Identity{ID: id, Name: "player-" + id}
}

func TestReserveKeepsInsertionOrder(t *testing.T) {
	r := New("c1", time.Hour)
	for i, id := range []string{"c", "a", "b"} {
		if err := r.Reserve(who(id), t0.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("reserve %s: %v", id, err)
		}
	}
	got := r.List(t0)
	if len(got) != 3 || got[0].Player.ID != "c" || got[1].Player.ID != "a" || got[2].Player.ID != "b" {
		t.Fatalf("List = %+v", got)
	}
}

func TestReserveTwiceFails(t *testing.T) {
	r := New("c1", time.Hour)
	if err := r.Reserve(who("a"), t0); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	err := r.Reserve(who("a"), t0.Add(time.Minute))
	if apperr.CodeOf(err) != apperr.CodeAlreadySignedUp {
		t.Fatalf("expected ALREADY_SIGNED_UP, got %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d", r.Len())
	}
	if d := r.List(t0)[0].Deadline; !d.Equal(t0.Add(time.Hour)) {
		t.Fatalf("failed reserve changed deadline to %v", d)
	}
}

func TestWithdrawIsIdempotent(t *testing.T) {
	r := New("c1", time.Hour)
	_ = r.Reserve(who("a"), t0)
	if !r.Withdraw("a") {
		t.Fatal("expected first withdraw to remove")
	}
	if r.Withdraw("a") {
		t.Fatal("expected second withdraw to be a no-op")
	}
	if r.Len() != 0 {
		t.Fatalf("Len = %d", r.Len())
	}
}

func TestExpireStaleDropsOnlyExpired(t *testing.T) {
	r := New("c1", time.Hour)
	_ = r.Reserve(who("old"), t0)
	_ = r.Reserve(who("new"), t0.Add(30*time.Minute))

	now := t0.Add(61 * time.Minute)
	if got := r.List(now); len(got) != 1 || got[0].Player.ID != "new" {
		t.Fatalf("List should hide expired entries, got %+v", got)
	}
	expired := r.ExpireStale(now)
	if len(expired) != 1 || expired[0].Player.ID != "old" {
		t.Fatalf("expired = %+v", expired)
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d", r.Len())
	}
	if again := r.ExpireStale(now); len(again) != 0 {
		t.Fatalf("second sweep expired %+v", again)
	}
}

func TestTouchExtendsReservation(t *testing.T) {
	r := New("c1", time.Hour)
	_ = r.Reserve(who("a"), t0)
	if !r.Touch("a", t0.Add(50*time.Minute)) {
		t.Fatal("expected touch to find player")
	}
	if expired := r.ExpireStale(t0.Add(70 * time.Minute)); len(expired) != 0 {
		t.Fatalf("touched entry expired: %+v", expired)
	}
	if r.Touch("zz", t0) {
		t.Fatal("touch of unknown player succeeded")
	}
}

func TestDefaultWindow(t *testing.T) {
	if w := New("c1", 0).Window(); w != DefaultWindow {
		t.Fatalf("Window = %v", w)
	}
}

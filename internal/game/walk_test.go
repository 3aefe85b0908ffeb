package game

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/aaronzipp/wolfden/internal/models"
)

// TestRandomPlayKeepsInvariants drives seeded games with random commands
// and checks the session after every step.
func TestRandomPlayKeepsInvariants(t *testing.T) {
	seeds, steps := 400, 300
	if testing.Short() {
		seeds = 40
	}
	for seed := range uint64(seeds) {
		name := "classic"
		if seed%2 == 1 {
			name = "mafia"
		}
		walk(t, seed, Variants[name], steps)
		if t.Failed() {
			return
		}
	}
}

func walk(t *testing.T, seed uint64, variant models.Variant, steps int) {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	ids := make([]string, 5+rng.IntN(6))
	for i := range ids {
		ids[i] = fmt.Sprintf("u%d", i+1)
	}
	players := roster(ids...)
	assign, err := NewSeededAssigner(seed, seed+1).Assign(variant, players)
	if err != nil {
		t.Fatalf("seed %d: assign: %v", seed, err)
	}
	s, err := Start(fmt.Sprintf("s%d", seed), "c1", variant, DefaultTimings(), "", players, assign, t0)
	if err != nil {
		t.Fatalf("seed %d: start: %v", seed, err)
	}

	now := t0
	for step := 0; step < steps && !s.Finished(); step++ {
		before := encoded(t, s)
		actor := ids[rng.IntN(len(ids))]
		target := ids[rng.IntN(len(ids))]

		var op string
		err = nil
		switch rng.IntN(9) {
		case 0, 1:
			op = "vote"
			err = s.Vote(actor, target, now)
		case 2:
			op = "abstain"
			err = s.Vote(actor, models.Abstain, now)
		case 3:
			op = "unvote"
			err = s.Unvote(actor, now)
		case 4, 5:
			op = "act"
			err = s.Act(actor, target, now)
		case 6:
			op = "shoot"
			err = s.Shoot(actor, target, now)
		case 7:
			op = "pass"
			err = s.PassItem(actor, target, models.ItemGun, now)
		default:
			if rng.IntN(5) == 0 {
				op = "remove"
				err = s.ForceRemove(actor, "inactive", now)
				break
			}
			op = "advance"
			if rng.IntN(3) > 0 {
				now = s.Deadline()
			}
			if !s.Advance(now) && encoded(t, s) != before {
				t.Fatalf("seed %d step %d: advance reported no change but state moved", seed, step)
			}
		}
		s.Drain()

		if err != nil && encoded(t, s) != before {
			t.Fatalf("seed %d step %d: rejected %s %s->%s changed state: %v", seed, step, op, actor, target, err)
		}
		checkSession(t, s, fmt.Sprintf("seed %d step %d after %s", seed, step, op))
	}
}

func checkSession(t *testing.T, s *Session, where string) {
	t.Helper()
	if err := s.Check(); err != nil {
		t.Fatalf("%s: %v", where, err)
	}

	guns := 0
	factions := make(map[models.Faction]int)
	for _, p := range s.Players() {
		for _, it := range p.Items {
			if it == models.ItemGun {
				guns++
			}
		}
		if p.Alive {
			factions[p.Faction()]++
		}
	}
	if guns > 1 {
		t.Fatalf("%s: %d guns in play", where, guns)
	}
	if !s.Finished() && (factions[models.FactionVillage] == 0 || factions[models.FactionWolves] == 0) {
		t.Fatalf("%s: running game with an empty faction %v", where, factions)
	}
	if s.Finished() && !s.Aborted() && s.Winner() == "" {
		t.Fatalf("%s: finished without a winner", where)
	}

	data, err := Encode(s.Snapshot())
	if err != nil {
		t.Fatalf("%s: encode: %v", where, err)
	}
	snap, err := Decode(data)
	if err != nil {
		t.Fatalf("%s: decode: %v", where, err)
	}
	restored, err := Restore(snap, "")
	if err != nil {
		t.Fatalf("%s: restore: %v", where, err)
	}
	if got := encoded(t, restored); got != string(data) {
		t.Fatalf("%s: round trip mismatch:\n got %s\nwant %s", where, got, data)
	}
}

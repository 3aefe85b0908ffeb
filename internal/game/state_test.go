package game

import (
	"testing"
	"time"

	"github.com/aaronzipp/wolfden/internal/models"
)

func votes(pairs ...string) []models.Vote {
	var out []models.Vote
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.Vote{Voter: pairs[i], Target: pairs[i+1]})
	}
	return out
}

func TestTallyVotes(t *testing.T) {
	tests := []struct {
		name       string
		votes      []models.Vote
		eliminated string
		tie        bool
	}{
		{name: "no votes", votes: nil},
		{name: "plurality", votes: votes("a", "x", "b", "x", "c", "y"), eliminated: "x"},
		{name: "two-two tie", votes: votes("a", "x", "b", "x", "c", "y", "d", "y"), tie: true},
		{name: "abstain wins", votes: votes("a", "", "b", "", "c", "x")},
		{name: "abstain ties", votes: votes("a", "", "b", "x"), tie: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TallyVotes(tt.votes)
			if got.Eliminated != tt.eliminated {
				t.Fatalf("Eliminated = %q, want %q", got.Eliminated, tt.eliminated)
			}
			if got.IsTie != tt.tie {
				t.Fatalf("IsTie = %v, want %v", got.IsTie, tt.tie)
			}
		})
	}
}

func TestWolfTargetTieGoesToEarliest(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	actions := []models.NightAction{
		{Actor: "w1", Kind: models.ActionKill, Target: "y", At: t0},
		{Actor: "s", Kind: models.ActionInspect, Target: "x", At: t0},
		{Actor: "w2", Kind: models.ActionKill, Target: "x", At: t0.Add(time.Second)},
	}
	if got := WolfTarget(actions); got != "y" {
		t.Fatalf("WolfTarget = %q, want y", got)
	}
	actions = append(actions, models.NightAction{Actor: "w3", Kind: models.ActionKill, Target: "x"})
	if got := WolfTarget(actions); got != "x" {
		t.Fatalf("WolfTarget = %q, want x", got)
	}
	if got := WolfTarget(nil); got != "" {
		t.Fatalf("WolfTarget(nil) = %q", got)
	}
}

func TestEvaluateWinner(t *testing.T) {
	wolf := &models.Player{Role: models.RoleWolf, Alive: true}
	vil := &models.Player{Role: models.RoleVillager, Alive: true}
	seer := &models.Player{Role: models.RoleSeer, Alive: true}

	tests := []struct {
		name   string
		rule   models.WinRule
		living []*models.Player
		want   models.Faction
	}{
		{name: "no wolves", rule: models.WinElimination, living: []*models.Player{vil, seer}, want: models.FactionVillage},
		{name: "only wolves", rule: models.WinElimination, living: []*models.Player{wolf}, want: models.FactionWolves},
		{name: "one each, elimination", rule: models.WinElimination, living: []*models.Player{wolf, vil}, want: ""},
		{name: "one each, parity", rule: models.WinParity, living: []*models.Player{wolf, vil}, want: models.FactionWolves},
		{name: "outnumbered, parity", rule: models.WinParity, living: []*models.Player{wolf, vil, seer}, want: ""},
		{name: "nobody", rule: models.WinParity, living: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateWinner(tt.rule, tt.living); got != tt.want {
				t.Fatalf("EvaluateWinner = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeal(t *testing.T) {
	count := func(roles []models.Role, r models.Role) int {
		n := 0
		for _, x := range roles {
			if x == r {
				n++
			}
		}
		return n
	}
	tests := []struct {
		n, wolves, seers, guardians int
	}{
		{n: 3, wolves: 1, seers: 1},
		{n: 5, wolves: 1, seers: 1},
		{n: 6, wolves: 1, seers: 1, guardians: 1},
		{n: 8, wolves: 2, seers: 1, guardians: 1},
		{n: 12, wolves: 3, seers: 1, guardians: 1},
	}
	for _, tt := range tests {
		roles := Deal(tt.n)
		if len(roles) != tt.n {
			t.Fatalf("Deal(%d) dealt %d roles", tt.n, len(roles))
		}
		if got := count(roles, models.RoleWolf); got != tt.wolves {
			t.Fatalf("Deal(%d) wolves = %d, want %d", tt.n, got, tt.wolves)
		}
		if got := count(roles, models.RoleSeer); got != tt.seers {
			t.Fatalf("Deal(%d) seers = %d, want %d", tt.n, got, tt.seers)
		}
		if got := count(roles, models.RoleGuardian); got != tt.guardians {
			t.Fatalf("Deal(%d) guardians = %d, want %d", tt.n, got, tt.guardians)
		}
	}
}

func TestRandomAssignerDealsEveryone(t *testing.T) {
	a := NewSeededAssigner(1, 2)
	players := []models.Identity{{ID: "u1"}, {ID: "u2"}, {ID: "u3"}, {ID: "u4"}, {ID: "u5"}}
	got, err := a.Assign(Variants["classic"], players)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if len(got.Roles) != len(players) {
		t.Fatalf("assigned %d roles", len(got.Roles))
	}
	if got.GunHolder == "" || got.Roles[got.GunHolder] != models.RoleVillager {
		t.Fatalf("gun holder %q has role %q", got.GunHolder, got.Roles[got.GunHolder])
	}
	if _, err := a.Assign(Variants["classic"], players[:2]); err == nil {
		t.Fatal("expected error for short roster")
	}
}

package game

import (
	"github.com/aaronzipp/wolfden/internal/models"
)

// VoteResult represents the outcome of vote counting
type VoteResult struct {
	Eliminated string // empty when nobody goes
	IsTie      bool
	VoteCount  map[string]int // target -> votes, models.Abstain included
}

// TallyVotes counts day votes. Two or more candidates sharing the top count
// is a tie and eliminates nobody; so does a plurality for abstaining.
func TallyVotes(votes []models.Vote) *VoteResult {
	voteCount := make(map[string]int)
	for _, v := range votes {
		voteCount[v.Target]++
	}

	maxVotes := 0
	var top []string
	for target, count := range voteCount {
		if count > maxVotes {
			maxVotes = count
			top = []string{target}
		} else if count == maxVotes {
			top = append(top, target)
		}
	}

	result := &VoteResult{
		VoteCount: voteCount,
		IsTie:     len(top) > 1,
	}
	if len(top) == 1 && top[0] != models.Abstain {
		result.Eliminated = top[0]
	}
	return result
}

// WolfTarget picks the night victim from the wolves' kill actions. Ties go
// to the tied target whose first vote was cast earliest.
func WolfTarget(actions []models.NightAction) string {
	count := make(map[string]int)
	first := make(map[string]int)
	for i, a := range actions {
		if a.Kind != models.ActionKill {
			continue
		}
		if _, seen := first[a.Target]; !seen {
			first[a.Target] = i
		}
		count[a.Target]++
	}

	best := ""
	for target, c := range count {
		switch {
		case best == "":
			best = target
		case c > count[best]:
			best = target
		case c == count[best] && first[target] < first[best]:
			best = target
		}
	}
	return best
}

// EvaluateWinner returns the winning faction among the living players, or ""
// while the game goes on.
func EvaluateWinner(rule models.WinRule, living []*models.Player) models.Faction {
	village, wolves := 0, 0
	for _, p := range living {
		if p.Faction() == models.FactionWolves {
			wolves++
		} else {
			village++
		}
	}
	switch {
	case wolves == 0 && village > 0:
		return models.FactionVillage
	case village == 0 && wolves > 0:
		return models.FactionWolves
	case rule == models.WinParity && wolves >= village && wolves > 0:
		return models.FactionWolves
	default:
		return ""
	}
}

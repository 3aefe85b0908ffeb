package game

import (
	"fmt"
	"slices"
	"time"

	"github.com/aaronzipp/wolfden/internal/apperr"
	"github.com/aaronzipp/wolfden/internal/models"
)

// Act submits the actor's night action against target. Once every living
// night actor has acted the night resolves immediately.
func (s *Session) Act(actor, target string, now time.Time) error {
	if s.phase != models.PhaseNight {
		return apperr.Illegal("night actions are only possible at night")
	}
	p, err := s.living(actor)
	if err != nil {
		return err
	}
	kind := p.Role.NightAction()
	if kind == "" {
		return apperr.Illegal("your role has no night action")
	}
	if s.hasActed(actor) {
		return apperr.Illegal("you already acted tonight")
	}
	t, err := s.target(target)
	if err != nil {
		return err
	}
	switch kind {
	case models.ActionKill:
		if t.Role == models.RoleWolf {
			return apperr.Illegal("wolves cannot hunt their own pack")
		}
	case models.ActionInspect, models.ActionProtect:
		if t.ID == p.ID {
			return apperr.Illegal("you cannot target yourself")
		}
	}

	s.actions = append(s.actions, models.NightAction{Actor: actor, Kind: kind, Target: target, At: now})
	s.whisper(p.ID, fmt.Sprintf("You chose to %s %s.", kind, t.Name))
	if kind == models.ActionKill {
		for _, w := range s.Living() {
			if w.Role == models.RoleWolf && w.ID != p.ID {
				s.whisper(w.ID, fmt.Sprintf("%s wants to kill %s.", p.Name, t.Name))
			}
		}
	}
	if s.allActed() {
		s.resolveNight(now)
	}
	return nil
}

// resolveNight applies night actions in priority order: protective first,
// then offensive, then informational.
func (s *Session) resolveNight(now time.Time) {
	ordered := slices.Clone(s.actions)
	slices.SortStableFunc(ordered, func(a, b models.NightAction) int {
		return a.Kind.Priority() - b.Kind.Priority()
	})

	protected := make(map[string]bool)
	for _, a := range ordered {
		if a.Kind == models.ActionProtect && s.IsAlive(a.Actor) {
			protected[a.Target] = true
		}
	}

	victim := WolfTarget(ordered)
	var died *models.Player
	if victim != "" && !protected[victim] && s.IsAlive(victim) {
		died = s.index[victim]
		s.eliminate(died, models.CauseKilled, now)
	}

	// seers learn their result only if they survived the night
	for _, a := range ordered {
		if a.Kind != models.ActionInspect || !s.IsAlive(a.Actor) {
			continue
		}
		t := s.index[a.Target]
		s.whisper(a.Actor, fmt.Sprintf("Your vision shows that %s sides with the %s.", t.Name, t.Faction()))
	}

	if died != nil {
		s.announce(fmt.Sprintf("Dawn breaks. %s was killed in the night. %s was a %s.", died.Name, died.Name, died.Role))
	} else {
		s.announce("Dawn breaks. Nobody died tonight.")
	}
	if s.checkWin(now) {
		return
	}
	s.enterDay(now)
}

func (s *Session) hasActed(id string) bool {
	return slices.ContainsFunc(s.actions, func(a models.NightAction) bool { return a.Actor == id })
}

func (s *Session) allActed() bool {
	for _, p := range s.players {
		if p.Alive && p.Role.NightAction() != "" && !s.hasActed(p.ID) {
			return false
		}
	}
	return true
}

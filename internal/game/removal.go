package game

import (
	"fmt"
	"time"

	"github.com/aaronzipp/wolfden/internal/apperr"
	"github.com/aaronzipp/wolfden/internal/models"
)

// ForceRemove takes a player out of the game without crediting any faction
// with the kill. Their transferable items go to the successor, the win
// condition is re-evaluated, and the current phase resolves early if
// nobody else is left to act.
func (s *Session) ForceRemove(id, reason string, now time.Time) error {
	if s.Finished() {
		return apperr.Illegal("the game is already over")
	}
	p, ok := s.index[id]
	if !ok {
		return apperr.Illegal("that player is not in this game")
	}
	if !p.Alive {
		return apperr.Illegal(p.Name + " is already dead")
	}

	items := p.TransferableItems()
	p.Alive = false
	p.Items = nil
	s.removed++
	s.eliminations = append(s.eliminations, models.Elimination{
		Player: p.ID, Cause: models.CauseRemoved, Cycle: s.cycle, Phase: s.phase, At: now,
	})
	s.forget(p.ID)
	s.announce(fmt.Sprintf("%s has been removed from the game (%s). %s was a %s.", p.Name, reason, p.Name, p.Role))

	if heir := s.Successor(p.ID); heir != nil {
		for _, it := range items {
			heir.GiveItem(it)
			s.whisper(heir.ID, fmt.Sprintf("%s left the game and their %s passed to you.", p.Name, it))
		}
	}

	if s.removed*2 > len(s.players) {
		s.announce("Too many players have left.")
		s.aborted = true
		s.finish("", now)
		return nil
	}
	if s.checkWin(now) {
		return nil
	}
	switch {
	case s.phase == models.PhaseDayVote && s.allVoted():
		s.resolveDay(now)
	case s.phase == models.PhaseNight && s.allActed():
		s.resolveNight(now)
	}
	return nil
}

// Successor returns the next living player after id in seating order,
// wrapping around, or nil if nobody else is alive.
func (s *Session) Successor(id string) *models.Player {
	start := -1
	for i, p := range s.players {
		if p.ID == id {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	for step := 1; step < len(s.players); step++ {
		p := s.players[(start+step)%len(s.players)]
		if p.Alive {
			return p
		}
	}
	return nil
}

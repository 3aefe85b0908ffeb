package game

import (
	"fmt"
	"slices"
	"time"

	"github.com/aaronzipp/wolfden/internal/apperr"
	"github.com/aaronzipp/wolfden/internal/models"
	"github.com/aaronzipp/wolfden/internal/render"
)

// Vote records a day vote. target is a player ID or models.Abstain. Once
// every living player has voted the day resolves immediately.
func (s *Session) Vote(voter, target string, now time.Time) error {
	switch s.phase {
	case models.PhaseDayVote:
	case models.PhaseDayDiscussion:
		return apperr.Illegal("voting has not opened yet")
	default:
		return apperr.Illegal("you can only vote during the day")
	}
	p, err := s.living(voter)
	if err != nil {
		return err
	}
	if s.hasVoted(voter) {
		return apperr.Illegal("you already voted, use " + s.prefix + "unvote to change it")
	}
	label := "nobody"
	if target != models.Abstain {
		t, err := s.target(target)
		if err != nil {
			return err
		}
		label = t.Name
	}

	s.votes = append(s.votes, models.Vote{Voter: voter, Target: target, At: now})
	s.announce(fmt.Sprintf("%s votes for %s (%d/%d).", p.Name, label, len(s.votes), len(s.Living())))
	if s.allVoted() {
		s.resolveDay(now)
	}
	return nil
}

// Unvote withdraws a day vote.
func (s *Session) Unvote(voter string, now time.Time) error {
	if s.phase != models.PhaseDayVote {
		return apperr.Illegal("there is no vote running")
	}
	p, err := s.living(voter)
	if err != nil {
		return err
	}
	if !s.hasVoted(voter) {
		return apperr.Illegal("you have not voted")
	}
	s.votes = slices.DeleteFunc(s.votes, func(v models.Vote) bool { return v.Voter == voter })
	s.announce(p.Name + " takes back their vote.")
	return nil
}

// VoteTally returns the current counts and how many living players voted.
func (s *Session) VoteTally() (counts map[string]int, voted, total int) {
	return TallyVotes(s.votes).VoteCount, len(s.votes), len(s.Living())
}

// Shoot fires the shooter's gun at a living player. The gun is used up.
func (s *Session) Shoot(shooter, target string, now time.Time) error {
	if !s.phase.IsDay() {
		return apperr.Illegal("the gun can only be fired during the day")
	}
	p, err := s.living(shooter)
	if err != nil {
		return err
	}
	if !p.HasItem(models.ItemGun) {
		return apperr.Illegal("you do not have a gun")
	}
	t, err := s.target(target)
	if err != nil {
		return err
	}
	if t.ID == p.ID {
		return apperr.Illegal("you cannot shoot yourself")
	}

	p.TakeItem(models.ItemGun)
	s.eliminate(t, models.CauseShot, now)
	s.announce(fmt.Sprintf("BANG! %s shoots %s. %s was a %s.", p.Name, t.Name, t.Name, t.Role))
	if s.checkWin(now) {
		return nil
	}
	if s.phase == models.PhaseDayVote && s.allVoted() {
		s.resolveDay(now)
	}
	return nil
}

// PassItem hands a transferable item to another living player.
func (s *Session) PassItem(holder, target string, item models.Item, now time.Time) error {
	if !s.phase.IsDay() {
		return apperr.Illegal("items can only be passed during the day")
	}
	p, err := s.living(holder)
	if err != nil {
		return err
	}
	if !item.Transferable() {
		return apperr.Illegal(fmt.Sprintf("a %s cannot be passed on", item))
	}
	if !p.HasItem(item) {
		return apperr.Illegal(fmt.Sprintf("you do not have a %s", item))
	}
	t, err := s.target(target)
	if err != nil {
		return err
	}
	if t.ID == p.ID {
		return apperr.Illegal("you already have it")
	}

	p.TakeItem(item)
	t.GiveItem(item)
	s.whisper(p.ID, fmt.Sprintf("You handed your %s to %s.", item, t.Name))
	s.whisper(t.ID, fmt.Sprintf("%s handed you a %s. %s", p.Name, item, render.Items(t.Items)))
	return nil
}

func (s *Session) resolveDay(now time.Time) {
	result := TallyVotes(s.votes)
	switch {
	case result.Eliminated != "":
		t := s.index[result.Eliminated]
		s.eliminate(t, models.CauseLynched, now)
		s.announce(fmt.Sprintf("The village has spoken: %s is lynched. %s was a %s.", t.Name, t.Name, t.Role))
	case result.IsTie:
		s.announce("The vote is tied. Nobody is lynched today.")
	default:
		s.announce("The village decides not to lynch anyone today.")
	}
	if s.checkWin(now) {
		return
	}
	s.enterNight(now)
}

func (s *Session) hasVoted(id string) bool {
	return slices.ContainsFunc(s.votes, func(v models.Vote) bool { return v.Voter == id })
}

func (s *Session) allVoted() bool {
	for _, p := range s.players {
		if p.Alive && !s.hasVoted(p.ID) {
			return false
		}
	}
	return true
}

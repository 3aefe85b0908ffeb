package commands

import (
	"strings"

	"github.com/aaronzipp/wolfden/internal/activity"
	"github.com/aaronzipp/wolfden/internal/apperr"
	"github.com/aaronzipp/wolfden/internal/game"
	"github.com/aaronzipp/wolfden/internal/models"
	"github.com/aaronzipp/wolfden/internal/render"
)

func vote(c *Call) error {
	s, err := c.Session()
	if err != nil {
		return err
	}
	target := models.Abstain
	switch strings.ToLower(strings.Join(c.Args, " ")) {
	case "none", "nobody", "abstain", "skip":
	default:
		p, err := c.Target(s)
		if err != nil {
			return err
		}
		target = p.ID
	}
	return s.Vote(c.Msg.Actor, target, c.Now)
}

func unvote(c *Call) error {
	s, err := c.Session()
	if err != nil {
		return err
	}
	return s.Unvote(c.Msg.Actor, c.Now)
}

func nightAction(c *Call) error {
	s, err := c.Session()
	if err != nil {
		return err
	}
	p, err := c.Target(s)
	if err != nil {
		return err
	}
	return s.Act(c.Msg.Actor, p.ID, c.Now)
}

// passItem takes "<player>" or "<player> <item>"; the item defaults to the gun.
func passItem(c *Call) error {
	s, err := c.Session()
	if err != nil {
		return err
	}
	item := models.ItemGun
	if n := len(c.Args); n > 1 {
		if it, ok := models.ParseItem(strings.ToLower(c.Args[n-1])); ok {
			item = it
			c.Args = c.Args[:n-1]
		}
	}
	p, err := c.Target(s)
	if err != nil {
		return err
	}
	return s.PassItem(c.Msg.Actor, p.ID, item, c.Now)
}

func shoot(c *Call) error {
	s, err := c.Session()
	if err != nil {
		return err
	}
	p, err := c.Target(s)
	if err != nil {
		return err
	}
	return s.Shoot(c.Msg.Actor, p.ID, c.Now)
}

func status(c *Call) error {
	if s := c.Slot.Session(); s != nil {
		c.Reply(render.Status(s.Phase(), s.Cycle(), s.Deadline(), s.Living(), c.Now))
		if s.OwesAction(c.Msg.Actor) {
			c.warnInactive(s)
		}
		return nil
	}
	if ros := c.Slot.Roster(); ros != nil {
		c.Reply(render.SignupList(ros.List(c.Now), c.router.defaultVariant().MinPlayers, c.router.settings.Prefix, c.Now))
		return nil
	}
	c.Reply("No game here. Type " + c.router.settings.Prefix + "in to sign up.")
	return nil
}

func voteCount(c *Call) error {
	s, err := c.Session()
	if err != nil {
		return err
	}
	if s.Phase() != models.PhaseDayVote {
		return apperr.Illegal("No vote is running.")
	}
	counts, voted, total := s.VoteTally()
	c.Reply(render.VoteCount(counts, s.Names(), voted, total))
	return nil
}

func items(c *Call) error {
	s, err := c.Session()
	if err != nil {
		return err
	}
	p, ok := s.Player(c.Msg.Actor)
	if !ok {
		return apperr.Illegal("You are not playing in this game.")
	}
	c.Whisper(render.Items(p.Items))
	return nil
}

func rolePM(c *Call) error {
	s, err := c.Session()
	if err != nil {
		return err
	}
	return s.RoleCard(c.Msg.Actor)
}

// warnInactive tells a player who owes an action how long they have left
// before the watchdog removes them.
func (c *Call) warnInactive(s *game.Session) {
	rec := activity.Record{Channel: s.Channel(), Session: s.ID(), Player: c.Msg.Actor}
	deadline, ok, err := c.router.Activity.LastDeadline(c.Ctx, rec)
	if err != nil {
		c.router.Logger.Debug("status: activity lookup", "channel", s.Channel(), "player", c.Msg.Actor, "err", err)
		return
	}
	if ok {
		c.Whisper("We are waiting on you: " + render.Remaining(deadline, c.Now) + " before you are removed for inactivity.")
	}
}

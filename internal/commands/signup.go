package commands

import (
	"fmt"

	"github.com/aaronzipp/wolfden/internal/activity"
	"github.com/aaronzipp/wolfden/internal/apperr"
	"github.com/aaronzipp/wolfden/internal/game"
	"github.com/aaronzipp/wolfden/internal/models"
	"github.com/aaronzipp/wolfden/internal/render"
)

func (r *Router) defaultVariant() models.Variant {
	if v, ok := game.LookupVariant(r.settings.DefaultVariant); ok {
		return v
	}
	return game.Variants["classic"]
}

func signUp(c *Call) error {
	if ch, playing := c.router.Registry.ChannelOf(c.Msg.Actor); playing {
		if ch == c.Slot.Channel() {
			return apperr.Illegal("You are already playing in this game.")
		}
		return apperr.Illegal("You are already playing in another channel.")
	}
	ros, err := c.Slot.GetOrCreateRoster(c.router.settings.SignupWindow)
	if err != nil {
		return err
	}
	if err := ros.Reserve(c.Actor(), c.Now); err != nil {
		return apperr.New(apperr.CodeAlreadySignedUp, "You are already signed up.")
	}
	c.Announce(render.SignupList(ros.List(c.Now), c.router.defaultVariant().MinPlayers, c.router.settings.Prefix, c.Now))
	return nil
}

func withdraw(c *Call) error {
	ros := c.Slot.Roster()
	if ros == nil || !ros.Withdraw(c.Msg.Actor) {
		c.Reply("You were not signed up.")
		return nil
	}
	c.Announce(render.SignupList(ros.List(c.Now), c.router.defaultVariant().MinPlayers, c.router.settings.Prefix, c.Now))
	if ros.Len() == 0 {
		c.Slot.Release()
	}
	return nil
}

func listSignups(c *Call) error {
	if c.Slot.Session() != nil {
		c.Reply("A game is running here. Type " + c.router.settings.Prefix + "status to see it.")
		return nil
	}
	ros := c.Slot.Roster()
	if ros == nil {
		c.Reply(render.SignupList(nil, c.router.defaultVariant().MinPlayers, c.router.settings.Prefix, c.Now))
		return nil
	}
	c.Reply(render.SignupList(ros.List(c.Now), c.router.defaultVariant().MinPlayers, c.router.settings.Prefix, c.Now))
	return nil
}

func start(c *Call) error {
	variant := c.router.defaultVariant()
	if len(c.Args) == 1 {
		variant, _ = game.LookupVariant(c.Args[0])
	}
	if c.Slot.Session() != nil {
		return apperr.New(apperr.CodeChannelBusy, "A game is already running in this channel.")
	}
	if ros := c.Slot.Roster(); ros != nil && ros.Len() > 0 && !ros.Contains(c.Msg.Actor) {
		return apperr.Illegal("Only signed-up players can start the game.")
	}

	session, err := c.Slot.PromoteToGame(variant, c.router.Assigner, c.router.settings.Timings, c.router.settings.Prefix, c.Now)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeInsufficientPlayers {
			return apperr.New(apperr.CodeInsufficientPlayers, fmt.Sprintf("%s. Type %sin to join.",
				apperr.Message(err), c.router.settings.Prefix))
		}
		return err
	}
	for _, p := range session.Players() {
		c.arm = append(c.arm, activity.Record{Channel: session.Channel(), Session: session.ID(), Player: p.ID})
	}
	return nil
}

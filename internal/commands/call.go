package commands

import (
	"context"
	"strings"
	"time"

	"github.com/aaronzipp/wolfden/internal/activity"
	"github.com/aaronzipp/wolfden/internal/apperr"
	"github.com/aaronzipp/wolfden/internal/game"
	"github.com/aaronzipp/wolfden/internal/models"
	"github.com/aaronzipp/wolfden/internal/notify"
	"github.com/aaronzipp/wolfden/internal/store"
)

// Call is the execution context of one command. Executors run under the
// channel's exclusive access and must not block on the network.
type Call struct {
	Ctx  context.Context
	Msg  Message
	Args []string
	Now  time.Time
	Slot *store.Slot

	router  *Router
	cmd     *Command
	notices []notify.Notice
	arm     []activity.Record
	forget  []activity.Record
}

// Actor returns the identity of the sender.
func (c *Call) Actor() models.Identity {
	return models.Identity{ID: c.Msg.Actor, Name: c.Msg.ActorName}
}

// Reply answers the sender where they wrote.
func (c *Call) Reply(text string) {
	c.notices = append(c.notices, c.router.replyTo(c.Msg, text))
}

// Whisper answers the sender privately.
func (c *Call) Whisper(text string) {
	c.notices = append(c.notices, notify.ToUser(c.Msg.Actor, text))
}

// Announce posts to the game channel.
func (c *Call) Announce(text string) {
	c.notices = append(c.notices, notify.ToChannel(c.Slot.Channel(), text))
}

// Notify queues a notice for delivery after the lock is released.
func (c *Call) Notify(n notify.Notice) {
	c.notices = append(c.notices, n)
}

// Session returns the running session of the channel.
func (c *Call) Session() (*game.Session, error) {
	s := c.Slot.Session()
	if s == nil {
		return nil, apperr.New(apperr.CodeNoSession, "No game is active in this channel.")
	}
	return s, nil
}

// Target resolves the arguments to a player of the session.
func (c *Call) Target(s *game.Session) (*models.Player, error) {
	return s.Identify(strings.Join(c.Args, " "))
}

// markActive queues an activity record for a living player of the session.
func (c *Call) markActive(playerID string) {
	s := c.Slot.Session()
	if s == nil || s.Finished() || !s.IsAlive(playerID) {
		return
	}
	c.arm = append(c.arm, activity.Record{Channel: s.Channel(), Session: s.ID(), Player: playerID})
}

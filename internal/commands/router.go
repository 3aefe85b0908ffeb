// Package commands turns chat messages into serialized operations on the
// channel's roster or game session.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/aaronzipp/wolfden/internal/activity"
	"github.com/aaronzipp/wolfden/internal/apperr"
	"github.com/aaronzipp/wolfden/internal/game"
	"github.com/aaronzipp/wolfden/internal/notify"
	"github.com/aaronzipp/wolfden/internal/persist"
	"github.com/aaronzipp/wolfden/internal/roster"
	"github.com/aaronzipp/wolfden/internal/store"
)

// ErrUnknownCommand is returned by Dispatch for unrecognized tokens.
var ErrUnknownCommand = errors.New("unknown command")

// Message is one inbound chat message.
type Message struct {
	Actor     string
	ActorName string
	Channel   string
	Text      string
	At        time.Time
	Direct    bool // sent privately to the bot
}

// Settings are the tunables of the router.
type Settings struct {
	Prefix         string
	DefaultVariant string
	SignupWindow   time.Duration
	Timings        game.Timings
	Moderators     []string
}

// ActivityRecorder is the part of the inactivity watchdog the router drives.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, rec activity.Record) error
	Forget(ctx context.Context, rec activity.Record) error
	LastDeadline(ctx context.Context, rec activity.Record) (time.Time, bool, error)
}

// Deps are the collaborators of a Router.
type Deps struct {
	Registry  *store.Registry
	Outbox    notify.Deliverer
	Activity  ActivityRecorder
	Snapshots persist.Store // optional
	Assigner  game.Assigner
	Logger    *slog.Logger
	Now       func() time.Time
}

// Router dispatches messages to command descriptors.
type Router struct {
	Deps
	settings Settings
	commands []*Command
	table    map[string]*Command
}

// NewRouter creates a router over the given command table.
func NewRouter(deps Deps, settings Settings, commands []*Command) *Router {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Assigner == nil {
		deps.Assigner = game.NewRandomAssigner()
	}
	if settings.Prefix == "" {
		settings.Prefix = game.DefaultPrefix
	}
	if settings.DefaultVariant == "" {
		settings.DefaultVariant = "classic"
	}
	if settings.SignupWindow <= 0 {
		settings.SignupWindow = roster.DefaultWindow
	}
	if settings.Timings == (game.Timings{}) {
		settings.Timings = game.DefaultTimings()
	}
	r := &Router{
		Deps:     deps,
		settings: settings,
		commands: commands,
		table:    make(map[string]*Command),
	}
	for _, c := range commands {
		r.table[c.Trigger] = c
		for _, a := range c.Aliases {
			r.table[a] = c
		}
	}
	return r
}

// Dispatch handles one inbound message.
func (r *Router) Dispatch(ctx context.Context, msg Message) error {
	if msg.At.IsZero() {
		msg.At = r.Now()
	}
	if msg.ActorName == "" {
		msg.ActorName = msg.Actor
	}
	token, args, ok := r.parse(msg.Text)
	if !ok {
		return r.observe(ctx, msg)
	}

	cmd, found := r.table[token]
	if !found {
		r.Outbox.Deliver(ctx, r.replyTo(msg,
			fmt.Sprintf("Unrecognized command %q. Type %shelp for the list.", token, r.settings.Prefix)))
		return ErrUnknownCommand
	}

	if msg.Direct && !cmd.Stateless {
		if !cmd.Direct {
			r.Outbox.Deliver(ctx, r.replyTo(msg, r.settings.Prefix+cmd.Trigger+" only works in a game channel."))
			return apperr.New(apperr.CodeInvalidArgument, "command not allowed privately")
		}
		ch, playing := r.Registry.ChannelOf(msg.Actor)
		if !playing {
			r.Outbox.Deliver(ctx, r.replyTo(msg, "You are not playing in any game."))
			return apperr.New(apperr.CodeNoSession, "not playing")
		}
		msg.Channel = ch
	}
	if cmd.Moderator && !slices.Contains(r.settings.Moderators, msg.Actor) {
		r.Outbox.Deliver(ctx, r.replyTo(msg, "Only moderators can use "+r.settings.Prefix+cmd.Trigger+"."))
		return apperr.New(apperr.CodePermissionDenied, "moderator command")
	}
	if cmd.Validate != nil {
		if err := cmd.Validate(args); err != nil {
			r.Outbox.Deliver(ctx, r.replyTo(msg, err.Error()+"\n"+r.usage(cmd)))
			return apperr.Wrap(apperr.CodeInvalidArgument, "validate "+cmd.Trigger, err)
		}
	}

	call := &Call{Ctx: ctx, Msg: msg, Args: args, Now: msg.At, router: r, cmd: cmd}
	if cmd.Stateless {
		err := cmd.Execute(call)
		if err != nil {
			r.fail(call, err)
		}
		r.Outbox.Deliver(ctx, call.notices...)
		return err
	}
	err := r.Registry.Do(ctx, msg.Channel, func(slot *store.Slot) error {
		call.Slot = slot
		err := cmd.Execute(call)
		r.settle(call, err == nil && !cmd.ReadOnly)
		if err == nil && cmd.Turn {
			call.markActive(msg.Actor)
		}
		return err
	})
	if err != nil {
		r.fail(call, err)
	}

	// everything below runs without the channel lock
	r.Outbox.Deliver(ctx, call.notices...)
	r.track(ctx, call)
	return err
}

// settle drains session output and persists or retires the session.
// It runs under the channel lock.
func (r *Router) settle(call *Call, persistState bool) {
	s := call.Slot.Session()
	if s == nil {
		return
	}
	call.notices = append(call.notices, s.Drain()...)
	if s.Finished() {
		for _, p := range s.Players() {
			call.forget = append(call.forget, activity.Record{Channel: s.Channel(), Session: s.ID(), Player: p.ID})
		}
		r.deleteSnapshot(call.Ctx, s.Channel())
		call.Slot.Release()
		return
	}
	if persistState {
		r.saveSnapshot(call.Ctx, s)
	}
}

func (r *Router) fail(call *Call, err error) {
	switch {
	case apperr.IsUserFacing(err):
		call.Reply(apperr.Message(err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		r.Logger.Debug("dispatch: gave up waiting for channel", "channel", call.Msg.Channel, "err", err)
	default:
		r.Logger.Warn("dispatch: command failed", "command", call.cmd.Trigger, "channel", call.Msg.Channel,
			"actor", call.Msg.Actor, "err", err)
		call.Reply("Something went wrong with that command.")
	}
}

func (r *Router) track(ctx context.Context, call *Call) {
	for _, rec := range call.arm {
		if err := r.Activity.RecordActivity(ctx, rec); err != nil {
			r.Logger.Warn("activity: record", "channel", rec.Channel, "player", rec.Player, "err", err)
		}
	}
	for _, rec := range call.forget {
		if err := r.Activity.Forget(ctx, rec); err != nil {
			r.Logger.Debug("activity: forget", "channel", rec.Channel, "player", rec.Player, "err", err)
		}
	}
}

// observe handles plain chat: it keeps signups and activity records fresh.
func (r *Router) observe(ctx context.Context, msg Message) error {
	if msg.Direct || strings.TrimSpace(msg.Text) == "" {
		return nil
	}
	call := &Call{Ctx: ctx, Msg: msg, Now: msg.At, router: r}
	err := r.Registry.Do(ctx, msg.Channel, func(slot *store.Slot) error {
		call.Slot = slot
		if ros := slot.Roster(); ros != nil {
			ros.Touch(msg.Actor, msg.At)
		}
		call.markActive(msg.Actor)
		return nil
	})
	r.track(ctx, call)
	return err
}

func (r *Router) parse(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, r.settings.Prefix) {
		return "", nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(text, r.settings.Prefix))
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

func (r *Router) replyTo(msg Message, text string) notify.Notice {
	if msg.Direct {
		return notify.ToUser(msg.Actor, text)
	}
	return notify.ToChannel(msg.Channel, text)
}

func (r *Router) usage(cmd *Command) string {
	return "Usage: " + r.settings.Prefix + cmd.Usage + " - " + cmd.Help
}

func (r *Router) saveSnapshot(ctx context.Context, s *game.Session) {
	if r.Snapshots == nil {
		return
	}
	data, err := game.Encode(s.Snapshot())
	if err != nil {
		r.Logger.Error("snapshot: encode", "channel", s.Channel(), "err", err)
		return
	}
	rec := persist.Record{Channel: s.Channel(), SessionID: s.ID(), Payload: data, UpdatedAt: r.Now()}
	if err := r.Snapshots.Save(ctx, rec); err != nil {
		r.Logger.Error("snapshot: save", "channel", s.Channel(), "err", err)
	}
}

func (r *Router) deleteSnapshot(ctx context.Context, channel string) {
	if r.Snapshots == nil {
		return
	}
	if err := r.Snapshots.Delete(ctx, channel); err != nil && !errors.Is(err, persist.ErrNotFound) {
		r.Logger.Error("snapshot: delete", "channel", channel, "err", err)
	}
}

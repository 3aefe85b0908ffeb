package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aaronzipp/wolfden/internal/activity"
	"github.com/aaronzipp/wolfden/internal/game"
	"github.com/aaronzipp/wolfden/internal/models"
	"github.com/aaronzipp/wolfden/internal/notify"
	"github.com/aaronzipp/wolfden/internal/persist"
	"github.com/aaronzipp/wolfden/internal/render"
	"github.com/aaronzipp/wolfden/internal/store"
)

// Tick expires stale signups and drives phase timeouts. Each channel is
// handled as an ordinary serialized operation.
func (r *Router) Tick(ctx context.Context, now time.Time) {
	for _, channel := range r.Registry.Channels() {
		call := &Call{Ctx: ctx, Msg: Message{Channel: channel, At: now}, Now: now, router: r}
		err := r.Registry.Do(ctx, channel, func(slot *store.Slot) error {
			call.Slot = slot
			r.expireSignups(call)
			if s := slot.Session(); s != nil && s.Advance(now) {
				r.settle(call, true)
			}
			return nil
		})
		if err != nil {
			r.Logger.Debug("tick: skipped channel", "channel", channel, "err", err)
			continue
		}
		r.Outbox.Deliver(ctx, call.notices...)
		r.track(ctx, call)
	}
	if n := r.Registry.Prune(); n > 0 {
		r.Logger.Debug("tick: pruned idle channels", "count", n)
	}
}

// Run ticks every interval until ctx is cancelled.
func (r *Router) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Tick(ctx, r.Now())
		case <-ctx.Done():
			return nil
		}
	}
}

func (r *Router) expireSignups(call *Call) {
	ros := call.Slot.Roster()
	if ros == nil {
		return
	}
	expired := ros.ExpireStale(call.Now)
	if len(expired) == 0 {
		return
	}
	for _, e := range expired {
		call.Notify(notify.ToUser(e.Player.ID, fmt.Sprintf(
			"You were dropped from the signups in %s after %s without activity.",
			call.Slot.Channel(), ros.Window())))
	}
	call.Announce(render.SignupList(ros.List(call.Now), r.defaultVariant().MinPlayers, r.settings.Prefix, call.Now))
	if ros.Len() == 0 {
		call.Slot.Release()
	}
}

// RemoveInactive implements activity.Remover.
func (r *Router) RemoveInactive(ctx context.Context, rec activity.Record) (activity.Verdict, error) {
	now := r.Now()
	verdict := activity.Ignored
	call := &Call{Ctx: ctx, Msg: Message{Channel: rec.Channel, At: now}, Now: now, router: r}
	err := r.Registry.Do(ctx, rec.Channel, func(slot *store.Slot) error {
		call.Slot = slot
		s := slot.Session()
		if s == nil || s.ID() != rec.Session || !s.IsAlive(rec.Player) {
			return nil
		}
		if !s.OwesAction(rec.Player) {
			verdict = activity.Pending
			return nil
		}
		if err := s.ForceRemove(rec.Player, "inactive", now); err != nil {
			return err
		}
		verdict = activity.Removed
		r.settle(call, true)
		return nil
	})
	if err != nil {
		return activity.Ignored, err
	}
	r.Outbox.Deliver(ctx, call.notices...)
	r.track(ctx, call)
	return verdict, nil
}

// Restore resumes persisted sessions. A snapshot that fails to decode or
// validate is skipped without affecting the others. It returns how many
// sessions were resumed.
func (r *Router) Restore(ctx context.Context, records []persist.Record) int {
	restored := 0
	for _, rec := range records {
		session, err := r.decodeSession(rec)
		if errors.Is(err, errSessionOver) {
			r.Logger.Info("restore: dropping finished session", "channel", rec.Channel, "session", rec.SessionID)
			r.deleteSnapshot(ctx, rec.Channel)
			continue
		}
		if err != nil {
			r.Logger.Error("restore: skipping session", "channel", rec.Channel, "session", rec.SessionID, "err", err)
			continue
		}
		call := &Call{Ctx: ctx, Msg: Message{Channel: rec.Channel}, router: r}
		err = r.Registry.Do(ctx, rec.Channel, func(slot *store.Slot) error {
			call.Slot = slot
			if err := slot.Adopt(session); err != nil {
				return err
			}
			for _, p := range session.Living() {
				call.markActive(p.ID)
			}
			return nil
		})
		if err != nil {
			r.Logger.Error("restore: adopt session", "channel", rec.Channel, "session", rec.SessionID, "err", err)
			continue
		}
		r.track(ctx, call)
		restored++
		r.Logger.Info("restore: resumed session", "channel", rec.Channel, "session", session.ID(), "phase", session.Phase())
	}
	return restored
}

// errSessionOver marks a stored snapshot of a game that already finished.
var errSessionOver = errors.New("session already finished")

func (r *Router) decodeSession(rec persist.Record) (*game.Session, error) {
	snap, err := game.Decode(rec.Payload)
	if err != nil {
		return nil, err
	}
	if snap.Channel != rec.Channel {
		return nil, fmt.Errorf("snapshot belongs to channel %q", snap.Channel)
	}
	if snap.Phase == models.PhaseFinished {
		return nil, errSessionOver
	}
	return game.Restore(snap, r.settings.Prefix)
}

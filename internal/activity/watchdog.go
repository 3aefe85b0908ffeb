package activity

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// DefaultTimeout is how long a player may stay silent while owing an action.
const DefaultTimeout = 20 * time.Minute

// Verdict is what became of an expired record.
type Verdict int

const (
	// Ignored: the session is gone or the player is already dead.
	Ignored Verdict = iota
	// Removed: the player owed an action and was force-removed.
	Removed
	// Pending: the player is alive but owes nothing yet, so the record is re-armed.
	Pending
)

// Remover evicts an inactive player. Implementations run under the
// channel's exclusive access.
type Remover interface {
	RemoveInactive(ctx context.Context, rec Record) (Verdict, error)
}

// Watchdog records player activity and reacts to expired records.
type Watchdog struct {
	store   Store
	remover Remover
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewWatchdog creates a watchdog over store.
func NewWatchdog(store Store, timeout time.Duration, logger *slog.Logger) *Watchdog {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Watchdog{store: store, timeout: timeout, logger: logger, now: time.Now}
}

// SetRemover wires the eviction path.
func (w *Watchdog) SetRemover(r Remover) {
	w.remover = r
}

// Timeout returns the inactivity timeout.
func (w *Watchdog) Timeout() time.Duration {
	return w.timeout
}

// RecordActivity (re)arms the player's activity record.
func (w *Watchdog) RecordActivity(ctx context.Context, rec Record) error {
	deadline := w.now().Add(w.timeout)
	value := strconv.FormatInt(deadline.UnixMilli(), 10)
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, w.store.Set(ctx, rec.Key(), value, w.timeout)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(3),
	)
	return err
}

// Forget drops the player's record, e.g. once they are dead.
func (w *Watchdog) Forget(ctx context.Context, rec Record) error {
	return w.store.Delete(ctx, rec.Key())
}

// LastDeadline returns when the player's current record runs out.
func (w *Watchdog) LastDeadline(ctx context.Context, rec Record) (time.Time, bool, error) {
	v, ok, err := w.store.Get(ctx, rec.Key())
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}

// OnExpired handles one expired key.
func (w *Watchdog) OnExpired(ctx context.Context, key string) {
	rec, ok := ParseKey(key)
	if !ok {
		w.logger.Debug("watchdog: ignoring unknown key", "key", key)
		return
	}
	if w.remover == nil {
		w.logger.Warn("watchdog: no remover wired", "key", key)
		return
	}
	verdict, err := w.remover.RemoveInactive(ctx, rec)
	if err != nil {
		w.logger.Warn("watchdog: remove inactive player", "channel", rec.Channel, "player", rec.Player, "err", err)
		return
	}
	switch verdict {
	case Removed:
		w.logger.Info("watchdog: removed inactive player", "channel", rec.Channel, "session", rec.Session, "player", rec.Player)
	case Pending:
		if err := w.RecordActivity(ctx, rec); err != nil {
			w.logger.Warn("watchdog: re-arm record", "key", key, "err", err)
		}
	}
}

// Run handles expirations until ctx is cancelled.
func (w *Watchdog) Run(ctx context.Context) error {
	for {
		select {
		case key := <-w.store.Expired():
			w.OnExpired(ctx, key)
		case <-ctx.Done():
			return nil
		}
	}
}

package notify

import (
	"context"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Outbox delivers notices to a Transport from background workers. Notices
// for the same target always go through the same worker, so their order is
// preserved while a slow target cannot hold up the others.
type Outbox struct {
	transport Transport
	logger    *slog.Logger
	queues    []chan Notice
	maxTries  uint
	maxWait   time.Duration
}

// OutboxOptions tunes worker count and retry budget.
type OutboxOptions struct {
	Workers   int
	QueueSize int
	MaxTries  uint
	MaxWait   time.Duration
}

// NewOutbox creates an outbox. Call Run to start delivering.
func NewOutbox(transport Transport, logger *slog.Logger, opts OutboxOptions) *Outbox {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.MaxTries == 0 {
		opts.MaxTries = 5
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = 30 * time.Second
	}
	o := &Outbox{
		transport: transport,
		logger:    logger,
		queues:    make([]chan Notice, opts.Workers),
		maxTries:  opts.MaxTries,
		maxWait:   opts.MaxWait,
	}
	for i := range o.queues {
		o.queues[i] = make(chan Notice, opts.QueueSize)
	}
	return o
}

// Deliver queues notices. It blocks only while a worker queue is full.
func (o *Outbox) Deliver(ctx context.Context, notices ...Notice) {
	for _, n := range notices {
		q := o.queues[o.shard(n.Target())]
		select {
		case q <- n:
		case <-ctx.Done():
			o.logger.Warn("outbox: dropped notice", "target", n.Target(), "err", ctx.Err())
			return
		}
	}
}

// Run starts the workers and blocks until ctx is cancelled.
func (o *Outbox) Run(ctx context.Context) error {
	done := make(chan struct{})
	for _, q := range o.queues {
		go func(q chan Notice) {
			for {
				select {
				case n := <-q:
					o.send(ctx, n)
				case <-ctx.Done():
					done <- struct{}{}
					return
				}
			}
		}(q)
	}
	for range o.queues {
		<-done
	}
	return nil
}

func (o *Outbox) send(ctx context.Context, n Notice) {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if n.Direct() {
			return struct{}{}, o.transport.SendDirect(ctx, n.User, n.Text)
		}
		return struct{}{}, o.transport.Send(ctx, n.Channel, n.Text)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(o.maxTries),
		backoff.WithMaxElapsedTime(o.maxWait),
	)
	if err != nil {
		o.logger.Error("outbox: delivery failed", "target", n.Target(), "err", err)
	}
}

func (o *Outbox) shard(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(o.queues)))
}

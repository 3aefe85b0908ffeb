// Package sse fans chat output out to connected HTTP clients.
package sse

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	// BufferSize is the per-subscriber queue length.
	BufferSize = 16
	// DefaultSendTimeout bounds how long a slow subscriber can hold up a publish.
	DefaultSendTimeout = 2 * time.Second
)

// Hub keeps subscribers per topic. It implements notify.Transport.
type Hub struct {
	mu          sync.RWMutex
	topics      map[string]map[chan Message]struct{}
	sendTimeout time.Duration
	logger      *slog.Logger
}

// NewHub creates an empty hub. A zero sendTimeout means DefaultSendTimeout.
func NewHub(logger *slog.Logger, sendTimeout time.Duration) *Hub {
	if sendTimeout <= 0 {
		sendTimeout = DefaultSendTimeout
	}
	return &Hub{topics: make(map[string]map[chan Message]struct{}), sendTimeout: sendTimeout, logger: logger}
}

// Subscribe registers a client on topics. The returned function removes it.
func (h *Hub) Subscribe(topics ...string) (<-chan Message, func()) {
	client := make(chan Message, BufferSize)
	h.mu.Lock()
	for _, t := range topics {
		if h.topics[t] == nil {
			h.topics[t] = make(map[chan Message]struct{})
		}
		if n := len(h.topics[t]); n > 0 {
			h.logger.Debug("sse: additional subscriber", "topic", t, "existing", n)
		}
		h.topics[t][client] = struct{}{}
	}
	h.mu.Unlock()

	var once sync.Once
	return client, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for _, t := range topics {
				delete(h.topics[t], client)
				if len(h.topics[t]) == 0 {
					delete(h.topics, t)
				}
			}
		})
	}
}

// Subscribers returns how many clients listen on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Publish sends msg to every subscriber of its topic. It reports how many
// clients received it.
func (h *Hub) Publish(ctx context.Context, msg Message) int {
	h.mu.RLock()
	clients := make([]chan Message, 0, len(h.topics[msg.Topic]))
	for c := range h.topics[msg.Topic] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	// send without holding the lock
	sent := 0
	for _, c := range clients {
		timer := time.NewTimer(h.sendTimeout)
		select {
		case c <- msg:
			sent++
		case <-timer.C:
			h.logger.Debug("sse: timeout sending to subscriber", "topic", msg.Topic, "event", msg.Event)
		case <-ctx.Done():
			timer.Stop()
			return sent
		}
		timer.Stop()
	}
	return sent
}

// Send posts text to a game channel's subscribers.
func (h *Hub) Send(ctx context.Context, channelID, text string) error {
	h.Publish(ctx, Message{Event: EventMessage, Topic: ChannelTopic(channelID), Data: text})
	return ctx.Err()
}

// SendDirect posts text to one user's subscribers.
func (h *Hub) SendDirect(ctx context.Context, userID, text string) error {
	h.Publish(ctx, Message{Event: EventDirect, Topic: UserTopic(userID), Data: text})
	return ctx.Err()
}

package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// expiredPattern matches the expiry keyevent channel of every database.
const expiredPattern = "__keyevent@*__:expired"

// RedisStore is a Store backed by Redis key expiry notifications.
type RedisStore struct {
	client  *redis.Client
	logger  *slog.Logger
	expired chan string
}

// NewRedisStore wraps a Redis client.
func NewRedisStore(client *redis.Client, logger *slog.Logger) *RedisStore {
	return &RedisStore{
		client:  client,
		logger:  logger,
		expired: make(chan string, 64),
	}
}

// Set stores value under key for ttl.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Get returns the value under key if it exists.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Expired implements Store.
func (s *RedisStore) Expired() <-chan string {
	return s.expired
}

// Run enables expiry notifications and forwards them until ctx is
// cancelled.
func (s *RedisStore) Run(ctx context.Context) error {
	if err := s.client.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err(); err != nil {
		// managed instances often forbid CONFIG; they must be configured by hand
		s.logger.Warn("redis: could not enable keyspace notifications", "err", err)
	}
	ps := s.client.PSubscribe(ctx, expiredPattern)
	defer ps.Close()
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("redis: subscribe %s: %w", expiredPattern, err)
	}

	ch := ps.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			select {
			case s.expired <- msg.Payload:
			case <-ctx.Done():
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}

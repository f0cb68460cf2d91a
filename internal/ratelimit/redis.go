package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a CounterStore backed by Redis INCR with a window-length
// TTL set on the first hit. Redis serializes the increments, which keeps
// counts exact across multiple API instances sharing one broker.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore constructs a RedisStore over the given client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, prefix: "rl:"}
}

// Incr implements CounterStore.
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	fullKey := s.prefix + key

	count, err := s.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("ratelimit: incr %s: %w", fullKey, err)
	}
	if count == 1 {
		if err := s.client.PExpire(ctx, fullKey, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("ratelimit: expire %s: %w", fullKey, err)
		}
		return 1, window, nil
	}

	ttl, err := s.client.PTTL(ctx, fullKey).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("ratelimit: pttl %s: %w", fullKey, err)
	}
	if ttl <= 0 {
		// Either the expiry raced away between INCR and PTTL, or a prior
		// PExpire failed and left the key persistent. Re-arm the window so
		// the counter cannot grow forever.
		if err := s.client.PExpire(ctx, fullKey, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("ratelimit: expire %s: %w", fullKey, err)
		}
		ttl = window
	}
	return count, ttl, nil
}

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// RedisStore implements CounterStore on a shared Redis instance so
// counters survive restarts and are shared across replicas. INCR plus
// EXPIRE NX in one pipeline gives atomic increment-and-expire: the TTL is
// set only when the key is created, so the window is fixed from the first
// hit.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	rkey := redisKeyPrefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, rkey)
	pipe.ExpireNX(ctx, rkey, window)
	ttl := pipe.TTL(ctx, rkey)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("redis counter incr: %w", err)
	}

	remaining := ttl.Val()
	if remaining < 0 {
		remaining = window
	}

	return int(incr.Val()), time.Now().Add(remaining), nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis counter clear: %w", err)
	}
	return nil
}

// Sweep is a no-op: Redis TTLs expire counters on their own.
func (s *RedisStore) Sweep(context.Context) (int, error) {
	return 0, nil
}

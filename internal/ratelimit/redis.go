package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the counter with Redis so the window holds across all
// workers of an endpoint. INCR is atomic; the key expires with the window.
type RedisStore struct {
	client *redis.Client
	prefix string
	max    int
	window time.Duration
}

func NewRedisStore(client *redis.Client, prefix string, max int, window time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		max:    max,
		window: window,
	}
}

func (s *RedisStore) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := s.prefix + ":" + key
	count, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit: redis incr: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, k, s.window).Err(); err != nil {
			return false, 0, fmt.Errorf("ratelimit: redis expire: %w", err)
		}
	}
	if count > int64(s.max) {
		ttl, err := s.client.PTTL(ctx, k).Result()
		if err != nil || ttl < 0 {
			ttl = s.window
		}
		return false, ttl, nil
	}
	return true, 0, nil
}

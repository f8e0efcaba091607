package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, max int, window time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, "throttle:test", max, window), mr
}

func TestRedisStoreWindow(t *testing.T) {
	s, mr := newRedisStore(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, _, err := s.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok, "call %d should pass", i+1)
	}

	ok, retryAfter, err := s.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, retryAfter, time.Duration(0))

	ok, _, err = s.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok, "other keys are independent")

	mr.FastForward(time.Minute + time.Second)

	ok, _, err = s.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok, "window expiry resets the counter")
}

func TestRedisStoreReportsBackendErrors(t *testing.T) {
	s, mr := newRedisStore(t, 3, time.Minute)
	mr.Close()

	_, _, err := s.Allow(context.Background(), "1.2.3.4")
	assert.Error(t, err)
}

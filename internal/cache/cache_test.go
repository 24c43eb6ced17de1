package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/portfolio-hub/gateway/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRedis starts an in-process Redis and returns a connected RedisCache.
func setupRedis(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	rc, err := cache.NewRedisCache("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	return rc, mr
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := cache.NewRedisCache("://nope")
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	rc, _ := setupRedis(t)
	assert.NoError(t, rc.Ping(context.Background()))
}

func TestPing_ServerDown(t *testing.T) {
	rc, mr := setupRedis(t)
	mr.Close()
	assert.Error(t, rc.Ping(context.Background()))
}

func TestIncrWithExpiry(t *testing.T) {
	rc, mr := setupRedis(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := rc.IncrWithExpiry(ctx, "ratelimit:test", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:test"))
}

func TestIncrWithExpiry_Expires(t *testing.T) {
	rc, mr := setupRedis(t)
	ctx := context.Background()

	_, err := rc.IncrWithExpiry(ctx, "ratelimit:expire", time.Minute)
	require.NoError(t, err)
	mr.FastForward(61 * time.Second)

	got, err := rc.IncrWithExpiry(ctx, "ratelimit:expire", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestIncrWithExpiry_ServerDown(t *testing.T) {
	rc, mr := setupRedis(t)
	mr.Close()

	_, err := rc.IncrWithExpiry(context.Background(), "ratelimit:down", time.Minute)
	assert.Error(t, err)
}

func TestRateLimitKey(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	assert.Equal(t, "ratelimit:11111111-2222-3333-4444-555555555555:29", cache.RateLimitKey(id, 29))
	assert.NotEqual(t, cache.RateLimitKey(id, 29), cache.RateLimitKey(id, 30))
	assert.NotEqual(t, cache.RateLimitKey(id, 29), cache.RateLimitKey(uuid.New(), 29))
}

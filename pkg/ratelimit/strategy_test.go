package ratelimit

import (
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRateLimiter_IsPerKey(t *testing.T) {
	limiter := NewInMemoryRateLimiter(1, time.Second)

	limited, err := limiter.IsLimited("client-a")
	require.NoError(t, err)
	assert.False(t, limited, "first request for client-a")

	limited, err = limiter.IsLimited("client-a")
	require.NoError(t, err)
	assert.True(t, limited, "second immediate request for client-a")

	limited, err = limiter.IsLimited("client-b")
	require.NoError(t, err)
	assert.False(t, limited, "client-b has its own bucket")
}

func TestInMemoryRateLimiter_EmptyKeySharesOneBucket(t *testing.T) {
	limiter := NewInMemoryRateLimiter(1, time.Minute)

	limited, _ := limiter.IsLimited("")
	assert.False(t, limited)

	limited, _ = limiter.IsLimited(emptyClientKey)
	assert.True(t, limited)
}

func TestInMemoryRateLimiter_ZeroAllowanceAlwaysLimits(t *testing.T) {
	limited, err := NewInMemoryRateLimiter(0, time.Minute).IsLimited("client")

	require.NoError(t, err)
	assert.True(t, limited)
}

func TestInMemoryRateLimiter_SweepsIdleBuckets(t *testing.T) {
	limiter := NewInMemoryRateLimiter(5, time.Minute)
	_, _ = limiter.IsLimited("stale")

	limiter.mu.Lock()
	limiter.buckets["stale"].lastSeen = time.Now().Add(-time.Hour)
	limiter.calls = sweepEvery - 1
	limiter.mu.Unlock()

	_, _ = limiter.IsLimited("fresh")

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.buckets, "stale")
	assert.Contains(t, limiter.buckets, "fresh")
}

func TestNewRateLimiter_SelectsStrategy(t *testing.T) {
	inMemory := NewRateLimiter(&RateLimitConfig{Requests: 3, Window: time.Minute})
	assert.IsType(t, &InMemoryRateLimiter{}, inMemory)

	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	distributed := NewRateLimiter(&RateLimitConfig{Requests: 3, Window: time.Minute, Redis: client, Namespace: "waitlist"})
	require.IsType(t, &RedisRateLimiter{}, distributed)

	requests, window := distributed.GetLimitDetails()
	assert.Equal(t, 3, requests)
	assert.Equal(t, time.Minute, window)
}

func TestRedisRateLimiter_NamespacesKeys(t *testing.T) {
	global := NewRedisRateLimiter(nil, 1, time.Minute, "", nil)
	waitlist := NewRedisRateLimiter(nil, 1, time.Minute, "waitlist", nil)

	assert.Equal(t, "ratelimit:10.0.0.1", global.key("10.0.0.1"))
	assert.Equal(t, "ratelimit:waitlist:10.0.0.1", waitlist.key("10.0.0.1"))
	assert.Equal(t, "ratelimit:waitlist:"+emptyClientKey, waitlist.key(""))
}

func TestMemberID_IsUnique(t *testing.T) {
	assert.NotEqual(t, memberID(1), memberID(1))
}

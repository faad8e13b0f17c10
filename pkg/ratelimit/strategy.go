package ratelimit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"
)

const (
	keyPrefix      = "ratelimit:"
	emptyClientKey = "__empty__"

	// Stale in-memory buckets are swept every sweepEvery calls.
	sweepEvery = 1024
)

type Logger interface {
	Error(msg string, args ...interface{})
}

// RateLimiter decides whether a client key has used up its allowance.
type RateLimiter interface {
	GetLimitDetails() (int, time.Duration)
	IsLimited(key string) (bool, error)
	Close() error
}

// RateLimitConfig selects and configures a limiter. Limiters sharing a Redis
// client must use distinct namespaces or they will share buckets.
type RateLimitConfig struct {
	Requests  int
	Window    time.Duration
	Namespace string
	Redis     *redis.Client // nil selects the in-memory limiter
	Logger    Logger
}

func NewRateLimiter(config *RateLimitConfig) RateLimiter {
	if config.Redis != nil {
		return NewRedisRateLimiter(config.Redis, config.Requests, config.Window, config.Namespace, config.Logger)
	}
	return NewInMemoryRateLimiter(config.Requests, config.Window)
}

// InMemoryRateLimiter keeps a token bucket per key. It only limits within a
// single process.
type InMemoryRateLimiter struct {
	requests int
	window   time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	calls   uint64
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewInMemoryRateLimiter(requests int, window time.Duration) *InMemoryRateLimiter {
	return &InMemoryRateLimiter{
		requests: requests,
		window:   window,
		buckets:  make(map[string]*bucket),
	}
}

func (r *InMemoryRateLimiter) GetLimitDetails() (int, time.Duration) {
	return r.requests, r.window
}

func (r *InMemoryRateLimiter) IsLimited(key string) (bool, error) {
	if key == "" {
		key = emptyClientKey
	}
	if r.requests <= 0 || r.window <= 0 {
		return true, nil
	}

	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[key]
	if !ok {
		perSecond := float64(r.requests) / r.window.Seconds()
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(perSecond), r.requests)}
		r.buckets[key] = b
	}
	b.lastSeen = now

	r.calls++
	if r.calls%sweepEvery == 0 {
		r.sweep(now.Add(-2 * r.window))
	}

	return !b.limiter.AllowN(now, 1), nil
}

// sweep drops buckets idle since cutoff. Callers hold mu.
func (r *InMemoryRateLimiter) sweep(cutoff time.Time) {
	for key, b := range r.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(r.buckets, key)
		}
	}
}

func (r *InMemoryRateLimiter) Close() error {
	return nil
}

// slidingWindow trims entries older than the window, then records the call
// unless the window is already full. Returns 1 when limited.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

if redis.call('ZCARD', key) >= limit then
	return 1
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window * 2)
return 0
`)

// RedisRateLimiter keeps a sliding window per key in a sorted set so every
// replica sees the same counts.
type RedisRateLimiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
	prefix   string
	logger   Logger
}

func NewRedisRateLimiter(client *redis.Client, requests int, window time.Duration, namespace string, logger Logger) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:   client,
		requests: requests,
		window:   window,
		prefix:   redisKeyPrefix(namespace),
		logger:   logger,
	}
}

func redisKeyPrefix(namespace string) string {
	if namespace == "" {
		return keyPrefix
	}
	return keyPrefix + namespace + ":"
}

func (r *RedisRateLimiter) GetLimitDetails() (int, time.Duration) {
	return r.requests, r.window
}

func (r *RedisRateLimiter) key(client string) string {
	if client == "" {
		client = emptyClientKey
	}
	return r.prefix + client
}

func (r *RedisRateLimiter) IsLimited(client string) (bool, error) {
	key := r.key(client)
	now := time.Now().UnixMilli()

	limited, err := slidingWindow.Run(context.Background(), r.client, []string{key},
		now, r.window.Milliseconds(), r.requests, memberID(now)).Int()
	if err != nil {
		if r.logger != nil {
			r.logger.Error("Redis rate limit script failed", "key", key, "error", err)
		}
		return false, fmt.Errorf("rate limiter Redis error: %w", err)
	}

	return limited == 1, nil
}

// Close is a no-op; the Redis client belongs to the application cache.
func (r *RedisRateLimiter) Close() error {
	return nil
}

// memberID keeps sorted-set members unique when calls share a millisecond.
func memberID(now int64) string {
	suffix := make([]byte, 6)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("%d-%s", now, hex.EncodeToString(suffix))
}

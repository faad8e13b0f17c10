package factory

import (
	"context"
	"time"

	"github.com/akeren/gatherly-web/pkg/ratelimit"
	"github.com/go-redis/redis/v8"
)

type Cache interface {
	Ping(ctx context.Context) error
}

type RedisClientProvider interface {
	GetClient() *redis.Client
}

type RateLimiterFactory interface {
	CreateRateLimiter() ratelimit.RateLimiter
}

// DefaultRateLimiterFactory hands out limiters sharing one configuration.
// They are Redis-backed when the cache exposes a client and in-memory
// otherwise.
type DefaultRateLimiterFactory struct {
	config *ratelimit.RateLimitConfig
}

func NewDefaultRateLimiterFactory(namespace string, requests int, window time.Duration, cache Cache, logger ratelimit.Logger) *DefaultRateLimiterFactory {
	var redisClient *redis.Client
	if cache != nil {
		if provider, ok := cache.(RedisClientProvider); ok {
			redisClient = provider.GetClient()
		}
	}

	return &DefaultRateLimiterFactory{
		config: &ratelimit.RateLimitConfig{
			Requests:  requests,
			Window:    window,
			Namespace: namespace,
			Redis:     redisClient,
			Logger:    logger,
		},
	}
}

func (f *DefaultRateLimiterFactory) CreateRateLimiter() ratelimit.RateLimiter {
	return ratelimit.NewRateLimiter(f.config)
}

// UsesRedis reports whether created limiters share state through Redis.
func (f *DefaultRateLimiterFactory) UsesRedis() bool {
	return f.config.Redis != nil
}

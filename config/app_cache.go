package config

import (
	"context"
	"errors"

	"github.com/akeren/gatherly-web/internal/log"
	pkgredis "github.com/akeren/gatherly-web/pkg/redis"
	"github.com/akeren/gatherly-web/pkg/utils"
)

var ErrCacheNotConfigured = errors.New("cache host is not configured")

// Cache is the optional Redis connection. Submission and global rate limiters
// share it when it is present.
type Cache interface {
	Ping(ctx context.Context) error
	Close() error
}

type CacheConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewCacheConfig() *CacheConfig {
	return &CacheConfig{
		Host:     utils.GetEnvTrimmed("REDIS_HOST"),
		Port:     utils.GetEnvTrimmedOrDefault("REDIS_PORT", "6379"),
		Password: utils.GetEnvOrDefault("REDIS_PASSWORD", ""),
		DB:       int(utils.GetEnvPositiveInt("REDIS_DB", 0)),
	}
}

func (cc *CacheConfig) IsConfigured() bool {
	return cc.Host != ""
}

// NewCache connects to Redis, retrying while it starts up.
func (cc *CacheConfig) NewCache(logger *log.Logger) (Cache, error) {
	if !cc.IsConfigured() {
		return nil, ErrCacheNotConfigured
	}

	var cache *pkgredis.RedisCache
	err := connectRetryPolicy(logger, "redis").Execute(func() (err error) {
		cache, err = pkgredis.NewRedisCache(&pkgredis.Config{
			Host:     cc.Host,
			Port:     cc.Port,
			Password: cc.Password,
			DB:       cc.DB,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Cache (Redis) connected successfully", "host", cc.Host, "db", cc.DB)
	return cache, nil
}

// NewCacheOrNil degrades to no cache. Rate limiters then fall back to
// per-process memory.
func (cc *CacheConfig) NewCacheOrNil(logger *log.Logger) Cache {
	if !cc.IsConfigured() {
		logger.Info("Cache (Redis) is not configured; proceeding without external cache")
		return nil
	}

	cache, err := cc.NewCache(logger)
	if err != nil {
		logger.Error("Failed to create Cache (Redis); proceeding without it", "error", err)
		return nil
	}
	return cache
}

func CloseCache(cache Cache, logger *log.Logger) error {
	if cache == nil {
		return nil
	}

	if err := cache.Close(); err != nil {
		logger.Error("Failed to close cache", "error", err)
		return err
	}

	logger.Info("Cache connection closed")
	return nil
}

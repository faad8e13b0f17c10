package config

import (
	"testing"

	"github.com/akeren/gatherly-web/internal/log"
	"github.com/stretchr/testify/assert"
)

func TestNewCacheConfig(t *testing.T) {
	t.Setenv("REDIS_HOST", " cache.internal ")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("REDIS_DB", "2")

	cfg := NewCacheConfig()

	assert.Equal(t, "cache.internal", cfg.Host)
	assert.Equal(t, "6379", cfg.Port)
	assert.Equal(t, 2, cfg.DB)
	assert.True(t, cfg.IsConfigured())
}

func TestNewCache_Unconfigured(t *testing.T) {
	logger := log.NewLoggerWithJSONOutput()
	cfg := &CacheConfig{}

	_, err := cfg.NewCache(logger)
	assert.ErrorIs(t, err, ErrCacheNotConfigured)
	assert.Nil(t, cfg.NewCacheOrNil(logger))
	assert.NoError(t, CloseCache(nil, logger))
}

package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func GetEnvTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func GetEnvTrimmedOrDefault(key, defaultValue string) string {
	if v := GetEnvTrimmed(key); v != "" {
		return v
	}

	return defaultValue
}

// The lenient getters below fall back to the default on empty or unparsable
// values. Settings whose typos must stop the process are parsed in config.

func GetEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(GetEnvTrimmed(key))
	if err != nil {
		return defaultValue
	}
	return b
}

func GetEnvPositiveInt(key string, defaultValue int64) int64 {
	n, err := strconv.ParseInt(GetEnvTrimmed(key), 10, 64)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func GetEnvPositiveDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(GetEnvTrimmed(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

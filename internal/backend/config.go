package backend

import (
	"strings"
	"time"

	"github.com/akeren/gatherly-web/internal/models"
)

const (
	DriverREST     = "rest"
	DriverDatabase = "database"

	DefaultTimeout = 10 * time.Second
)

// Config holds the values the hosted data service binding is built from.
type Config struct {
	URL     string
	APIKey  string
	Table   string
	Timeout time.Duration
}

// NewConfig trims url and key and applies defaults for the rest.
func NewConfig(url, apiKey, table string, timeout time.Duration) Config {
	cfg := Config{
		URL:     sanitize(url),
		APIKey:  sanitize(apiKey),
		Table:   strings.TrimSpace(table),
		Timeout: timeout,
	}

	if cfg.Table == "" {
		cfg.Table = models.WaitlistTableName
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return cfg
}

// IsConfigured reports whether both the endpoint and the key are present.
func (c Config) IsConfigured() bool {
	return sanitize(c.URL) != "" && sanitize(c.APIKey) != ""
}

func sanitize(v string) string {
	s := strings.TrimSpace(v)

	if len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')) {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	return s
}

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/akeren/gatherly-web/internal/backend"
	"github.com/akeren/gatherly-web/internal/log"
	"github.com/akeren/gatherly-web/internal/models"
	"github.com/akeren/gatherly-web/pkg/circuitbreaker"
	"gorm.io/gorm"
)

const (
	defaultDemoDelay = time.Second
	defaultFormTTL   = 30 * time.Minute
)

// BackendConfig selects where waitlist signups are written and how the form
// behaves when nothing is configured.
type BackendConfig struct {
	Driver    string
	Client    backend.Config
	DemoMode  bool
	DemoDelay time.Duration
	FormTTL   time.Duration

	configured bool
	breaker    circuitbreaker.CircuitBreaker
}

func NewBackendConfig() (*BackendConfig, error) {
	driver := strings.ToLower(sanitizeEnv(GetValueFromEnvironmentVariable("BACKEND_DRIVER", backend.DriverREST)))
	if driver == "" {
		driver = backend.DriverREST
	}

	if driver != backend.DriverREST && driver != backend.DriverDatabase {
		return nil, fmt.Errorf("invalid BACKEND_DRIVER %q (allowed: %s, %s)", driver, backend.DriverREST, backend.DriverDatabase)
	}

	timeout, err := parseDurationEnv("BACKEND_TIMEOUT", backend.DefaultTimeout)
	if err != nil {
		return nil, err
	}

	demoMode, err := parseBoolEnv("WAITLIST_DEMO_MODE", true)
	if err != nil {
		return nil, err
	}

	demoDelay, err := parseDurationEnv("WAITLIST_DEMO_DELAY", defaultDemoDelay)
	if err != nil {
		return nil, err
	}

	formTTL, err := parseDurationEnv("WAITLIST_FORM_TTL", defaultFormTTL)
	if err != nil {
		return nil, err
	}

	return &BackendConfig{
		Driver: driver,
		Client: backend.NewConfig(
			GetValueFromEnvironmentVariable("BACKEND_URL", ""),
			GetValueFromEnvironmentVariable("BACKEND_API_KEY", ""),
			GetValueFromEnvironmentVariable("BACKEND_TABLE", models.WaitlistTableName),
			timeout,
		),
		DemoMode:  demoMode,
		DemoDelay: demoDelay,
		FormTTL:   formTTL,
	}, nil
}

// NeedsDatabase reports whether the selected driver writes through the
// application database.
func (bc *BackendConfig) NeedsDatabase() bool {
	return bc.Driver == backend.DriverDatabase
}

func (bc *BackendConfig) IsConfigured() bool {
	return bc.configured
}

func (bc *BackendConfig) IsDemoMode() bool {
	return bc.DemoMode
}

// CircuitState names the breaker state guarding the backend, or "" before a
// binding exists.
func (bc *BackendConfig) CircuitState() string {
	if bc.breaker == nil {
		return ""
	}
	return bc.breaker.State().String()
}

// NewBinding builds the process-wide backend binding. An unconfigured backend
// is only acceptable in demo mode.
func (bc *BackendConfig) NewBinding(logger *log.Logger, db *gorm.DB) (*backend.Binding, error) {
	var binding *backend.Binding

	breakerConfig := circuitbreaker.DefaultConfig()
	breakerConfig.OnStateChange = func(from, to circuitbreaker.CircuitState) {
		logger.Warn("Waitlist backend circuit changed state", "driver", bc.Driver, "from", from.String(), "to", to.String())
	}
	bc.breaker = circuitbreaker.NewCircuitBreaker(breakerConfig)
	guard := backend.WithCircuitBreaker(bc.breaker)

	switch bc.Driver {
	case backend.DriverDatabase:
		binding = backend.NewSQLBinding(db, bc.Client.Table, guard)
	default:
		binding = backend.NewBinding(bc.Client, guard)
	}

	bc.configured = binding.Configured
	if !binding.Configured {
		bc.breaker = nil
	}

	if binding.Configured {
		logger.Info("Waitlist backend configured", "driver", binding.Driver, "table", bc.Client.Table)
		return binding, nil
	}

	if !bc.DemoMode {
		logger.Error("Waitlist backend is not configured and demo mode is disabled", "driver", bc.Driver)
		return nil, fmt.Errorf("waitlist backend (%s) is not configured; set BACKEND_URL and BACKEND_API_KEY or enable WAITLIST_DEMO_MODE", bc.Driver)
	}

	logger.Warn("Waitlist backend not configured; submissions will be simulated",
		"driver", bc.Driver,
		"demo_delay", bc.DemoDelay,
	)
	return binding, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := sanitizeEnv(GetValueFromEnvironmentVariable(key, ""))
	if raw == "" {
		return defaultValue, nil
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a non-negative duration such as 1s", key, raw)
	}

	return parsed, nil
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := sanitizeEnv(GetValueFromEnvironmentVariable(key, ""))
	if raw == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}

	return parsed, nil
}

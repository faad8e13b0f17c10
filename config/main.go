package config

import (
	"context"
	"time"

	"github.com/akeren/gatherly-web/config/router"
	"github.com/akeren/gatherly-web/internal/backend"
	"github.com/akeren/gatherly-web/internal/log"
	"github.com/akeren/gatherly-web/internal/models"
	"github.com/akeren/gatherly-web/pkg/constants"
	"github.com/akeren/gatherly-web/pkg/utils"
	"gorm.io/gorm"
)

const tracingShutdownTimeout = 5 * time.Second

// ApplicationConfig is everything the domains are wired against. DB and Cache
// are nil when not configured.
type ApplicationConfig struct {
	DB              *gorm.DB
	RouterService   *router.RouterService
	Logger          *log.Logger
	Cache           Cache
	Config          *AppConfig
	Backend         *BackendConfig
	Binding         *backend.Binding
	TracingShutdown func(context.Context) error
}

type AppConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		RateLimitRequests: int(utils.GetEnvPositiveInt("RATE_LIMIT_REQUESTS", constants.DefaultRateLimitRequests)),
		RateLimitWindow:   utils.GetEnvPositiveDuration("RATE_LIMIT_WINDOW", constants.DefaultRateLimitWindow()),
		RequestTimeout:    utils.GetEnvPositiveDuration("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
	}
}

// Cleanup releases resources in reverse order of acquisition.
func (ac *ApplicationConfig) Cleanup() {
	if ac.RouterService != nil {
		ac.RouterService.Cleanup()
	}

	_ = CloseCache(ac.Cache, ac.Logger)
	CloseDatabase(ac.DB, ac.Logger)

	if ac.TracingShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
		defer cancel()
		if err := ac.TracingShutdown(ctx); err != nil {
			ac.Logger.Error("Failed to shutdown tracer provider", "error", err)
		}
	}

	ac.Logger.Info("Application cleanup completed")
}

// openDatabase connects when the backend driver needs one or when database
// settings are present; otherwise the site runs without a database.
func openDatabase(logger *log.Logger, backendConfig *BackendConfig, autoMigrate bool) (*gorm.DB, error) {
	if !backendConfig.NeedsDatabase() && !DatabaseConfigured() {
		logger.Info("Database not configured; proceeding without one")
		if autoMigrate {
			logger.Warn("--auto-migrate ignored; no database configured")
		}
		return nil, nil
	}

	db, err := NewDatabase(logger, nil)
	if err != nil {
		return nil, err
	}

	if autoMigrate {
		if err := AutoMigrate(logger, db, models.ModelRegistry...); err != nil {
			CloseDatabase(db, logger)
			return nil, err
		}
	}
	return db, nil
}

func LoadApplicationConfiguration(logger *log.Logger, autoMigrate bool) (*ApplicationConfig, error) {
	InitializeEnvFile(logger)

	if autoMigrate {
		appEnv := GetAppEnv()
		if err := ValidateAutoMigrateAllowed(appEnv); err != nil {
			return nil, err
		}
		if appEnv == "" {
			logger.Warn("APP_ENV not set; allowing --auto-migrate as development")
		}
	}

	backendConfig, err := NewBackendConfig()
	if err != nil {
		return nil, err
	}

	app := &ApplicationConfig{
		Logger:  logger,
		Backend: backendConfig,
		Config:  NewAppConfig(),
	}

	if app.TracingShutdown, err = SetupTracing(logger); err != nil {
		return nil, err
	}

	if app.DB, err = openDatabase(logger, backendConfig, autoMigrate); err != nil {
		app.Cleanup()
		return nil, err
	}

	if app.Binding, err = backendConfig.NewBinding(logger, app.DB); err != nil {
		app.Cleanup()
		return nil, err
	}

	app.Cache = NewCacheConfig().NewCacheOrNil(logger)
	app.RouterService = router.CreateRouterService(logger, app.Cache, &router.RouterConfig{
		RateLimitRequests: app.Config.RateLimitRequests,
		RateLimitWindow:   app.Config.RateLimitWindow,
		RequestTimeout:    app.Config.RequestTimeout,
	})

	logger.Info("Application configuration loaded successfully",
		"backend_driver", backendConfig.Driver,
		"demo_mode", backendConfig.IsDemoMode(),
		"database", app.DB != nil,
		"cache", app.Cache != nil,
	)
	return app, nil
}

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/akeren/gatherly-web/internal/log"
	"github.com/akeren/gatherly-web/pkg/retry"
	"github.com/akeren/gatherly-web/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DBConfig holds pool settings. Connection details come from APP_DATABASE_URL
// or the POSTGRES_* variables.
type DBConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	SSLMode         string
}

// A waitlist insert is tiny; a small pool is plenty.
func defaultDBConfig() *DBConfig {
	return &DBConfig{
		MaxIdleConns:    int(utils.GetEnvPositiveInt("DB_MAX_IDLE_CONNS", 2)),
		MaxOpenConns:    int(utils.GetEnvPositiveInt("DB_MAX_OPEN_CONNS", 10)),
		ConnMaxLifetime: utils.GetEnvPositiveDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		SSLMode:         "require",
	}
}

func dbEnv(key string) string {
	return sanitizeEnv(GetValueFromEnvironmentVariable(key, ""))
}

// DatabaseConfigured reports whether any database connection settings are present.
func DatabaseConfigured() bool {
	return dbEnv("APP_DATABASE_URL") != "" || dbEnv("POSTGRES_HOST") != ""
}

// resolveDSN prefers APP_DATABASE_URL and otherwise assembles a keyword DSN
// from POSTGRES_*. Every required variable that is missing is named.
func resolveDSN(logger *log.Logger, sslDefault string) (string, error) {
	if url := dbEnv("APP_DATABASE_URL"); url != "" {
		logger.Info("Using APP_DATABASE_URL for database connection")
		return url, nil
	}

	params := map[string]string{
		"host":     dbEnv("POSTGRES_HOST"),
		"port":     dbEnv("POSTGRES_PORT"),
		"user":     dbEnv("POSTGRES_USER"),
		"password": dbEnv("POSTGRES_PASSWORD"),
		"dbname":   dbEnv("POSTGRES_DB_NAME"),
		"sslmode":  dbEnv("POSTGRES_SSLMODE"),
	}
	if params["sslmode"] == "" {
		params["sslmode"] = sslDefault
	}

	var missing []string
	for _, required := range []struct{ param, env string }{
		{"host", "POSTGRES_HOST"},
		{"port", "POSTGRES_PORT"},
		{"user", "POSTGRES_USER"},
		{"dbname", "POSTGRES_DB_NAME"},
	} {
		if params[required.param] == "" {
			missing = append(missing, required.env)
		}
	}
	if len(missing) > 0 {
		logger.Error("Missing required database environment variables", "missing_vars", strings.Join(missing, ", "))
		return "", fmt.Errorf("missing required database env vars: %s", strings.Join(missing, ", "))
	}

	if port, err := strconv.Atoi(params["port"]); err != nil || port <= 0 || port > 65535 {
		return "", fmt.Errorf("invalid POSTGRES_PORT %q", params["port"])
	}

	logger.Info("Connecting to database",
		"host", params["host"],
		"port", params["port"],
		"dbname", params["dbname"],
		"sslmode", params["sslmode"],
	)

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params["host"], params["port"], params["user"], params["password"], params["dbname"], params["sslmode"]), nil
}

// NewDatabase opens the postgres pool, retrying while the server comes up.
// A nil cfg uses pool settings from the environment.
func NewDatabase(logger *log.Logger, cfg *DBConfig) (*gorm.DB, error) {
	if cfg == nil {
		cfg = defaultDBConfig()
	}

	dsn, err := resolveDSN(logger, cfg.SSLMode)
	if err != nil {
		return nil, err
	}

	var gdb *gorm.DB
	err = connectRetryPolicy(logger, "database").Execute(func() error {
		var openErr error
		// TranslateError maps unique violations to gorm.ErrDuplicatedKey.
		gdb, openErr = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if openErr != nil {
			return openErr
		}

		sqlDB, openErr := gdb.DB()
		if openErr != nil {
			return openErr
		}
		return sqlDB.Ping()
	})
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, _ := gdb.DB()
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logger.Info("Database connection established successfully",
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
	)
	return gdb, nil
}

// connectRetryPolicy retries startup connections to dependency, logging each
// failed attempt.
func connectRetryPolicy(logger *log.Logger, dependency string) retry.RetryPolicy {
	return retry.NewExponentialBackoff(&retry.Config{
		MaxAttempts: 5,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Multiplier:  2,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			logger.Warn("Dependency not ready; retrying", "dependency", dependency, "attempt", attempt, "delay", delay, "error", err)
		},
	})
}

// sanitizeEnv trims whitespace and one pair of matching surrounding quotes,
// which copy-pasted dashboard values often carry.
func sanitizeEnv(v string) string {
	s := strings.TrimSpace(v)
	if len(s) < 2 {
		return s
	}
	if first, last := s[0], s[len(s)-1]; first == last && (first == '"' || first == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

// AutoMigrate is the development shortcut behind --auto-migrate. Deployed
// environments run the SQL migrations through the CLI instead.
func AutoMigrate(logger *log.Logger, db *gorm.DB, models ...any) error {
	if db == nil {
		return fmt.Errorf("cannot migrate: no database")
	}

	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Database migration failed", "error", err)
		return fmt.Errorf("auto-migrate failed: %w", err)
	}

	logger.Info("Database migration completed successfully", "models", len(models))
	return nil
}

func CloseDatabase(db *gorm.DB, logger *log.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.Close()
	}
	if err != nil {
		logger.Error("Failed to close database", "error", err)
		return
	}
	logger.Info("Database closed successfully")
}

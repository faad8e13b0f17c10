package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/akeren/gatherly-web/internal/log"
	"github.com/akeren/gatherly-web/pkg/utils"
	"github.com/joho/godotenv"
)

const AppEnvKey = "APP_ENV"

// Environments where --auto-migrate may touch the schema.
var autoMigrateEnvs = []string{"", "dev", "development", "local", "test", "testing"}

// InitializeEnvFile loads ENV_FILE (default .env) without overriding variables
// already set. SKIP_DOTENV=true disables it for containers.
func InitializeEnvFile(logger *log.Logger) {
	if utils.GetEnvBool("SKIP_DOTENV", false) {
		logger.Info("Skipping .env file load (SKIP_DOTENV=true)")
		return
	}

	file := utils.GetEnvTrimmedOrDefault("ENV_FILE", ".env")
	if err := godotenv.Load(file); err != nil {
		logger.Warn("No env file loaded", "file", file, "error", err.Error())
		return
	}

	logger.Info("Environment variables loaded", "file", file)
}

// GetValueFromEnvironmentVariable distinguishes unset from empty; an empty
// value is returned as-is.
func GetValueFromEnvironmentVariable(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func GetAppEnv() string {
	return strings.ToLower(utils.GetEnvTrimmed(AppEnvKey))
}

func ValidateAutoMigrateAllowed(appEnv string) error {
	env := strings.ToLower(strings.TrimSpace(appEnv))
	if slices.Contains(autoMigrateEnvs, env) {
		return nil
	}
	return fmt.Errorf("--auto-migrate is not allowed when %s=%q (allowed: %q)", AppEnvKey, env, autoMigrateEnvs)
}

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/akeren/gatherly-web/config"
	"github.com/akeren/gatherly-web/internal/log"
	sqlmigrations "github.com/akeren/gatherly-web/migrations"
	"github.com/akeren/gatherly-web/pkg/migrations"
	"github.com/akeren/gatherly-web/pkg/utils"
)

const migrateTimeout = 5 * time.Minute

type migrateCommand struct {
	action string // up, down or version
	steps  int
}

func main() {
	logger := log.NewLoggerWithJSONOutput()
	config.InitializeEnvFile(logger)

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "migrate":
		if err := runMigrations(logger, args[1:]); err != nil {
			logger.Error("Database migration failed", "error", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

// migrationsConfig reads from MIGRATIONS_DIR when set and from the files
// embedded in the binary otherwise.
func migrationsConfig(logger *log.Logger) migrations.Config {
	cfg := migrations.Config{Logger: logger}
	if dir := utils.GetEnvTrimmed("MIGRATIONS_DIR"); dir != "" {
		cfg.Dir = dir
	} else {
		cfg.FS = sqlmigrations.FS
	}
	return cfg
}

func runMigrations(logger *log.Logger, args []string) error {
	cmd, err := parseMigrateArgs(args)
	if err != nil {
		return err
	}

	db, err := config.NewDatabase(logger, nil)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer config.CloseDatabase(db, logger)

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get SQL DB instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()

	cfg := migrationsConfig(logger)

	switch cmd.action {
	case "down":
		if err := migrations.Down(ctx, sqlDB, cfg, cmd.steps); err != nil {
			return err
		}
		logger.Info("Database migrations rolled back", "steps", cmd.steps)
	case "version":
		version, dirty, err := migrations.Version(ctx, sqlDB, cfg)
		if err != nil {
			return err
		}
		fmt.Printf("schema version %d (dirty=%t)\n", version, dirty)
	default:
		if err := migrations.Up(ctx, sqlDB, cfg); err != nil {
			return err
		}
		logger.Info("Database migrations completed")
	}
	return nil
}

// parseMigrateArgs accepts "", "up", "version", "down" or "down <n>".
func parseMigrateArgs(args []string) (migrateCommand, error) {
	if len(args) == 0 {
		return migrateCommand{action: "up"}, nil
	}

	switch args[0] {
	case "up", "version":
		return migrateCommand{action: args[0]}, nil
	case "down":
	default:
		return migrateCommand{}, fmt.Errorf("unknown migrate direction %q", args[0])
	}

	cmd := migrateCommand{action: "down", steps: 1}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return migrateCommand{}, fmt.Errorf("invalid step count %q", args[1])
		}
		cmd.steps = n
	}
	return cmd, nil
}

func printUsage() {
	fmt.Print(`Usage: cli <command>

Commands:
  migrate [up]       Apply pending database migrations and exit
  migrate down [n]   Roll back the last n migrations (default 1)
  migrate version    Print the applied schema version

Migrations are read from MIGRATIONS_DIR when set, otherwise from the binary.
`)
}

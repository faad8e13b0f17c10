// Package migrations applies the versioned SQL files with golang-migrate.
package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const (
	defaultDir   = "migrations"
	defaultTable = "schema_migrations"
)

type migrator interface {
	Up() error
	Steps(n int) error
	Version() (version uint, dirty bool, err error)
	Close() (sourceErr error, databaseErr error)
}

// source is either an fs.FS (embedded files) or a file:// URL on disk.
type source struct {
	fsys fs.FS
	url  string
}

func (s source) String() string {
	if s.fsys != nil {
		return "embedded"
	}
	return s.url
}

var driverFactory = func(db *sql.DB, cfg Config) (database.Driver, error) {
	return postgres.WithInstance(db, &postgres.Config{MigrationsTable: cfg.MigrationsTable})
}

var migratorFactory = func(src source, driver database.Driver) (migrator, error) {
	if src.fsys == nil {
		return migrate.NewWithDatabaseInstance(src.url, "postgres", driver)
	}

	files, err := iofs.New(src.fsys, ".")
	if err != nil {
		return nil, err
	}
	return migrate.NewWithInstance("iofs", files, "postgres", driver)
}

type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config selects where migrations come from. FS takes precedence over Dir.
type Config struct {
	FS              fs.FS
	Dir             string
	MigrationsTable string
	Logger          Logger
}

func (cfg Config) withDefaults() Config {
	if strings.TrimSpace(cfg.Dir) == "" {
		cfg.Dir = defaultDir
	}
	if strings.TrimSpace(cfg.MigrationsTable) == "" {
		cfg.MigrationsTable = defaultTable
	}
	return cfg
}

func (cfg Config) info(msg string, args ...any) {
	if cfg.Logger != nil {
		cfg.Logger.Info(msg, args...)
	}
}

func (cfg Config) warn(msg string, args ...any) {
	if cfg.Logger != nil {
		cfg.Logger.Warn(msg, args...)
	}
}

func (cfg Config) source() (source, error) {
	if cfg.FS != nil {
		return source{fsys: cfg.FS}, nil
	}

	u, err := fileSourceURL(cfg.Dir)
	if err != nil {
		return source{}, err
	}
	return source{url: u}, nil
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB, cfg Config) error {
	return run(ctx, db, cfg, "up", func(m migrator) error { return m.Up() })
}

// Down rolls back the given number of applied migrations.
func Down(ctx context.Context, db *sql.DB, cfg Config, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("migrations: down steps must be positive, got %d", steps)
	}
	return run(ctx, db, cfg, "down", func(m migrator) error { return m.Steps(-steps) })
}

// Version reports the applied schema version. A database that has never been
// migrated reports version 0.
func Version(ctx context.Context, db *sql.DB, cfg Config) (version uint, dirty bool, err error) {
	err = run(ctx, db, cfg, "version", func(m migrator) error {
		v, d, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			return nil
		}
		version, dirty = v, d
		return verr
	})
	return version, dirty, err
}

func run(ctx context.Context, db *sql.DB, cfg Config, op string, apply func(migrator) error) error {
	if db == nil {
		return fmt.Errorf("migrations: db is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg = cfg.withDefaults()

	src, err := cfg.source()
	if err != nil {
		return err
	}

	driver, err := driverFactory(db, cfg)
	if err != nil {
		return fmt.Errorf("migrations: postgres driver: %w", err)
	}

	m, err := migratorFactory(src, driver)
	if err != nil {
		return fmt.Errorf("migrations: init: %w", err)
	}

	var once sync.Once
	closeMigrator := func() {
		once.Do(func() {
			srcErr, dbErr := m.Close()
			if srcErr != nil {
				cfg.warn("Migrations source close error", "error", srcErr)
			}
			if dbErr != nil {
				cfg.warn("Migrations db close error", "error", dbErr)
			}
		})
	}
	defer closeMigrator()

	cfg.info("Running SQL migrations", "op", op, "source", src.String(), "table", cfg.MigrationsTable)

	done := make(chan error, 1)
	go func() { done <- apply(m) }()

	select {
	case <-ctx.Done():
		// migrate takes no context; closing is the only way to interrupt it.
		closeMigrator()
		return ctx.Err()
	case err = <-done:
	}

	switch {
	case errors.Is(err, migrate.ErrNoChange):
		cfg.info("No migrations to apply", "op", op)
		return nil
	case err != nil:
		return fmt.Errorf("migrations: %s: %w", op, err)
	}

	cfg.info("Migrations completed", "op", op)
	return nil
}

// fileSourceURL builds an escaped file:// URL with forward slashes on every platform.
func fileSourceURL(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("migrations: resolve dir: %w", err)
	}

	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// Package database opens the configured question store backend.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/tianzhicdev/dogetionary-sub002/internal/config"
	"github.com/tianzhicdev/dogetionary-sub002/internal/platform/postgres"
	"github.com/tianzhicdev/dogetionary-sub002/internal/platform/sqlite"
	"github.com/tianzhicdev/dogetionary-sub002/internal/redact"
	"github.com/tianzhicdev/dogetionary-sub002/internal/store"
)

// Drivers accepted in database.driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// openPostgres establishes a connection to PostgreSQL and configures the pool.
func openPostgres(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// OpenQuestionStore opens the configured backend, applying migrations when
// enabled, and returns its question store together with the handle to close
// on shutdown.
func OpenQuestionStore(
	ctx context.Context,
	cfg config.DatabaseConfig,
	logger *slog.Logger,
) (store.QuestionStore, io.Closer, error) {
	switch cfg.Driver {
	case DriverPostgres:
		db, err := openPostgres(ctx, cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		if cfg.AutoMigrate {
			if err := postgres.Migrate(ctx, db, postgres.MigrateUp, logger); err != nil {
				_ = db.Close()
				return nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
			}
		}
		logger.Info("Database connection established",
			"driver", cfg.Driver,
			"url", redact.URL(cfg.URL))
		return postgres.NewPostgresQuestionStore(db, logger), db, nil

	case DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Database connection established",
			"driver", cfg.Driver,
			"dsn", cfg.URL)
		return sqlite.NewQuestionStore(db, logger), db, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// RunMigrations executes a goose command against the configured PostgreSQL
// database. SQLite creates its schema on open and has nothing to migrate.
func RunMigrations(ctx context.Context, cfg config.DatabaseConfig, command string, logger *slog.Logger) error {
	if cfg.Driver != DriverPostgres {
		logger.Info("migrations only apply to postgres; nothing to do", "driver", cfg.Driver)
		return nil
	}
	db, err := openPostgres(ctx, cfg.URL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return postgres.Migrate(ctx, db, command, logger)
}

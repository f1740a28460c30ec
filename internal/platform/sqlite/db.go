// Package sqlite implements the store interfaces on an embedded SQLite
// database using sqlx and the mattn/go-sqlite3 driver. It is the default
// backend for local use; the schema is created on open.
package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver name registered by go-sqlite3.
const DriverName = "sqlite3"

const schema = `
CREATE TABLE IF NOT EXISTS questions (
	user_id    TEXT    NOT NULL,
	word       TEXT    NOT NULL CHECK (word <> ''),
	source     TEXT    NOT NULL,
	question   TEXT,
	due_at     INTEGER NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (user_id, word)
);
CREATE INDEX IF NOT EXISTS idx_questions_user_due ON questions (user_id, due_at);
`

// Open connects to the SQLite database at dsn and creates the schema if
// needed. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	// SQLite allows a single writer, and each :memory: connection would
	// otherwise get its own empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}
	return db, nil
}

// Package testdb opens the PostgreSQL database used by integration tests.
//
// Tests call URL or Open; when no database URL is configured the test is
// skipped locally and fails in CI, where a database is always expected.
package testdb

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/tianzhicdev/dogetionary-sub002/internal/redact"
)

const (
	// EnvTestDatabaseURL is the preferred variable for the test database.
	EnvTestDatabaseURL = "DOGETIONARY_TEST_DB_URL"
	// EnvDatabaseURL is the conventional fallback.
	EnvDatabaseURL = "DATABASE_URL"

	pingTimeout = 10 * time.Second
)

var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// IsCI reports whether the tests run under a CI system.
func IsCI() bool {
	for _, name := range ciVars {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// DatabaseURL returns the first non-empty test database URL, or "".
func DatabaseURL() string {
	for _, name := range []string{EnvTestDatabaseURL, EnvDatabaseURL} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// URL returns the test database URL or skips t when none is set.
func URL(t testing.TB) string {
	t.Helper()
	url := DatabaseURL()
	if url != "" {
		return url
	}
	if IsCI() {
		t.Fatalf("no test database configured: set %s or %s", EnvTestDatabaseURL, EnvDatabaseURL)
	}
	t.Skipf("%s not set, skipping PostgreSQL integration test", EnvTestDatabaseURL)
	return ""
}

// Open connects to the test database and closes it when t finishes.
// Schema setup is left to the caller.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	url := URL(t)

	db, err := sql.Open("pgx", url)
	if err != nil {
		t.Fatalf("open %s: %v", redact.URL(url), err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("ping %s: %s", redact.URL(url), redact.Error(err))
	}
	return db
}

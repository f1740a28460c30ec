// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx stdlib driver. The schema is managed with goose;
// migrations are embedded in the package and applied by Migrate.
package postgres

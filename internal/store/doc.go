// Package store defines interfaces for data persistence operations.
// These interfaces keep the review service independent of the database
// behind it; PostgreSQL and SQLite implementations live under
// internal/platform.
package store

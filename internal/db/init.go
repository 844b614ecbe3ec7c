// Package db initializes the PostgreSQL connection pool and applies
// schema migrations at startup.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// maxOpenConns caps the process-wide connection pool backing all
// repository operations.
const maxOpenConns = 5

// migrations are applied in order; each entry runs at most once,
// tracked by the schema_migrations ledger.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS api_keys (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		key TEXT UNIQUE NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS bookmarks (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		url TEXT NOT NULL,
		title TEXT,
		tags TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		api_key_id UUID NOT NULL REFERENCES api_keys(id),
		UNIQUE (url, api_key_id)
	)`,
	`CREATE INDEX IF NOT EXISTS bookmarks_api_key_created_idx
		ON bookmarks (api_key_id, created_at DESC)`,
}

// InitPostgres opens a connection pool against dsn, verifies connectivity,
// and runs any pending migrations.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Migrate applies every migration not yet recorded in schema_migrations.
// Each pending migration runs in its own transaction together with its
// ledger insert, so a failure leaves the schema at the last good version.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(
		`CREATE TABLE IF NOT EXISTS schema_migrations (version INT PRIMARY KEY)`,
	); err != nil {
		return fmt.Errorf("create ledger: %w", err)
	}

	var current int
	err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		version := i + 1
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", version, err)
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", version, err)
		}
	}

	return nil
}

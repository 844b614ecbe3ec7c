// Package repository provides PostgreSQL persistence for API keys and
// bookmarks.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound signals that a query matched no rows. Callers use it to
// distinguish absence (401/404 class) from store failure (500 class).
var ErrNotFound = errors.New("not found")

// PostgresAPIKeyRepository implements API key operations against PostgreSQL.
type PostgresAPIKeyRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAPIKeyRepository creates a repository over the given connection pool.
func NewPostgresAPIKeyRepository(db *sql.DB) *PostgresAPIKeyRepository {
	return &PostgresAPIKeyRepository{DB: db}
}

// ResolveKey looks up the identity behind a presented secret.
// Returns ErrNotFound if no key matches; any other error is a store failure.
func (r *PostgresAPIKeyRepository) ResolveKey(ctx context.Context, key string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT id FROM api_keys WHERE key = $1`,
		key,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("ResolveKey: %w", err)
	}
	return id, nil
}

// CreateKey inserts a new API key with the given secret and description.
func (r *PostgresAPIKeyRepository) CreateKey(ctx context.Context, key, description string) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO api_keys (key, description) VALUES ($1, $2)`,
		key, description,
	)
	if err != nil {
		return fmt.Errorf("CreateKey: %w", err)
	}
	return nil
}

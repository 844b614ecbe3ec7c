package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/linkman/linkman/internal/models"
)

// PostgresBookmarkRepository implements bookmark persistence against PostgreSQL.
// Every statement except UpdateTags carries the owning api_key_id in its
// WHERE clause; that is the isolation mechanism.
type PostgresBookmarkRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresBookmarkRepository creates a repository over the given connection pool.
func NewPostgresBookmarkRepository(db *sql.DB) *PostgresBookmarkRepository {
	return &PostgresBookmarkRepository{DB: db}
}

// Upsert inserts a bookmark or, on conflict of (url, api_key_id), updates
// title and tags in place. The row's id and created_at are preserved.
// Returns the stable bookmark id.
func (r *PostgresBookmarkRepository) Upsert(ctx context.Context, owner uuid.UUID, url string, title *string, tags []string) (uuid.UUID, error) {
	if tags == nil {
		tags = []string{}
	}
	var id uuid.UUID
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO bookmarks (url, title, tags, api_key_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (url, api_key_id) DO UPDATE
		SET title = EXCLUDED.title, tags = EXCLUDED.tags
		RETURNING id
	`, url, title, pq.Array(tags), owner).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("Upsert: %w", err)
	}
	return id, nil
}

// UpdateTags overwrites the tag array of a bookmark. There is no ownership
// check: the id was authorized on lookup and is not externally guessable.
// A vanished row (deleted while a worker was in flight) affects zero rows
// and is not an error.
func (r *PostgresBookmarkRepository) UpdateTags(ctx context.Context, id uuid.UUID, tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	_, err := r.DB.ExecContext(
		ctx,
		`UPDATE bookmarks SET tags = $1 WHERE id = $2`,
		pq.Array(tags), id,
	)
	if err != nil {
		return fmt.Errorf("UpdateTags: %w", err)
	}
	return nil
}

// List returns the owner's bookmarks matching the filter, newest first.
// The filter is composed clause by clause; user values are only ever bound
// as parameters, never concatenated into the statement text.
func (r *PostgresBookmarkRepository) List(ctx context.Context, owner uuid.UUID, filter models.BookmarkFilter) ([]models.Bookmark, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, url, title, tags, created_at FROM bookmarks WHERE api_key_id = $1`)
	args := []any{owner}

	if filter.Q != "" {
		args = append(args, "%"+filter.Q+"%")
		n := len(args)
		fmt.Fprintf(&sb, ` AND (url ILIKE $%d OR title ILIKE $%d)`, n, n)
	}

	if filter.Title != "" {
		args = append(args, "%"+filter.Title+"%")
		fmt.Fprintf(&sb, ` AND title ILIKE $%d`, len(args))
	}

	for _, tag := range filter.Tags {
		args = append(args, tag)
		fmt.Fprintf(&sb, ` AND $%d = ANY(tags)`, len(args))
	}

	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		fmt.Fprintf(&sb, ` AND created_at >= $%d`, len(args))
	}

	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		fmt.Fprintf(&sb, ` AND created_at <= $%d`, len(args))
	}

	sb.WriteString(` ORDER BY created_at DESC`)

	rows, err := r.DB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	bookmarks := []models.Bookmark{}
	for rows.Next() {
		var b models.Bookmark
		if err := rows.Scan(&b.ID, &b.URL, &b.Title, pq.Array(&b.Tags), &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if b.Tags == nil {
			b.Tags = []string{}
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List rows: %w", err)
	}
	return bookmarks, nil
}

// Sync returns all of the owner's bookmarks, newest first.
func (r *PostgresBookmarkRepository) Sync(ctx context.Context, owner uuid.UUID) ([]models.Bookmark, error) {
	return r.List(ctx, owner, models.BookmarkFilter{})
}

// DeleteByURL removes the owner's bookmark for the given URL.
// Returns ErrNotFound if no row matched.
func (r *PostgresBookmarkRepository) DeleteByURL(ctx context.Context, owner uuid.UUID, url string) error {
	res, err := r.DB.ExecContext(
		ctx,
		`DELETE FROM bookmarks WHERE url = $1 AND api_key_id = $2`,
		url, owner,
	)
	if err != nil {
		return fmt.Errorf("DeleteByURL: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteByURL rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetURL fetches the URL of a bookmark, checking that it belongs to owner.
// Returns ErrNotFound for a missing or foreign row.
func (r *PostgresBookmarkRepository) GetURL(ctx context.Context, owner, id uuid.UUID) (string, error) {
	var url string
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT url FROM bookmarks WHERE id = $1 AND api_key_id = $2`,
		id, owner,
	).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("GetURL: %w", err)
	}
	return url, nil
}

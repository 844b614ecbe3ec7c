// Package models defines the core data structures for API keys and bookmarks.
package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey represents a bearer credential that scopes bookmark access.
type APIKey struct {
	// ID is the unique identifier for the key.
	ID uuid.UUID
	// Key is the opaque secret presented by clients.
	Key string
	// Description is a human-readable label set at creation time.
	Description string
}

// Bookmark is a saved URL with metadata, owned by a single API key.
type Bookmark struct {
	// ID is the server-assigned identifier.
	ID uuid.UUID `json:"id"`
	// URL is the absolute URL of the bookmarked page.
	URL string `json:"url"`
	// Title is an optional human-provided title.
	Title *string `json:"title"`
	// Tags holds up to six lowercase single-word topic tags.
	Tags []string `json:"tags"`
	// CreatedAt is assigned by the database at first insert and
	// preserved across upserts.
	CreatedAt time.Time `json:"created_at"`
}

// BookmarkFilter holds the optional clauses of a bookmark listing.
// Zero-value fields are skipped; all supplied clauses are ANDed.
type BookmarkFilter struct {
	// Q matches case-insensitively against url OR title.
	Q string
	// Title matches case-insensitively against title.
	Title string
	// Tags must all be present in a bookmark's tag array.
	Tags []string
	// StartDate and EndDate are inclusive bounds on created_at.
	StartDate *time.Time
	EndDate   *time.Time
}

// Package service provides the bookmark business logic, delegating
// persistence to the repository layer and ingestion to the worker.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/linkman/linkman/internal/models"
)

// BookmarkRepository defines the persistence operations needed by the
// BookmarkService.
type BookmarkRepository interface {
	// Upsert inserts or updates the owner's bookmark for url and returns
	// the stable row id.
	Upsert(ctx context.Context, owner uuid.UUID, url string, title *string, tags []string) (uuid.UUID, error)
	// List returns the owner's bookmarks matching the filter, newest first.
	List(ctx context.Context, owner uuid.UUID, filter models.BookmarkFilter) ([]models.Bookmark, error)
	// Sync returns all of the owner's bookmarks, newest first.
	Sync(ctx context.Context, owner uuid.UUID) ([]models.Bookmark, error)
	// DeleteByURL removes the owner's bookmark for url; repository.ErrNotFound
	// if no row matched.
	DeleteByURL(ctx context.Context, owner uuid.UUID, url string) error
	// GetURL fetches a bookmark's URL, checking ownership.
	GetURL(ctx context.Context, owner, id uuid.UUID) (string, error)
}

// Scheduler launches a detached ingestion pass for a bookmark.
type Scheduler interface {
	Schedule(id uuid.UUID, url string)
}

// BookmarkService implements the bookmark operations behind the HTTP surface.
type BookmarkService struct {
	repo      BookmarkRepository
	scheduler Scheduler
}

// NewBookmarkService constructs a BookmarkService.
func NewBookmarkService(repo BookmarkRepository, scheduler Scheduler) *BookmarkService {
	return &BookmarkService{repo: repo, scheduler: scheduler}
}

// Create upserts the bookmark and schedules a detached ingestion pass on
// the resulting id. The pass runs after the row is durable: Upsert has
// committed before Schedule is called.
func (s *BookmarkService) Create(ctx context.Context, owner uuid.UUID, url string, title *string, tags []string) (uuid.UUID, error) {
	id, err := s.repo.Upsert(ctx, owner, url, title, tags)
	if err != nil {
		return uuid.Nil, err
	}
	s.scheduler.Schedule(id, url)
	return id, nil
}

// List returns the owner's bookmarks matching the filter.
func (s *BookmarkService) List(ctx context.Context, owner uuid.UUID, filter models.BookmarkFilter) ([]models.Bookmark, error) {
	return s.repo.List(ctx, owner, filter)
}

// Sync returns all of the owner's bookmarks.
func (s *BookmarkService) Sync(ctx context.Context, owner uuid.UUID) ([]models.Bookmark, error) {
	return s.repo.Sync(ctx, owner)
}

// Delete removes the owner's bookmark for url.
func (s *BookmarkService) Delete(ctx context.Context, owner uuid.UUID, url string) error {
	return s.repo.DeleteByURL(ctx, owner, url)
}

// Reprocess re-runs ingestion for an existing bookmark. Ownership is
// checked on the URL lookup; a foreign or missing row surfaces as
// repository.ErrNotFound and nothing is scheduled.
func (s *BookmarkService) Reprocess(ctx context.Context, owner, id uuid.UUID) error {
	url, err := s.repo.GetURL(ctx, owner, id)
	if err != nil {
		return err
	}
	s.scheduler.Schedule(id, url)
	return nil
}

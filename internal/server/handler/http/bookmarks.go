// Package http provides the HTTP handlers for the bookmark API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linkman/linkman/internal/middleware"
	"github.com/linkman/linkman/internal/models"
	"github.com/linkman/linkman/internal/repository"
)

// BookmarkService defines the operations required by the bookmark handlers.
type BookmarkService interface {
	// Create upserts a bookmark and schedules ingestion; returns the row id.
	Create(ctx context.Context, owner uuid.UUID, url string, title *string, tags []string) (uuid.UUID, error)
	// List returns the owner's bookmarks matching the filter.
	List(ctx context.Context, owner uuid.UUID, filter models.BookmarkFilter) ([]models.Bookmark, error)
	// Sync returns all of the owner's bookmarks.
	Sync(ctx context.Context, owner uuid.UUID) ([]models.Bookmark, error)
	// Delete removes the owner's bookmark for url.
	Delete(ctx context.Context, owner uuid.UUID, url string) error
	// Reprocess re-runs ingestion on an owned bookmark.
	Reprocess(ctx context.Context, owner, id uuid.UUID) error
}

// BookmarkHandler handles HTTP requests for bookmark operations.
type BookmarkHandler struct {
	// Service performs the underlying bookmark operations.
	Service BookmarkService
	// Logger records request-path failures.
	Logger *zap.Logger
}

// CreateBookmarkRequest is the JSON payload for bookmark creation.
type CreateBookmarkRequest struct {
	URL   string   `json:"url"`
	Title *string  `json:"title"`
	Tags  []string `json:"tags"`
}

// Create handles POST /bookmarks. The row is durable before the response
// is written; tag enrichment happens asynchronously.
func (h *BookmarkHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.GetAPIKeyIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if _, err := h.Service.Create(r.Context(), owner, req.URL, req.Title, req.Tags); err != nil {
		h.Logger.Error("create bookmark failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// List handles GET /bookmarks. Optional query parameters q, title, tag,
// startDate, and endDate narrow the result; all supplied clauses are ANDed.
func (h *BookmarkHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.GetAPIKeyIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, "invalid query", http.StatusBadRequest)
		return
	}

	bookmarks, err := h.Service.List(r.Context(), owner, filter)
	if err != nil {
		h.Logger.Error("list bookmarks failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, bookmarks)
}

// Sync handles GET /bookmarks/sync, returning the owner's full bookmark set.
func (h *BookmarkHandler) Sync(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.GetAPIKeyIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	bookmarks, err := h.Service.Sync(r.Context(), owner)
	if err != nil {
		h.Logger.Error("sync bookmarks failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, bookmarks)
}

// Delete handles DELETE /bookmarks?url=… for the owner's row.
func (h *BookmarkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.GetAPIKeyIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	url := r.URL.Query().Get("url")
	if url == "" {
		http.Error(w, "invalid query", http.StatusBadRequest)
		return
	}

	err := h.Service.Delete(r.Context(), owner, url)
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error("delete bookmark failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reprocess handles POST /admin/bookmarks/{id}/reprocess. The ownership
// check is per-key; a foreign row is indistinguishable from a missing one.
func (h *BookmarkHandler) Reprocess(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.GetAPIKeyIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		// A malformed id cannot name an existing row.
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	err = h.Service.Reprocess(r.Context(), owner, id)
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error("reprocess bookmark failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// parseFilter builds a BookmarkFilter from the request query string.
// Dates are RFC 3339 instants; a malformed date is a client error.
func parseFilter(r *http.Request) (models.BookmarkFilter, error) {
	q := r.URL.Query()
	filter := models.BookmarkFilter{
		Q:     q.Get("q"),
		Title: q.Get("title"),
	}

	if tag := q.Get("tag"); tag != "" {
		for _, token := range strings.Split(tag, ",") {
			if token = strings.TrimSpace(token); token != "" {
				filter.Tags = append(filter.Tags, token)
			}
		}
	}

	if v := q.Get("startDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return models.BookmarkFilter{}, err
		}
		filter.StartDate = &t
	}

	if v := q.Get("endDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return models.BookmarkFilter{}, err
		}
		filter.EndDate = &t
	}

	return filter, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

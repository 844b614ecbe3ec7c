// Package http provides HTTP routing and middleware configuration
// for the bookmark service.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/linkman/linkman/internal/middleware"
)

// NewRouter constructs the HTTP handler serving the bookmark API.
// Every route sits behind bearer authentication.
//
// Routes:
//
//	POST   /bookmarks                      → handler.Create
//	GET    /bookmarks                      → handler.List
//	DELETE /bookmarks                      → handler.Delete
//	GET    /bookmarks/sync                 → handler.Sync
//	POST   /admin/bookmarks/{id}/reprocess → handler.Reprocess
//
// Middleware chain (applied in order):
//  1. RequestID / Recoverer (chi)
//  2. RequestLogger(logger) logs each request
//  3. CORS, permissive: browser clients call this API directly
//  4. BearerAuth resolves the bearer secret to a key identity
func NewRouter(
	handler *BookmarkHandler,
	resolver middleware.KeyResolver,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(middleware.BearerAuth(resolver, logger))

	r.Route("/bookmarks", func(r chi.Router) {
		r.Post("/", handler.Create)
		r.Get("/", handler.List)
		r.Delete("/", handler.Delete)
		r.Get("/sync", handler.Sync)
	})

	r.Post("/admin/bookmarks/{id}/reprocess", handler.Reprocess)

	return r
}

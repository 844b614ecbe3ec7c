// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linkman/linkman/internal/repository"
)

type ctxKey string

const apiKeyIDKey ctxKey = "api_key_id"

// KeyResolver resolves a presented bearer secret to an API key identity.
type KeyResolver interface {
	ResolveKey(ctx context.Context, key string) (uuid.UUID, error)
}

// BearerAuth enforces bearer-token authentication on every request.
//
// The Authorization header must carry a "Bearer " prefix; the remainder is
// resolved against the key store. An unknown secret is a 401, a store
// failure a 500. On success the key's identity is stored in the request
// context for handlers downstream.
func BearerAuth(resolver KeyResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			key, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || key == "" {
				logger.Info("missing or malformed Authorization header")
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			id, err := resolver.ResolveKey(r.Context(), key)
			if errors.Is(err, repository.ErrNotFound) {
				logger.Info("invalid API key")
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if err != nil {
				logger.Error("database error during auth", zap.Error(err))
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAPIKeyID(r.Context(), id)))
		})
	}
}

// WithAPIKeyID returns a context carrying the authenticated API key identity.
func WithAPIKeyID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, apiKeyIDKey, id)
}

// GetAPIKeyIDFromContext extracts the authenticated API key identity from
// the request context.
func GetAPIKeyIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(apiKeyIDKey).(uuid.UUID)
	return id, ok
}

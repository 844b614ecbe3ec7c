package http_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linkman/linkman/internal/models"
	"github.com/linkman/linkman/internal/repository"
	handler "github.com/linkman/linkman/internal/server/handler/http"
)

// fakeKeyResolver maps one secret to one identity.
type fakeKeyResolver struct {
	secret string
	id     uuid.UUID
}

func (f *fakeKeyResolver) ResolveKey(ctx context.Context, key string) (uuid.UUID, error) {
	if key == f.secret {
		return f.id, nil
	}
	return uuid.Nil, repository.ErrNotFound
}

func newTestRouter(svc *fakeBookmarkService, resolver *fakeKeyResolver) http.Handler {
	h := &handler.BookmarkHandler{Service: svc, Logger: zap.NewNop()}
	return handler.NewRouter(h, resolver, zap.NewNop())
}

func TestRouter_UnauthenticatedCreateWritesNothing(t *testing.T) {
	svc := &fakeBookmarkService{}
	router := newTestRouter(svc, &fakeKeyResolver{secret: "k1", id: uuid.New()})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/bookmarks",
		bytes.NewBufferString(`{"url":"https://example.com"}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", rec.Code)
	}
	if svc.createCalled {
		t.Error("no row may be written without a credential")
	}
}

func TestRouter_AuthenticatedRoutes(t *testing.T) {
	owner := uuid.New()
	resolver := &fakeKeyResolver{secret: "k1", id: owner}

	tests := []struct {
		name         string
		method       string
		target       string
		body         string
		expectedCode int
	}{
		{"create", "POST", "/bookmarks", `{"url":"https://example.com"}`, http.StatusCreated},
		{"list", "GET", "/bookmarks?q=x", "", http.StatusOK},
		{"sync", "GET", "/bookmarks/sync", "", http.StatusOK},
		{"delete", "DELETE", "/bookmarks?url=https://example.com", "", http.StatusNoContent},
		{"reprocess", "POST", "/admin/bookmarks/" + uuid.NewString() + "/reprocess", "", http.StatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeBookmarkService{listResult: []models.Bookmark{}}
			router := newTestRouter(svc, resolver)

			var body *bytes.Buffer
			if tt.body != "" {
				body = bytes.NewBufferString(tt.body)
			} else {
				body = &bytes.Buffer{}
			}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.target, body)
			req.Header.Set("Authorization", "Bearer k1")
			router.ServeHTTP(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("status = %d; want %d", rec.Code, tt.expectedCode)
			}
			if svc.receivedOwner != owner {
				t.Errorf("owner = %s; want %s", svc.receivedOwner, owner)
			}
		})
	}
}

func TestRouter_WrongSecretIsRejected(t *testing.T) {
	svc := &fakeBookmarkService{}
	router := newTestRouter(svc, &fakeKeyResolver{secret: "k1", id: uuid.New()})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/bookmarks/sync", nil)
	req.Header.Set("Authorization", "Bearer other-key")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", rec.Code)
	}
}

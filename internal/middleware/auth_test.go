package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linkman/linkman/internal/repository"
)

// fakeResolver implements KeyResolver for testing.
type fakeResolver struct {
	id          uuid.UUID
	err         error
	receivedKey string
}

func (f *fakeResolver) ResolveKey(ctx context.Context, key string) (uuid.UUID, error) {
	f.receivedKey = key
	return f.id, f.err
}

// dummyHandler records if it was called and the context it received.
type dummyHandler struct {
	called bool
	ctx    context.Context
}

func (d *dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.called = true
	d.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	dummy := &dummyHandler{}
	h := BearerAuth(&fakeResolver{}, zap.NewNop())(dummy)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/bookmarks", nil)
	h.ServeHTTP(rec, req)

	if dummy.called {
		t.Error("did not expect next handler to be called without a header")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestBearerAuth_WrongPrefix(t *testing.T) {
	dummy := &dummyHandler{}
	h := BearerAuth(&fakeResolver{}, zap.NewNop())(dummy)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/bookmarks", nil)
	req.Header.Set("Authorization", "Basic abc123")
	h.ServeHTTP(rec, req)

	if dummy.called {
		t.Error("did not expect next handler to be called with a non-bearer header")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestBearerAuth_UnknownKey(t *testing.T) {
	dummy := &dummyHandler{}
	resolver := &fakeResolver{err: repository.ErrNotFound}
	h := BearerAuth(resolver, zap.NewNop())(dummy)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/bookmarks", nil)
	req.Header.Set("Authorization", "Bearer unknown-secret")
	h.ServeHTTP(rec, req)

	if dummy.called {
		t.Error("did not expect next handler to be called with an unknown key")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if resolver.receivedKey != "unknown-secret" {
		t.Errorf("resolved key = %q; want %q", resolver.receivedKey, "unknown-secret")
	}
}

func TestBearerAuth_StoreFailure(t *testing.T) {
	dummy := &dummyHandler{}
	h := BearerAuth(&fakeResolver{err: errors.New("connection refused")}, zap.NewNop())(dummy)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/bookmarks", nil)
	req.Header.Set("Authorization", "Bearer some-secret")
	h.ServeHTTP(rec, req)

	if dummy.called {
		t.Error("did not expect next handler to be called on store failure")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestBearerAuth_Success(t *testing.T) {
	dummy := &dummyHandler{}
	want := uuid.New()
	h := BearerAuth(&fakeResolver{id: want}, zap.NewNop())(dummy)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/bookmarks", nil)
	req.Header.Set("Authorization", "Bearer valid-secret")
	h.ServeHTTP(rec, req)

	if !dummy.called {
		t.Fatal("expected next handler to be called")
	}
	got, ok := GetAPIKeyIDFromContext(dummy.ctx)
	if !ok {
		t.Fatal("expected api key id in context")
	}
	if got != want {
		t.Errorf("id = %s; want %s", got, want)
	}
}

func TestGetAPIKeyIDFromContext_Missing(t *testing.T) {
	if _, ok := GetAPIKeyIDFromContext(context.Background()); ok {
		t.Error("expected ok=false on empty context")
	}
}

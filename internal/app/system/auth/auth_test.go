package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/teamspace/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		logger,
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

// signIn runs a SignIn through a recorder and copies the resulting
// cookie onto a fresh request.
func signIn(t *testing.T, sm *auth.SessionManager, u auth.SessionUser, target string) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", nil)
	if err := sm.SignIn(rec, req, u); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	next := httptest.NewRequest("GET", target, nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	return next
}

func TestRequireSignedIn_NoUser_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("protected content"))
	}))

	req := httptest.NewRequest("GET", "/api/workspaces", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "authentication required") {
		t.Errorf("expected error body, got %q", rec.Body.String())
	}
}

func TestLoadSessionUser_SignedIn_InjectsUser(t *testing.T) {
	sm := newTestSessionManager(t)

	user := auth.SessionUser{ID: "abc123", Name: "Ada", Email: "ada@example.com", Type: "user"}
	req := signIn(t, sm, user, "/api/workspaces")

	var got *auth.SessionUser
	handler := sm.LoadSessionUser(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got == nil {
		t.Fatal("expected user in context")
	}
	if got.ID != "abc123" || got.Email != "ada@example.com" || got.Type != "user" {
		t.Errorf("unexpected session user: %+v", got)
	}
}

func TestLoadSessionUser_SignedIn_PassesRequireSignedIn(t *testing.T) {
	sm := newTestSessionManager(t)

	req := signIn(t, sm, auth.SessionUser{ID: "abc123", Type: "user"}, "/api/workspaces")

	handler := sm.LoadSessionUser(nil)(sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestSignOut_ClearsSession(t *testing.T) {
	sm := newTestSessionManager(t)

	req := signIn(t, sm, auth.SessionUser{ID: "abc123", Type: "user"}, "/logout")
	rec := httptest.NewRecorder()
	if err := sm.SignOut(rec, req); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	after := httptest.NewRequest("GET", "/api/workspaces", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			after.AddCookie(c)
		}
	}

	handler := sm.LoadSessionUser(nil)(sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	out := httptest.NewRecorder()
	handler.ServeHTTP(out, after)

	if out.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d after sign-out, got %d", http.StatusUnauthorized, out.Code)
	}
}

func TestRequireType_WrongType_Returns403(t *testing.T) {
	sm := newTestSessionManager(t)

	req := signIn(t, sm, auth.SessionUser{ID: "bot1", Type: "bot"}, "/api/workspaces")

	handler := sm.LoadSessionUser(nil)(sm.RequireType("user", "organization")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

type staleFetcher struct{}

func (staleFetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	return nil
}

func TestLoadSessionUser_FetcherRejects_TreatedAsSignedOut(t *testing.T) {
	sm := newTestSessionManager(t)

	req := signIn(t, sm, auth.SessionUser{ID: "gone", Type: "user"}, "/api/workspaces")

	handler := sm.LoadSessionUser(staleFetcher{})(sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d for stale account, got %d", http.StatusUnauthorized, rec.Code)
	}
}

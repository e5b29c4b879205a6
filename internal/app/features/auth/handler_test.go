// internal/app/features/auth/handler_test.go
package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/teamspace/internal/app/cells"
	sysauth "github.com/dalemusser/teamspace/internal/app/system/auth"
	"github.com/dalemusser/teamspace/internal/testutil"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, *testutil.FakeIdentityProvider, *cells.Engine) {
	t.Helper()

	provider := testutil.NewFakeIdentityProvider()
	engine := cells.New(provider, testutil.NewFakeRepos().Bundle(), zap.NewNop())
	t.Cleanup(engine.Close)

	sm, err := sysauth.NewSessionManager(
		"test-session-key-must-be-32-chars-long", "teamspace_test", "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}

	h := NewHandler(engine, nil, nil, sm, nil, zap.NewNop())
	return h, provider, engine
}

func seedIdentity(provider *testutil.FakeIdentityProvider, email string) models.Identity {
	ident := models.Identity{
		ID:          primitive.NewObjectID(),
		Type:        models.IdentityUser,
		Email:       email,
		DisplayName: "Test User",
		Status:      "active",
	}
	provider.Identities[email] = ident
	return ident
}

func TestHandleLogin_Success(t *testing.T) {
	h, provider, engine := newTestHandler(t)
	seedIdentity(provider, "pat@example.com")

	req := testutil.NewJSONRequest(http.MethodPost, "/login",
		`{"email":"pat@example.com","password":"password"}`)
	rec := testutil.NewRecorder()

	h.HandleLogin(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "pat@example.com")

	if got := engine.Identity.State().Status; got != cells.AuthAuthenticated {
		t.Fatalf("expected authenticated state, got %q", got)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Fatal("expected a session cookie to be set")
	}
}

func TestHandleLogin_BadPassword(t *testing.T) {
	h, provider, engine := newTestHandler(t)
	seedIdentity(provider, "pat@example.com")

	req := testutil.NewJSONRequest(http.MethodPost, "/login",
		`{"email":"pat@example.com","password":"wrong"}`)
	rec := testutil.NewRecorder()

	h.HandleLogin(rec, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
	if got := engine.Identity.State().Status; got != cells.AuthUnauthenticated {
		t.Fatalf("expected unauthenticated state, got %q", got)
	}
}

func TestHandleLogin_MalformedBody(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := testutil.NewRequest(http.MethodPost, "/login")
	rec := testutil.NewRecorder()

	h.HandleLogin(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleRegister_CreatesAndSignsIn(t *testing.T) {
	h, provider, engine := newTestHandler(t)

	req := testutil.NewJSONRequest(http.MethodPost, "/register",
		`{"email":"new@example.com","password":"new-password","display_name":"New User"}`)
	rec := testutil.NewRecorder()

	h.HandleRegister(rec, req)

	rec.AssertStatus(t, http.StatusCreated)
	if provider.Calls.Register != 1 {
		t.Fatalf("expected 1 register call, got %d", provider.Calls.Register)
	}
	st := engine.Identity.State()
	if st.Status != cells.AuthAuthenticated || st.Identity == nil || st.Identity.Email != "new@example.com" {
		t.Fatalf("expected authenticated new identity, got %+v", st)
	}
}

func TestHandleRegister_DuplicateEmail(t *testing.T) {
	h, provider, _ := newTestHandler(t)
	seedIdentity(provider, "taken@example.com")

	req := testutil.NewJSONRequest(http.MethodPost, "/register",
		`{"email":"taken@example.com","password":"long-enough-pw","display_name":"X"}`)
	rec := testutil.NewRecorder()

	h.HandleRegister(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleLogout_ClearsEngineState(t *testing.T) {
	h, provider, engine := newTestHandler(t)
	seedIdentity(provider, "pat@example.com")

	login := testutil.NewJSONRequest(http.MethodPost, "/login",
		`{"email":"pat@example.com","password":"password"}`)
	loginRec := testutil.NewRecorder()
	h.HandleLogin(loginRec, login)
	loginRec.AssertStatus(t, http.StatusOK)

	req := testutil.NewRequest(http.MethodPost, "/logout")
	rec := testutil.NewRecorder()
	h.HandleLogout(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	if got := engine.Identity.State().Status; got != cells.AuthUnauthenticated {
		t.Fatalf("expected unauthenticated state after logout, got %q", got)
	}
	if provider.Calls.Logout != 1 {
		t.Fatalf("expected 1 logout call, got %d", provider.Calls.Logout)
	}
}

func TestHandleResetPassword_AlwaysOK(t *testing.T) {
	h, provider, _ := newTestHandler(t)

	req := testutil.NewJSONRequest(http.MethodPost, "/reset-password",
		`{"email":"nobody@example.com"}`)
	rec := testutil.NewRecorder()

	h.HandleResetPassword(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	if provider.Calls.Reset != 1 {
		t.Fatalf("expected 1 reset call, got %d", provider.Calls.Reset)
	}
}

func TestServeGoogleLogin_NotConfigured(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := testutil.NewRequest(http.MethodGet, "/auth/google")
	rec := testutil.NewRecorder()

	h.ServeGoogleLogin(rec, req)

	rec.AssertStatus(t, http.StatusNotImplemented)
}

func TestServeCurrent_ReflectsState(t *testing.T) {
	h, provider, _ := newTestHandler(t)
	ident := seedIdentity(provider, "pat@example.com")
	provider.EmitSession(&ident)

	req := testutil.NewRequest(http.MethodGet, "/me")
	rec := testutil.NewRecorder()

	h.ServeCurrent(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "pat@example.com")
	rec.AssertContains(t, string(cells.AuthAuthenticated))
}

// internal/app/features/notifications/handler_test.go
package notifications

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/teamspace/internal/app/cells"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"github.com/dalemusser/teamspace/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, *testutil.FakeIdentityProvider, *testutil.FakeRepos, *cells.Engine) {
	t.Helper()

	provider := testutil.NewFakeIdentityProvider()
	repos := testutil.NewFakeRepos()
	engine := cells.New(provider, repos.Bundle(), zap.NewNop())
	t.Cleanup(engine.Close)

	return NewHandler(engine, zap.NewNop()), provider, repos, engine
}

func waitFor(t *testing.T, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func signIn(t *testing.T, provider *testutil.FakeIdentityProvider) models.Identity {
	t.Helper()
	ident := models.Identity{
		ID:          primitive.NewObjectID(),
		Type:        models.IdentityUser,
		Email:       "pat@example.com",
		DisplayName: "Pat",
		Status:      "active",
	}
	provider.EmitSession(&ident)
	return ident
}

func TestServeList_UnreadCount(t *testing.T) {
	h, provider, repos, engine := newTestHandler(t)

	repos.Notifications.Notifications = []models.Notification{
		{ID: primitive.NewObjectID(), Title: "One", Read: false},
		{ID: primitive.NewObjectID(), Title: "Two", Read: true},
		{ID: primitive.NewObjectID(), Title: "Three", Read: false},
	}
	signIn(t, provider)
	waitFor(t, func() bool { return len(engine.Notifications.State().Items) == 3 })

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewRequest(http.MethodGet, "/"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"unread_count":2`)
}

func TestHandleMarkRead_SingleNotification(t *testing.T) {
	h, provider, repos, engine := newTestHandler(t)

	target := models.Notification{ID: primitive.NewObjectID(), Title: "One", Read: false}
	repos.Notifications.Notifications = []models.Notification{target}
	signIn(t, provider)
	waitFor(t, func() bool { return len(engine.Notifications.State().Items) == 1 })

	req := testutil.WithChiURLParam(testutil.NewRequest(http.MethodPost, "/x/read"), "id", target.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleMarkRead(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	if engine.Notifications.UnreadCount() != 0 {
		t.Fatalf("expected 0 unread, got %d", engine.Notifications.UnreadCount())
	}
	if repos.Notifications.Calls.Mark != 1 {
		t.Fatalf("expected 1 mark call, got %d", repos.Notifications.Calls.Mark)
	}
}

func TestHandleMarkRead_BadID(t *testing.T) {
	h, provider, _, _ := newTestHandler(t)
	signIn(t, provider)

	req := testutil.WithChiURLParam(testutil.NewRequest(http.MethodPost, "/x/read"), "id", "nope")
	rec := testutil.NewRecorder()
	h.HandleMarkRead(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleMarkAllRead(t *testing.T) {
	h, provider, repos, engine := newTestHandler(t)

	repos.Notifications.Notifications = []models.Notification{
		{ID: primitive.NewObjectID(), Read: false},
		{ID: primitive.NewObjectID(), Read: false},
	}
	signIn(t, provider)
	waitFor(t, func() bool { return len(engine.Notifications.State().Items) == 2 })

	rec := testutil.NewRecorder()
	h.HandleMarkAllRead(rec, testutil.NewRequest(http.MethodPost, "/read-all"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"unread_count":0`)
	if repos.Notifications.Calls.MarkAll != 1 {
		t.Fatalf("expected 1 mark-all call, got %d", repos.Notifications.Calls.MarkAll)
	}
}

func TestHandleUpdateSettings_Persists(t *testing.T) {
	h, provider, repos, engine := newTestHandler(t)
	ident := signIn(t, provider)
	waitFor(t, func() bool { return engine.Notifications.State().Settings != nil })

	rec := testutil.NewRecorder()
	h.HandleUpdateSettings(rec, testutil.NewJSONRequest(http.MethodPut, "/settings",
		`{"email_enabled":false,"in_app_enabled":true,"digest_enabled":true}`))

	rec.AssertStatus(t, http.StatusOK)
	if repos.Notifications.Calls.UpdateSettings != 1 {
		t.Fatalf("expected 1 settings update, got %d", repos.Notifications.Calls.UpdateSettings)
	}
	got := engine.Notifications.State().Settings
	if got == nil || got.EmailEnabled || !got.DigestEnabled || got.UserID != ident.ID {
		t.Fatalf("unexpected settings: %+v", got)
	}
}

func TestSignOut_ResetsNotifications(t *testing.T) {
	_, provider, repos, engine := newTestHandler(t)

	repos.Notifications.Notifications = []models.Notification{{ID: primitive.NewObjectID()}}
	signIn(t, provider)
	waitFor(t, func() bool { return len(engine.Notifications.State().Items) == 1 })

	provider.EmitSession(nil)
	waitFor(t, func() bool { return len(engine.Notifications.State().Items) == 0 })
}

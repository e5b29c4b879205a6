// internal/app/features/documents/handler_test.go
package documents

import (
	"fmt"
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

func openWorkspace(t *testing.T, provider *testutil.FakeIdentityProvider, repos *testutil.FakeRepos, engine *cells.Engine) (models.Identity, models.Workspace) {
	t.Helper()

	ident := models.Identity{
		ID:          primitive.NewObjectID(),
		Type:        models.IdentityUser,
		Email:       "pat@example.com",
		DisplayName: "Pat",
		Status:      "active",
	}
	ws := models.NewWorkspace("Plans", models.UserOwner{UserID: ident.ID})
	ws.ID = primitive.NewObjectID()
	repos.Workspaces.Workspaces = []models.Workspace{ws}

	provider.EmitSession(&ident)
	engine.Context.SwitchWorkspace(&ws.ID)
	waitFor(t, func() bool { return engine.Workspaces.Current() != nil })
	return ident, ws
}

func TestServeList_RequiresActiveWorkspace(t *testing.T) {
	h, provider, _, _ := newTestHandler(t)
	ident := models.Identity{ID: primitive.NewObjectID(), Type: models.IdentityUser, Email: "x@example.com", Status: "active"}
	provider.EmitSession(&ident)

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewRequest(http.MethodGet, "/"))
	rec.AssertStatus(t, http.StatusConflict)
}

func TestHandleCreate_StampsWorkspaceAndAuthor(t *testing.T) {
	h, provider, repos, engine := newTestHandler(t)
	ident, ws := openWorkspace(t, provider, repos, engine)

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewJSONRequest(http.MethodPost, "/",
		`{"title":"Kickoff Notes","body":"Agenda"}`))

	rec.AssertStatus(t, http.StatusCreated)
	if repos.Documents.Calls.Create != 1 {
		t.Fatalf("expected 1 create call, got %d", repos.Documents.Calls.Create)
	}

	waitFor(t, func() bool { return len(engine.Documents.State().Items) == 1 })
	got := engine.Documents.State().Items[0]
	if got.WorkspaceID != ws.ID || got.CreatedBy != ident.ID {
		t.Fatalf("unexpected created document: %+v", got)
	}
}

func TestHandleCreate_EmptyTitle(t *testing.T) {
	h, provider, repos, engine := newTestHandler(t)
	openWorkspace(t, provider, repos, engine)

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewJSONRequest(http.MethodPost, "/", `{"title":"","body":"x"}`))
	rec.AssertStatus(t, http.StatusUnprocessableEntity)
	if repos.Documents.Calls.Create != 0 {
		t.Fatalf("expected no create call, got %d", repos.Documents.Calls.Create)
	}
}

func TestHandleDelete_RemovesFromList(t *testing.T) {
	h, provider, repos, engine := newTestHandler(t)

	doc := models.Document{ID: primitive.NewObjectID(), Title: "Old"}
	repos.Documents.Documents = []models.Document{doc}

	openWorkspace(t, provider, repos, engine)
	waitFor(t, func() bool { return len(engine.Documents.State().Items) == 1 })

	req := testutil.WithChiURLParam(
		testutil.NewRequest(http.MethodDelete, fmt.Sprintf("/%s", doc.ID.Hex())), "id", doc.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleDelete(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	if len(engine.Documents.State().Items) != 0 {
		t.Fatal("expected document removed from state")
	}
}

func TestHandleDelete_UnknownID(t *testing.T) {
	h, provider, repos, engine := newTestHandler(t)
	openWorkspace(t, provider, repos, engine)
	repos.Documents.DeleteErr = cells.ErrNotFound

	req := testutil.WithChiURLParam(
		testutil.NewRequest(http.MethodDelete, "/x"), "id", primitive.NewObjectID().Hex())
	rec := testutil.NewRecorder()
	h.HandleDelete(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)
}

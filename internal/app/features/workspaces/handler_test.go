// internal/app/features/workspaces/handler_test.go
package workspaces

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

func TestServeList_UserScope(t *testing.T) {
	h, provider, repos, engine := newTestHandler(t)

	ws := models.NewWorkspace("Plans", models.UserOwner{UserID: primitive.NewObjectID()})
	ws.ID = primitive.NewObjectID()
	repos.Workspaces.Workspaces = []models.Workspace{ws}

	signIn(t, provider)
	waitFor(t, func() bool { return len(engine.Workspaces.State().Workspaces) == 1 })

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewRequest(http.MethodGet, "/"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertJSON(t)
	rec.AssertContains(t, `"name":"Plans"`)
	rec.AssertContains(t, `"owner_type":"user"`)
}

func TestHandleCreate_UserLensOwnsWorkspace(t *testing.T) {
	h, provider, repos, engine := newTestHandler(t)
	ident := signIn(t, provider)
	waitFor(t, func() bool { return engine.Context.State().Current != nil })

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewJSONRequest(http.MethodPost, "/", `{"name":"Roadmap"}`))

	rec.AssertStatus(t, http.StatusCreated)
	if repos.Workspaces.Calls.Create != 1 {
		t.Fatalf("expected 1 create call, got %d", repos.Workspaces.Calls.Create)
	}
	created := engine.Workspaces.State().Workspaces
	if len(created) != 1 || created[0].OwnerType != models.OwnerUser || created[0].OwnerID != ident.ID {
		t.Fatalf("expected user-owned workspace in state, got %+v", created)
	}
}

func TestHandleCreate_TeamLensRejectedWithoutRepoCall(t *testing.T) {
	h, provider, repos, engine := newTestHandler(t)

	team := models.Team{ID: primitive.NewObjectID(), OrganizationID: primitive.NewObjectID(), Name: "Platform"}
	repos.Teams.Teams = []models.Team{team}

	signIn(t, provider)
	waitFor(t, func() bool { return engine.Context.CanSwitchContext() })

	err := engine.Context.SwitchContext(models.TeamContext{TeamID: team.ID, OrganizationID: team.OrganizationID, Name: team.Name})
	if err != nil {
		t.Fatalf("SwitchContext: %v", err)
	}

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewJSONRequest(http.MethodPost, "/", `{"name":"Nope"}`))

	rec.AssertStatus(t, http.StatusUnprocessableEntity)
	if repos.Workspaces.Calls.Create != 0 {
		t.Fatalf("expected no create call, got %d", repos.Workspaces.Calls.Create)
	}
}

func TestHandleCreate_EmptyName(t *testing.T) {
	h, provider, _, engine := newTestHandler(t)
	signIn(t, provider)
	waitFor(t, func() bool { return engine.Context.State().Current != nil })

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewJSONRequest(http.MethodPost, "/", `{"name":""}`))
	rec.AssertStatus(t, http.StatusUnprocessableEntity)
}

func TestHandleToggleFavorite_FlipsBothWays(t *testing.T) {
	h, provider, _, engine := newTestHandler(t)
	signIn(t, provider)

	id := primitive.NewObjectID()
	target := fmt.Sprintf("/%s/favorite", id.Hex())

	req := testutil.WithChiURLParam(testutil.NewRequest(http.MethodPost, target), "id", id.Hex())
	rec := testutil.NewRecorder()
	h.HandleToggleFavorite(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"favorite":true`)

	req = testutil.WithChiURLParam(testutil.NewRequest(http.MethodPost, target), "id", id.Hex())
	rec = testutil.NewRecorder()
	h.HandleToggleFavorite(rec, req)
	rec.AssertContains(t, `"favorite":false`)

	if len(engine.Workspaces.State().Favorites) != 0 {
		t.Fatal("expected favorites to be empty after double toggle")
	}
}

func TestHandleTrackAccess_MostRecentFirst(t *testing.T) {
	h, provider, _, engine := newTestHandler(t)
	signIn(t, provider)

	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	for _, id := range []primitive.ObjectID{first, second, first} {
		req := testutil.WithChiURLParam(testutil.NewRequest(http.MethodPost, "/x/track"), "id", id.Hex())
		rec := testutil.NewRecorder()
		h.HandleTrackAccess(rec, req)
		rec.AssertStatus(t, http.StatusOK)
	}

	recent := engine.Workspaces.State().Recent
	if len(recent) != 2 || recent[0] != first || recent[1] != second {
		t.Fatalf("expected deduplicated most-recent-first order, got %v", recent)
	}
}

func TestServeCurrent_NoActiveWorkspace(t *testing.T) {
	h, provider, _, _ := newTestHandler(t)
	signIn(t, provider)

	rec := testutil.NewRecorder()
	h.ServeCurrent(rec, testutil.NewRequest(http.MethodGet, "/current"))
	rec.AssertStatus(t, http.StatusNotFound)
}

package cells_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/teamspace/internal/app/cells"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"github.com/dalemusser/teamspace/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T) (*cells.Engine, *testutil.FakeIdentityProvider, *testutil.FakeRepos) {
	t.Helper()

	provider := testutil.NewFakeIdentityProvider()
	repos := testutil.NewFakeRepos()
	engine := cells.New(provider, repos.Bundle(), zap.NewNop())
	t.Cleanup(engine.Close)

	return engine, provider, repos
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

// waitFor polls until check passes; loader effects run on background
// goroutines.
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

// openWorkspace signs in, seeds a workspace, and makes it active.
func openWorkspace(t *testing.T, engine *cells.Engine, provider *testutil.FakeIdentityProvider, repos *testutil.FakeRepos) models.Workspace {
	t.Helper()

	ident := signIn(t, provider)
	ws := models.NewWorkspace("Test Space", models.UserOwner{UserID: ident.ID})
	ws.ID = primitive.NewObjectID()
	repos.Workspaces.Workspaces = append(repos.Workspaces.Workspaces, ws)

	engine.Context.SwitchWorkspace(&ws.ID)
	waitFor(t, func() bool { return engine.Workspaces.Current() != nil })
	return ws
}

func TestEngine_SignInCreatesUserLens(t *testing.T) {
	engine, provider, repos := newTestEngine(t)

	repos.Organizations.Orgs = []models.Organization{
		{ID: primitive.NewObjectID(), Name: "Acme"},
	}

	ident := signIn(t, provider)

	cur := engine.Context.State().Current
	user, ok := cur.(models.UserContext)
	if !ok {
		t.Fatalf("expected UserContext, got %T", cur)
	}
	if user.UserID != ident.ID {
		t.Error("user lens must point at the signed-in identity")
	}

	waitFor(t, func() bool { return !engine.Context.State().Loading })
	if got := len(engine.Context.State().Available.Organizations); got != 1 {
		t.Errorf("expected 1 available organization, got %d", got)
	}
}

func TestEngine_LogoutCascadesThroughEveryCell(t *testing.T) {
	engine, provider, repos := newTestEngine(t)

	repos.Modules.Modules = []models.Module{{ID: primitive.NewObjectID(), Kind: "documents", Name: "Docs"}}
	repos.Notifications.Notifications = []models.Notification{{ID: primitive.NewObjectID()}}

	ws := openWorkspace(t, engine, provider, repos)
	waitFor(t, func() bool { return len(engine.Modules.State().Items) == 1 })
	waitFor(t, func() bool { return len(engine.Notifications.State().Items) == 1 })

	if err := engine.Identity.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if engine.Identity.State().Status != cells.AuthUnauthenticated {
		t.Error("identity must be unauthenticated after logout")
	}
	if engine.Context.State().Current != nil {
		t.Error("context lens must clear on logout")
	}
	if engine.Context.CurrentWorkspaceID() != nil {
		t.Error("active workspace must clear on logout")
	}
	if engine.Workspaces.Current() != nil {
		t.Errorf("workspace detail must clear on logout (was %s)", ws.Name)
	}
	waitFor(t, func() bool { return len(engine.Modules.State().Items) == 0 })
	waitFor(t, func() bool { return len(engine.Notifications.State().Items) == 0 })
}

func TestEngine_SessionEndFromProviderClearsState(t *testing.T) {
	engine, provider, _ := newTestEngine(t)

	signIn(t, provider)
	waitFor(t, func() bool { return !engine.Context.State().Loading })

	// External expiry: the provider pushes a nil session.
	provider.EmitSession(nil)

	if engine.Identity.State().Status != cells.AuthUnauthenticated {
		t.Error("identity must be unauthenticated after session end")
	}
	if engine.Context.State().Current != nil {
		t.Error("context must clear when the session ends externally")
	}
}

func TestEngine_WorkspaceUnloadResetsScopedCells(t *testing.T) {
	engine, provider, repos := newTestEngine(t)

	repos.Modules.Modules = []models.Module{{ID: primitive.NewObjectID(), Kind: "tasks", Name: "Tasks"}}
	repos.Members.Members = []models.Member{{ID: primitive.NewObjectID(), UserID: primitive.NewObjectID(), Role: "viewer"}}

	openWorkspace(t, engine, provider, repos)
	waitFor(t, func() bool { return len(engine.Modules.State().Items) == 1 })
	waitFor(t, func() bool { return len(engine.Members.State().Items) == 1 })

	engine.Context.SwitchWorkspace(nil)

	if engine.Workspaces.Current() != nil {
		t.Error("workspace detail must clear on unload")
	}
	if got := len(engine.Modules.State().Items); got != 0 {
		t.Errorf("modules must reset on unload, got %d items", got)
	}
	if got := len(engine.Members.State().Items); got != 0 {
		t.Errorf("members must reset on unload, got %d items", got)
	}
}

func TestEngine_NotificationsSurviveWorkspaceSwitch(t *testing.T) {
	engine, provider, repos := newTestEngine(t)

	repos.Notifications.Notifications = []models.Notification{{ID: primitive.NewObjectID()}}

	openWorkspace(t, engine, provider, repos)
	waitFor(t, func() bool { return len(engine.Notifications.State().Items) == 1 })

	engine.Context.SwitchWorkspace(nil)

	if got := len(engine.Notifications.State().Items); got != 1 {
		t.Errorf("notifications are identity-scoped and must survive workspace unload, got %d", got)
	}
}

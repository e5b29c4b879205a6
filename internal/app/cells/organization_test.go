package cells_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/teamspace/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestOrganizations_RosterLoadsOnSignIn(t *testing.T) {
	engine, provider, repos := newTestEngine(t)
	repos.Organizations.Orgs = []models.Organization{
		{ID: primitive.NewObjectID(), Name: "Acme"},
		{ID: primitive.NewObjectID(), Name: "Globex"},
	}

	signIn(t, provider)
	waitFor(t, func() bool { return len(engine.Organizations.State().Items) == 2 })
}

func TestOrganizations_LoadFailureSurfacesError(t *testing.T) {
	engine, provider, repos := newTestEngine(t)
	repos.Organizations.Err = errors.New("db down")

	signIn(t, provider)
	waitFor(t, func() bool { return engine.Organizations.State().Error != "" })
	if len(engine.Organizations.State().Items) != 0 {
		t.Error("a failed load must not publish partial items")
	}
}

func TestOrganizations_SignOutResetsRosterAndScope(t *testing.T) {
	engine, provider, repos := newTestEngine(t)
	orgID := primitive.NewObjectID()
	repos.Organizations.Orgs = []models.Organization{{ID: orgID, Name: "Acme"}}

	signIn(t, provider)
	waitFor(t, func() bool { return len(engine.Organizations.State().Items) == 1 })

	if err := engine.Context.SwitchContext(models.OrganizationContext{OrganizationID: orgID, Name: "Acme"}); err != nil {
		t.Fatalf("SwitchContext failed: %v", err)
	}
	if scope := engine.Organizations.CurrentOrganizationID(); scope == nil || *scope != orgID {
		t.Fatal("organization lens must set the organization scope")
	}

	provider.EmitSession(nil)
	if len(engine.Organizations.State().Items) != 0 {
		t.Error("sign-out must clear the roster")
	}
	if engine.Organizations.CurrentOrganizationID() != nil {
		t.Error("sign-out must clear the organization scope")
	}
}

func TestOrganizations_ScopeDerivation(t *testing.T) {
	engine, provider, _ := newTestEngine(t)
	signIn(t, provider)

	// Plain user lens: no organization scope.
	if engine.Organizations.CurrentOrganizationID() != nil {
		t.Fatal("user lens must have no organization scope")
	}

	orgID := primitive.NewObjectID()
	if err := engine.Context.SwitchContext(models.TeamContext{
		TeamID:         primitive.NewObjectID(),
		OrganizationID: orgID,
		Name:           "Core",
	}); err != nil {
		t.Fatalf("SwitchContext failed: %v", err)
	}
	if scope := engine.Organizations.CurrentOrganizationID(); scope == nil || *scope != orgID {
		t.Error("a team lens must resolve to its parent organization")
	}

	engine.Context.ResetContext()
	if engine.Organizations.CurrentOrganizationID() != nil {
		t.Error("resetting to the user lens must clear the scope")
	}
}

func TestTeams_LoadForOrganizationScope(t *testing.T) {
	engine, provider, repos := newTestEngine(t)
	orgID := primitive.NewObjectID()
	repos.Teams.Teams = []models.Team{
		{ID: primitive.NewObjectID(), OrganizationID: orgID, Name: "Core"},
		{ID: primitive.NewObjectID(), OrganizationID: orgID, Name: "Infra"},
	}

	signIn(t, provider)
	if err := engine.Context.SwitchContext(models.OrganizationContext{OrganizationID: orgID, Name: "Acme"}); err != nil {
		t.Fatalf("SwitchContext failed: %v", err)
	}
	waitFor(t, func() bool { return len(engine.Teams.State().Items) == 2 })
}

func TestTeams_ResetWhenScopeClears(t *testing.T) {
	engine, provider, repos := newTestEngine(t)
	orgID := primitive.NewObjectID()
	repos.Teams.Teams = []models.Team{
		{ID: primitive.NewObjectID(), OrganizationID: orgID, Name: "Core"},
	}

	signIn(t, provider)
	if err := engine.Context.SwitchContext(models.OrganizationContext{OrganizationID: orgID, Name: "Acme"}); err != nil {
		t.Fatalf("SwitchContext failed: %v", err)
	}
	waitFor(t, func() bool { return len(engine.Teams.State().Items) == 1 })

	engine.Context.ResetContext()
	if got := len(engine.Teams.State().Items); got != 0 {
		t.Errorf("clearing the organization scope must empty the team roster, got %d", got)
	}
}

func TestTeams_LoadFailureSurfacesError(t *testing.T) {
	engine, provider, repos := newTestEngine(t)
	repos.Teams.Err = errors.New("db down")

	signIn(t, provider)
	if err := engine.Context.SwitchContext(models.OrganizationContext{OrganizationID: primitive.NewObjectID(), Name: "Acme"}); err != nil {
		t.Fatalf("SwitchContext failed: %v", err)
	}
	waitFor(t, func() bool { return engine.Teams.State().Error != "" })
}

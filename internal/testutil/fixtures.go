package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/teamspace/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateIdentity creates a test identity of the given type.
func (f *Fixtures) CreateIdentity(ctx context.Context, displayName, email string, typ models.IdentityType) models.Identity {
	f.t.Helper()

	now := time.Now().UTC()
	ident := models.Identity{
		ID:          primitive.NewObjectID(),
		Type:        typ,
		Email:       email,
		EmailCI:     text.Fold(email),
		DisplayName: displayName,
		AuthMethod:  "password",
		Status:      "active",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("identities").InsertOne(ctx, ident); err != nil {
		f.t.Fatalf("failed to create test identity: %v", err)
	}
	return ident
}

// CreateUserIdentity creates a test identity of type user.
func (f *Fixtures) CreateUserIdentity(ctx context.Context, displayName, email string) models.Identity {
	f.t.Helper()
	return f.CreateIdentity(ctx, displayName, email, models.IdentityUser)
}

// CreateOrganization creates a test organization with the given name.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("organizations").InsertOne(ctx, org); err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

// CreateTeam creates a test team inside the given organization.
func (f *Fixtures) CreateTeam(ctx context.Context, name string, orgID primitive.ObjectID, memberIDs ...string) models.Team {
	f.t.Helper()

	now := time.Now().UTC()
	team := models.Team{
		ID:             primitive.NewObjectID(),
		Name:           name,
		OrganizationID: orgID,
		MemberIDs:      memberIDs,
		Status:         "active",
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := f.db.Collection("teams").InsertOne(ctx, team); err != nil {
		f.t.Fatalf("failed to create test team: %v", err)
	}
	return team
}

// CreateWorkspace creates a test workspace for the given owner.
func (f *Fixtures) CreateWorkspace(ctx context.Context, name string, owner models.WorkspaceOwner) models.Workspace {
	f.t.Helper()

	ws := models.NewWorkspace(name, owner)
	ws.ID = primitive.NewObjectID()
	ws.NameCI = text.Fold(name)
	now := time.Now().UTC()
	ws.CreatedAt = now
	ws.UpdatedAt = now

	if _, err := f.db.Collection("workspaces").InsertOne(ctx, ws); err != nil {
		f.t.Fatalf("failed to create test workspace: %v", err)
	}
	return ws
}

// CreateModule creates a test module in the given workspace.
func (f *Fixtures) CreateModule(ctx context.Context, workspaceID primitive.ObjectID, name string, order int) models.Module {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Module{
		ID:          primitive.NewObjectID(),
		WorkspaceID: workspaceID,
		Name:        name,
		Order:       order,
		Enabled:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("modules").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test module: %v", err)
	}
	return m
}

// CreateMember seats a user in a workspace.
func (f *Fixtures) CreateMember(ctx context.Context, workspaceID, userID primitive.ObjectID, role string) models.Member {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Member{
		ID:          primitive.NewObjectID(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
		JoinedAt:    now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}
	return m
}

// CreateNotification creates a test notification for the given user.
func (f *Fixtures) CreateNotification(ctx context.Context, userID primitive.ObjectID, title string, read bool) models.Notification {
	f.t.Helper()

	n := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Kind:      "test",
		Title:     title,
		Read:      read,
		CreatedAt: time.Now().UTC(),
	}
	if read {
		now := time.Now().UTC()
		n.ReadAt = &now
	}

	if _, err := f.db.Collection("notifications").InsertOne(ctx, n); err != nil {
		f.t.Fatalf("failed to create test notification: %v", err)
	}
	return n
}

package cells_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/teamspace/internal/app/cells"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMembers_RosterLoadsForActiveWorkspace(t *testing.T) {
	engine, provider, repos := newTestEngine(t)

	repos.Members.Members = []models.Member{
		{ID: primitive.NewObjectID(), UserID: primitive.NewObjectID(), Role: "admin"},
		{ID: primitive.NewObjectID(), UserID: primitive.NewObjectID(), Role: "viewer"},
	}

	openWorkspace(t, engine, provider, repos)
	waitFor(t, func() bool { return len(engine.Members.State().Items) == 2 })
}

func TestMembers_WatchReplacesRoster(t *testing.T) {
	engine, provider, repos := newTestEngine(t)
	repos.Members.Members = []models.Member{
		{ID: primitive.NewObjectID(), Role: "admin"},
	}

	openWorkspace(t, engine, provider, repos)
	waitFor(t, func() bool { return repos.Members.Calls.Watch == 1 })

	repos.Members.Push([]models.Member{
		{ID: primitive.NewObjectID(), Role: "admin"},
		{ID: primitive.NewObjectID(), Role: "editor"},
		{ID: primitive.NewObjectID(), Role: "viewer"},
	})
	waitFor(t, func() bool { return len(engine.Members.State().Items) == 3 })
}

func TestMembers_Invite(t *testing.T) {
	engine, provider, repos := newTestEngine(t)
	ws := openWorkspace(t, engine, provider, repos)

	inv, err := engine.Members.Invite(context.Background(), ws, "new@example.com", "editor")
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}

	if inv.WorkspaceID != ws.ID {
		t.Error("invitation must target the given workspace")
	}
	if inv.Token == "" {
		t.Error("invitation must carry a redeem token")
	}
	if inv.Status != models.InvitationPending {
		t.Errorf("fresh invitation must be pending, got %q", inv.Status)
	}

	ttl := time.Until(inv.ExpiresAt)
	if ttl < 13*24*time.Hour || ttl > 15*24*time.Hour {
		t.Errorf("invitation expiry out of range: %v", ttl)
	}
	if repos.Members.Calls.CreateInv != 1 {
		t.Errorf("expected 1 create call, got %d", repos.Members.Calls.CreateInv)
	}
}

func TestMembers_InviteRequiresAuthBeforeAnyRepoCall(t *testing.T) {
	engine, _, repos := newTestEngine(t)

	_, err := engine.Members.Invite(context.Background(), models.Workspace{}, "x@example.com", "viewer")
	if !errors.Is(err, cells.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if repos.Members.Calls.CreateInv != 0 {
		t.Error("signed-out invite must not reach the repository")
	}
}

func TestMembers_InviteRequiresEmail(t *testing.T) {
	engine, provider, repos := newTestEngine(t)
	ws := openWorkspace(t, engine, provider, repos)

	_, err := engine.Members.Invite(context.Background(), ws, "", "viewer")
	var verr *cells.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if repos.Members.Calls.CreateInv != 0 {
		t.Error("empty-email invite must not reach the repository")
	}
}

func TestMembers_RespondToInvitation(t *testing.T) {
	engine, provider, repos := newTestEngine(t)
	ws := openWorkspace(t, engine, provider, repos)

	accept, err := engine.Members.Invite(context.Background(), ws, "a@example.com", "editor")
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}
	decline, err := engine.Members.Invite(context.Background(), ws, "b@example.com", "viewer")
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}

	if err := engine.Members.RespondToInvitation(context.Background(), accept.Token, true); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if err := engine.Members.RespondToInvitation(context.Background(), decline.Token, false); err != nil {
		t.Fatalf("decline failed: %v", err)
	}

	got, _ := repos.Members.GetInvitationByToken(context.Background(), accept.Token)
	if got.Status != models.InvitationAccepted {
		t.Errorf("expected accepted, got %q", got.Status)
	}
	got, _ = repos.Members.GetInvitationByToken(context.Background(), decline.Token)
	if got.Status != models.InvitationDeclined {
		t.Errorf("expected declined, got %q", got.Status)
	}
}

func TestMembers_RespondToInvitationRejectsNonPending(t *testing.T) {
	engine, provider, repos := newTestEngine(t)
	ws := openWorkspace(t, engine, provider, repos)

	inv, err := engine.Members.Invite(context.Background(), ws, "a@example.com", "editor")
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}
	if err := engine.Members.RespondToInvitation(context.Background(), inv.Token, true); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}

	err = engine.Members.RespondToInvitation(context.Background(), inv.Token, true)
	var verr *cells.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("second response must fail as no longer pending, got %v", err)
	}
}

func TestMembers_RespondToInvitationRejectsExpired(t *testing.T) {
	engine, provider, repos := newTestEngine(t)
	openWorkspace(t, engine, provider, repos)

	expired := models.Invitation{
		ID:        primitive.NewObjectID(),
		Email:     "late@example.com",
		Role:      "viewer",
		Token:     "expired-token",
		Status:    models.InvitationPending,
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	repos.Members.Invitations = append(repos.Members.Invitations, expired)

	err := engine.Members.RespondToInvitation(context.Background(), expired.Token, true)
	var verr *cells.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for expired invitation, got %v", err)
	}

	got, _ := repos.Members.GetInvitationByToken(context.Background(), expired.Token)
	if got.Status != models.InvitationPending {
		t.Error("an expired invitation must not change status on a redeem attempt")
	}
}

func TestMembers_RespondToInvitationUnknownToken(t *testing.T) {
	engine, provider, repos := newTestEngine(t)
	openWorkspace(t, engine, provider, repos)

	err := engine.Members.RespondToInvitation(context.Background(), "no-such-token", true)
	if !errors.Is(err, cells.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMembers_StaleRosterFromPreviousWorkspaceDiscarded(t *testing.T) {
	engine, provider, repos := newTestEngine(t)
	repos.Members.Members = []models.Member{
		{ID: primitive.NewObjectID(), Role: "admin"},
	}

	openWorkspace(t, engine, provider, repos)
	waitFor(t, func() bool { return len(engine.Members.State().Items) == 1 })

	engine.Context.SwitchWorkspace(nil)
	if got := len(engine.Members.State().Items); got != 0 {
		t.Fatalf("unload must clear the roster synchronously, got %d", got)
	}

	repos.Members.Push([]models.Member{{ID: primitive.NewObjectID(), Role: "viewer"}})
	time.Sleep(50 * time.Millisecond)
	if got := len(engine.Members.State().Items); got != 0 {
		t.Errorf("stale watch update leaked into the cleared roster: %d", got)
	}
}

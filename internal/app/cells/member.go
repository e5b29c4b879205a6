// internal/app/cells/member.go
package cells

import (
	"context"
	"time"

	"github.com/dalemusser/teamspace/internal/app/system/signal"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// invitationTTL is how long a workspace invitation stays redeemable.
const invitationTTL = 14 * 24 * time.Hour

// MemberCell owns the member roster of the current workspace and the
// invitation commands. Roster loading follows the scoped-cell contract:
// switch-map by workspace id, hard reset on unload, live wholesale
// replaces.
type MemberCell struct {
	identity *IdentityCell
	repo     MemberRepo
	log      *zap.Logger

	state  *signal.Source[Collection[models.Member]]
	loader signal.Loader

	unsubscribe func()
}

// NewMemberCell builds the cell and attaches the workspace watch.
func NewMemberCell(identity *IdentityCell, workspaces *WorkspaceCell, repo MemberRepo, log *zap.Logger) *MemberCell {
	c := &MemberCell{
		identity: identity,
		repo:     repo,
		log:      log.Named("member_cell"),
		state:    signal.New(emptyCollection[models.Member]()),
	}
	c.unsubscribe = workspaces.SubscribeCurrent(c.onWorkspace)
	return c
}

// State returns the member roster.
func (c *MemberCell) State() Collection[models.Member] { return c.state.Get() }

// Subscribe registers fn for roster changes.
func (c *MemberCell) Subscribe(fn func(Collection[models.Member])) func() {
	return c.state.Subscribe(fn)
}

// Invite creates a pending invitation with a fresh token. Requires a
// signed-in identity (checked before any repository call).
func (c *MemberCell) Invite(ctx context.Context, ws models.Workspace, email, role string) (models.Invitation, error) {
	st := c.identity.State()
	if st.Status != AuthAuthenticated || st.Identity == nil {
		return models.Invitation{}, ErrAuthRequired
	}
	if email == "" {
		return models.Invitation{}, validationf("invitation email is required")
	}

	inv := models.Invitation{
		WorkspaceID: ws.ID,
		Email:       email,
		Role:        role,
		Token:       uuid.NewString(),
		Status:      models.InvitationPending,
		InvitedBy:   st.Identity.ID,
		ExpiresAt:   time.Now().UTC().Add(invitationTTL),
	}
	created, err := c.repo.CreateInvitation(ctx, inv)
	if err != nil {
		c.log.Warn("invitation create failed", zap.String("email", email), zap.Error(err))
		c.state.Update(func(s Collection[models.Member]) Collection[models.Member] {
			s.Error = "creating invitation failed: " + err.Error()
			return s
		})
		return models.Invitation{}, err
	}
	return created, nil
}

// RespondToInvitation resolves a pending invitation by token, marking it
// accepted or declined.
func (c *MemberCell) RespondToInvitation(ctx context.Context, token string, accept bool) error {
	inv, err := c.repo.GetInvitationByToken(ctx, token)
	if err != nil {
		return err
	}
	if inv.Status != models.InvitationPending {
		return validationf("invitation is no longer pending")
	}
	if time.Now().UTC().After(inv.ExpiresAt) {
		return validationf("invitation has expired")
	}

	next := models.InvitationDeclined
	if accept {
		next = models.InvitationAccepted
	}
	return c.repo.UpdateInvitationStatus(ctx, inv.ID, next)
}

func (c *MemberCell) onWorkspace(ws *models.Workspace) {
	if ws == nil {
		c.loader.Cancel()
		c.state.Set(emptyCollection[models.Member]())
		return
	}

	wsID := ws.ID
	c.state.Update(func(s Collection[models.Member]) Collection[models.Member] {
		s.Loading = true
		s.Error = ""
		return s
	})
	c.loader.Start(func(ctx context.Context, commit func(func()) bool) {
		items, err := c.repo.ListByWorkspace(ctx, wsID)
		if err != nil {
			c.log.Warn("member load failed", zap.String("workspace_id", wsID.Hex()), zap.Error(err))
			commit(func() {
				c.state.Update(func(s Collection[models.Member]) Collection[models.Member] {
					s.Loading = false
					s.Error = "loading members failed: " + err.Error()
					return s
				})
			})
			return
		}
		if !commit(func() { c.state.Set(Collection[models.Member]{Items: items}) }) {
			return
		}

		updates, err := c.repo.Watch(ctx, wsID)
		if err != nil {
			c.log.Debug("member watch unavailable", zap.Error(err))
			return
		}
		for next := range updates {
			fresh := next
			if !commit(func() { c.state.Set(Collection[models.Member]{Items: fresh}) }) {
				return
			}
		}
	})
}

// Close detaches the workspace watch.
func (c *MemberCell) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.loader.Cancel()
}

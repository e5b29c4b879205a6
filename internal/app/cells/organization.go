// internal/app/cells/organization.go
package cells

import (
	"context"

	"github.com/dalemusser/teamspace/internal/app/system/signal"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// OrganizationCell owns the roster of organizations the signed-in
// identity belongs to, plus the derived "current organization" scope: the
// organization behind the active lens (the organization itself, or the
// one a team/partner membership belongs to, or nil under a plain user
// lens). The team cell keys its loads off that scope.
type OrganizationCell struct {
	repo OrganizationRepo
	log  *zap.Logger

	state      *signal.Source[Collection[models.Organization]]
	currentOrg *signal.Source[*primitive.ObjectID]
	loader     signal.Loader

	unsubIdentity func()
	unsubContext  func()
}

// NewOrganizationCell builds the cell and attaches its two effects: the
// identity watch (roster auto-load) and the context watch (current
// organization derivation).
func NewOrganizationCell(identity *IdentityCell, contextCell *ContextCell, repo OrganizationRepo, log *zap.Logger) *OrganizationCell {
	c := &OrganizationCell{
		repo:       repo,
		log:        log.Named("organization_cell"),
		state:      signal.New(emptyCollection[models.Organization]()),
		currentOrg: signal.New[*primitive.ObjectID](nil),
	}
	c.unsubIdentity = identity.Subscribe(c.onIdentity)
	c.unsubContext = contextCell.Subscribe(c.onContext)
	return c
}

// State returns the organization roster state.
func (c *OrganizationCell) State() Collection[models.Organization] { return c.state.Get() }

// Subscribe registers fn for roster changes.
func (c *OrganizationCell) Subscribe(fn func(Collection[models.Organization])) func() {
	return c.state.Subscribe(fn)
}

// CurrentOrganizationID returns the organization scope of the active
// lens, nil when acting as a plain user (or signed out).
func (c *OrganizationCell) CurrentOrganizationID() *primitive.ObjectID {
	return c.currentOrg.Get()
}

// SubscribeCurrent registers fn for current-organization changes.
func (c *OrganizationCell) SubscribeCurrent(fn func(*primitive.ObjectID)) func() {
	return c.currentOrg.Subscribe(fn)
}

func (c *OrganizationCell) onIdentity(st IdentityState) {
	switch st.Status {
	case AuthAuthenticated:
		if st.Identity == nil {
			return
		}
		userID := st.Identity.ID
		c.state.Update(func(s Collection[models.Organization]) Collection[models.Organization] {
			s.Loading = true
			s.Error = ""
			return s
		})
		c.loader.Start(func(ctx context.Context, commit func(func()) bool) {
			orgs, err := c.repo.ListForUser(ctx, userID)
			if err != nil {
				c.log.Warn("organization load failed", zap.Error(err))
				commit(func() {
					c.state.Update(func(s Collection[models.Organization]) Collection[models.Organization] {
						s.Loading = false
						s.Error = "loading organizations failed: " + err.Error()
						return s
					})
				})
				return
			}
			commit(func() {
				c.state.Set(Collection[models.Organization]{Items: orgs})
			})
		})
	case AuthUnauthenticated:
		// Upstream emptied: reset rather than hold stale rosters.
		c.loader.Cancel()
		c.state.Set(emptyCollection[models.Organization]())
		c.currentOrg.Set(nil)
	}
}

// onContext derives the current organization from the active lens. The
// derivation is a pure dispatch on the sealed context variant; only a
// real change republishes.
func (c *OrganizationCell) onContext(s ContextState) {
	next := organizationScopeOf(s.Current)
	prev := c.currentOrg.Get()
	if objectIDPtrEqual(prev, next) {
		return
	}
	c.currentOrg.Set(next)
}

func organizationScopeOf(cur models.Context) *primitive.ObjectID {
	switch v := cur.(type) {
	case models.OrganizationContext:
		id := v.OrganizationID
		return &id
	case models.TeamContext:
		id := v.OrganizationID
		return &id
	case models.PartnerContext:
		id := v.OrganizationID
		return &id
	default:
		return nil
	}
}

func objectIDPtrEqual(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Close detaches both effects.
func (c *OrganizationCell) Close() {
	if c.unsubIdentity != nil {
		c.unsubIdentity()
	}
	if c.unsubContext != nil {
		c.unsubContext()
	}
	c.loader.Cancel()
}

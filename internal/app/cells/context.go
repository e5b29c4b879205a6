// internal/app/cells/context.go
package cells

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/teamspace/internal/app/system/signal"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AvailableContexts is the set of lenses the signed-in user may switch
// to, republished whenever the identity changes.
type AvailableContexts struct {
	Organizations []models.Organization
	Teams         []models.Team
	Partners      []models.Partner
}

// ContextState is the context cell's published slice of state, minus the
// active workspace id, which lives in its own source so downstream cells
// can key off it alone.
type ContextState struct {
	Current   models.Context // nil when signed out
	History   []models.ContextSwitchEvent
	Available AvailableContexts
	Loading   bool
	Error     string
}

// ContextCell is the canonical source of truth for "acting as whom" and
// "in which workspace". The active workspace id has exactly one legal
// writer: SwitchWorkspace on this cell. The field is unexported and no
// other accessor mutates it, so the single-writer rule is enforced by
// visibility rather than convention.
type ContextCell struct {
	identity *IdentityCell
	orgs     OrganizationRepo
	teams    TeamRepo
	partners PartnerRepo
	log      *zap.Logger

	state       *signal.Source[ContextState]
	workspaceID *signal.Source[*primitive.ObjectID]
	loader      signal.Loader

	mu       sync.Mutex
	lensUser *primitive.ObjectID // identity the published lens belongs to

	unsubscribe func()
}

// NewContextCell builds the cell and attaches its identity effect: on
// sign-in the context becomes a fresh user lens and the available
// contexts load; on sign-out everything clears.
func NewContextCell(identity *IdentityCell, orgs OrganizationRepo, teams TeamRepo, partners PartnerRepo, log *zap.Logger) *ContextCell {
	c := &ContextCell{
		identity:    identity,
		orgs:        orgs,
		teams:       teams,
		partners:    partners,
		log:         log.Named("context_cell"),
		state:       signal.New(initialContextState()),
		workspaceID: signal.New[*primitive.ObjectID](nil),
	}
	c.unsubscribe = identity.Subscribe(c.onIdentity)
	return c
}

func initialContextState() ContextState {
	return ContextState{History: []models.ContextSwitchEvent{}}
}

// State returns the current context state.
func (c *ContextCell) State() ContextState { return c.state.Get() }

// Subscribe registers fn for context state changes.
func (c *ContextCell) Subscribe(fn func(ContextState)) func() {
	return c.state.Subscribe(fn)
}

// CurrentWorkspaceID returns the active workspace id, nil when no
// workspace is loaded.
func (c *ContextCell) CurrentWorkspaceID() *primitive.ObjectID {
	return c.workspaceID.Get()
}

// SubscribeWorkspace registers fn for active-workspace changes. This is
// the read-only side of the single-writer key.
func (c *ContextCell) SubscribeWorkspace(fn func(*primitive.ObjectID)) func() {
	return c.workspaceID.Subscribe(fn)
}

// SwitchContext replaces the active lens and appends a switch event to
// the history log. It deliberately leaves the active workspace id alone:
// context and workspace selection are orthogonal axes.
func (c *ContextCell) SwitchContext(next models.Context) error {
	if next == nil {
		return validationf("cannot switch to an empty context")
	}
	if c.identity.State().Status != AuthAuthenticated {
		return ErrAuthRequired
	}

	c.state.Update(func(s ContextState) ContextState {
		s.Current = next
		s.History = append(s.History, models.ContextSwitchEvent{
			EventID:    uuid.NewString(),
			Type:       next.ContextType(),
			ContextID:  next.ContextID(),
			SwitchedAt: time.Now().UTC(),
		})
		return s
	})
	c.log.Debug("context switched",
		zap.String("type", string(next.ContextType())),
		zap.String("id", next.ContextID().Hex()))
	return nil
}

// SwitchWorkspace sets the active workspace id. Passing nil unloads the
// workspace, which cascades an empty reset through every workspace-scoped
// cell. This method is the only writer of the key.
func (c *ContextCell) SwitchWorkspace(id *primitive.ObjectID) {
	c.workspaceID.Set(id)
}

// ResetContext restores the lens to a fresh user context when an
// identity is present, leaving history and workspace selection intact.
// Without an identity it replaces the whole state with the initial one.
// Calling it twice in a row is equivalent to calling it once.
func (c *ContextCell) ResetContext() {
	st := c.identity.State()
	if st.Status != AuthAuthenticated || st.Identity == nil {
		c.loader.Cancel()
		c.state.Set(initialContextState())
		c.workspaceID.Set(nil)
		return
	}

	user := userContextFor(*st.Identity)
	c.state.Update(func(s ContextState) ContextState {
		s.Current = user
		s.Error = ""
		return s
	})
}

// ClearContext unconditionally replaces the cell's state with its
// initial state. The identity cell invokes this on logout as an explicit
// downstream obligation.
func (c *ContextCell) ClearContext() {
	c.mu.Lock()
	c.lensUser = nil
	c.mu.Unlock()
	c.loader.Cancel()
	c.state.Set(initialContextState())
	c.workspaceID.Set(nil)
}

// Derived views.

// CurrentContextType returns the active lens type, or false when signed
// out.
func (c *ContextCell) CurrentContextType() (models.ContextType, bool) {
	cur := c.state.Get().Current
	if cur == nil {
		return "", false
	}
	return cur.ContextType(), true
}

// CurrentContextID returns the id of the acted-as entity, dispatching on
// the lens variant.
func (c *ContextCell) CurrentContextID() (primitive.ObjectID, bool) {
	cur := c.state.Get().Current
	if cur == nil {
		return primitive.NilObjectID, false
	}
	return cur.ContextID(), true
}

// CurrentContextName returns the display name of the acted-as entity.
func (c *ContextCell) CurrentContextName() string {
	cur := c.state.Get().Current
	if cur == nil {
		return ""
	}
	return cur.DisplayName()
}

// HasWorkspace reports whether a workspace is currently loaded.
func (c *ContextCell) HasWorkspace() bool {
	return c.workspaceID.Get() != nil
}

// CanSwitchContext reports whether any alternative lens exists.
func (c *ContextCell) CanSwitchContext() bool {
	a := c.state.Get().Available
	return len(a.Organizations) > 0 || len(a.Teams) > 0 || len(a.Partners) > 0
}

// onIdentity is the identity-watching effect: a fresh sign-in creates the
// user lens and loads the available contexts; a sign-out clears the cell.
func (c *ContextCell) onIdentity(st IdentityState) {
	switch st.Status {
	case AuthAuthenticated:
		if st.Identity == nil {
			return
		}
		id := *st.Identity

		c.mu.Lock()
		prev := c.lensUser
		userID := id.ID
		c.lensUser = &userID
		switched := prev != nil && *prev != id.ID
		c.mu.Unlock()

		if switched {
			// A different identity signed in without an intervening
			// sign-out. Nothing of the previous user's session may
			// leak: lens, history, and workspace selection all reset
			// before the new user lens publishes.
			c.loader.Cancel()
			c.workspaceID.Set(nil)
			c.state.Set(initialContextState())
		}

		c.state.Update(func(s ContextState) ContextState {
			if s.Current == nil {
				s.Current = userContextFor(id)
			}
			s.Loading = true
			s.Error = ""
			return s
		})
		c.loadAvailable(id.ID)
	case AuthUnauthenticated:
		c.ClearContext()
	}
}

// loadAvailable fetches the acting contexts for userID with
// last-trigger-wins semantics: a newer identity supersedes any in-flight
// load.
func (c *ContextCell) loadAvailable(userID primitive.ObjectID) {
	c.loader.Start(func(ctx context.Context, commit func(func()) bool) {
		orgs, err := c.orgs.ListForUser(ctx, userID)
		if err != nil {
			c.fail(commit, "loading organizations failed", err)
			return
		}
		teams, err := c.teams.ListForUser(ctx, userID)
		if err != nil {
			c.fail(commit, "loading teams failed", err)
			return
		}
		partners, err := c.partners.ListForUser(ctx, userID)
		if err != nil {
			c.fail(commit, "loading partners failed", err)
			return
		}

		commit(func() {
			c.state.Update(func(s ContextState) ContextState {
				s.Available = AvailableContexts{Organizations: orgs, Teams: teams, Partners: partners}
				s.Loading = false
				s.Error = ""
				return s
			})
		})
	})
}

func (c *ContextCell) fail(commit func(func()) bool, msg string, err error) {
	c.log.Warn(msg, zap.Error(err))
	commit(func() {
		c.state.Update(func(s ContextState) ContextState {
			s.Loading = false
			s.Error = msg + ": " + err.Error()
			return s
		})
	})
}

func userContextFor(id models.Identity) models.Context {
	return models.UserContext{UserID: id.ID, Email: id.Email, Name: id.DisplayName}
}

// Close detaches the identity effect and cancels any in-flight load.
func (c *ContextCell) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.loader.Cancel()
}

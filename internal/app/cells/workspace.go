// internal/app/cells/workspace.go
package cells

import (
	"context"
	"errors"
	"sync"

	"github.com/dalemusser/teamspace/internal/app/system/signal"
	"github.com/dalemusser/teamspace/internal/app/system/timeouts"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// WorkspaceState is the workspace cell's published state. The list
// effect and the detail effect run concurrently, so each owns its own
// loading/error pair: a list load finishing clean must not erase a
// detail failure (or the other way around). The loaded workspace detail
// itself lives in its own source (Current) so the scoped cells can key
// off it alone.
type WorkspaceState struct {
	Workspaces []models.Workspace
	Recent     []primitive.ObjectID
	Favorites  []primitive.ObjectID

	Loading bool   // list effect
	Error   string // list effect

	DetailLoading bool
	DetailError   string
}

// WorkspaceCell owns the selectable workspace list and the currently
// loaded workspace detail. It never writes the active workspace id — it
// only reacts to the context cell's selection. Favorite toggles and
// access tracking are optimistic: the local state changes first and the
// persistence write-back is best effort, reconciled by the next list
// load rather than rolled back.
type WorkspaceCell struct {
	identity *IdentityCell
	ctxCell  *ContextCell
	repo     WorkspaceRepo
	log      *zap.Logger

	state   *signal.Source[WorkspaceState]
	current *signal.Source[*models.Workspace]

	listLoader   signal.Loader
	detailLoader signal.Loader
	marksLoader  signal.Loader

	mu        sync.Mutex
	lastScope *workspaceScope
	marksUser *primitive.ObjectID // identity whose marks have been seeded

	unsubWorkspace func()
	unsubContext   func()
	unsubIdentity  func()
}

// workspaceScope is the list-load trigger key: which lens, which entity.
type workspaceScope struct {
	Type models.ContextType
	ID   primitive.ObjectID
}

// NewWorkspaceCell builds the cell and attaches its two effects: the
// selection watch (workspace detail) and the lens watch (selectable
// list).
func NewWorkspaceCell(identity *IdentityCell, ctxCell *ContextCell, repo WorkspaceRepo, log *zap.Logger) *WorkspaceCell {
	c := &WorkspaceCell{
		identity: identity,
		ctxCell:  ctxCell,
		repo:     repo,
		log:      log.Named("workspace_cell"),
		state:    signal.New(initialWorkspaceState()),
		current:  signal.New[*models.Workspace](nil),
	}
	c.unsubWorkspace = ctxCell.SubscribeWorkspace(c.onSelection)
	c.unsubContext = ctxCell.Subscribe(c.onContext)
	c.unsubIdentity = identity.Subscribe(c.onIdentity)
	return c
}

func initialWorkspaceState() WorkspaceState {
	return WorkspaceState{
		Workspaces: []models.Workspace{},
		Recent:     []primitive.ObjectID{},
		Favorites:  []primitive.ObjectID{},
	}
}

// State returns the workspace list state.
func (c *WorkspaceCell) State() WorkspaceState { return c.state.Get() }

// Subscribe registers fn for list state changes.
func (c *WorkspaceCell) Subscribe(fn func(WorkspaceState)) func() {
	return c.state.Subscribe(fn)
}

// Current returns the loaded workspace detail, nil when no workspace is
// active.
func (c *WorkspaceCell) Current() *models.Workspace { return c.current.Get() }

// SubscribeCurrent registers fn for workspace detail changes; the scoped
// cells (modules, documents, members) attach here.
func (c *WorkspaceCell) SubscribeCurrent(fn func(*models.Workspace)) func() {
	return c.current.Subscribe(fn)
}

// CreateWorkspace validates ownership eligibility against the active
// lens, then constructs the ownership union and persists it. Team and
// partner lenses fail fast with a descriptive error and no repository
// call — ownership is never silently reassigned to the organization.
func (c *WorkspaceCell) CreateWorkspace(ctx context.Context, name string) (models.Workspace, error) {
	if c.identity.State().Status != AuthAuthenticated {
		return models.Workspace{}, ErrAuthRequired
	}
	if name == "" {
		return models.Workspace{}, validationf("workspace name is required")
	}

	var owner models.WorkspaceOwner
	switch lens := c.ctxCell.State().Current.(type) {
	case models.UserContext:
		owner = models.UserOwner{UserID: lens.UserID}
	case models.OrganizationContext:
		owner = models.OrganizationOwner{OrganizationID: lens.OrganizationID}
	case models.TeamContext:
		return models.Workspace{}, validationf("a team cannot own a workspace; switch to your user or organization context first")
	case models.PartnerContext:
		return models.Workspace{}, validationf("a partner cannot own a workspace; switch to your user or organization context first")
	default:
		return models.Workspace{}, ErrAuthRequired
	}

	created, err := c.repo.Create(ctx, models.NewWorkspace(name, owner))
	if err != nil {
		c.log.Warn("workspace create failed", zap.String("name", name), zap.Error(err))
		c.state.Update(func(s WorkspaceState) WorkspaceState {
			s.Error = "creating workspace failed: " + err.Error()
			return s
		})
		return models.Workspace{}, err
	}

	c.state.Update(func(s WorkspaceState) WorkspaceState {
		s.Workspaces = append(append([]models.Workspace{}, s.Workspaces...), created)
		s.Error = ""
		return s
	})
	return created, nil
}

// ToggleFavorite flips a workspace's favorite mark locally, then writes
// the marks back without blocking or rolling back on failure.
func (c *WorkspaceCell) ToggleFavorite(id primitive.ObjectID) {
	c.state.Update(func(s WorkspaceState) WorkspaceState {
		for i, fav := range s.Favorites {
			if fav == id {
				s.Favorites = append(append([]primitive.ObjectID{}, s.Favorites[:i]...), s.Favorites[i+1:]...)
				return s
			}
		}
		s.Favorites = append(append([]primitive.ObjectID{}, s.Favorites...), id)
		return s
	})
	c.persistAccessMarks()
}

// TrackAccess records id at the head of the recent list (deduplicated,
// capped) and writes the marks back best effort.
func (c *WorkspaceCell) TrackAccess(id primitive.ObjectID) {
	const maxRecent = 10
	c.state.Update(func(s WorkspaceState) WorkspaceState {
		recent := []primitive.ObjectID{id}
		for _, r := range s.Recent {
			if r != id && len(recent) < maxRecent {
				recent = append(recent, r)
			}
		}
		s.Recent = recent
		return s
	})
	c.persistAccessMarks()
}

func (c *WorkspaceCell) persistAccessMarks() {
	st := c.identity.State()
	if st.Status != AuthAuthenticated || st.Identity == nil {
		return
	}
	userID := st.Identity.ID
	s := c.state.Get()
	recent := append([]primitive.ObjectID{}, s.Recent...)
	favorites := append([]primitive.ObjectID{}, s.Favorites...)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
		defer cancel()
		if err := c.repo.SaveAccessMarks(ctx, userID, recent, favorites); err != nil {
			// Relaxed consistency: the optimistic local state stands; the
			// next list load reconciles.
			c.log.Warn("persisting access marks failed", zap.Error(err))
		}
	}()
}

// onIdentity restores the signed-in user's persisted recent/favorite
// marks. Keyed by user id: a republish of the same identity does not
// reload, and sign-out drops the key so the next sign-in seeds fresh.
func (c *WorkspaceCell) onIdentity(st IdentityState) {
	if st.Status != AuthAuthenticated || st.Identity == nil {
		c.mu.Lock()
		c.marksUser = nil
		c.mu.Unlock()
		c.marksLoader.Cancel()
		return
	}

	userID := st.Identity.ID
	c.mu.Lock()
	if c.marksUser != nil && *c.marksUser == userID {
		c.mu.Unlock()
		return
	}
	c.marksUser = &userID
	c.mu.Unlock()

	c.marksLoader.Start(func(ctx context.Context, commit func(func()) bool) {
		recent, favorites, err := c.repo.LoadAccessMarks(ctx, userID)
		if err != nil {
			// Marks are a convenience; a failed load leaves them empty
			// rather than surfacing an error.
			c.log.Warn("loading access marks failed", zap.String("user_id", userID.Hex()), zap.Error(err))
			return
		}
		commit(func() {
			c.state.Update(func(s WorkspaceState) WorkspaceState {
				// Marks toggled before this load lands are newer than
				// the stored record; seed only an untouched state.
				if len(s.Recent) == 0 && len(s.Favorites) == 0 {
					s.Recent = recent
					s.Favorites = favorites
				}
				return s
			})
		})
	})
}

// onSelection is the detail auto-load effect, keyed by the active
// workspace id. A new id supersedes the in-flight load; nil cancels it
// and clears the detail immediately.
func (c *WorkspaceCell) onSelection(id *primitive.ObjectID) {
	if id == nil {
		c.detailLoader.Cancel()
		c.current.Set(nil)
		c.state.Update(func(s WorkspaceState) WorkspaceState {
			s.DetailLoading = false
			s.DetailError = ""
			return s
		})
		return
	}

	wsID := *id
	c.state.Update(func(s WorkspaceState) WorkspaceState {
		s.DetailLoading = true
		s.DetailError = ""
		return s
	})
	c.detailLoader.Start(func(ctx context.Context, commit func(func()) bool) {
		ws, err := c.repo.GetByID(ctx, wsID)
		if err != nil {
			msg := "loading workspace failed: " + err.Error()
			if errors.Is(err, ErrNotFound) {
				msg = "workspace not found"
			}
			c.log.Warn("workspace detail load failed", zap.String("workspace_id", wsID.Hex()), zap.Error(err))
			commit(func() {
				c.current.Set(nil)
				c.state.Update(func(s WorkspaceState) WorkspaceState {
					s.DetailLoading = false
					s.DetailError = msg
					return s
				})
			})
			return
		}
		commit(func() {
			c.current.Set(&ws)
			c.state.Update(func(s WorkspaceState) WorkspaceState {
				s.DetailLoading = false
				s.DetailError = ""
				return s
			})
		})
	})
}

// onContext is the list auto-load effect, keyed by the lens scope.
// Publishes of unrelated context state (history, available contexts) do
// not retrigger it.
func (c *WorkspaceCell) onContext(s ContextState) {
	if s.Current == nil {
		c.mu.Lock()
		c.lastScope = nil
		c.mu.Unlock()
		c.listLoader.Cancel()
		c.detailLoader.Cancel()
		c.current.Set(nil)
		c.state.Set(initialWorkspaceState())
		return
	}

	scope := workspaceScope{Type: s.Current.ContextType(), ID: s.Current.ContextID()}
	c.mu.Lock()
	if c.lastScope != nil && *c.lastScope == scope {
		c.mu.Unlock()
		return
	}
	c.lastScope = &scope
	c.mu.Unlock()

	c.loadList(s.Current)
}

func (c *WorkspaceCell) loadList(lens models.Context) {
	c.state.Update(func(s WorkspaceState) WorkspaceState {
		s.Loading = true
		s.Error = ""
		return s
	})
	c.listLoader.Start(func(ctx context.Context, commit func(func()) bool) {
		var (
			list []models.Workspace
			err  error
		)
		switch v := lens.(type) {
		case models.UserContext:
			list, err = c.repo.GetUserWorkspaces(ctx, v.UserID)
		case models.OrganizationContext:
			list, err = c.repo.GetOrganizationWorkspaces(ctx, v.OrganizationID)
		case models.TeamContext:
			list, err = c.repo.GetOrganizationWorkspaces(ctx, v.OrganizationID)
		case models.PartnerContext:
			list, err = c.repo.GetOrganizationWorkspaces(ctx, v.OrganizationID)
		}
		if err != nil {
			c.log.Warn("workspace list load failed", zap.Error(err))
			commit(func() {
				c.state.Update(func(s WorkspaceState) WorkspaceState {
					s.Loading = false
					s.Error = "loading workspaces failed: " + err.Error()
					return s
				})
			})
			return
		}
		commit(func() {
			c.state.Update(func(s WorkspaceState) WorkspaceState {
				s.Workspaces = list
				s.Loading = false
				s.Error = ""
				return s
			})
		})
	})
}

// Close detaches both effects and cancels in-flight loads.
func (c *WorkspaceCell) Close() {
	if c.unsubWorkspace != nil {
		c.unsubWorkspace()
	}
	if c.unsubContext != nil {
		c.unsubContext()
	}
	if c.unsubIdentity != nil {
		c.unsubIdentity()
	}
	c.listLoader.Cancel()
	c.detailLoader.Cancel()
	c.marksLoader.Cancel()
}

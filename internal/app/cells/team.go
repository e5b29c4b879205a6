// internal/app/cells/team.go
package cells

import (
	"context"

	"github.com/dalemusser/teamspace/internal/app/system/signal"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TeamCell owns the team roster of the current organization scope. It
// watches the organization cell: a new scope supersedes any in-flight
// load, and a nil scope resets the roster to its initial empty state so
// no stale teams survive a lens change.
type TeamCell struct {
	repo TeamRepo
	log  *zap.Logger

	state  *signal.Source[Collection[models.Team]]
	loader signal.Loader

	unsubscribe func()
}

// NewTeamCell builds the cell and attaches the organization watch.
func NewTeamCell(orgs *OrganizationCell, repo TeamRepo, log *zap.Logger) *TeamCell {
	c := &TeamCell{
		repo:  repo,
		log:   log.Named("team_cell"),
		state: signal.New(emptyCollection[models.Team]()),
	}
	c.unsubscribe = orgs.SubscribeCurrent(c.onOrganization)
	return c
}

// State returns the team roster state.
func (c *TeamCell) State() Collection[models.Team] { return c.state.Get() }

// Subscribe registers fn for roster changes.
func (c *TeamCell) Subscribe(fn func(Collection[models.Team])) func() {
	return c.state.Subscribe(fn)
}

func (c *TeamCell) onOrganization(orgID *primitive.ObjectID) {
	if orgID == nil {
		c.loader.Cancel()
		c.state.Set(emptyCollection[models.Team]())
		return
	}

	id := *orgID
	c.state.Update(func(s Collection[models.Team]) Collection[models.Team] {
		s.Loading = true
		s.Error = ""
		return s
	})
	c.loader.Start(func(ctx context.Context, commit func(func()) bool) {
		teams, err := c.repo.ListForOrganization(ctx, id)
		if err != nil {
			c.log.Warn("team load failed", zap.String("organization_id", id.Hex()), zap.Error(err))
			commit(func() {
				c.state.Update(func(s Collection[models.Team]) Collection[models.Team] {
					s.Loading = false
					s.Error = "loading teams failed: " + err.Error()
					return s
				})
			})
			return
		}
		commit(func() {
			c.state.Set(Collection[models.Team]{Items: teams})
		})
	})
}

// Close detaches the organization watch.
func (c *TeamCell) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.loader.Cancel()
}

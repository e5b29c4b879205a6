// internal/app/cells/module.go
package cells

import (
	"context"
	"sort"

	"github.com/dalemusser/teamspace/internal/app/system/signal"
	"github.com/dalemusser/teamspace/internal/app/system/timeouts"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ModuleCell owns the module list of the current workspace, kept in
// explicit order. The workspace watch is a switch-map effect: a new
// workspace supersedes any in-flight load, and a nil workspace resets
// the cell to empty immediately — stale modules from workspace A must
// never render while workspace B is active.
type ModuleCell struct {
	repo ModuleRepo
	log  *zap.Logger

	state  *signal.Source[Collection[models.Module]]
	loader signal.Loader

	unsubscribe func()
}

// NewModuleCell builds the cell and attaches the workspace watch.
func NewModuleCell(workspaces *WorkspaceCell, repo ModuleRepo, log *zap.Logger) *ModuleCell {
	c := &ModuleCell{
		repo:  repo,
		log:   log.Named("module_cell"),
		state: signal.New(emptyCollection[models.Module]()),
	}
	c.unsubscribe = workspaces.SubscribeCurrent(c.onWorkspace)
	return c
}

// State returns the module collection, sorted by Order ascending with
// ties kept in original position.
func (c *ModuleCell) State() Collection[models.Module] { return c.state.Get() }

// Subscribe registers fn for module state changes.
func (c *ModuleCell) Subscribe(fn func(Collection[models.Module])) func() {
	return c.state.Subscribe(fn)
}

// Reorder applies a full {id, order} batch locally, then writes it back.
// The local reorder is optimistic; a failed write-back surfaces in the
// error field and the live subscription reconciles.
func (c *ModuleCell) Reorder(workspaceID primitive.ObjectID, orders []models.ModuleOrder) {
	byID := make(map[primitive.ObjectID]int, len(orders))
	for _, o := range orders {
		byID[o.ID] = o.Order
	}

	c.state.Update(func(s Collection[models.Module]) Collection[models.Module] {
		items := append([]models.Module{}, s.Items...)
		for i := range items {
			if order, ok := byID[items[i].ID]; ok {
				items[i].Order = order
			}
		}
		sortModules(items)
		s.Items = items
		s.Error = ""
		return s
	})

	batch := append([]models.ModuleOrder{}, orders...)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
		defer cancel()
		if err := c.repo.Reorder(ctx, workspaceID, batch); err != nil {
			c.log.Warn("module reorder write-back failed", zap.Error(err))
			c.state.Update(func(s Collection[models.Module]) Collection[models.Module] {
				s.Error = "saving module order failed: " + err.Error()
				return s
			})
		}
	}()
}

// CreateModule persists a module in the given workspace and appends it
// to the local list.
func (c *ModuleCell) CreateModule(ctx context.Context, m models.Module) (models.Module, error) {
	created, err := c.repo.Create(ctx, m)
	if err != nil {
		c.log.Warn("module create failed", zap.Error(err))
		c.state.Update(func(s Collection[models.Module]) Collection[models.Module] {
			s.Error = "creating module failed: " + err.Error()
			return s
		})
		return models.Module{}, err
	}
	c.state.Update(func(s Collection[models.Module]) Collection[models.Module] {
		items := append(append([]models.Module{}, s.Items...), created)
		sortModules(items)
		s.Items = items
		s.Error = ""
		return s
	})
	return created, nil
}

func (c *ModuleCell) onWorkspace(ws *models.Workspace) {
	if ws == nil {
		c.loader.Cancel()
		c.state.Set(emptyCollection[models.Module]())
		return
	}

	wsID := ws.ID
	c.state.Update(func(s Collection[models.Module]) Collection[models.Module] {
		s.Loading = true
		s.Error = ""
		return s
	})
	c.loader.Start(func(ctx context.Context, commit func(func()) bool) {
		items, err := c.repo.ListByWorkspace(ctx, wsID)
		if err != nil {
			c.log.Warn("module load failed", zap.String("workspace_id", wsID.Hex()), zap.Error(err))
			commit(func() {
				c.state.Update(func(s Collection[models.Module]) Collection[models.Module] {
					s.Loading = false
					s.Error = "loading modules failed: " + err.Error()
					return s
				})
			})
			return
		}
		sortModules(items)
		if !commit(func() { c.state.Set(Collection[models.Module]{Items: items}) }) {
			return
		}

		// Live reconciliation: wholesale replaces until this load is
		// superseded or the cell closes.
		updates, err := c.repo.Watch(ctx, wsID)
		if err != nil {
			c.log.Debug("module watch unavailable", zap.Error(err))
			return
		}
		for next := range updates {
			fresh := append([]models.Module{}, next...)
			sortModules(fresh)
			if !commit(func() { c.state.Set(Collection[models.Module]{Items: fresh}) }) {
				return
			}
		}
	})
}

// sortModules is a stable sort by Order ascending; equal orders keep
// their original relative position.
func sortModules(items []models.Module) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Order < items[j].Order
	})
}

// Close detaches the workspace watch.
func (c *ModuleCell) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.loader.Cancel()
}

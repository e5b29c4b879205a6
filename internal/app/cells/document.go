// internal/app/cells/document.go
package cells

import (
	"context"

	"github.com/dalemusser/teamspace/internal/app/system/signal"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"go.uber.org/zap"
)

// DocumentCell owns the document list of the current workspace. Same
// contract as the module cell: switch-map loads keyed by workspace id, a
// hard reset to empty when the workspace unloads, live updates applied
// wholesale.
type DocumentCell struct {
	identity *IdentityCell
	repo     DocumentRepo
	log      *zap.Logger

	state  *signal.Source[Collection[models.Document]]
	loader signal.Loader

	unsubscribe func()
}

// NewDocumentCell builds the cell and attaches the workspace watch.
func NewDocumentCell(identity *IdentityCell, workspaces *WorkspaceCell, repo DocumentRepo, log *zap.Logger) *DocumentCell {
	c := &DocumentCell{
		identity: identity,
		repo:     repo,
		log:      log.Named("document_cell"),
		state:    signal.New(emptyCollection[models.Document]()),
	}
	c.unsubscribe = workspaces.SubscribeCurrent(c.onWorkspace)
	return c
}

// State returns the document collection.
func (c *DocumentCell) State() Collection[models.Document] { return c.state.Get() }

// Subscribe registers fn for document state changes.
func (c *DocumentCell) Subscribe(fn func(Collection[models.Document])) func() {
	return c.state.Subscribe(fn)
}

// CreateDocument persists a document and appends it locally. Requires a
// signed-in identity; the store sanitizes title and body before writing.
func (c *DocumentCell) CreateDocument(ctx context.Context, d models.Document) (models.Document, error) {
	st := c.identity.State()
	if st.Status != AuthAuthenticated || st.Identity == nil {
		return models.Document{}, ErrAuthRequired
	}
	if d.Title == "" {
		return models.Document{}, validationf("document title is required")
	}
	d.CreatedBy = st.Identity.ID

	created, err := c.repo.Create(ctx, d)
	if err != nil {
		c.log.Warn("document create failed", zap.Error(err))
		c.state.Update(func(s Collection[models.Document]) Collection[models.Document] {
			s.Error = "creating document failed: " + err.Error()
			return s
		})
		return models.Document{}, err
	}
	c.state.Update(func(s Collection[models.Document]) Collection[models.Document] {
		s.Items = append(append([]models.Document{}, s.Items...), created)
		s.Error = ""
		return s
	})
	return created, nil
}

// DeleteDocument removes a document from the store and the local list.
func (c *DocumentCell) DeleteDocument(ctx context.Context, d models.Document) error {
	if err := c.repo.Delete(ctx, d.ID); err != nil {
		c.log.Warn("document delete failed", zap.String("document_id", d.ID.Hex()), zap.Error(err))
		c.state.Update(func(s Collection[models.Document]) Collection[models.Document] {
			s.Error = "deleting document failed: " + err.Error()
			return s
		})
		return err
	}
	c.state.Update(func(s Collection[models.Document]) Collection[models.Document] {
		items := make([]models.Document, 0, len(s.Items))
		for _, it := range s.Items {
			if it.ID != d.ID {
				items = append(items, it)
			}
		}
		s.Items = items
		s.Error = ""
		return s
	})
	return nil
}

func (c *DocumentCell) onWorkspace(ws *models.Workspace) {
	if ws == nil {
		c.loader.Cancel()
		c.state.Set(emptyCollection[models.Document]())
		return
	}

	wsID := ws.ID
	c.state.Update(func(s Collection[models.Document]) Collection[models.Document] {
		s.Loading = true
		s.Error = ""
		return s
	})
	c.loader.Start(func(ctx context.Context, commit func(func()) bool) {
		items, err := c.repo.ListByWorkspace(ctx, wsID)
		if err != nil {
			c.log.Warn("document load failed", zap.String("workspace_id", wsID.Hex()), zap.Error(err))
			commit(func() {
				c.state.Update(func(s Collection[models.Document]) Collection[models.Document] {
					s.Loading = false
					s.Error = "loading documents failed: " + err.Error()
					return s
				})
			})
			return
		}
		if !commit(func() { c.state.Set(Collection[models.Document]{Items: items}) }) {
			return
		}

		updates, err := c.repo.Watch(ctx, wsID)
		if err != nil {
			c.log.Debug("document watch unavailable", zap.Error(err))
			return
		}
		for next := range updates {
			fresh := next
			if !commit(func() { c.state.Set(Collection[models.Document]{Items: fresh}) }) {
				return
			}
		}
	})
}

// Close detaches the workspace watch.
func (c *DocumentCell) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.loader.Cancel()
}

// internal/app/cells/notification.go
package cells

import (
	"context"
	"time"

	"github.com/dalemusser/teamspace/internal/app/system/signal"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// NotificationState extends the uniform collection shape with the
// per-user delivery settings.
type NotificationState struct {
	Collection[models.Notification]
	Settings *models.NotificationSettings
}

// NotificationCell owns the signed-in user's notifications. Unlike the
// other resource cells it is identity-scoped, not workspace-scoped: it
// watches the identity cell and survives workspace switches.
type NotificationCell struct {
	identity *IdentityCell
	repo     NotificationRepo
	log      *zap.Logger

	state  *signal.Source[NotificationState]
	loader signal.Loader
	userID *signal.Source[*primitive.ObjectID]

	unsubscribe func()
}

// NewNotificationCell builds the cell and attaches the identity watch.
func NewNotificationCell(identity *IdentityCell, repo NotificationRepo, log *zap.Logger) *NotificationCell {
	c := &NotificationCell{
		identity: identity,
		repo:     repo,
		log:      log.Named("notification_cell"),
		state:    signal.New(initialNotificationState()),
		userID:   signal.New[*primitive.ObjectID](nil),
	}
	c.unsubscribe = identity.Subscribe(c.onIdentity)
	return c
}

func initialNotificationState() NotificationState {
	return NotificationState{Collection: emptyCollection[models.Notification]()}
}

// State returns the notification state.
func (c *NotificationCell) State() NotificationState { return c.state.Get() }

// Subscribe registers fn for notification state changes.
func (c *NotificationCell) Subscribe(fn func(NotificationState)) func() {
	return c.state.Subscribe(fn)
}

// UnreadCount is a derived view over the current items.
func (c *NotificationCell) UnreadCount() int {
	n := 0
	for _, it := range c.state.Get().Items {
		if !it.Read {
			n++
		}
	}
	return n
}

// MarkAsRead marks one notification read, locally first, then in the
// store.
func (c *NotificationCell) MarkAsRead(ctx context.Context, id primitive.ObjectID) error {
	if c.identity.State().Status != AuthAuthenticated {
		return ErrAuthRequired
	}

	now := time.Now().UTC()
	c.state.Update(func(s NotificationState) NotificationState {
		items := append([]models.Notification{}, s.Items...)
		for i := range items {
			if items[i].ID == id && !items[i].Read {
				items[i].Read = true
				t := now
				items[i].ReadAt = &t
			}
		}
		s.Items = items
		return s
	})

	if err := c.repo.MarkAsRead(ctx, id); err != nil {
		c.log.Warn("mark as read failed", zap.String("notification_id", id.Hex()), zap.Error(err))
		c.state.Update(func(s NotificationState) NotificationState {
			s.Error = "marking notification read failed: " + err.Error()
			return s
		})
		return err
	}
	return nil
}

// MarkAllAsRead is a logical transaction boundary without rollback:
// everything is marked read locally, then the batched store write runs.
// On failure the error surfaces in the error field and whatever the
// store already persisted stays persisted; the live subscription
// reconciles. Requires a signed-in identity.
func (c *NotificationCell) MarkAllAsRead(ctx context.Context) error {
	st := c.identity.State()
	if st.Status != AuthAuthenticated || st.Identity == nil {
		return ErrAuthRequired
	}
	userID := st.Identity.ID

	now := time.Now().UTC()
	c.state.Update(func(s NotificationState) NotificationState {
		items := append([]models.Notification{}, s.Items...)
		for i := range items {
			if !items[i].Read {
				items[i].Read = true
				t := now
				items[i].ReadAt = &t
			}
		}
		s.Items = items
		s.Error = ""
		return s
	})

	count, err := c.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		c.log.Warn("mark all as read failed", zap.Error(err))
		c.state.Update(func(s NotificationState) NotificationState {
			s.Error = "marking notifications read failed: " + err.Error()
			return s
		})
		return err
	}
	c.log.Debug("notifications marked read", zap.Int64("count", count))
	return nil
}

// UpdateSettings persists new delivery settings and republishes them.
func (c *NotificationCell) UpdateSettings(ctx context.Context, settings models.NotificationSettings) error {
	st := c.identity.State()
	if st.Status != AuthAuthenticated || st.Identity == nil {
		return ErrAuthRequired
	}
	settings.UserID = st.Identity.ID
	settings.UpdatedAt = time.Now().UTC()

	if err := c.repo.UpdateSettings(ctx, settings); err != nil {
		c.log.Warn("notification settings update failed", zap.Error(err))
		c.state.Update(func(s NotificationState) NotificationState {
			s.Error = "saving notification settings failed: " + err.Error()
			return s
		})
		return err
	}
	c.state.Update(func(s NotificationState) NotificationState {
		copied := settings
		s.Settings = &copied
		s.Error = ""
		return s
	})
	return nil
}

func (c *NotificationCell) onIdentity(st IdentityState) {
	switch st.Status {
	case AuthAuthenticated:
		if st.Identity == nil {
			return
		}
		id := st.Identity.ID
		prev := c.userID.Get()
		if prev != nil && *prev == id {
			return
		}
		c.userID.Set(&id)
		c.load(id)
	case AuthUnauthenticated:
		c.loader.Cancel()
		c.userID.Set(nil)
		c.state.Set(initialNotificationState())
	}
}

func (c *NotificationCell) load(userID primitive.ObjectID) {
	c.state.Update(func(s NotificationState) NotificationState {
		s.Loading = true
		s.Error = ""
		return s
	})
	c.loader.Start(func(ctx context.Context, commit func(func()) bool) {
		items, err := c.repo.ListForUser(ctx, userID)
		if err != nil {
			c.log.Warn("notification load failed", zap.Error(err))
			commit(func() {
				c.state.Update(func(s NotificationState) NotificationState {
					s.Loading = false
					s.Error = "loading notifications failed: " + err.Error()
					return s
				})
			})
			return
		}
		settings, err := c.repo.GetSettings(ctx, userID)
		var settingsPtr *models.NotificationSettings
		if err == nil {
			settingsPtr = &settings
		}

		if !commit(func() {
			c.state.Set(NotificationState{
				Collection: Collection[models.Notification]{Items: items},
				Settings:   settingsPtr,
			})
		}) {
			return
		}

		updates, err := c.repo.Watch(ctx, userID)
		if err != nil {
			c.log.Debug("notification watch unavailable", zap.Error(err))
			return
		}
		for next := range updates {
			fresh := next
			if !commit(func() {
				c.state.Update(func(s NotificationState) NotificationState {
					s.Items = fresh
					s.Loading = false
					return s
				})
			}) {
				return
			}
		}
	})
}

// Close detaches the identity watch.
func (c *NotificationCell) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.loader.Cancel()
}

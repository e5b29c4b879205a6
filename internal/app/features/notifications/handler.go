// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/teamspace/internal/app/cells"
	"github.com/dalemusser/teamspace/internal/app/features/shared/respond"
	"github.com/dalemusser/teamspace/internal/app/system/timeouts"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler exposes the signed-in user's notifications and delivery
// settings.
type Handler struct {
	Engine *cells.Engine
	Log    *zap.Logger
}

func NewHandler(engine *cells.Engine, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Log: logger}
}

type listResponse struct {
	Notifications []models.Notification        `json:"notifications"`
	UnreadCount   int                          `json:"unread_count"`
	Settings      *models.NotificationSettings `json:"settings"`
	Loading       bool                         `json:"loading"`
	Error         string                       `json:"error,omitempty"`
}

// ServeList handles GET /api/notifications.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	st := h.Engine.Notifications.State()
	respond.JSON(w, http.StatusOK, listResponse{
		Notifications: st.Items,
		UnreadCount:   h.Engine.Notifications.UnreadCount(),
		Settings:      st.Settings,
		Loading:       st.Loading,
		Error:         st.Error,
	})
}

// HandleMarkRead handles POST /api/notifications/{id}/read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Engine.Notifications.MarkAsRead(ctx, id); err != nil {
		h.respondCellError(w, err, "marking notification read failed")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// HandleMarkAllRead handles POST /api/notifications/read-all.
func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Engine.Notifications.MarkAllAsRead(ctx); err != nil {
		h.respondCellError(w, err, "marking notifications read failed")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"status":       "read",
		"unread_count": h.Engine.Notifications.UnreadCount(),
	})
}

// ServeSettings handles GET /api/notifications/settings.
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	st := h.Engine.Notifications.State()
	if st.Settings == nil {
		respond.Error(w, http.StatusNotFound, "notification settings not loaded")
		return
	}
	respond.JSON(w, http.StatusOK, st.Settings)
}

type settingsRequest struct {
	EmailEnabled  bool `json:"email_enabled"`
	InAppEnabled  bool `json:"in_app_enabled"`
	DigestEnabled bool `json:"digest_enabled"`
}

// HandleUpdateSettings handles PUT /api/notifications/settings.
func (h *Handler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.Engine.Notifications.UpdateSettings(ctx, models.NotificationSettings{
		EmailEnabled:  req.EmailEnabled,
		InAppEnabled:  req.InAppEnabled,
		DigestEnabled: req.DigestEnabled,
	})
	if err != nil {
		h.respondCellError(w, err, "saving notification settings failed")
		return
	}
	respond.JSON(w, http.StatusOK, h.Engine.Notifications.State().Settings)
}

func (h *Handler) respondCellError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, cells.ErrAuthRequired):
		respond.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, cells.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "notification not found")
	default:
		respond.Error(w, http.StatusInternalServerError, fallback)
	}
}

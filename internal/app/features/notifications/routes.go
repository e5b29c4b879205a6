// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/dalemusser/teamspace/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the notification endpoints behind the session middleware.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/{id}/read", h.HandleMarkRead)
	r.Post("/read-all", h.HandleMarkAllRead)
	r.Get("/settings", h.ServeSettings)
	r.Put("/settings", h.HandleUpdateSettings)

	return r
}

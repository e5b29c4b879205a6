// internal/app/features/workspaces/routes.go
package workspaces

import (
	"github.com/dalemusser/teamspace/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the workspace endpoints behind the session middleware.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/current", h.ServeCurrent)
	r.Post("/{id}/favorite", h.HandleToggleFavorite)
	r.Post("/{id}/track", h.HandleTrackAccess)

	return r
}

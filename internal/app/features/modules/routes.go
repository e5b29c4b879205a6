// internal/app/features/modules/routes.go
package modules

import (
	"github.com/dalemusser/teamspace/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the module endpoints behind the session middleware.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Post("/reorder", h.HandleReorder)

	return r
}

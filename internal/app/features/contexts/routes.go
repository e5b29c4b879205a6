// internal/app/features/contexts/routes.go
package contexts

import (
	"github.com/dalemusser/teamspace/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the context endpoints behind the session middleware.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeState)
	r.Post("/switch", h.HandleSwitch)
	r.Post("/workspace", h.HandleSwitchWorkspace)
	r.Post("/reset", h.HandleReset)

	return r
}

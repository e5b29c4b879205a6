// internal/app/features/members/routes.go
package members

import (
	"github.com/dalemusser/teamspace/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the roster and invitation endpoints behind the session
// middleware.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/invitations", h.HandleInvite)
	r.Post("/invitations/respond", h.HandleRespond)

	return r
}

// internal/app/features/auth/routes.go
package auth

import (
	"github.com/go-chi/chi/v5"
)

// Routes wires the credential and OAuth endpoints. These are the only
// feature routes that do not require a signed-in session.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/login", h.HandleLogin)
	r.Post("/register", h.HandleRegister)
	r.Post("/logout", h.HandleLogout)
	r.Post("/reset-password", h.HandleResetPassword)
	r.Post("/reset-password/complete", h.HandleCompleteReset)
	r.Get("/me", h.ServeCurrent)

	return r
}

// GoogleRoutes wires the browser-facing OAuth redirect endpoints. They
// are mounted outside /api because Google redirects the user agent here.
func GoogleRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeGoogleLogin)
	r.Get("/callback", h.ServeGoogleCallback)

	return r
}

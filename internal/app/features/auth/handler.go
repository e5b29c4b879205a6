// internal/app/features/auth/handler.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/teamspace/internal/app/cells"
	"github.com/dalemusser/teamspace/internal/app/features/shared/respond"
	"github.com/dalemusser/teamspace/internal/app/identity"
	"github.com/dalemusser/teamspace/internal/app/store/oauthstate"
	sysauth "github.com/dalemusser/teamspace/internal/app/system/auth"
	"github.com/dalemusser/teamspace/internal/app/system/ratelimit"
	"github.com/dalemusser/teamspace/internal/app/system/timeouts"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler drives the identity cell for the credential endpoints and the
// Google OAuth round trip. Every state change flows through the engine;
// the handler only translates HTTP.
type Handler struct {
	Engine     *cells.Engine
	Provider   *identity.Provider
	Google     *identity.Google
	SessionMgr *sysauth.SessionManager
	StateStore *oauthstate.Store
	Limiter    *ratelimit.Limiter
	Log        *zap.Logger
}

func NewHandler(engine *cells.Engine, provider *identity.Provider, google *identity.Google, sm *sysauth.SessionManager, states *oauthstate.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Engine:     engine,
		Provider:   provider,
		Google:     google,
		SessionMgr: sm,
		StateStore: states,
		Limiter:    ratelimit.New(10, time.Minute),
		Log:        logger,
	}
}

// throttle applies the per-IP limiter to credential endpoints. It
// returns false after writing the 429 response.
func (h *Handler) throttle(w http.ResponseWriter, r *http.Request) bool {
	if h.Limiter.Allow(ratelimit.ClientIP(r)) {
		return true
	}
	respond.Error(w, http.StatusTooManyRequests, "too many attempts; try again later")
	return false
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// HandleLogin handles POST /api/auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.throttle(w, r) {
		return
	}

	var req credentialsRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Engine.Identity.Login(ctx, req.Email, req.Password); err != nil {
		respond.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	h.Limiter.Reset(ratelimit.ClientIP(r))

	st := h.Engine.Identity.State()
	if err := h.signInSession(w, r, st); err != nil {
		h.Log.Error("failed to write session after login", zap.Error(err))
	}

	respond.JSON(w, http.StatusOK, st.Identity)
}

// HandleRegister handles POST /api/auth/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Engine.Identity.Register(ctx, req.Email, req.Password, req.DisplayName); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, identity.ErrDuplicateEmail) {
			status = http.StatusConflict
		}
		respond.Error(w, status, err.Error())
		return
	}

	st := h.Engine.Identity.State()
	if err := h.signInSession(w, r, st); err != nil {
		h.Log.Error("failed to write session after register", zap.Error(err))
	}

	respond.JSON(w, http.StatusCreated, st.Identity)
}

// HandleLogout handles POST /api/auth/logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Engine.Identity.Logout(ctx); err != nil {
		h.Log.Warn("engine logout reported error", zap.Error(err))
	}
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("failed to clear session cookie", zap.Error(err))
	}

	respond.JSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

type resetRequest struct {
	Email string `json:"email"`
}

// HandleResetPassword handles POST /api/auth/reset-password. The
// response is the same whether or not the email exists.
func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	if !h.throttle(w, r) {
		return
	}

	var req resetRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Engine.Identity.ResetPassword(ctx, req.Email); err != nil {
		respond.Error(w, http.StatusInternalServerError, "could not start password reset")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"status": "reset_started"})
}

type completeResetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// HandleCompleteReset handles POST /api/auth/reset-password/complete.
func (h *Handler) HandleCompleteReset(w http.ResponseWriter, r *http.Request) {
	var req completeResetRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Provider.CompleteReset(ctx, req.Token, req.Password); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"status": "password_updated"})
}

// ServeGoogleLogin handles GET /auth/google: saves a CSRF state and
// redirects to the consent screen.
func (h *Handler) ServeGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.Google == nil || !h.Google.IsConfigured() {
		respond.Error(w, http.StatusNotImplemented, "google sign-in is not configured")
		return
	}

	state := uuid.NewString()
	returnURL := r.URL.Query().Get("return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	expiresAt := time.Now().UTC().Add(10 * time.Minute)
	if err := h.StateStore.Save(ctx, state, returnURL, expiresAt); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "could not start google sign-in")
		return
	}

	http.Redirect(w, r, h.Google.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// ServeGoogleCallback handles GET /auth/google/callback.
func (h *Handler) ServeGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("google oauth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		respond.Error(w, http.StatusUnauthorized, "google sign-in was denied")
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		respond.Error(w, http.StatusBadRequest, "missing state or code parameter")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	returnURL, valid, err := h.StateStore.Validate(ctx, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "google sign-in failed")
		return
	}
	if !valid {
		respond.Error(w, http.StatusUnauthorized, "invalid or expired sign-in state")
		return
	}

	ident, err := h.Google.HandleCallback(ctx, code)
	if err != nil {
		h.Log.Warn("google callback failed", zap.Error(err))
		respond.Error(w, http.StatusUnauthorized, "google sign-in failed")
		return
	}

	err = h.SessionMgr.SignIn(w, r, sysauth.SessionUser{
		ID:    ident.ID.Hex(),
		Name:  ident.DisplayName,
		Email: ident.Email,
		Type:  string(ident.Type),
	})
	if err != nil {
		h.Log.Error("failed to write session after google sign-in", zap.Error(err))
	}

	if returnURL == "" {
		returnURL = "/"
	}
	http.Redirect(w, r, returnURL, http.StatusSeeOther)
}

// ServeCurrent handles GET /api/auth/me.
func (h *Handler) ServeCurrent(w http.ResponseWriter, r *http.Request) {
	st := h.Engine.Identity.State()
	respond.JSON(w, http.StatusOK, map[string]any{
		"status":   st.Status,
		"identity": st.Identity,
		"error":    st.Error,
	})
}

func (h *Handler) signInSession(w http.ResponseWriter, r *http.Request, st cells.IdentityState) error {
	if st.Identity == nil {
		return nil
	}
	return h.SessionMgr.SignIn(w, r, sysauth.SessionUser{
		ID:    st.Identity.ID.Hex(),
		Name:  st.Identity.DisplayName,
		Email: st.Identity.Email,
		Type:  string(st.Identity.Type),
	})
}

// internal/app/features/members/handler.go
package members

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/teamspace/internal/app/cells"
	"github.com/dalemusser/teamspace/internal/app/features/shared/respond"
	"github.com/dalemusser/teamspace/internal/app/system/mailer"
	"github.com/dalemusser/teamspace/internal/app/system/normalize"
	"github.com/dalemusser/teamspace/internal/app/system/timeouts"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"go.uber.org/zap"
)

// Handler exposes the member roster of the active workspace plus the
// invitation flow. Invitation emails are best effort: a delivery
// failure never fails the invite.
type Handler struct {
	Engine   *cells.Engine
	Mail     *mailer.Mailer
	SiteName string
	BaseURL  string
	Log      *zap.Logger
}

func NewHandler(engine *cells.Engine, mail *mailer.Mailer, siteName, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Engine:   engine,
		Mail:     mail,
		SiteName: siteName,
		BaseURL:  baseURL,
		Log:      logger,
	}
}

func (h *Handler) activeWorkspace(w http.ResponseWriter) (*models.Workspace, bool) {
	ws := h.Engine.Workspaces.Current()
	if ws == nil {
		respond.Error(w, http.StatusConflict, "no workspace is active")
		return nil, false
	}
	return ws, true
}

type listResponse struct {
	Members []models.Member `json:"members"`
	Loading bool            `json:"loading"`
	Error   string          `json:"error,omitempty"`
}

// ServeList handles GET /api/members.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.activeWorkspace(w); !ok {
		return
	}
	st := h.Engine.Members.State()
	respond.JSON(w, http.StatusOK, listResponse{Members: st.Items, Loading: st.Loading, Error: st.Error})
}

type inviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// HandleInvite handles POST /api/members/invitations.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.activeWorkspace(w)
	if !ok {
		return
	}

	var req inviteRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Role = normalize.Role(req.Role)
	if req.Role == "" {
		req.Role = "viewer"
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	inv, err := h.Engine.Members.Invite(ctx, *ws, req.Email, req.Role)
	if err != nil {
		var verr *cells.ValidationError
		switch {
		case errors.As(err, &verr):
			respond.Error(w, http.StatusUnprocessableEntity, verr.Reason)
		case errors.Is(err, cells.ErrAuthRequired):
			respond.Error(w, http.StatusUnauthorized, err.Error())
		default:
			respond.Error(w, http.StatusInternalServerError, "creating invitation failed")
		}
		return
	}

	h.sendInvitationEmail(ws, inv)
	respond.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) sendInvitationEmail(ws *models.Workspace, inv models.Invitation) {
	if h.Mail == nil {
		h.Log.Info("mailer not configured; invitation link not sent",
			zap.String("email", inv.Email),
			zap.String("workspace", ws.Name))
		return
	}

	inviter := ""
	if ident := h.Engine.Identity.State().Identity; ident != nil {
		inviter = ident.DisplayName
	}

	email := mailer.BuildInvitationEmail(mailer.InvitationEmailData{
		SiteName:      h.SiteName,
		WorkspaceName: ws.Name,
		InviterName:   inviter,
		AcceptLink:    fmt.Sprintf("%s/invitations?token=%s", h.BaseURL, inv.Token),
		ExpiresIn:     "14 days",
	})
	email.To = inv.Email

	go func() {
		if err := h.Mail.Send(email); err != nil {
			h.Log.Warn("invitation email delivery failed",
				zap.String("email", inv.Email), zap.Error(err))
		}
	}()
}

type respondRequest struct {
	Token  string `json:"token"`
	Accept bool   `json:"accept"`
}

// HandleRespond handles POST /api/members/invitations/respond. It is
// reachable without an active workspace; the token alone identifies the
// invitation.
func (h *Handler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Token == "" {
		respond.Error(w, http.StatusBadRequest, "invitation token is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Engine.Members.RespondToInvitation(ctx, req.Token, req.Accept); err != nil {
		var verr *cells.ValidationError
		switch {
		case errors.As(err, &verr):
			respond.Error(w, http.StatusConflict, verr.Reason)
		case errors.Is(err, cells.ErrNotFound):
			respond.Error(w, http.StatusNotFound, "invitation not found")
		default:
			respond.Error(w, http.StatusInternalServerError, "responding to invitation failed")
		}
		return
	}

	status := "declined"
	if req.Accept {
		status = "accepted"
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": status})
}

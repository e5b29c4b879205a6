// internal/app/features/contexts/handler.go
package contexts

import (
	"net/http"

	"github.com/dalemusser/teamspace/internal/app/cells"
	"github.com/dalemusser/teamspace/internal/app/features/shared/respond"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler exposes the acting-context lens over HTTP. Switching is
// resolved against the cell's available contexts so a caller can never
// assume a lens it is not a member of.
type Handler struct {
	Engine *cells.Engine
	Log    *zap.Logger
}

func NewHandler(engine *cells.Engine, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Log: logger}
}

// contextView is the wire shape of the sealed context variant.
type contextView struct {
	Type           models.ContextType `json:"type"`
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	OrganizationID string             `json:"organization_id,omitempty"`
}

func viewOf(c models.Context) *contextView {
	if c == nil {
		return nil
	}
	v := &contextView{
		Type: c.ContextType(),
		ID:   c.ContextID().Hex(),
		Name: c.DisplayName(),
	}
	switch t := c.(type) {
	case models.TeamContext:
		v.OrganizationID = t.OrganizationID.Hex()
	case models.PartnerContext:
		v.OrganizationID = t.OrganizationID.Hex()
	}
	return v
}

type stateResponse struct {
	Current     *contextView                `json:"current"`
	WorkspaceID *string                     `json:"workspace_id"`
	Available   availableView               `json:"available"`
	History     []models.ContextSwitchEvent `json:"history"`
	Loading     bool                        `json:"loading"`
	Error       string                      `json:"error,omitempty"`
}

type availableView struct {
	Organizations []models.Organization `json:"organizations"`
	Teams         []models.Team         `json:"teams"`
	Partners      []models.Partner      `json:"partners"`
}

// ServeState handles GET /api/context.
func (h *Handler) ServeState(w http.ResponseWriter, r *http.Request) {
	st := h.Engine.Context.State()

	var wsID *string
	if id := h.Engine.Context.CurrentWorkspaceID(); id != nil {
		s := id.Hex()
		wsID = &s
	}

	respond.JSON(w, http.StatusOK, stateResponse{
		Current:     viewOf(st.Current),
		WorkspaceID: wsID,
		Available: availableView{
			Organizations: st.Available.Organizations,
			Teams:         st.Available.Teams,
			Partners:      st.Available.Partners,
		},
		History: st.History,
		Loading: st.Loading,
		Error:   st.Error,
	})
}

type switchRequest struct {
	Type models.ContextType `json:"type"`
	ID   string             `json:"id"`
}

// HandleSwitch handles POST /api/context/switch. The target lens is
// resolved against the available contexts; the user lens resolves from
// the signed-in identity.
func (h *Handler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	next, ok := h.resolve(req)
	if !ok {
		respond.Error(w, http.StatusForbidden, "context is not available to this user")
		return
	}

	if err := h.Engine.Context.SwitchContext(next); err != nil {
		respond.Error(w, http.StatusUnauthorized, err.Error())
		return
	}
	respond.JSON(w, http.StatusOK, viewOf(next))
}

func (h *Handler) resolve(req switchRequest) (models.Context, bool) {
	if req.Type == models.ContextUser {
		ident := h.Engine.Identity.State().Identity
		if ident == nil {
			return nil, false
		}
		return models.UserContext{UserID: ident.ID, Email: ident.Email, Name: ident.DisplayName}, true
	}

	id, err := primitive.ObjectIDFromHex(req.ID)
	if err != nil {
		return nil, false
	}

	avail := h.Engine.Context.State().Available
	switch req.Type {
	case models.ContextOrganization:
		for _, o := range avail.Organizations {
			if o.ID == id {
				return models.OrganizationContext{OrganizationID: o.ID, Name: o.Name}, true
			}
		}
	case models.ContextTeam:
		for _, t := range avail.Teams {
			if t.ID == id {
				return models.TeamContext{TeamID: t.ID, OrganizationID: t.OrganizationID, Name: t.Name}, true
			}
		}
	case models.ContextPartner:
		for _, p := range avail.Partners {
			if p.ID == id {
				return models.PartnerContext{PartnerID: p.ID, OrganizationID: p.OrganizationID, Name: p.Name}, true
			}
		}
	}
	return nil, false
}

type switchWorkspaceRequest struct {
	WorkspaceID *string `json:"workspace_id"`
}

// HandleSwitchWorkspace handles POST /api/context/workspace. A null id
// unloads the workspace and resets everything scoped to it.
func (h *Handler) HandleSwitchWorkspace(w http.ResponseWriter, r *http.Request) {
	var req switchWorkspaceRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.WorkspaceID == nil {
		h.Engine.Context.SwitchWorkspace(nil)
		respond.JSON(w, http.StatusOK, map[string]any{"workspace_id": nil})
		return
	}

	id, err := primitive.ObjectIDFromHex(*req.WorkspaceID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}
	h.Engine.Context.SwitchWorkspace(&id)
	respond.JSON(w, http.StatusOK, map[string]any{"workspace_id": id.Hex()})
}

// HandleReset handles POST /api/context/reset: back to the user lens
// without touching history or the workspace selection.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.Engine.Context.ResetContext()
	respond.JSON(w, http.StatusOK, viewOf(h.Engine.Context.State().Current))
}

// internal/app/features/workspaces/handler.go
package workspaces

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/teamspace/internal/app/cells"
	"github.com/dalemusser/teamspace/internal/app/features/shared/respond"
	"github.com/dalemusser/teamspace/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler exposes the workspace list and the workspace commands. The
// active workspace is not selected here; that is the context feature's
// job.
type Handler struct {
	Engine *cells.Engine
	Log    *zap.Logger
}

func NewHandler(engine *cells.Engine, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Log: logger}
}

type listResponse struct {
	Workspaces []workspaceView `json:"workspaces"`
	Recent     []string        `json:"recent"`
	Favorites  []string        `json:"favorites"`
	Loading    bool            `json:"loading"`
	Error      string          `json:"error,omitempty"`
}

type workspaceView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	OwnerType      string `json:"owner_type"`
	OwnerID        string `json:"owner_id"`
	OrganizationID string `json:"organization_id,omitempty"`
	Status         string `json:"status"`
	Favorite       bool   `json:"favorite"`
}

// ServeList handles GET /api/workspaces.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	st := h.Engine.Workspaces.State()

	favs := make(map[primitive.ObjectID]bool, len(st.Favorites))
	favorites := make([]string, 0, len(st.Favorites))
	for _, id := range st.Favorites {
		favs[id] = true
		favorites = append(favorites, id.Hex())
	}
	recent := make([]string, 0, len(st.Recent))
	for _, id := range st.Recent {
		recent = append(recent, id.Hex())
	}

	views := make([]workspaceView, 0, len(st.Workspaces))
	for _, ws := range st.Workspaces {
		v := workspaceView{
			ID:        ws.ID.Hex(),
			Name:      ws.Name,
			OwnerType: string(ws.OwnerType),
			OwnerID:   ws.OwnerID.Hex(),
			Status:    ws.Status,
			Favorite:  favs[ws.ID],
		}
		if ws.OrganizationID != nil {
			v.OrganizationID = ws.OrganizationID.Hex()
		}
		views = append(views, v)
	}

	respond.JSON(w, http.StatusOK, listResponse{
		Workspaces: views,
		Recent:     recent,
		Favorites:  favorites,
		Loading:    st.Loading,
		Error:      st.Error,
	})
}

// ServeCurrent handles GET /api/workspaces/current: the loaded detail,
// or 404 when no workspace is active.
func (h *Handler) ServeCurrent(w http.ResponseWriter, r *http.Request) {
	ws := h.Engine.Workspaces.Current()
	if ws == nil {
		msg := "no workspace is active"
		if detail := h.Engine.Workspaces.State().DetailError; detail != "" {
			msg = detail
		}
		respond.Error(w, http.StatusNotFound, msg)
		return
	}
	respond.JSON(w, http.StatusOK, ws)
}

type createRequest struct {
	Name string `json:"name"`
}

// HandleCreate handles POST /api/workspaces. Ownership follows the
// active lens; team and partner lenses are rejected before any
// persistence happens.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ws, err := h.Engine.Workspaces.CreateWorkspace(ctx, req.Name)
	if err != nil {
		var verr *cells.ValidationError
		switch {
		case errors.As(err, &verr):
			respond.Error(w, http.StatusUnprocessableEntity, verr.Reason)
		case errors.Is(err, cells.ErrAuthRequired):
			respond.Error(w, http.StatusUnauthorized, err.Error())
		default:
			respond.Error(w, http.StatusInternalServerError, "creating workspace failed")
		}
		return
	}
	respond.JSON(w, http.StatusCreated, ws)
}

// HandleToggleFavorite handles POST /api/workspaces/{id}/favorite.
func (h *Handler) HandleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}
	h.Engine.Workspaces.ToggleFavorite(id)

	for _, fav := range h.Engine.Workspaces.State().Favorites {
		if fav == id {
			respond.JSON(w, http.StatusOK, map[string]bool{"favorite": true})
			return
		}
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"favorite": false})
}

// HandleTrackAccess handles POST /api/workspaces/{id}/track.
func (h *Handler) HandleTrackAccess(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}
	h.Engine.Workspaces.TrackAccess(id)
	respond.JSON(w, http.StatusOK, map[string]string{"status": "tracked"})
}

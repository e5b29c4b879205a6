// internal/app/features/modules/handler.go
package modules

import (
	"context"
	"net/http"

	"github.com/dalemusser/teamspace/internal/app/cells"
	"github.com/dalemusser/teamspace/internal/app/features/shared/respond"
	"github.com/dalemusser/teamspace/internal/app/system/timeouts"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler exposes the module list of the active workspace. Every
// endpoint requires a loaded workspace; without one there is nothing to
// scope the list to.
type Handler struct {
	Engine *cells.Engine
	Log    *zap.Logger
}

func NewHandler(engine *cells.Engine, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Log: logger}
}

func (h *Handler) activeWorkspace(w http.ResponseWriter) (primitive.ObjectID, bool) {
	id := h.Engine.Context.CurrentWorkspaceID()
	if id == nil {
		respond.Error(w, http.StatusConflict, "no workspace is active")
		return primitive.NilObjectID, false
	}
	return *id, true
}

type listResponse struct {
	Modules []models.Module `json:"modules"`
	Loading bool            `json:"loading"`
	Error   string          `json:"error,omitempty"`
}

// ServeList handles GET /api/modules.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.activeWorkspace(w); !ok {
		return
	}
	st := h.Engine.Modules.State()
	respond.JSON(w, http.StatusOK, listResponse{Modules: st.Items, Loading: st.Loading, Error: st.Error})
}

type createRequest struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// HandleCreate handles POST /api/modules.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	wsID, ok := h.activeWorkspace(w)
	if !ok {
		return
	}

	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.Kind == "" {
		respond.Error(w, http.StatusUnprocessableEntity, "module kind and name are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Engine.Modules.CreateModule(ctx, models.Module{
		WorkspaceID: wsID,
		Kind:        req.Kind,
		Name:        req.Name,
		Order:       req.Order,
		Enabled:     true,
	})
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "creating module failed")
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

type reorderRequest struct {
	Orders []models.ModuleOrder `json:"orders"`
}

// HandleReorder handles POST /api/modules/reorder. The local order
// changes immediately; persistence is written back asynchronously.
func (h *Handler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	wsID, ok := h.activeWorkspace(w)
	if !ok {
		return
	}

	var req reorderRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Orders) == 0 {
		respond.Error(w, http.StatusUnprocessableEntity, "orders must not be empty")
		return
	}

	h.Engine.Modules.Reorder(wsID, req.Orders)
	respond.JSON(w, http.StatusOK, listResponse{Modules: h.Engine.Modules.State().Items})
}

// internal/app/features/documents/handler.go
package documents

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/teamspace/internal/app/cells"
	"github.com/dalemusser/teamspace/internal/app/features/shared/respond"
	"github.com/dalemusser/teamspace/internal/app/system/timeouts"
	"github.com/dalemusser/teamspace/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler exposes the document list of the active workspace.
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
	Documents []models.Document `json:"documents"`
	Loading   bool              `json:"loading"`
	Error     string            `json:"error,omitempty"`
}

// ServeList handles GET /api/documents.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.activeWorkspace(w); !ok {
		return
	}
	st := h.Engine.Documents.State()
	respond.JSON(w, http.StatusOK, listResponse{Documents: st.Items, Loading: st.Loading, Error: st.Error})
}

type createRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// HandleCreate handles POST /api/documents. The store sanitizes title
// and body; the handler only scopes the document to the active
// workspace.
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Engine.Documents.CreateDocument(ctx, models.Document{
		WorkspaceID: wsID,
		Title:       req.Title,
		Body:        req.Body,
	})
	if err != nil {
		var verr *cells.ValidationError
		switch {
		case errors.As(err, &verr):
			respond.Error(w, http.StatusUnprocessableEntity, verr.Reason)
		case errors.Is(err, cells.ErrAuthRequired):
			respond.Error(w, http.StatusUnauthorized, err.Error())
		default:
			respond.Error(w, http.StatusInternalServerError, "creating document failed")
		}
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

// HandleDelete handles DELETE /api/documents/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.activeWorkspace(w); !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid document id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Engine.Documents.DeleteDocument(ctx, models.Document{ID: id}); err != nil {
		if errors.Is(err, cells.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "document not found")
			return
		}
		respond.Error(w, http.StatusInternalServerError, "deleting document failed")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

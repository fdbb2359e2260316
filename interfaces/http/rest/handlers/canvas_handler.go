package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"futuremap/application/services"
	"futuremap/application/session"
	"futuremap/pkg/auth"
	pkgerrors "futuremap/pkg/errors"
)

// CanvasHandler handles workspace and canvas lifecycle requests
type CanvasHandler struct {
	base
}

// NewCanvasHandler creates a new canvas handler
func NewCanvasHandler(registry *session.Registry, errHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *CanvasHandler {
	return &CanvasHandler{base: newBase(registry, errHandler, logger)}
}

// GetWorkspace handles GET /workspace
func (h *CanvasHandler) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	h.withEngine(w, r, func(_ *auth.UserContext, engine *services.PathCanvasEngine) error {
		h.respondJSON(w, http.StatusOK, toWorkspaceView(engine.Workspace()))
		return nil
	})
}

// CreateCanvas handles POST /canvases
func (h *CanvasHandler) CreateCanvas(w http.ResponseWriter, r *http.Request) {
	h.withEngine(w, r, func(user *auth.UserContext, engine *services.PathCanvasEngine) error {
		c := engine.CreateCanvas(r.Context())
		h.logger.Info("Canvas created",
			zap.String("userID", user.UserID),
			zap.String("canvasID", c.ID().String()),
		)
		h.respondJSON(w, http.StatusCreated, toCanvasView(c, engine.Workspace().CurrentID()))
		return nil
	})
}

// GetCanvas handles GET /canvases/{canvasID}
func (h *CanvasHandler) GetCanvas(w http.ResponseWriter, r *http.Request) {
	h.withEngine(w, r, func(_ *auth.UserContext, engine *services.PathCanvasEngine) error {
		c, err := engine.Canvas(canvasParam(r))
		if err != nil {
			return err
		}
		h.respondJSON(w, http.StatusOK, toCanvasView(c, engine.Workspace().CurrentID()))
		return nil
	})
}

// SelectCanvas handles PUT /canvases/{canvasID}/current
func (h *CanvasHandler) SelectCanvas(w http.ResponseWriter, r *http.Request) {
	h.withEngine(w, r, func(_ *auth.UserContext, engine *services.PathCanvasEngine) error {
		if _, err := engine.SelectCanvas(canvasParam(r)); err != nil {
			return err
		}
		h.respondJSON(w, http.StatusOK, toWorkspaceView(engine.Workspace()))
		return nil
	})
}

// DeleteCanvas handles DELETE /canvases/{canvasID}
func (h *CanvasHandler) DeleteCanvas(w http.ResponseWriter, r *http.Request) {
	h.withEngine(w, r, func(user *auth.UserContext, engine *services.PathCanvasEngine) error {
		if err := engine.RemoveCanvas(r.Context(), canvasParam(r)); err != nil {
			return err
		}
		h.logger.Info("Canvas removed",
			zap.String("userID", user.UserID),
			zap.String("canvasID", canvasParam(r)),
		)
		h.respondJSON(w, http.StatusOK, toWorkspaceView(engine.Workspace()))
		return nil
	})
}

// PreviewSnap handles GET /canvases/{canvasID}/snap?x=&y=
func (h *CanvasHandler) PreviewSnap(w http.ResponseWriter, r *http.Request) {
	x, err := queryFloat(r, "x")
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	y, err := queryFloat(r, "y")
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	h.withEngine(w, r, func(_ *auth.UserContext, engine *services.PathCanvasEngine) error {
		pos, err := engine.PreviewSnap(canvasParam(r), x, y)
		if err != nil {
			return err
		}
		h.respondJSON(w, http.StatusOK, pos)
		return nil
	})
}

// Analyze handles GET /canvases/{canvasID}/analysis
func (h *CanvasHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	h.withEngine(w, r, func(_ *auth.UserContext, engine *services.PathCanvasEngine) error {
		analysis, err := engine.Analyze(canvasParam(r))
		if err != nil {
			return err
		}
		h.respondJSON(w, http.StatusOK, analysis)
		return nil
	})
}

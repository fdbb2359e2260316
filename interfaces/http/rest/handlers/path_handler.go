package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"futuremap/application/ports"
	"futuremap/application/services"
	"futuremap/application/session"
	"futuremap/domain/core/aggregates"
	"futuremap/pkg/auth"
	pkgerrors "futuremap/pkg/errors"
)

// PathHandler handles saving, loading and exporting career paths
type PathHandler struct {
	base
}

// NewPathHandler creates a new path handler
func NewPathHandler(registry *session.Registry, errHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *PathHandler {
	return &PathHandler{base: newBase(registry, errHandler, logger)}
}

// ResultResponse is a tagged collaborator result
type ResultResponse struct {
	OK       bool                       `json:"ok"`
	Message  string                     `json:"message,omitempty"`
	Restored []aggregates.RestoreReport `json:"restored,omitempty"`
}

// SavePath handles POST /canvases/{canvasID}/save
func (h *PathHandler) SavePath(w http.ResponseWriter, r *http.Request) {
	h.withEngine(w, r, func(user *auth.UserContext, engine *services.PathCanvasEngine) error {
		result, err := engine.SavePath(r.Context(), sessionOf(user), canvasParam(r))
		if err != nil {
			return err
		}
		h.respondJSON(w, http.StatusOK, ResultResponse{OK: result.OK, Message: result.Message})
		return nil
	})
}

// LoadPaths handles POST /paths/load
func (h *PathHandler) LoadPaths(w http.ResponseWriter, r *http.Request) {
	h.withEngine(w, r, func(user *auth.UserContext, engine *services.PathCanvasEngine) error {
		result := engine.LoadPaths(r.Context(), sessionOf(user))
		h.respondJSON(w, http.StatusOK, ResultResponse{
			OK:       result.OK,
			Message:  result.Message,
			Restored: result.Restored,
		})
		return nil
	})
}

// Export handles GET /canvases/{canvasID}/export?format=png|pdf
func (h *PathHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := ports.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = ports.ExportPNG
	}

	h.withEngine(w, r, func(_ *auth.UserContext, engine *services.PathCanvasEngine) error {
		result, err := engine.Export(r.Context(), canvasParam(r), format)
		if err != nil {
			return err
		}
		if !result.OK {
			h.respondJSON(w, http.StatusInternalServerError, ResultResponse{OK: false, Message: result.Message})
			return nil
		}

		artifact := result.Artifact
		w.Header().Set("Content-Type", artifact.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(artifact.Data); err != nil {
			h.logger.Warn("Failed to write export", zap.Error(err))
		}
		return nil
	})
}

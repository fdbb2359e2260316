package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"futuremap/application/services"
	"futuremap/application/session"
	"futuremap/domain/core/entities"
	domainservices "futuremap/domain/services"
	"futuremap/pkg/auth"
	pkgerrors "futuremap/pkg/errors"
)

// CatalogHandler handles the card catalog and the analytics profile
type CatalogHandler struct {
	base
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(registry *session.Registry, errHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{base: newBase(registry, errHandler, logger)}
}

// CatalogResponse is the browseable catalog plus the fetch outcome
type CatalogResponse struct {
	OK         bool                                `json:"ok"`
	Message    string                              `json:"message,omitempty"`
	Categories map[string]entities.CatalogCategory `json:"categories"`
}

// GetCatalog handles GET /catalog
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	h.withEngine(w, r, func(user *auth.UserContext, engine *services.PathCanvasEngine) error {
		result := engine.FetchCatalog(r.Context(), sessionOf(user))
		h.respondJSON(w, http.StatusOK, CatalogResponse{
			OK:         result.OK,
			Message:    result.Message,
			Categories: result.Catalog.Categories(),
		})
		return nil
	})
}

// AddCustomBlock handles POST /catalog/custom
func (h *CatalogHandler) AddCustomBlock(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if err := decode(w, r, &req); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	h.withEngine(w, r, func(_ *auth.UserContext, engine *services.PathCanvasEngine) error {
		if err := engine.AddCustomBlock(req.toTemplate()); err != nil {
			return err
		}
		h.respondJSON(w, http.StatusCreated, CatalogResponse{
			OK:         true,
			Categories: engine.Catalog().Categories(),
		})
		return nil
	})
}

// GetProfile handles GET /profile
func (h *CatalogHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	h.withEngine(w, r, func(_ *auth.UserContext, engine *services.PathCanvasEngine) error {
		h.respondJSON(w, http.StatusOK, engine.Profile())
		return nil
	})
}

// UpdateProfile handles PUT /profile
func (h *CatalogHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := decode(w, r, &req); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	budget, ok := domainservices.ParseBudgetTier(req.Budget)
	if !ok {
		h.errHandler.Handle(w, r, pkgerrors.NewInvalidArgumentError("budget must be one of: Low, Medium, High"))
		return
	}
	timeline, ok := domainservices.ParseTimeline(req.Timeline)
	if !ok {
		h.errHandler.Handle(w, r, pkgerrors.NewInvalidArgumentError("timeline must be one of: Fast Track, Standard, Long-Term"))
		return
	}
	interests := req.Interests
	if interests == nil {
		interests = []string{}
	}

	h.withEngine(w, r, func(_ *auth.UserContext, engine *services.PathCanvasEngine) error {
		profile := domainservices.Profile{Budget: budget, Timeline: timeline, Interests: interests}
		engine.SetProfile(profile)
		h.respondJSON(w, http.StatusOK, profile)
		return nil
	})
}

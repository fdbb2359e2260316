package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"futuremap/application/ports"
	"futuremap/application/services"
	"futuremap/application/session"
	"futuremap/pkg/auth"
	pkgerrors "futuremap/pkg/errors"
	"futuremap/pkg/utils"
)

const maxBodyBytes = 1 << 20

// base holds what every handler needs: the session registry, the error
// responder and a logger
type base struct {
	registry   *session.Registry
	errHandler *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

func newBase(registry *session.Registry, errHandler *pkgerrors.ErrorHandler, logger *zap.Logger) base {
	if logger == nil {
		logger = zap.NewNop()
	}
	return base{registry: registry, errHandler: errHandler, logger: logger}
}

// withEngine runs fn against the caller's engine; fn's error becomes the response
func (b base) withEngine(w http.ResponseWriter, r *http.Request, fn func(user *auth.UserContext, engine *services.PathCanvasEngine) error) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		b.errHandler.Handle(w, r, pkgerrors.NewUnauthorizedError("Unauthorized"))
		return
	}
	err = b.registry.With(user.UserID, func(engine *services.PathCanvasEngine) error {
		return fn(user, engine)
	})
	if err != nil {
		b.errHandler.Handle(w, r, err)
	}
}

func (b base) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		b.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// decode reads and validates a JSON request body
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return pkgerrors.NewInvalidArgumentError("Invalid request body: " + err.Error())
	}
	if err := utils.ValidateStruct(dst); err != nil {
		return pkgerrors.NewInvalidArgumentError("Validation error: " + err.Error())
	}
	return nil
}

func queryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, pkgerrors.NewInvalidArgumentError(name + " is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, pkgerrors.NewInvalidArgumentError(name + " must be a number")
	}
	return v, nil
}

func sessionOf(user *auth.UserContext) ports.Session {
	return ports.Session{UserID: user.UserID, BearerToken: user.Token}
}

func canvasParam(r *http.Request) string {
	return chi.URLParam(r, "canvasID")
}

func cardParam(r *http.Request) string {
	return chi.URLParam(r, "cardID")
}

package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"futuremap/application/services"
	"futuremap/application/session"
	"futuremap/pkg/auth"
	pkgerrors "futuremap/pkg/errors"
)

// CardHandler handles card placement and connection requests
type CardHandler struct {
	base
}

// NewCardHandler creates a new card handler
func NewCardHandler(registry *session.Registry, errHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *CardHandler {
	return &CardHandler{base: newBase(registry, errHandler, logger)}
}

// PlaceCard handles POST /canvases/{canvasID}/cards
func (h *CardHandler) PlaceCard(w http.ResponseWriter, r *http.Request) {
	var req PlaceCardRequest
	if err := decode(w, r, &req); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	h.withEngine(w, r, func(user *auth.UserContext, engine *services.PathCanvasEngine) error {
		result, err := engine.PlaceCard(r.Context(), canvasParam(r), req.toTemplate(), req.X, req.Y)
		if err != nil {
			return err
		}
		h.logger.Debug("Card placed",
			zap.String("userID", user.UserID),
			zap.String("cardID", result.Card.ID().String()),
			zap.Bool("autoConnected", result.AutoConnection != nil),
		)
		h.respondJSON(w, http.StatusCreated, PlaceCardResponse{
			Card:           toCardView(result.Card),
			AutoConnection: toConnectionView(result.AutoConnection),
		})
		return nil
	})
}

// MoveCard handles PUT /canvases/{canvasID}/cards/{cardID}/position
func (h *CardHandler) MoveCard(w http.ResponseWriter, r *http.Request) {
	var req MoveCardRequest
	if err := decode(w, r, &req); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	h.withEngine(w, r, func(_ *auth.UserContext, engine *services.PathCanvasEngine) error {
		card, err := engine.MoveCard(r.Context(), canvasParam(r), cardParam(r), req.X, req.Y)
		if err != nil {
			return err
		}
		h.respondJSON(w, http.StatusOK, toCardView(card))
		return nil
	})
}

// RemoveCard handles DELETE /canvases/{canvasID}/cards/{cardID}
func (h *CardHandler) RemoveCard(w http.ResponseWriter, r *http.Request) {
	h.withEngine(w, r, func(_ *auth.UserContext, engine *services.PathCanvasEngine) error {
		removed, err := engine.RemoveCard(r.Context(), canvasParam(r), cardParam(r))
		if err != nil {
			return err
		}
		h.respondJSON(w, http.StatusOK, map[string]interface{}{
			"removed":            cardParam(r),
			"removedConnections": removed,
		})
		return nil
	})
}

// AddConnection handles POST /canvases/{canvasID}/connections
func (h *CardHandler) AddConnection(w http.ResponseWriter, r *http.Request) {
	var req ConnectionRequest
	if err := decode(w, r, &req); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	h.withEngine(w, r, func(_ *auth.UserContext, engine *services.PathCanvasEngine) error {
		conn, err := engine.AddConnection(r.Context(), canvasParam(r), req.From, req.To)
		if err != nil {
			return err
		}
		h.respondJSON(w, http.StatusCreated, toConnectionView(&conn))
		return nil
	})
}

// BeginConnect handles POST /canvases/{canvasID}/connect/begin
func (h *CardHandler) BeginConnect(w http.ResponseWriter, r *http.Request) {
	var req ConnectClickRequest
	if err := decode(w, r, &req); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	h.withEngine(w, r, func(_ *auth.UserContext, engine *services.PathCanvasEngine) error {
		state, err := engine.BeginConnect(r.Context(), canvasParam(r), req.CardID)
		if err != nil {
			return err
		}
		h.respondJSON(w, http.StatusOK, ConnectResponse{State: toConnectStateView(state)})
		return nil
	})
}

// CompleteConnect handles POST /canvases/{canvasID}/connect/complete
func (h *CardHandler) CompleteConnect(w http.ResponseWriter, r *http.Request) {
	var req ConnectClickRequest
	if err := decode(w, r, &req); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	h.withEngine(w, r, func(_ *auth.UserContext, engine *services.PathCanvasEngine) error {
		state, conn, err := engine.CompleteConnect(r.Context(), canvasParam(r), req.CardID)
		if err != nil {
			return err
		}
		h.respondJSON(w, http.StatusOK, ConnectResponse{
			State:      toConnectStateView(state),
			Connection: toConnectionView(conn),
		})
		return nil
	})
}

package handlers

import (
	"time"

	"futuremap/domain/core/aggregates"
	"futuremap/domain/core/entities"
	"futuremap/domain/core/valueobjects"
)

// TemplateRequest is a card template in a request body
type TemplateRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Duration string `json:"duration" validate:"max=100"`
	Cost     int    `json:"cost" validate:"gte=0"`
	Type     string `json:"type" validate:"required,oneof=course exam skill institution internship"`
}

func (t TemplateRequest) toTemplate() entities.CardTemplate {
	return entities.CardTemplate{
		Title:    t.Title,
		Duration: t.Duration,
		Cost:     t.Cost,
		Type:     entities.CardType(t.Type),
	}
}

// PlaceCardRequest drops a template at a raw canvas point
type PlaceCardRequest struct {
	TemplateRequest
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MoveCardRequest is a new raw drop point
type MoveCardRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ConnectionRequest names both ends of a connection
type ConnectionRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

// ConnectClickRequest is one click of the two-click connect mode
type ConnectClickRequest struct {
	CardID string `json:"cardId" validate:"required"`
}

// ProfileRequest replaces the analytics profile
type ProfileRequest struct {
	Budget    string   `json:"budget" validate:"required"`
	Timeline  string   `json:"timeline" validate:"required"`
	Interests []string `json:"interests" validate:"max=20,dive,max=100"`
}

// ConnectStateView is the connect mode of a canvas
type ConnectStateView struct {
	Pending bool   `json:"pending"`
	Source  string `json:"source,omitempty"`
}

// CanvasView is a full canvas as returned by the API
type CanvasView struct {
	ID          string                          `json:"id"`
	Current     bool                            `json:"current"`
	CreatedAt   time.Time                       `json:"createdAt"`
	Cards       []aggregates.CardSnapshot       `json:"cards"`
	Connections []aggregates.ConnectionSnapshot `json:"connections"`
	ConnectMode ConnectStateView                `json:"connectMode"`
}

// CanvasSummary is one entry of the workspace listing
type CanvasSummary struct {
	ID          string    `json:"id"`
	Current     bool      `json:"current"`
	Cards       int       `json:"cards"`
	Connections int       `json:"connections"`
	CreatedAt   time.Time `json:"createdAt"`
}

// WorkspaceView lists every canvas of the caller
type WorkspaceView struct {
	CurrentID string          `json:"currentId"`
	Canvases  []CanvasSummary `json:"canvases"`
}

// PlaceCardResponse is the placed card and its auto-connection, if any
type PlaceCardResponse struct {
	Card           aggregates.CardSnapshot        `json:"card"`
	AutoConnection *aggregates.ConnectionSnapshot `json:"autoConnection,omitempty"`
}

// ConnectResponse reports the connect mode after a click
type ConnectResponse struct {
	State      ConnectStateView               `json:"state"`
	Connection *aggregates.ConnectionSnapshot `json:"connection,omitempty"`
}

func toCanvasView(c *aggregates.Canvas, currentID valueobjects.CanvasID) CanvasView {
	snap := c.Snapshot()
	return CanvasView{
		ID:          snap.ID,
		Current:     c.ID().Equals(currentID),
		CreatedAt:   snap.CreatedAt,
		Cards:       snap.Cards,
		Connections: snap.Connections,
		ConnectMode: toConnectStateView(c.ConnectState()),
	}
}

func toWorkspaceView(w *aggregates.Workspace) WorkspaceView {
	view := WorkspaceView{CurrentID: w.CurrentID().String()}
	for _, c := range w.Canvases() {
		view.Canvases = append(view.Canvases, CanvasSummary{
			ID:          c.ID().String(),
			Current:     c.ID().Equals(w.CurrentID()),
			Cards:       c.CardCount(),
			Connections: len(c.Connections()),
			CreatedAt:   c.CreatedAt(),
		})
	}
	return view
}

func toCardView(card *entities.Card) aggregates.CardSnapshot {
	return aggregates.CardSnapshot{
		ID:       card.ID().String(),
		Type:     card.Type(),
		Title:    card.Title(),
		Duration: card.Duration(),
		Cost:     card.Cost(),
		Position: card.Position(),
	}
}

func toConnectionView(conn *aggregates.Connection) *aggregates.ConnectionSnapshot {
	if conn == nil {
		return nil
	}
	return &aggregates.ConnectionSnapshot{From: conn.From.String(), To: conn.To.String()}
}

func toConnectStateView(state aggregates.ConnectState) ConnectStateView {
	view := ConnectStateView{Pending: state.Pending}
	if state.Pending {
		view.Source = state.Source.String()
	}
	return view
}

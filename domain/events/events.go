package events

import (
	"time"

	"futuremap/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

const (
	TypeCanvasCreated  = "canvas.created"
	TypeCanvasRemoved  = "canvas.removed"
	TypeCanvasRestored = "canvas.restored"
	TypeCardPlaced     = "canvas.card_placed"
	TypeCardMoved      = "canvas.card_moved"
	TypeCardRemoved    = "canvas.card_removed"
	TypeCardsConnected = "canvas.cards_connected"
	TypeConnectModeSet = "canvas.connect_mode_changed"
)

func newBase(canvasID valueobjects.CanvasID, eventType string, at time.Time) BaseEvent {
	return BaseEvent{AggregateID: canvasID.String(), EventType: eventType, Timestamp: at}
}

// CanvasCreated is raised when a canvas is added to a workspace
type CanvasCreated struct {
	BaseEvent
	CanvasID valueobjects.CanvasID `json:"canvas_id"`
}

// NewCanvasCreated creates a CanvasCreated event
func NewCanvasCreated(canvasID valueobjects.CanvasID, at time.Time) CanvasCreated {
	return CanvasCreated{BaseEvent: newBase(canvasID, TypeCanvasCreated, at), CanvasID: canvasID}
}

// CanvasRemoved is raised when a canvas is removed from a workspace
type CanvasRemoved struct {
	BaseEvent
	CanvasID   valueobjects.CanvasID `json:"canvas_id"`
	NewCurrent valueobjects.CanvasID `json:"new_current"`
}

// NewCanvasRemoved creates a CanvasRemoved event
func NewCanvasRemoved(canvasID, newCurrent valueobjects.CanvasID, at time.Time) CanvasRemoved {
	return CanvasRemoved{BaseEvent: newBase(canvasID, TypeCanvasRemoved, at), CanvasID: canvasID, NewCurrent: newCurrent}
}

// CanvasRestored is raised when a saved path is loaded into a workspace
type CanvasRestored struct {
	BaseEvent
	CanvasID           valueobjects.CanvasID `json:"canvas_id"`
	Cards              int                   `json:"cards"`
	DroppedConnections int                   `json:"dropped_connections"`
}

// NewCanvasRestored creates a CanvasRestored event
func NewCanvasRestored(canvasID valueobjects.CanvasID, cards, dropped int, at time.Time) CanvasRestored {
	return CanvasRestored{
		BaseEvent:          newBase(canvasID, TypeCanvasRestored, at),
		CanvasID:           canvasID,
		Cards:              cards,
		DroppedConnections: dropped,
	}
}

// CardPlaced is raised when a card is dropped on a canvas
type CardPlaced struct {
	BaseEvent
	CardID   valueobjects.CardID   `json:"card_id"`
	CardType string                `json:"card_type"`
	Position valueobjects.Position `json:"position"`
}

// NewCardPlaced creates a CardPlaced event
func NewCardPlaced(canvasID valueobjects.CanvasID, cardID valueobjects.CardID, cardType string, pos valueobjects.Position, at time.Time) CardPlaced {
	return CardPlaced{BaseEvent: newBase(canvasID, TypeCardPlaced, at), CardID: cardID, CardType: cardType, Position: pos}
}

// CardMoved is raised when a card is dragged to a new position
type CardMoved struct {
	BaseEvent
	CardID      valueobjects.CardID   `json:"card_id"`
	OldPosition valueobjects.Position `json:"old_position"`
	NewPosition valueobjects.Position `json:"new_position"`
}

// NewCardMoved creates a CardMoved event
func NewCardMoved(canvasID valueobjects.CanvasID, cardID valueobjects.CardID, oldPos, newPos valueobjects.Position, at time.Time) CardMoved {
	return CardMoved{BaseEvent: newBase(canvasID, TypeCardMoved, at), CardID: cardID, OldPosition: oldPos, NewPosition: newPos}
}

// CardRemoved is raised when a card and its connections are removed
type CardRemoved struct {
	BaseEvent
	CardID             valueobjects.CardID `json:"card_id"`
	RemovedConnections int                 `json:"removed_connections"`
}

// NewCardRemoved creates a CardRemoved event
func NewCardRemoved(canvasID valueobjects.CanvasID, cardID valueobjects.CardID, removed int, at time.Time) CardRemoved {
	return CardRemoved{BaseEvent: newBase(canvasID, TypeCardRemoved, at), CardID: cardID, RemovedConnections: removed}
}

// CardsConnected is raised when a connection is appended
type CardsConnected struct {
	BaseEvent
	From valueobjects.CardID `json:"from"`
	To   valueobjects.CardID `json:"to"`
	Auto bool                `json:"auto"`
}

// NewCardsConnected creates a CardsConnected event
func NewCardsConnected(canvasID valueobjects.CanvasID, from, to valueobjects.CardID, auto bool, at time.Time) CardsConnected {
	return CardsConnected{BaseEvent: newBase(canvasID, TypeCardsConnected, at), From: from, To: to, Auto: auto}
}

// ConnectModeChanged is raised when the two-click connect state changes
type ConnectModeChanged struct {
	BaseEvent
	Pending bool                `json:"pending"`
	Source  valueobjects.CardID `json:"source,omitempty"`
}

// NewConnectModeChanged creates a ConnectModeChanged event
func NewConnectModeChanged(canvasID valueobjects.CanvasID, pending bool, source valueobjects.CardID, at time.Time) ConnectModeChanged {
	return ConnectModeChanged{BaseEvent: newBase(canvasID, TypeConnectModeSet, at), Pending: pending, Source: source}
}

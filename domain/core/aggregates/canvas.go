package aggregates

import (
	"fmt"
	"time"

	"futuremap/domain/core/entities"
	"futuremap/domain/core/valueobjects"
	"futuremap/domain/events"
	pkgerrors "futuremap/pkg/errors"
)

// Connection is a directed edge between two cards of the same canvas
type Connection struct {
	From valueobjects.CardID `json:"from"`
	To   valueobjects.CardID `json:"to"`
}

// Touches reports whether the connection references the card at either end
func (c Connection) Touches(id valueobjects.CardID) bool {
	return c.From.Equals(id) || c.To.Equals(id)
}

// ConnectState is the per-canvas two-click connect mode: Idle or Pending(source)
type ConnectState struct {
	Pending bool                `json:"pending"`
	Source  valueobjects.CardID `json:"source"`
}

// IsIdle reports whether no connect source is selected
func (s ConnectState) IsIdle() bool {
	return !s.Pending
}

func idle() ConnectState {
	return ConnectState{}
}

func pendingOn(id valueobjects.CardID) ConnectState {
	return ConnectState{Pending: true, Source: id}
}

// Canvas is the aggregate root for one career path.
// Every operation checks its preconditions before touching state.
type Canvas struct {
	id          valueobjects.CanvasID
	grid        valueobjects.Grid
	cards       map[valueobjects.CardID]*entities.Card
	order       []valueobjects.CardID
	connections []Connection
	connect     ConnectState
	createdAt   time.Time
	events      []events.DomainEvent
}

// NewCanvas creates an empty canvas
func NewCanvas(id valueobjects.CanvasID, grid valueobjects.Grid, now time.Time) (*Canvas, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewInvalidArgumentError("canvas ID cannot be empty")
	}

	c := &Canvas{
		id:          id,
		grid:        grid,
		cards:       make(map[valueobjects.CardID]*entities.Card),
		order:       []valueobjects.CardID{},
		connections: []Connection{},
		createdAt:   now,
		events:      []events.DomainEvent{},
	}
	c.addEvent(events.NewCanvasCreated(id, now))
	return c, nil
}

// ID returns the canvas identifier
func (c *Canvas) ID() valueobjects.CanvasID {
	return c.id
}

// Grid returns the snapping grid of this canvas
func (c *Canvas) Grid() valueobjects.Grid {
	return c.grid
}

// CreatedAt returns when the canvas was created
func (c *Canvas) CreatedAt() time.Time {
	return c.createdAt
}

// Cards returns copies of the cards in creation order
func (c *Canvas) Cards() []*entities.Card {
	cards := make([]*entities.Card, 0, len(c.order))
	for _, id := range c.order {
		cards = append(cards, c.cards[id].Clone())
	}
	return cards
}

// CardCount returns the number of cards
func (c *Canvas) CardCount() int {
	return len(c.order)
}

// Card returns a copy of a card by ID
func (c *Canvas) Card(id valueobjects.CardID) (*entities.Card, error) {
	card, err := c.card(id)
	if err != nil {
		return nil, err
	}
	return card.Clone(), nil
}

func (c *Canvas) card(id valueobjects.CardID) (*entities.Card, error) {
	card, ok := c.cards[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("card '%s'", id))
	}
	return card, nil
}

// HasCard checks if a card exists without error
func (c *Canvas) HasCard(id valueobjects.CardID) bool {
	_, ok := c.cards[id]
	return ok
}

// Connections returns a copy of the connection list
func (c *Canvas) Connections() []Connection {
	out := make([]Connection, len(c.connections))
	copy(out, c.connections)
	return out
}

// ConnectState returns the current connect mode
func (c *Canvas) ConnectState() ConnectState {
	return c.connect
}

// PlaceCard snaps the raw drop point and inserts a new card under the given id
func (c *Canvas) PlaceCard(id valueobjects.CardID, template entities.CardTemplate, rawX, rawY float64, now time.Time) (*entities.Card, error) {
	if c.HasCard(id) {
		return nil, pkgerrors.NewInvalidOperationError(fmt.Sprintf("card '%s' already exists", id))
	}

	position := c.grid.Snap(rawX, rawY)
	card, err := entities.NewCard(id, template, position, now)
	if err != nil {
		return nil, err
	}

	c.cards[id] = card
	c.order = append(c.order, id)
	c.addEvent(events.NewCardPlaced(c.id, id, string(card.Type()), position, now))
	return card.Clone(), nil
}

// MoveCard snaps the raw drop point and overwrites the card position
func (c *Canvas) MoveCard(id valueobjects.CardID, rawX, rawY float64, now time.Time) (*entities.Card, error) {
	card, err := c.card(id)
	if err != nil {
		return nil, err
	}

	old := card.Position()
	next := c.grid.Snap(rawX, rawY)
	card.MoveTo(next)
	c.addEvent(events.NewCardMoved(c.id, id, old, next, now))
	return card.Clone(), nil
}

// RemoveCard deletes a card together with every connection touching it.
// A pending connect on the card returns to Idle. It returns the number of
// connections removed.
func (c *Canvas) RemoveCard(id valueobjects.CardID, now time.Time) (int, error) {
	if !c.HasCard(id) {
		return 0, pkgerrors.NewNotFoundError(fmt.Sprintf("card '%s'", id))
	}

	kept := c.connections[:0]
	removed := 0
	for _, conn := range c.connections {
		if conn.Touches(id) {
			removed++
			continue
		}
		kept = append(kept, conn)
	}
	c.connections = kept

	delete(c.cards, id)
	for i, cid := range c.order {
		if cid.Equals(id) {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}

	if c.connect.Pending && c.connect.Source.Equals(id) {
		c.setConnectState(idle(), now)
	}

	c.addEvent(events.NewCardRemoved(c.id, id, removed, now))
	return removed, nil
}

// AddConnection appends a directed connection. Duplicates are allowed.
func (c *Canvas) AddConnection(from, to valueobjects.CardID, now time.Time) (Connection, error) {
	return c.connectCards(from, to, false, now)
}

// NearestCard returns the card closest to pos by Chebyshev distance, strictly
// under threshold. Equal distances resolve to the earliest placed card.
func (c *Canvas) NearestCard(pos valueobjects.Position, threshold int, exclude valueobjects.CardID) (*entities.Card, bool) {
	var best *entities.Card
	bestDist := threshold
	for _, id := range c.order {
		if id.Equals(exclude) {
			continue
		}
		card := c.cards[id]
		if d := card.Position().ChebyshevDistance(pos); d < bestDist {
			best = card
			bestDist = d
		}
	}
	if best == nil {
		return nil, false
	}
	return best.Clone(), true
}

// ConnectNearest creates at most one connection from the nearest card within
// threshold to the given card. The boolean is false when nothing was in range.
func (c *Canvas) ConnectNearest(id valueobjects.CardID, threshold int, now time.Time) (Connection, bool, error) {
	card, err := c.card(id)
	if err != nil {
		return Connection{}, false, err
	}

	nearest, ok := c.NearestCard(card.Position(), threshold, id)
	if !ok {
		return Connection{}, false, nil
	}

	conn, err := c.connectCards(nearest.ID(), id, true, now)
	if err != nil {
		return Connection{}, false, err
	}
	return conn, true, nil
}

// BeginConnect selects a connect source.
// Idle selects the card, the pending card toggles back to Idle, any other card
// becomes the new source.
func (c *Canvas) BeginConnect(id valueobjects.CardID, now time.Time) (ConnectState, error) {
	if !c.HasCard(id) {
		return c.connect, pkgerrors.NewNotFoundError(fmt.Sprintf("card '%s'", id))
	}

	if c.connect.Pending && c.connect.Source.Equals(id) {
		c.setConnectState(idle(), now)
	} else {
		c.setConnectState(pendingOn(id), now)
	}
	return c.connect, nil
}

// CompleteConnect picks the connect target. A different card connects
// source to target; the source itself cancels. Both end in Idle.
func (c *Canvas) CompleteConnect(id valueobjects.CardID, now time.Time) (ConnectState, *Connection, error) {
	if !c.connect.Pending {
		return c.connect, nil, pkgerrors.NewInvalidOperationError("no connect source selected")
	}
	if !c.HasCard(id) {
		return c.connect, nil, pkgerrors.NewNotFoundError(fmt.Sprintf("card '%s'", id))
	}

	source := c.connect.Source
	if source.Equals(id) {
		c.setConnectState(idle(), now)
		return c.connect, nil, nil
	}

	conn, err := c.connectCards(source, id, false, now)
	if err != nil {
		return c.connect, nil, err
	}
	c.setConnectState(idle(), now)
	return c.connect, &conn, nil
}

// CancelConnect drops any pending connect source
func (c *Canvas) CancelConnect(now time.Time) {
	if c.connect.Pending {
		c.setConnectState(idle(), now)
	}
}

// GetUncommittedEvents returns events recorded since the last commit
func (c *Canvas) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(c.events))
	copy(out, c.events)
	return out
}

// MarkEventsAsCommitted clears recorded events
func (c *Canvas) MarkEventsAsCommitted() {
	c.events = []events.DomainEvent{}
}

func (c *Canvas) connectCards(from, to valueobjects.CardID, auto bool, now time.Time) (Connection, error) {
	if from.Equals(to) {
		return Connection{}, pkgerrors.NewInvalidArgumentError("cannot connect a card to itself").
			WithDetail("card_id", from.String())
	}
	if !c.HasCard(from) {
		return Connection{}, pkgerrors.NewNotFoundError(fmt.Sprintf("card '%s'", from))
	}
	if !c.HasCard(to) {
		return Connection{}, pkgerrors.NewNotFoundError(fmt.Sprintf("card '%s'", to))
	}

	conn := Connection{From: from, To: to}
	c.connections = append(c.connections, conn)
	c.addEvent(events.NewCardsConnected(c.id, from, to, auto, now))
	return conn, nil
}

func (c *Canvas) setConnectState(state ConnectState, now time.Time) {
	c.connect = state
	c.addEvent(events.NewConnectModeChanged(c.id, state.Pending, state.Source, now))
}

func (c *Canvas) addEvent(event events.DomainEvent) {
	c.events = append(c.events, event)
}

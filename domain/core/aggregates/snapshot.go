package aggregates

import (
	"time"

	"futuremap/domain/core/entities"
	"futuremap/domain/core/valueobjects"
	"futuremap/domain/events"
	pkgerrors "futuremap/pkg/errors"
)

// CardSnapshot is the serialisable form of a placed card
type CardSnapshot struct {
	ID       string                `json:"id"`
	Type     entities.CardType     `json:"type"`
	Title    string                `json:"title"`
	Duration string                `json:"duration"`
	Cost     int                   `json:"cost"`
	Position valueobjects.Position `json:"position"`
}

// ConnectionSnapshot is the serialisable form of a connection
type ConnectionSnapshot struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// CanvasSnapshot is a point-in-time copy of a canvas' cards and connections
type CanvasSnapshot struct {
	ID          string               `json:"pathId"`
	Cards       []CardSnapshot       `json:"cards"`
	Connections []ConnectionSnapshot `json:"connections"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// RestoreReport describes what was kept while rebuilding a canvas from a snapshot
type RestoreReport struct {
	Cards              int `json:"cards"`
	SkippedCards       int `json:"skippedCards"`
	Connections        int `json:"connections"`
	DroppedConnections int `json:"droppedConnections"`
}

// Snapshot returns a copy of the canvas contents in creation order
func (c *Canvas) Snapshot() CanvasSnapshot {
	snap := CanvasSnapshot{
		ID:          c.id.String(),
		Cards:       make([]CardSnapshot, 0, len(c.order)),
		Connections: make([]ConnectionSnapshot, 0, len(c.connections)),
		CreatedAt:   c.createdAt,
	}
	for _, id := range c.order {
		card := c.cards[id]
		snap.Cards = append(snap.Cards, CardSnapshot{
			ID:       card.ID().String(),
			Type:     card.Type(),
			Title:    card.Title(),
			Duration: card.Duration(),
			Cost:     card.Cost(),
			Position: card.Position(),
		})
	}
	for _, conn := range c.connections {
		snap.Connections = append(snap.Connections, ConnectionSnapshot{
			From: conn.From.String(),
			To:   conn.To.String(),
		})
	}
	return snap
}

// RestoreCanvas rebuilds a canvas from a snapshot. Positions are re-snapped
// into the grid, invalid or duplicate cards are skipped, and connections that
// would dangle or loop are dropped.
func RestoreCanvas(snap CanvasSnapshot, grid valueobjects.Grid, now time.Time) (*Canvas, RestoreReport, error) {
	var report RestoreReport

	id, err := valueobjects.NewCanvasIDFromString(snap.ID)
	if err != nil {
		return nil, report, pkgerrors.NewInvalidArgumentError(err.Error())
	}

	createdAt := snap.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	c := &Canvas{
		id:          id,
		grid:        grid,
		cards:       make(map[valueobjects.CardID]*entities.Card, len(snap.Cards)),
		order:       make([]valueobjects.CardID, 0, len(snap.Cards)),
		connections: make([]Connection, 0, len(snap.Connections)),
		createdAt:   createdAt,
		events:      []events.DomainEvent{},
	}

	for _, cs := range snap.Cards {
		cardID, err := valueobjects.NewCardIDFromString(cs.ID)
		if err != nil || c.HasCard(cardID) {
			report.SkippedCards++
			continue
		}
		template := entities.CardTemplate{Title: cs.Title, Duration: cs.Duration, Cost: cs.Cost, Type: cs.Type}
		card, err := entities.NewCard(cardID, template, grid.SnapPosition(cs.Position), createdAt)
		if err != nil {
			report.SkippedCards++
			continue
		}
		c.cards[cardID] = card
		c.order = append(c.order, cardID)
	}

	for _, cs := range snap.Connections {
		from, errFrom := valueobjects.NewCardIDFromString(cs.From)
		to, errTo := valueobjects.NewCardIDFromString(cs.To)
		if errFrom != nil || errTo != nil || from.Equals(to) || !c.HasCard(from) || !c.HasCard(to) {
			report.DroppedConnections++
			continue
		}
		c.connections = append(c.connections, Connection{From: from, To: to})
	}

	report.Cards = len(c.order)
	report.Connections = len(c.connections)
	c.addEvent(events.NewCanvasRestored(id, report.Cards, report.DroppedConnections, now))
	return c, report, nil
}

package aggregates

import (
	"fmt"
	"time"

	"futuremap/domain/core/entities"
	"futuremap/domain/core/valueobjects"
	"futuremap/domain/events"
	pkgerrors "futuremap/pkg/errors"
)

// Clock returns the current time
type Clock func() time.Time

// Workspace is the in-memory set of canvases for one session. It always
// holds at least one canvas and owns card id generation across all of them.
type Workspace struct {
	grid      valueobjects.Grid
	canvases  []*Canvas
	currentID valueobjects.CanvasID
	seq       uint64
	clock     Clock
	events    []events.DomainEvent
}

// NewWorkspace creates a workspace holding one empty default canvas
func NewWorkspace(grid valueobjects.Grid, clock Clock) *Workspace {
	if clock == nil {
		clock = time.Now
	}
	w := &Workspace{
		grid:     grid,
		canvases: []*Canvas{},
		clock:    clock,
		events:   []events.DomainEvent{},
	}
	w.CreateCanvas()
	return w
}

// Grid returns the grid used by new canvases
func (w *Workspace) Grid() valueobjects.Grid {
	return w.grid
}

// Canvases returns the canvases in list order
func (w *Workspace) Canvases() []*Canvas {
	out := make([]*Canvas, len(w.canvases))
	copy(out, w.canvases)
	return out
}

// CurrentID returns the current canvas ID
func (w *Workspace) CurrentID() valueobjects.CanvasID {
	return w.currentID
}

// Current returns the current canvas
func (w *Workspace) Current() *Canvas {
	c, _ := w.Canvas(w.currentID)
	return c
}

// Canvas looks up a canvas by ID
func (w *Workspace) Canvas(id valueobjects.CanvasID) (*Canvas, error) {
	for _, c := range w.canvases {
		if c.ID().Equals(id) {
			return c, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("canvas '%s'", id))
}

// CreateCanvas appends a fresh empty canvas and makes it current
func (w *Workspace) CreateCanvas() *Canvas {
	// a zero id is the only NewCanvas failure and NewCanvasID never yields one
	c, _ := NewCanvas(valueobjects.NewCanvasID(), w.grid, w.clock())
	w.canvases = append(w.canvases, c)
	w.currentID = c.ID()
	return c
}

// SelectCanvas makes an existing canvas current
func (w *Workspace) SelectCanvas(id valueobjects.CanvasID) (*Canvas, error) {
	c, err := w.Canvas(id)
	if err != nil {
		return nil, err
	}
	w.currentID = c.ID()
	return c, nil
}

// RemoveCanvas deletes a canvas. The last canvas cannot be removed. When the
// current canvas goes, the first remaining canvas becomes current.
func (w *Workspace) RemoveCanvas(id valueobjects.CanvasID) error {
	idx := w.indexOf(id)
	if idx < 0 {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("canvas '%s'", id))
	}
	if len(w.canvases) <= 1 {
		return pkgerrors.NewInvalidOperationError("cannot remove the last canvas").
			WithDetail("canvas_id", id.String())
	}

	removed := w.canvases[idx]
	w.canvases = append(w.canvases[:idx], w.canvases[idx+1:]...)
	// keep the removed canvas' pending events reachable for publishers
	w.events = append(w.events, removed.GetUncommittedEvents()...)

	if w.currentID.Equals(id) {
		if len(w.canvases) > 0 {
			w.currentID = w.canvases[0].ID()
		} else {
			w.CreateCanvas()
		}
	}

	w.events = append(w.events, events.NewCanvasRemoved(id, w.currentID, w.clock()))
	return nil
}

// PlaceCard drops a template onto a canvas under a freshly generated id
func (w *Workspace) PlaceCard(canvasID valueobjects.CanvasID, template entities.CardTemplate, rawX, rawY float64) (*entities.Card, error) {
	c, err := w.Canvas(canvasID)
	if err != nil {
		return nil, err
	}
	if err := template.Validate(); err != nil {
		return nil, err
	}
	return c.PlaceCard(w.nextCardID(template.Type, canvasID), template, rawX, rawY, w.clock())
}

// MoveCard moves a card on a canvas
func (w *Workspace) MoveCard(canvasID valueobjects.CanvasID, cardID valueobjects.CardID, rawX, rawY float64) (*entities.Card, error) {
	c, err := w.Canvas(canvasID)
	if err != nil {
		return nil, err
	}
	return c.MoveCard(cardID, rawX, rawY, w.clock())
}

// RemoveCard removes a card and its connections from a canvas
func (w *Workspace) RemoveCard(canvasID valueobjects.CanvasID, cardID valueobjects.CardID) (int, error) {
	c, err := w.Canvas(canvasID)
	if err != nil {
		return 0, err
	}
	return c.RemoveCard(cardID, w.clock())
}

// AddConnection connects two cards on a canvas
func (w *Workspace) AddConnection(canvasID valueobjects.CanvasID, from, to valueobjects.CardID) (Connection, error) {
	c, err := w.Canvas(canvasID)
	if err != nil {
		return Connection{}, err
	}
	return c.AddConnection(from, to, w.clock())
}

// ConnectNearest applies the proximity auto-connect rule to a placed card
func (w *Workspace) ConnectNearest(canvasID valueobjects.CanvasID, cardID valueobjects.CardID, threshold int) (Connection, bool, error) {
	c, err := w.Canvas(canvasID)
	if err != nil {
		return Connection{}, false, err
	}
	return c.ConnectNearest(cardID, threshold, w.clock())
}

// BeginConnect selects a connect source on a canvas
func (w *Workspace) BeginConnect(canvasID valueobjects.CanvasID, cardID valueobjects.CardID) (ConnectState, error) {
	c, err := w.Canvas(canvasID)
	if err != nil {
		return ConnectState{}, err
	}
	return c.BeginConnect(cardID, w.clock())
}

// CompleteConnect selects a connect target on a canvas
func (w *Workspace) CompleteConnect(canvasID valueobjects.CanvasID, cardID valueobjects.CardID) (ConnectState, *Connection, error) {
	c, err := w.Canvas(canvasID)
	if err != nil {
		return ConnectState{}, nil, err
	}
	return c.CompleteConnect(cardID, w.clock())
}

// Restore loads a snapshot, replacing a canvas with the same id or appending
// a new one. The current canvas pointer is left alone.
func (w *Workspace) Restore(snap CanvasSnapshot) (*Canvas, RestoreReport, error) {
	c, report, err := RestoreCanvas(snap, w.grid, w.clock())
	if err != nil {
		return nil, report, err
	}

	if idx := w.indexOf(c.ID()); idx >= 0 {
		w.canvases[idx] = c
	} else {
		w.canvases = append(w.canvases, c)
	}
	return c, report, nil
}

// GetUncommittedEvents returns workspace and canvas events recorded since the last commit
func (w *Workspace) GetUncommittedEvents() []events.DomainEvent {
	all := make([]events.DomainEvent, len(w.events))
	copy(all, w.events)
	for _, c := range w.canvases {
		all = append(all, c.GetUncommittedEvents()...)
	}
	return all
}

// MarkEventsAsCommitted clears recorded events everywhere
func (w *Workspace) MarkEventsAsCommitted() {
	w.events = []events.DomainEvent{}
	for _, c := range w.canvases {
		c.MarkEventsAsCommitted()
	}
}

func (w *Workspace) indexOf(id valueobjects.CanvasID) int {
	for i, c := range w.canvases {
		if c.ID().Equals(id) {
			return i
		}
	}
	return -1
}

// nextCardID skips ids already present anywhere, e.g. ones restored from the server
func (w *Workspace) nextCardID(cardType entities.CardType, canvasID valueobjects.CanvasID) valueobjects.CardID {
	for {
		w.seq++
		id := valueobjects.NewCardID(string(cardType), w.seq, canvasID)
		if !w.cardIDTaken(id) {
			return id
		}
	}
}

func (w *Workspace) cardIDTaken(id valueobjects.CardID) bool {
	for _, c := range w.canvases {
		if c.HasCard(id) {
			return true
		}
	}
	return false
}

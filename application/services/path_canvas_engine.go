package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"futuremap/application/ports"
	"futuremap/domain/core/aggregates"
	"futuremap/domain/core/entities"
	"futuremap/domain/core/valueobjects"
	domainservices "futuremap/domain/services"
	pkgerrors "futuremap/pkg/errors"
)

// PlacementPolicy controls auto-connection after a card is dropped
type PlacementPolicy struct {
	AutoConnect        bool
	ProximityThreshold int
}

// DefaultPlacementPolicy connects a new card to the nearest card closer than 100 units
func DefaultPlacementPolicy() PlacementPolicy {
	return PlacementPolicy{AutoConnect: true, ProximityThreshold: 100}
}

// PlacementResult is a placed card plus the auto-connection it triggered, if any
type PlacementResult struct {
	Card           *entities.Card
	AutoConnection *aggregates.Connection
}

// CatalogResult reports a catalog fetch. The catalog is always usable.
type CatalogResult struct {
	OK      bool
	Message string
	Catalog *entities.Catalog
}

// SaveResult reports a save attempt
type SaveResult struct {
	OK      bool
	Message string
}

// LoadResult reports a load attempt
type LoadResult struct {
	OK       bool
	Message  string
	Restored []aggregates.RestoreReport
}

// ExportResult reports an export attempt
type ExportResult struct {
	OK       bool
	Message  string
	Artifact ports.Artifact
}

// Dependencies are the collaborators of a PathCanvasEngine. Any of them may be nil.
type Dependencies struct {
	Catalog   ports.CatalogSource
	Store     ports.PathStore
	Exporter  ports.Exporter
	Publisher ports.EventPublisher
	Logger    *zap.Logger
}

// PathCanvasEngine is the command/query facade over one session's workspace.
// It is not safe for concurrent use; callers serialise access.
type PathCanvasEngine struct {
	workspace *aggregates.Workspace
	custom    *entities.Catalog
	catalog   *entities.Catalog
	profile   domainservices.Profile
	analytics domainservices.Policy
	placement PlacementPolicy
	deps      Dependencies
	logger    *zap.Logger
}

// NewPathCanvasEngine creates an engine with a fresh single-canvas workspace
func NewPathCanvasEngine(grid valueobjects.Grid, placement PlacementPolicy, analytics domainservices.Policy, deps Dependencies) *PathCanvasEngine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PathCanvasEngine{
		workspace: aggregates.NewWorkspace(grid, nil),
		custom:    entities.EmptyCatalog(),
		catalog:   entities.EmptyCatalog(),
		profile:   domainservices.DefaultProfile(),
		analytics: analytics,
		placement: placement,
		deps:      deps,
		logger:    logger,
	}
}

// Workspace exposes the underlying workspace for read-only queries
func (e *PathCanvasEngine) Workspace() *aggregates.Workspace {
	return e.workspace
}

// SetPlacementPolicy replaces the auto-connect settings
func (e *PathCanvasEngine) SetPlacementPolicy(p PlacementPolicy) {
	e.placement = p
}

// SetAnalyticsPolicy replaces the scoring constants
func (e *PathCanvasEngine) SetAnalyticsPolicy(p domainservices.Policy) {
	e.analytics = p
}

// Profile returns the profile analyses are scored against
func (e *PathCanvasEngine) Profile() domainservices.Profile {
	return e.profile
}

// SetProfile replaces the user profile
func (e *PathCanvasEngine) SetProfile(p domainservices.Profile) {
	e.profile = p
}

// Canvas returns a canvas by id
func (e *PathCanvasEngine) Canvas(canvasID string) (*aggregates.Canvas, error) {
	id, err := parseCanvasID(canvasID)
	if err != nil {
		return nil, err
	}
	return e.workspace.Canvas(id)
}

// CreateCanvas adds a new canvas and makes it current
func (e *PathCanvasEngine) CreateCanvas(ctx context.Context) *aggregates.Canvas {
	c := e.workspace.CreateCanvas()
	e.commit(ctx)
	return c
}

// SelectCanvas makes a canvas current
func (e *PathCanvasEngine) SelectCanvas(canvasID string) (*aggregates.Canvas, error) {
	id, err := parseCanvasID(canvasID)
	if err != nil {
		return nil, err
	}
	return e.workspace.SelectCanvas(id)
}

// RemoveCanvas deletes a canvas; the last one is kept
func (e *PathCanvasEngine) RemoveCanvas(ctx context.Context, canvasID string) error {
	id, err := parseCanvasID(canvasID)
	if err != nil {
		return err
	}
	if err := e.workspace.RemoveCanvas(id); err != nil {
		return err
	}
	e.commit(ctx)
	return nil
}

// PreviewSnap returns where a drop at (x, y) would land without changing anything
func (e *PathCanvasEngine) PreviewSnap(canvasID string, x, y float64) (valueobjects.Position, error) {
	c, err := e.Canvas(canvasID)
	if err != nil {
		return valueobjects.Position{}, err
	}
	return c.Grid().Snap(x, y), nil
}

// PlaceCard drops a template and applies the auto-connect policy
func (e *PathCanvasEngine) PlaceCard(ctx context.Context, canvasID string, template entities.CardTemplate, x, y float64) (PlacementResult, error) {
	id, err := parseCanvasID(canvasID)
	if err != nil {
		return PlacementResult{}, err
	}

	card, err := e.workspace.PlaceCard(id, template, x, y)
	if err != nil {
		return PlacementResult{}, err
	}
	result := PlacementResult{Card: card}

	if e.placement.AutoConnect {
		conn, ok, err := e.workspace.ConnectNearest(id, card.ID(), e.placement.ProximityThreshold)
		if err != nil {
			return result, err
		}
		if ok {
			result.AutoConnection = &conn
		}
	}

	e.commit(ctx)
	return result, nil
}

// MoveCard re-snaps a card to a new drop point
func (e *PathCanvasEngine) MoveCard(ctx context.Context, canvasID, cardID string, x, y float64) (*entities.Card, error) {
	cid, kid, err := parseIDs(canvasID, cardID)
	if err != nil {
		return nil, err
	}
	card, err := e.workspace.MoveCard(cid, kid, x, y)
	if err != nil {
		return nil, err
	}
	e.commit(ctx)
	return card, nil
}

// RemoveCard deletes a card and every connection touching it
func (e *PathCanvasEngine) RemoveCard(ctx context.Context, canvasID, cardID string) (int, error) {
	cid, kid, err := parseIDs(canvasID, cardID)
	if err != nil {
		return 0, err
	}
	removed, err := e.workspace.RemoveCard(cid, kid)
	if err != nil {
		return 0, err
	}
	e.commit(ctx)
	return removed, nil
}

// AddConnection appends a directed connection between two cards
func (e *PathCanvasEngine) AddConnection(ctx context.Context, canvasID, fromID, toID string) (aggregates.Connection, error) {
	cid, from, err := parseIDs(canvasID, fromID)
	if err != nil {
		return aggregates.Connection{}, err
	}
	to, err := parseCardID(toID)
	if err != nil {
		return aggregates.Connection{}, err
	}
	conn, err := e.workspace.AddConnection(cid, from, to)
	if err != nil {
		return aggregates.Connection{}, err
	}
	e.commit(ctx)
	return conn, nil
}

// BeginConnect selects or toggles the connect source
func (e *PathCanvasEngine) BeginConnect(ctx context.Context, canvasID, cardID string) (aggregates.ConnectState, error) {
	cid, kid, err := parseIDs(canvasID, cardID)
	if err != nil {
		return aggregates.ConnectState{}, err
	}
	state, err := e.workspace.BeginConnect(cid, kid)
	if err != nil {
		return state, err
	}
	e.commit(ctx)
	return state, nil
}

// CompleteConnect connects the pending source to the given card
func (e *PathCanvasEngine) CompleteConnect(ctx context.Context, canvasID, cardID string) (aggregates.ConnectState, *aggregates.Connection, error) {
	cid, kid, err := parseIDs(canvasID, cardID)
	if err != nil {
		return aggregates.ConnectState{}, nil, err
	}
	state, conn, err := e.workspace.CompleteConnect(cid, kid)
	if err != nil {
		return state, nil, err
	}
	e.commit(ctx)
	return state, conn, nil
}

// Analyze recomputes the derived analytics of a canvas
func (e *PathCanvasEngine) Analyze(canvasID string) (domainservices.PathAnalysis, error) {
	c, err := e.Canvas(canvasID)
	if err != nil {
		return domainservices.PathAnalysis{}, err
	}
	return domainservices.Analyze(c.Cards(), e.profile, e.analytics), nil
}

// Catalog returns the last fetched catalog merged with custom blocks
func (e *PathCanvasEngine) Catalog() *entities.Catalog {
	return e.custom.Merge(e.catalog)
}

// AddCustomBlock validates a user-defined template and files it under "custom"
func (e *PathCanvasEngine) AddCustomBlock(template entities.CardTemplate) error {
	return e.custom.AddCustom(template)
}

// FetchCatalog refreshes the catalog. On failure the engine keeps an empty
// remote catalog and reports the reason.
func (e *PathCanvasEngine) FetchCatalog(ctx context.Context, session ports.Session) CatalogResult {
	if e.deps.Catalog == nil {
		e.catalog = entities.EmptyCatalog()
		return CatalogResult{OK: false, Message: "catalog source not configured", Catalog: e.Catalog()}
	}

	catalog, err := e.deps.Catalog.FetchCatalog(ctx, session)
	if err != nil {
		e.catalog = entities.EmptyCatalog()
		e.logger.Warn("Catalog unavailable",
			zap.String("userID", session.UserID),
			zap.Error(err),
		)
		return CatalogResult{OK: false, Message: messageOf(err), Catalog: e.Catalog()}
	}

	e.catalog = catalog
	e.logger.Debug("Catalog fetched",
		zap.String("userID", session.UserID),
		zap.Int("templates", catalog.Size()),
	)
	return CatalogResult{OK: true, Catalog: e.Catalog()}
}

// SavePath sends one canvas to the path store. Exactly one attempt is made.
func (e *PathCanvasEngine) SavePath(ctx context.Context, session ports.Session, canvasID string) (SaveResult, error) {
	c, err := e.Canvas(canvasID)
	if err != nil {
		return SaveResult{}, err
	}
	if e.deps.Store == nil {
		return SaveResult{OK: false, Message: "path store not configured"}, nil
	}

	outcome, err := e.deps.Store.SavePath(ctx, session, c.Snapshot())
	if err != nil {
		e.logger.Warn("Save failed",
			zap.String("userID", session.UserID),
			zap.String("canvasID", canvasID),
			zap.Error(err),
		)
		return SaveResult{OK: false, Message: messageOf(err)}, nil
	}

	e.logger.Info("Path saved",
		zap.String("userID", session.UserID),
		zap.String("canvasID", canvasID),
		zap.Bool("success", outcome.Success),
	)
	return SaveResult{OK: outcome.Success, Message: outcome.Message}, nil
}

// LoadPaths restores every saved canvas of the session user into the workspace
func (e *PathCanvasEngine) LoadPaths(ctx context.Context, session ports.Session) LoadResult {
	if e.deps.Store == nil {
		return LoadResult{OK: false, Message: "path store not configured"}
	}

	snapshots, err := e.deps.Store.LoadPaths(ctx, session)
	if err != nil {
		e.logger.Warn("Load failed", zap.String("userID", session.UserID), zap.Error(err))
		return LoadResult{OK: false, Message: messageOf(err)}
	}

	result := LoadResult{OK: true, Restored: make([]aggregates.RestoreReport, 0, len(snapshots))}
	var skipped []string
	for _, snap := range snapshots {
		_, report, err := e.workspace.Restore(snap)
		if err != nil {
			skipped = append(skipped, messageOf(err))
			continue
		}
		result.Restored = append(result.Restored, report)
	}
	if len(skipped) > 0 {
		result.Message = fmt.Sprintf("skipped %d saved paths: %s", len(skipped), strings.Join(skipped, "; "))
	} else {
		result.Message = fmt.Sprintf("loaded %d saved paths", len(result.Restored))
	}

	e.commit(ctx)
	e.logger.Info("Paths loaded",
		zap.String("userID", session.UserID),
		zap.Int("restored", len(result.Restored)),
		zap.Int("skipped", len(skipped)),
	)
	return result
}

// Export renders a canvas; failures are reported in the result
func (e *PathCanvasEngine) Export(ctx context.Context, canvasID string, format ports.ExportFormat) (ExportResult, error) {
	c, err := e.Canvas(canvasID)
	if err != nil {
		return ExportResult{}, err
	}
	if format != ports.ExportPNG && format != ports.ExportPDF {
		return ExportResult{}, pkgerrors.NewInvalidArgumentError(fmt.Sprintf("unsupported export format '%s'", format)).
			WithDetail("allowed", []ports.ExportFormat{ports.ExportPNG, ports.ExportPDF})
	}
	if e.deps.Exporter == nil {
		return ExportResult{OK: false, Message: "exporter not configured"}, nil
	}

	artifact, err := e.deps.Exporter.Export(ctx, c.Snapshot(), format)
	if err != nil {
		e.logger.Error("Export failed",
			zap.String("canvasID", canvasID),
			zap.String("format", string(format)),
			zap.Error(err),
		)
		return ExportResult{OK: false, Message: messageOf(err)}, nil
	}
	return ExportResult{OK: true, Artifact: artifact}, nil
}

// commit hands recorded domain events to the publisher
func (e *PathCanvasEngine) commit(ctx context.Context) {
	evts := e.workspace.GetUncommittedEvents()
	e.workspace.MarkEventsAsCommitted()
	if e.deps.Publisher != nil && len(evts) > 0 {
		e.deps.Publisher.Publish(ctx, evts)
	}
}

func parseCanvasID(s string) (valueobjects.CanvasID, error) {
	id, err := valueobjects.NewCanvasIDFromString(s)
	if err != nil {
		return id, pkgerrors.NewInvalidArgumentError(err.Error())
	}
	return id, nil
}

func parseCardID(s string) (valueobjects.CardID, error) {
	id, err := valueobjects.NewCardIDFromString(s)
	if err != nil {
		return id, pkgerrors.NewInvalidArgumentError(err.Error())
	}
	return id, nil
}

func parseIDs(canvasID, cardID string) (valueobjects.CanvasID, valueobjects.CardID, error) {
	cid, err := parseCanvasID(canvasID)
	if err != nil {
		return cid, valueobjects.CardID{}, err
	}
	kid, err := parseCardID(cardID)
	return cid, kid, err
}

func messageOf(err error) string {
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		return appErr.Message
	}
	return err.Error()
}

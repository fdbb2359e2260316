package ports

import (
	"context"

	"futuremap/domain/core/aggregates"
	"futuremap/domain/core/entities"
	"futuremap/domain/events"
)

// Session carries the caller identity and credential handed to collaborators.
// It is always passed explicitly; nothing reads it from ambient state.
type Session struct {
	UserID      string
	BearerToken string
}

// HasCredential reports whether a bearer token is present
func (s Session) HasCredential() bool {
	return s.BearerToken != ""
}

// CatalogSource fetches the browseable card templates
type CatalogSource interface {
	// FetchCatalog returns the remote catalog. Any failure is a CatalogUnavailable error.
	FetchCatalog(ctx context.Context, session Session) (*entities.Catalog, error)
}

// SaveOutcome is the server's verdict on a save request
type SaveOutcome struct {
	Success bool
	Message string
}

// PathStore persists and loads canvases on the remote backend
type PathStore interface {
	// SavePath sends one canvas. Transport failures are returned as errors,
	// a server-side rejection as an unsuccessful outcome.
	SavePath(ctx context.Context, session Session, snapshot aggregates.CanvasSnapshot) (SaveOutcome, error)

	// LoadPaths returns every canvas the server holds for the session user
	LoadPaths(ctx context.Context, session Session) ([]aggregates.CanvasSnapshot, error)
}

// ExportFormat selects the rendered artifact type
type ExportFormat string

const (
	ExportPNG ExportFormat = "png"
	ExportPDF ExportFormat = "pdf"
)

// Artifact is a rendered canvas
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Exporter renders a canvas snapshot. It is a pure function of its input.
type Exporter interface {
	Export(ctx context.Context, snapshot aggregates.CanvasSnapshot, format ExportFormat) (Artifact, error)
}

// EventPublisher receives domain events after each successful command
type EventPublisher interface {
	Publish(ctx context.Context, events []events.DomainEvent)
}

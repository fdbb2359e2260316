// Package export renders canvases to PNG images and PDF summaries.
package export

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"futuremap/application/ports"
	"futuremap/domain/core/aggregates"
	"futuremap/domain/core/valueobjects"
	pkgerrors "futuremap/pkg/errors"
)

// Exporter implements ports.Exporter for every supported format
type Exporter struct {
	png    *PNGRenderer
	pdf    *PDFRenderer
	now    func() time.Time
	logger *zap.Logger
}

// NewExporter creates a new Exporter for canvases laid out on grid
func NewExporter(grid valueobjects.Grid, logger *zap.Logger) (*Exporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	png, err := NewPNGRenderer(grid)
	if err != nil {
		return nil, err
	}
	return &Exporter{
		png:    png,
		pdf:    NewPDFRenderer(),
		now:    time.Now,
		logger: logger,
	}, nil
}

// Export renders the snapshot in the requested format
func (e *Exporter) Export(ctx context.Context, snap aggregates.CanvasSnapshot, format ports.ExportFormat) (ports.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return ports.Artifact{}, err
	}

	generatedAt := e.now()
	var (
		data        []byte
		contentType string
		err         error
	)
	switch format {
	case ports.ExportPNG:
		data, err = e.png.Render(snap)
		contentType = "image/png"
	case ports.ExportPDF:
		data, err = e.pdf.Render(snap, generatedAt)
		contentType = "application/pdf"
	default:
		return ports.Artifact{}, pkgerrors.NewInvalidArgumentError(fmt.Sprintf("unsupported export format '%s'", format))
	}
	if err != nil {
		return ports.Artifact{}, pkgerrors.NewInternalError(fmt.Sprintf("failed to render %s", format)).WithCause(err)
	}

	e.logger.Debug("Canvas exported",
		zap.String("canvasID", snap.ID),
		zap.String("format", string(format)),
		zap.Int("bytes", len(data)),
	)
	return ports.Artifact{
		Filename:    fmt.Sprintf("career_path_%s_%s.%s", pathName(snap.ID), generatedAt.Format("2006-01-02"), format),
		ContentType: contentType,
		Data:        data,
	}, nil
}

package export

import (
	"bytes"
	"context"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"futuremap/application/ports"
	"futuremap/domain/core/aggregates"
	"futuremap/domain/core/entities"
	"futuremap/domain/core/valueobjects"
	pkgerrors "futuremap/pkg/errors"
)

func sampleSnapshot() aggregates.CanvasSnapshot {
	return aggregates.CanvasSnapshot{
		ID: "3f1c",
		Cards: []aggregates.CardSnapshot{
			{ID: "course-1-3f1c", Type: entities.CardTypeCourse, Title: "B.Tech Computer Science", Duration: "4 years", Cost: 400000, Position: valueobjects.NewPosition(30, 0)},
			{ID: "internship-2-3f1c", Type: entities.CardTypeInternship, Title: "Summer Internship", Duration: "3 months", Cost: 0, Position: valueobjects.NewPosition(60, 90)},
		},
		Connections: []aggregates.ConnectionSnapshot{
			{From: "internship-2-3f1c", To: "course-1-3f1c"},
			{From: "internship-2-3f1c", To: "missing"},
		},
	}
}

func newTestExporter(t *testing.T) *Exporter {
	t.Helper()
	exp, err := NewExporter(valueobjects.DefaultGrid(), nil)
	require.NoError(t, err)
	exp.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	return exp
}

func TestExporter_PNG(t *testing.T) {
	exp := newTestExporter(t)

	artifact, err := exp.Export(context.Background(), sampleSnapshot(), ports.ExportPNG)
	require.NoError(t, err)

	assert.Equal(t, "image/png", artifact.ContentType)
	assert.Equal(t, "career_path_3f1c_2026-03-14.png", artifact.Filename)
	require.True(t, bytes.HasPrefix(artifact.Data, []byte("\x89PNG\r\n\x1a\n")))

	img, err := png.Decode(bytes.NewReader(artifact.Data))
	require.NoError(t, err)
	assert.Equal(t, 340+cardWidth+2*margin, img.Bounds().Dx())
	assert.Equal(t, 460+cardHeight+2*margin, img.Bounds().Dy())
}

func TestExporter_PNGGrowsForOutOfBoundsCards(t *testing.T) {
	exp := newTestExporter(t)
	snap := aggregates.CanvasSnapshot{
		ID: "wide",
		Cards: []aggregates.CardSnapshot{
			{ID: "skill-1-wide", Type: entities.CardTypeSkill, Title: "Go", Cost: 0, Position: valueobjects.NewPosition(900, 30)},
		},
	}

	artifact, err := exp.Export(context.Background(), snap, ports.ExportPNG)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(artifact.Data))
	require.NoError(t, err)
	assert.Equal(t, 900+cardWidth+2*margin, img.Bounds().Dx())
}

func TestExporter_PDF(t *testing.T) {
	exp := newTestExporter(t)

	artifact, err := exp.Export(context.Background(), sampleSnapshot(), ports.ExportPDF)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", artifact.ContentType)
	assert.Equal(t, "career_path_3f1c_2026-03-14.pdf", artifact.Filename)
	assert.True(t, bytes.HasPrefix(artifact.Data, []byte("%PDF-")))
	assert.Greater(t, len(artifact.Data), 1000)
}

func TestExporter_EmptyCanvas(t *testing.T) {
	exp := newTestExporter(t)
	snap := aggregates.CanvasSnapshot{ID: ""}

	for _, format := range []ports.ExportFormat{ports.ExportPNG, ports.ExportPDF} {
		artifact, err := exp.Export(context.Background(), snap, format)
		require.NoError(t, err, format)
		assert.NotEmpty(t, artifact.Data)
		assert.Contains(t, artifact.Filename, "career_path_Unnamed_")
	}
}

func TestExporter_UnsupportedFormat(t *testing.T) {
	exp := newTestExporter(t)
	_, err := exp.Export(context.Background(), sampleSnapshot(), ports.ExportFormat("svg"))
	assert.True(t, pkgerrors.IsInvalidArgument(err))
}

func TestExporter_CancelledContext(t *testing.T) {
	exp := newTestExporter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := exp.Export(ctx, sampleSnapshot(), ports.ExportPNG)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatCost(t *testing.T) {
	tests := []struct {
		cost int
		want string
	}{
		{0, "INR 0"},
		{999, "INR 999"},
		{1000, "INR 1,000"},
		{400000, "INR 400,000"},
		{1250000, "INR 1,250,000"},
		{-5000, "INR -5,000"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCost(tt.cost))
		})
	}
}

func TestTitleOr(t *testing.T) {
	titles := map[string]string{"a": "Alpha"}
	assert.Equal(t, "Alpha", titleOr(titles, "a"))
	assert.Equal(t, "b", titleOr(titles, "b"))
}

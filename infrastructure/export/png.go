package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"futuremap/domain/core/aggregates"
	"futuremap/domain/core/entities"
	"futuremap/domain/core/valueobjects"
)

const (
	cardWidth  = 256
	cardHeight = 128
	margin     = 20
	cornerR    = 12
)

var typeColors = map[entities.CardType]string{
	entities.CardTypeCourse:      "#60a5fa",
	entities.CardTypeExam:        "#f87171",
	entities.CardTypeSkill:       "#4ade80",
	entities.CardTypeInstitution: "#c084fc",
	entities.CardTypeInternship:  "#fb923c",
}

// PNGRenderer draws a canvas as a raster image
type PNGRenderer struct {
	grid  valueobjects.Grid
	title font.Face
	body  font.Face
}

// NewPNGRenderer creates a renderer for canvases laid out on grid
func NewPNGRenderer(grid valueobjects.Grid) (*PNGRenderer, error) {
	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &PNGRenderer{
		grid:  grid,
		title: truetype.NewFace(ttf, &truetype.Options{Size: 15, DPI: 72, Hinting: font.HintingFull}),
		body:  truetype.NewFace(ttf, &truetype.Options{Size: 12, DPI: 72, Hinting: font.HintingFull}),
	}, nil
}

// Render returns the PNG encoding of the snapshot
func (r *PNGRenderer) Render(snap aggregates.CanvasSnapshot) ([]byte, error) {
	width, height := r.bounds(snap)

	dc := gg.NewContext(width, height)
	dc.SetHexColor("#111827")
	dc.Clear()

	r.drawGrid(dc, width, height)

	// connections go underneath the cards
	byID := make(map[string]aggregates.CardSnapshot, len(snap.Cards))
	for _, card := range snap.Cards {
		byID[card.ID] = card
	}
	for _, conn := range snap.Connections {
		from, okFrom := byID[conn.From]
		to, okTo := byID[conn.To]
		if !okFrom || !okTo {
			continue
		}
		r.drawConnection(dc, from.Position, to.Position)
	}

	for _, card := range snap.Cards {
		r.drawCard(dc, card)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PNGRenderer) bounds(snap aggregates.CanvasSnapshot) (int, int) {
	maxX, maxY := r.grid.MaxX(), r.grid.MaxY()
	for _, card := range snap.Cards {
		if card.Position.X > maxX {
			maxX = card.Position.X
		}
		if card.Position.Y > maxY {
			maxY = card.Position.Y
		}
	}
	return maxX + cardWidth + 2*margin, maxY + cardHeight + 2*margin
}

func (r *PNGRenderer) drawGrid(dc *gg.Context, width, height int) {
	step := float64(r.grid.Size())
	dc.SetRGBA(1, 1, 1, 0.05)
	dc.SetLineWidth(1)
	for x := float64(margin); x <= float64(width-margin); x += step {
		dc.DrawLine(x, margin, x, float64(height-margin))
	}
	for y := float64(margin); y <= float64(height-margin); y += step {
		dc.DrawLine(margin, y, float64(width-margin), y)
	}
	dc.Stroke()
}

func (r *PNGRenderer) drawConnection(dc *gg.Context, from, to valueobjects.Position) {
	x1 := float64(from.X + margin + cardWidth/2)
	y1 := float64(from.Y + margin + cardHeight/2)
	x2 := float64(to.X + margin + cardWidth/2)
	y2 := float64(to.Y + margin + cardHeight/2)

	dc.SetHexColor("#22d3ee")
	dc.SetLineWidth(2)
	dc.SetDash(5, 5)
	dc.DrawLine(x1, y1, x2, y2)
	dc.Stroke()
	dc.SetDash()
}

func (r *PNGRenderer) drawCard(dc *gg.Context, card aggregates.CardSnapshot) {
	x := float64(card.Position.X + margin)
	y := float64(card.Position.Y + margin)
	accent, ok := typeColors[card.Type]
	if !ok {
		accent = "#9ca3af"
	}

	dc.SetHexColor("#1f2937")
	dc.DrawRoundedRectangle(x, y, cardWidth, cardHeight, cornerR)
	dc.Fill()

	dc.SetHexColor(accent)
	dc.SetLineWidth(2)
	dc.DrawRoundedRectangle(x, y, cardWidth, cardHeight, cornerR)
	dc.Stroke()

	dc.SetFontFace(r.title)
	dc.SetHexColor("#f9fafb")
	dc.DrawStringWrapped(card.Title, x+16, y+14, 0, 0, cardWidth-32, 1.3, gg.AlignLeft)

	dc.SetFontFace(r.body)
	dc.SetHexColor(accent)
	dc.DrawString(strings.ToUpper(string(card.Type)), x+16, y+cardHeight-50)
	dc.SetHexColor("#d1d5db")
	dc.DrawString(card.Duration, x+16, y+cardHeight-32)
	dc.DrawString(formatCost(card.Cost), x+16, y+cardHeight-14)
}

package valueobjects

import (
	"errors"
	"math"
)

const (
	DefaultGridSize = 30
	DefaultMaxX     = 340
	DefaultMaxY     = 460
)

// Grid describes the snapping lattice and drawing bounds of a canvas.
// It is immutable; the same Grid is used for drag previews and for committed drops.
type Grid struct {
	size int
	maxX int
	maxY int
}

// NewGrid creates a Grid with cell size g and bounds [0,maxX]x[0,maxY]
func NewGrid(size, maxX, maxY int) (Grid, error) {
	if size <= 0 {
		return Grid{}, errors.New("grid size must be positive")
	}
	if maxX < 0 || maxY < 0 {
		return Grid{}, errors.New("canvas bounds cannot be negative")
	}
	return Grid{size: size, maxX: maxX, maxY: maxY}, nil
}

// DefaultGrid returns the 30-unit grid over [0,340]x[0,460]
func DefaultGrid() Grid {
	return Grid{size: DefaultGridSize, maxX: DefaultMaxX, maxY: DefaultMaxY}
}

// Size returns the grid cell size
func (g Grid) Size() int { return g.size }

// MaxX returns the horizontal bound
func (g Grid) MaxX() int { return g.maxX }

// MaxY returns the vertical bound
func (g Grid) MaxY() int { return g.maxY }

// Snap clamps a raw coordinate into bounds and rounds it to the nearest grid line
func (g Grid) Snap(x, y float64) Position {
	return Position{
		X: snapAxis(x, g.size, g.maxX),
		Y: snapAxis(y, g.size, g.maxY),
	}
}

// SnapPosition re-snaps an already integral position, e.g. one restored from the server
func (g Grid) SnapPosition(p Position) Position {
	return g.Snap(float64(p.X), float64(p.Y))
}

// Contains reports whether p is grid-aligned and inside the bounds
func (g Grid) Contains(p Position) bool {
	return p.X >= 0 && p.Y >= 0 &&
		p.X <= g.maxX && p.Y <= g.maxY &&
		p.X%g.size == 0 && p.Y%g.size == 0
}

func snapAxis(v float64, size, max int) int {
	if math.IsNaN(v) {
		v = 0
	}
	clamped := math.Max(0, math.Min(v, float64(max)))
	snapped := int(math.Round(clamped/float64(size))) * size
	// when max is not a multiple of size, rounding up can leave the bounds
	if snapped > max {
		snapped = (max / size) * size
	}
	return snapped
}

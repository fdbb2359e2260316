package valueobjects

import (
	"fmt"
	"math"
)

// Position is a grid-aligned point on a canvas drawing surface
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NewPosition creates a Position
func NewPosition(x, y int) Position {
	return Position{X: x, Y: y}
}

// ChebyshevDistance returns max(|dx|, |dy|) between two positions
func (p Position) ChebyshevDistance(other Position) int {
	dx := absInt(p.X - other.X)
	dy := absInt(p.Y - other.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// EuclideanDistance returns the straight-line distance between two positions
func (p Position) EuclideanDistance(other Position) float64 {
	return math.Hypot(float64(p.X-other.X), float64(p.Y-other.Y))
}

// Equals checks if two positions are equal
func (p Position) Equals(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

// String returns "(x, y)"
func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

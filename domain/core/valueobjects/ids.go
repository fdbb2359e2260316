package valueobjects

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CanvasID is a value object identifying one career path canvas
type CanvasID struct {
	value string
}

// NewCanvasID creates a new random CanvasID
func NewCanvasID() CanvasID {
	return CanvasID{value: uuid.New().String()}
}

// NewCanvasIDFromString creates a CanvasID from an existing string.
// Canvases restored from the path store keep whatever id the server assigned,
// so only emptiness is rejected here.
func NewCanvasIDFromString(id string) (CanvasID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return CanvasID{}, errors.New("canvas ID cannot be empty")
	}
	return CanvasID{value: id}, nil
}

// String returns the string representation of the CanvasID
func (id CanvasID) String() string {
	return id.value
}

// Equals checks if two CanvasIDs are equal
func (id CanvasID) Equals(other CanvasID) bool {
	return id.value == other.value
}

// IsZero checks if the CanvasID is the zero value
func (id CanvasID) IsZero() bool {
	return id.value == ""
}

// MarshalText implements encoding.TextMarshaler
func (id CanvasID) MarshalText() ([]byte, error) {
	return []byte(id.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (id *CanvasID) UnmarshalText(data []byte) error {
	id.value = string(data)
	return nil
}

// CardID is a value object identifying a placed card
type CardID struct {
	value string
}

// NewCardID builds the workspace-scoped id of a placed card: <type>-<seq>-<canvas>
func NewCardID(cardType string, seq uint64, canvas CanvasID) CardID {
	return CardID{value: fmt.Sprintf("%s-%d-%s", cardType, seq, canvas.String())}
}

// NewCardIDFromString creates a CardID from an existing string
func NewCardIDFromString(id string) (CardID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return CardID{}, errors.New("card ID cannot be empty")
	}
	return CardID{value: id}, nil
}

// String returns the string representation of the CardID
func (id CardID) String() string {
	return id.value
}

// Equals checks if two CardIDs are equal
func (id CardID) Equals(other CardID) bool {
	return id.value == other.value
}

// IsZero checks if the CardID is the zero value
func (id CardID) IsZero() bool {
	return id.value == ""
}

// MarshalText implements encoding.TextMarshaler
func (id CardID) MarshalText() ([]byte, error) {
	return []byte(id.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (id *CardID) UnmarshalText(data []byte) error {
	id.value = string(data)
	return nil
}

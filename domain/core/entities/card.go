package entities

import (
	"strings"
	"time"

	"futuremap/domain/core/valueobjects"
	pkgerrors "futuremap/pkg/errors"
)

// CardType is the kind of building block a card represents
type CardType string

const (
	CardTypeCourse      CardType = "course"
	CardTypeExam        CardType = "exam"
	CardTypeSkill       CardType = "skill"
	CardTypeInstitution CardType = "institution"
	CardTypeInternship  CardType = "internship"
)

// CardTypes lists every valid card type in display order
var CardTypes = []CardType{
	CardTypeCourse,
	CardTypeExam,
	CardTypeSkill,
	CardTypeInstitution,
	CardTypeInternship,
}

// ParseCardType converts a raw string into a CardType
func ParseCardType(s string) (CardType, error) {
	t := CardType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", pkgerrors.NewInvalidArgumentError("unknown card type '" + s + "'").
			WithDetail("allowed", CardTypes)
	}
	return t, nil
}

// IsValid reports whether t is one of the known card types
func (t CardType) IsValid() bool {
	for _, known := range CardTypes {
		if t == known {
			return true
		}
	}
	return false
}

// CountsTowardScholarships reports whether cards of this type open scholarship options
func (t CardType) CountsTowardScholarships() bool {
	return t == CardTypeCourse || t == CardTypeInstitution
}

// CardTemplate is the catalog payload dropped onto a canvas
type CardTemplate struct {
	Title    string   `json:"title"`
	Duration string   `json:"duration"`
	Cost     int      `json:"cost"`
	Type     CardType `json:"type"`
}

// Validate checks the template business rules
func (t CardTemplate) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return pkgerrors.NewInvalidArgumentError("card title cannot be empty")
	}
	if t.Cost < 0 {
		return pkgerrors.NewInvalidArgumentError("card cost cannot be negative").
			WithDetail("cost", t.Cost)
	}
	if !t.Type.IsValid() {
		return pkgerrors.NewInvalidArgumentError("unknown card type '" + string(t.Type) + "'").
			WithDetail("allowed", CardTypes)
	}
	return nil
}

// Card is a template instance placed on a canvas
type Card struct {
	id       valueobjects.CardID
	cardType CardType
	title    string
	duration string
	cost     int
	position valueobjects.Position
	placedAt time.Time
}

// NewCard creates a placed card from a validated template
func NewCard(id valueobjects.CardID, template CardTemplate, position valueobjects.Position, placedAt time.Time) (*Card, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewInvalidArgumentError("card ID cannot be empty")
	}
	if err := template.Validate(); err != nil {
		return nil, err
	}
	if position.X < 0 || position.Y < 0 {
		return nil, pkgerrors.NewInvalidArgumentError("card position cannot be negative")
	}

	return &Card{
		id:       id,
		cardType: template.Type,
		title:    strings.TrimSpace(template.Title),
		duration: template.Duration,
		cost:     template.Cost,
		position: position,
		placedAt: placedAt,
	}, nil
}

// ID returns the card's identifier
func (c *Card) ID() valueobjects.CardID {
	return c.id
}

// Type returns the card type
func (c *Card) Type() CardType {
	return c.cardType
}

// Title returns the card title
func (c *Card) Title() string {
	return c.title
}

// Duration returns the free-form duration label
func (c *Card) Duration() string {
	return c.duration
}

// Cost returns the card cost
func (c *Card) Cost() int {
	return c.cost
}

// Position returns the card's grid position
func (c *Card) Position() valueobjects.Position {
	return c.position
}

// PlacedAt returns when the card was dropped
func (c *Card) PlacedAt() time.Time {
	return c.placedAt
}

// Template returns the template this card was placed from
func (c *Card) Template() CardTemplate {
	return CardTemplate{
		Title:    c.title,
		Duration: c.duration,
		Cost:     c.cost,
		Type:     c.cardType,
	}
}

// Clone returns an independent copy of the card
func (c *Card) Clone() *Card {
	cp := *c
	return &cp
}

// MoveTo overwrites the card position
func (c *Card) MoveTo(position valueobjects.Position) {
	c.position = position
}

// TitleMatchesAny reports whether the lower-cased title contains any of the keywords
func (c *Card) TitleMatchesAny(keywords []string) bool {
	title := strings.ToLower(c.title)
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && strings.Contains(title, k) {
			return true
		}
	}
	return false
}

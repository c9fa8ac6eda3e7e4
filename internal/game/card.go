package game

import "github.com/google/uuid"

// Face holds the printed fields of one face of a card. Power and
// toughness stay string-encoded so values like "*" and "X" survive.
type Face struct {
	Name      string `json:"name"`
	ManaCost  string `json:"manaCost,omitempty"`
	ManaValue int    `json:"manaValue,omitempty"`
	TypeLine  string `json:"typeLine,omitempty"`
	Power     string `json:"power,omitempty"`
	Toughness string `json:"toughness,omitempty"`
	Loyalty   string `json:"loyalty,omitempty"`
	Image     string `json:"image,omitempty"`
}

// Card is the zone-portable representation of a card. A card owns up to
// two symmetric face records; activeFace selects the one currently
// showing. Flipping a double-faced card is a single index toggle, so a
// partial face swap is never observable.
type Card struct {
	ID            string
	Faces         [2]Face
	ActiveFace    int
	HasSecondFace bool
}

// CardInput is the flat wire shape clients submit in decks, sideboards
// and commander lists. IDs are assigned server-side when absent.
type CardInput struct {
	ID         string `json:"id,omitempty"`
	Face              // front face fields, inlined
	SecondFace *Face  `json:"secondFace,omitempty"`
}

// NewCard builds a Card from its wire shape.
func NewCard(in CardInput) Card {
	c := Card{
		ID: in.ID,
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Faces[0] = in.Face
	if in.SecondFace != nil {
		c.Faces[1] = *in.SecondFace
		c.HasSecondFace = true
	}
	return c
}

// NewCards converts a slice of wire cards.
func NewCards(ins []CardInput) []Card {
	cards := make([]Card, 0, len(ins))
	for _, in := range ins {
		cards = append(cards, NewCard(in))
	}
	return cards
}

// CurrentFace returns the face currently showing.
func (c *Card) CurrentFace() *Face {
	return &c.Faces[c.ActiveFace]
}

// HiddenFace returns the face currently not showing, or nil for a
// single-faced card.
func (c *Card) HiddenFace() *Face {
	if !c.HasSecondFace {
		return nil
	}
	return &c.Faces[1-c.ActiveFace]
}

// Flip toggles the active face of a double-faced card.
func (c *Card) Flip() error {
	if !c.HasSecondFace {
		return ErrNotDoubleFaced
	}
	c.ActiveFace = 1 - c.ActiveFace
	return nil
}

// TokenData is a token template: a card shape with no library
// provenance. Tokens synthesized from it vanish when they leave the
// battlefield.
type TokenData struct {
	Name      string `json:"name"`
	ManaCost  string `json:"manaCost,omitempty"`
	ManaValue int    `json:"manaValue,omitempty"`
	TypeLine  string `json:"typeLine,omitempty"`
	Power     string `json:"power,omitempty"`
	Toughness string `json:"toughness,omitempty"`
	Image     string `json:"image,omitempty"`
}

// CardStats are live power/toughness deltas on a battlefield card,
// independent of the printed values.
type CardStats struct {
	Power     int `json:"power"`
	Toughness int `json:"toughness"`
}

// Battlefield rotation states.
const (
	RotationUntapped = 0
	RotationTapped   = 90
	RotationFlipped  = 180
)

// Default drop position for cards entering the battlefield without
// explicit coordinates.
const (
	DefaultFieldX = 50.0
	DefaultFieldY = 50.0
)

// CardOnField wraps a Card with battlefield-only transient state. It is
// created when a card enters the battlefield and destroyed when the
// card leaves; tokens have no existence outside it.
type CardOnField struct {
	Card     Card
	X        float64
	Y        float64
	Rotation int
	Flipped  bool
	Stats    CardStats
	Counters int
	IsToken  bool
}

// NewCardOnField places a card onto the battlefield with fresh
// transient state.
func NewCardOnField(c Card, x, y float64) *CardOnField {
	return &CardOnField{
		Card: c,
		X:    x,
		Y:    y,
	}
}

// Clone deep-copies the card including its current transient state.
func (cf *CardOnField) Clone() *CardOnField {
	cp := *cf
	return &cp
}

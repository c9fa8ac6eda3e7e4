package game

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/opentabletop/tabletop-server-go/internal/game/counters"
	"github.com/opentabletop/tabletop-server-go/internal/game/mana"
)

// Hand size dealt at game start. Smaller decks deal what they have.
const openingHandSize = 7

// Offset applied per existing same-origin token when fanning out clones.
const cloneFanOffset = 25.0

// Sort criteria accepted by SortHand.
const (
	SortByManaCost = "mana_cost"
	SortByName     = "name"
	SortByTypeLine = "type_line"
)

// Player holds one participant's complete tabletop state. The name is
// the durable identity across reconnects; the id follows the transport
// connection and is reassigned on every reconnect. InitialDeck is the
// authoritative decklist and is never mutated after join: every reset
// rebuilds the zones from it.
type Player struct {
	ID     string
	Name   string
	Life   int
	Online bool

	InitialDeck      []Card
	InitialSideboard []Card
	Commanders       []Card

	Library       []Card
	Hand          []Card
	Battlefield   []*CardOnField
	Graveyard     []Card
	Exile         []Card
	CommanderZone []Card
	Sideboard     []Card

	Mana     *mana.Pool
	Counters *counters.Counters
}

// NewPlayer creates a player from a submitted deck and prepares the
// zones: commanders are seated in the commander zone, the remaining
// pool is shuffled into the library, and the hand stays empty until an
// explicit game start deals it.
func NewPlayer(id, name string, deck, sideboard, commanders []Card, startingLife int) *Player {
	p := &Player{
		ID:               id,
		Name:             name,
		Online:           true,
		InitialDeck:      deck,
		InitialSideboard: sideboard,
		Commanders:       commanders,
		Mana:             mana.NewPool(),
		Counters:         counters.New(),
	}
	p.Reset(startingLife)
	return p
}

// Reset restores the player to their initial state from InitialDeck:
// commanders back in the commander zone, the rest shuffled into the
// library, every other zone and counter cleared. Current zone contents
// are never consulted, so a reset always restores exactly the original
// decklist.
func (p *Player) Reset(startingLife int) {
	p.Life = startingLife
	p.Hand = nil
	p.Battlefield = nil
	p.Graveyard = nil
	p.Exile = nil
	p.Mana.Empty()
	p.Counters.Clear()

	p.Sideboard = append([]Card(nil), p.InitialSideboard...)
	p.CommanderZone = append([]Card(nil), p.Commanders...)

	pool := make([]Card, 0, len(p.InitialDeck))
	for _, c := range p.InitialDeck {
		if !p.isCommander(c.ID) {
			pool = append(pool, c)
		}
	}
	ShuffleCards(pool)
	p.Library = pool
}

func (p *Player) isCommander(cardID string) bool {
	for i := range p.Commanders {
		if p.Commanders[i].ID == cardID {
			return true
		}
	}
	return false
}

// Draw moves up to count cards from the top of the library to the hand.
func (p *Player) Draw(count int) {
	for i := 0; i < count && len(p.Library) > 0; i++ {
		p.Hand = append(p.Hand, p.Library[0])
		p.Library = p.Library[1:]
	}
}

// DrawOpeningHand deals the opening hand after a reset.
func (p *Player) DrawOpeningHand() {
	p.Draw(openingHandSize)
}

// ShuffleLibrary shuffles the library in place.
func (p *Player) ShuffleLibrary() {
	ShuffleCards(p.Library)
}

// DiscardRandom moves a uniformly chosen hand card to the graveyard.
// An empty hand is a no-op.
func (p *Player) DiscardRandom() {
	idx := RandomIndex(len(p.Hand))
	if idx < 0 {
		return
	}
	card := p.Hand[idx]
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	p.Graveyard = append(p.Graveyard, card)
}

// SortHand orders the hand by the given criteria. Mana cost sorts by
// computed numeric mana value with name as tiebreaker.
func (p *Player) SortHand(criteria string) {
	switch criteria {
	case SortByManaCost:
		sort.SliceStable(p.Hand, func(i, j int) bool {
			vi, vj := manaValueOf(p.Hand[i].CurrentFace()), manaValueOf(p.Hand[j].CurrentFace())
			if vi != vj {
				return vi < vj
			}
			return p.Hand[i].CurrentFace().Name < p.Hand[j].CurrentFace().Name
		})
	case SortByName:
		sort.SliceStable(p.Hand, func(i, j int) bool {
			return p.Hand[i].CurrentFace().Name < p.Hand[j].CurrentFace().Name
		})
	case SortByTypeLine:
		sort.SliceStable(p.Hand, func(i, j int) bool {
			return p.Hand[i].CurrentFace().TypeLine < p.Hand[j].CurrentFace().TypeLine
		})
	}
}

// manaValueOf returns the face's mana value, computing it from the cost
// string ("{2}{G}{G}" -> 4) when the deck didn't carry a precomputed one.
func manaValueOf(f *Face) int {
	if f.ManaValue > 0 {
		return f.ManaValue
	}
	value := 0
	for _, sym := range strings.Split(strings.Trim(f.ManaCost, "{}"), "}{") {
		if sym == "" || sym == "X" {
			continue
		}
		if n, err := strconv.Atoi(sym); err == nil {
			value += n
		} else {
			value++
		}
	}
	return value
}

// FindOnField returns the battlefield card with the given id.
func (p *Player) FindOnField(cardID string) (*CardOnField, error) {
	if idx := p.fieldIndex(cardID); idx >= 0 {
		return p.Battlefield[idx], nil
	}
	return nil, ErrCardNotFound
}

// FlipCard flips a double-faced battlefield card to its other face and
// toggles the flipped flag. Single-faced cards report ErrNotDoubleFaced.
func (p *Player) FlipCard(cardID string) error {
	cf, err := p.FindOnField(cardID)
	if err != nil {
		return err
	}
	if err := cf.Card.Flip(); err != nil {
		return err
	}
	cf.Flipped = !cf.Flipped
	return nil
}

// RotateCard toggles a battlefield card between untapped and tapped.
func (p *Player) RotateCard(cardID string) error {
	cf, err := p.FindOnField(cardID)
	if err != nil {
		return err
	}
	if cf.Rotation == RotationTapped {
		cf.Rotation = RotationUntapped
	} else {
		cf.Rotation = RotationTapped
	}
	return nil
}

// RotateCard180 toggles a battlefield card between 0 and 180 degrees.
func (p *Player) RotateCard180(cardID string) error {
	cf, err := p.FindOnField(cardID)
	if err != nil {
		return err
	}
	if cf.Rotation == RotationFlipped {
		cf.Rotation = RotationUntapped
	} else {
		cf.Rotation = RotationFlipped
	}
	return nil
}

// UntapAll resets every battlefield rotation to 0.
func (p *Player) UntapAll() {
	for _, cf := range p.Battlefield {
		cf.Rotation = RotationUntapped
	}
}

// SetCardStats sets the live stat modifiers of a battlefield card.
func (p *Player) SetCardStats(cardID string, power, toughness int) error {
	cf, err := p.FindOnField(cardID)
	if err != nil {
		return err
	}
	cf.Stats = CardStats{Power: power, Toughness: toughness}
	return nil
}

// IncrementCardStats adds deltas to the live stat modifiers.
func (p *Player) IncrementCardStats(cardID string, power, toughness int) error {
	cf, err := p.FindOnField(cardID)
	if err != nil {
		return err
	}
	cf.Stats.Power += power
	cf.Stats.Toughness += toughness
	return nil
}

// AdjustCardCounters adds delta to a battlefield card's counter count,
// clamped at zero.
func (p *Player) AdjustCardCounters(cardID string, delta int) error {
	cf, err := p.FindOnField(cardID)
	if err != nil {
		return err
	}
	cf.Counters += delta
	if cf.Counters < 0 {
		cf.Counters = 0
	}
	return nil
}

// CreateToken synthesizes a token card from a template and puts it onto
// the battlefield at the default position.
func (p *Player) CreateToken(data TokenData) *CardOnField {
	card := NewCard(CardInput{
		Face: Face{
			Name:      data.Name,
			ManaCost:  data.ManaCost,
			ManaValue: data.ManaValue,
			TypeLine:  data.TypeLine,
			Power:     data.Power,
			Toughness: data.Toughness,
			Image:     data.Image,
		},
	})
	cf := NewCardOnField(card, DefaultFieldX, DefaultFieldY)
	cf.IsToken = true
	p.Battlefield = append(p.Battlefield, cf)
	return cf
}

// CloneCard deep-copies a battlefield card, including its current
// transient state, under a fresh id. Clones are always tokens: they
// never return to the library. The copy is offset by a fixed increment
// per same-origin token already on the field so stacked clones fan out.
func (p *Player) CloneCard(cardID string) (*CardOnField, error) {
	src, err := p.FindOnField(cardID)
	if err != nil {
		return nil, err
	}
	siblings := 0
	for _, cf := range p.Battlefield {
		if cf.IsToken && cf.Card.CurrentFace().Name == src.Card.CurrentFace().Name {
			siblings++
		}
	}
	clone := src.Clone()
	clone.Card.ID = uuid.NewString()
	clone.IsToken = true
	offset := cloneFanOffset * float64(siblings+1)
	clone.X = src.X + offset
	clone.Y = src.Y + offset
	p.Battlefield = append(p.Battlefield, clone)
	return clone, nil
}

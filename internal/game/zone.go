package game

// Zone identifies a named container of cards belonging to a player.
type Zone int

const (
	ZoneLibrary Zone = iota
	ZoneHand
	ZoneBattlefield
	ZoneGraveyard
	ZoneExile
	ZoneCommander
	ZoneSideboard
)

func (z Zone) String() string {
	switch z {
	case ZoneLibrary:
		return "library"
	case ZoneHand:
		return "hand"
	case ZoneBattlefield:
		return "battlefield"
	case ZoneGraveyard:
		return "graveyard"
	case ZoneExile:
		return "exile"
	case ZoneCommander:
		return "commanderZone"
	case ZoneSideboard:
		return "sideboard"
	default:
		return "unknown"
	}
}

// ParseZone maps a wire zone name onto the closed zone enum.
func ParseZone(s string) (Zone, error) {
	switch s {
	case "library":
		return ZoneLibrary, nil
	case "hand":
		return ZoneHand, nil
	case "battlefield":
		return ZoneBattlefield, nil
	case "graveyard":
		return ZoneGraveyard, nil
	case "exile":
		return ZoneExile, nil
	case "commanderZone":
		return ZoneCommander, nil
	case "sideboard":
		return ZoneSideboard, nil
	default:
		return 0, ErrInvalidZone
	}
}

// MoveOptions carries the optional placement parameters of a transfer.
type MoveOptions struct {
	X        *float64 // battlefield coordinates
	Y        *float64
	Position *int // explicit hand index for drag-to-position
	ToBottom bool // library: insert at the bottom instead of the top
	Flipped  bool // battlefield: enter flipped / back face up
}

// cards returns the card container behind a non-battlefield zone.
// The battlefield holds CardOnField elements and is handled separately.
func (p *Player) cards(z Zone) (*[]Card, error) {
	switch z {
	case ZoneLibrary:
		return &p.Library, nil
	case ZoneHand:
		return &p.Hand, nil
	case ZoneGraveyard:
		return &p.Graveyard, nil
	case ZoneExile:
		return &p.Exile, nil
	case ZoneCommander:
		return &p.CommanderZone, nil
	case ZoneSideboard:
		return &p.Sideboard, nil
	default:
		return nil, ErrInvalidZone
	}
}

// MoveCard transfers the card with the given id from one zone to
// another, converting between Card and CardOnField as needed. A missing
// card is reported as ErrCardNotFound and leaves the player untouched;
// callers treat that as a resynchronization trigger, not a fault.
func (p *Player) MoveCard(from, to Zone, cardID string, opts MoveOptions) error {
	if from == ZoneBattlefield && to == ZoneBattlefield {
		return p.repositionOnField(cardID, opts)
	}

	if from == ZoneBattlefield {
		idx := p.fieldIndex(cardID)
		if idx < 0 {
			return ErrCardNotFound
		}
		cf := p.Battlefield[idx]
		p.Battlefield = append(p.Battlefield[:idx], p.Battlefield[idx+1:]...)

		// Tokens have no identity off the battlefield: leaving it
		// destroys them outright.
		if cf.IsToken {
			return nil
		}
		return p.insertCard(to, cf.Card, opts)
	}

	container, err := p.cards(from)
	if err != nil {
		return err
	}
	idx := indexOfCard(*container, cardID)
	if idx < 0 {
		return ErrCardNotFound
	}
	card := (*container)[idx]
	*container = append((*container)[:idx], (*container)[idx+1:]...)

	if to == ZoneBattlefield {
		p.enterBattlefield(card, opts)
		return nil
	}
	return p.insertCard(to, card, opts)
}

// repositionOnField handles a battlefield-to-battlefield move: update
// coordinates when supplied and raise the card to the end of the list
// so it renders above its siblings (z-order is list order).
func (p *Player) repositionOnField(cardID string, opts MoveOptions) error {
	idx := p.fieldIndex(cardID)
	if idx < 0 {
		return ErrCardNotFound
	}
	cf := p.Battlefield[idx]
	if opts.X != nil {
		cf.X = *opts.X
	}
	if opts.Y != nil {
		cf.Y = *opts.Y
	}
	p.Battlefield = append(p.Battlefield[:idx], p.Battlefield[idx+1:]...)
	p.Battlefield = append(p.Battlefield, cf)
	return nil
}

// enterBattlefield wraps a card arriving from another zone in a fresh
// CardOnField: zero stats and counters, untapped, default position
// unless coordinates were supplied.
func (p *Player) enterBattlefield(card Card, opts MoveOptions) {
	x, y := DefaultFieldX, DefaultFieldY
	if opts.X != nil {
		x = *opts.X
	}
	if opts.Y != nil {
		y = *opts.Y
	}
	cf := NewCardOnField(card, x, y)
	if opts.Flipped {
		cf.Flipped = true
		if cf.Card.HasSecondFace {
			cf.Card.ActiveFace = 1 - cf.Card.ActiveFace
		}
	}
	p.Battlefield = append(p.Battlefield, cf)
}

// insertCard files a card into a non-battlefield destination according
// to its position policy.
func (p *Player) insertCard(to Zone, card Card, opts MoveOptions) error {
	container, err := p.cards(to)
	if err != nil {
		return err
	}
	switch to {
	case ZoneLibrary:
		if opts.ToBottom {
			*container = append(*container, card)
		} else {
			*container = append([]Card{card}, *container...)
		}
	case ZoneCommander:
		*container = append([]Card{card}, *container...)
	case ZoneHand:
		if pos := opts.Position; pos != nil && *pos >= 0 && *pos <= len(*container) {
			rest := *container
			*container = append(rest[:*pos:*pos], append([]Card{card}, rest[*pos:]...)...)
		} else {
			*container = append(*container, card)
		}
	default:
		// graveyard, exile, sideboard: append at the end
		*container = append(*container, card)
	}
	return nil
}

// MoveAllCards moves every card from one zone to another. Bulk moves
// involving the battlefield are not supported since CardOnField state
// cannot be carried wholesale.
func (p *Player) MoveAllCards(from, to Zone) error {
	if from == ZoneBattlefield || to == ZoneBattlefield {
		return ErrUnsupportedZones
	}
	if from == to {
		return nil
	}
	src, err := p.cards(from)
	if err != nil {
		return err
	}
	dst, err := p.cards(to)
	if err != nil {
		return err
	}
	if to == ZoneLibrary {
		// The whole block goes on top, keeping its order.
		*dst = append(append([]Card{}, *src...), *dst...)
	} else {
		*dst = append(*dst, *src...)
	}
	*src = nil
	return nil
}

// MoveAllToBottom moves every card from a zone to the bottom of the
// library, keeping their order.
func (p *Player) MoveAllToBottom(from Zone) error {
	if from == ZoneBattlefield {
		return ErrUnsupportedZones
	}
	if from == ZoneLibrary {
		return nil
	}
	src, err := p.cards(from)
	if err != nil {
		return err
	}
	p.Library = append(p.Library, *src...)
	*src = nil
	return nil
}

func indexOfCard(cards []Card, id string) int {
	for i := range cards {
		if cards[i].ID == id {
			return i
		}
	}
	return -1
}

func (p *Player) fieldIndex(id string) int {
	for i := range p.Battlefield {
		if p.Battlefield[i].Card.ID == id {
			return i
		}
	}
	return -1
}

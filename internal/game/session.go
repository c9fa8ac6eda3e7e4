package game

import (
	"fmt"
	"sync"

	"github.com/opentabletop/tabletop-server-go/internal/game/mana"
)

// SessionType determines starting life and commander-zone semantics.
type SessionType string

const (
	SessionTypeStandard  SessionType = "standard"
	SessionTypeCommander SessionType = "commander"
)

// StartingLife returns the life total players begin with.
func (t SessionType) StartingLife() int {
	if t == SessionTypeCommander {
		return 40
	}
	return 20
}

// Session is one shared tabletop: an ordered list of players (order is
// turn order), a turn counter and the active-player pointer. Sessions
// are created once at startup and never deleted; all state lives in
// process memory.
type Session struct {
	mu sync.RWMutex

	Code           string
	Type           SessionType
	Players        []*Player
	Turn           int
	ActivePlayerID string
}

// NewSession creates an empty session.
func NewSession(code string, sessionType SessionType) *Session {
	return &Session{
		Code: code,
		Type: sessionType,
	}
}

// Join adds a new player built from a submitted deck, or reconnects an
// existing one. The display name is the durable identity: a join whose
// name matches an offline tracked player rebinds that player to the new
// transport id without touching their deck or zones. A name held by an
// online player is taken.
func (s *Session) Join(transportID, name string, deck, sideboard, commanders []CardInput) (reconnected bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.playerByName(name); existing != nil {
		if existing.Online {
			return false, ErrNameTaken
		}
		oldID := existing.ID
		existing.ID = transportID
		existing.Online = true
		// The active pointer follows the rebinding; an all-offline
		// pause cleared it, and the reconnecting player picks the
		// game back up.
		if s.ActivePlayerID == oldID {
			s.ActivePlayerID = existing.ID
		}
		if s.ActivePlayerID == "" {
			s.ActivePlayerID = existing.ID
			if s.Turn == 0 {
				s.Turn = 1
			}
		}
		return true, nil
	}

	if len(deck) == 0 {
		return false, ErrDeckEmpty
	}
	if s.Type == SessionTypeCommander && len(commanders) == 0 {
		return false, ErrNoCommanderDesignated
	}

	deckCards := NewCards(deck)
	var commanderCards []Card
	if s.Type == SessionTypeCommander {
		commanderCards, deckCards = resolveCommanders(deckCards, commanders)
	}

	p := NewPlayer(transportID, name, deckCards, NewCards(sideboard), commanderCards, s.Type.StartingLife())
	s.Players = append(s.Players, p)

	if len(s.Players) == 1 {
		s.ActivePlayerID = p.ID
		s.Turn = 1
	}
	return false, nil
}

// resolveCommanders matches designated commander cards against the deck
// so their ids line up with the decklist. Commanders submitted outside
// the deck are added to it, keeping the conservation invariant: the
// union of all zones always equals the full deck.
func resolveCommanders(deck []Card, designated []CardInput) (commanders, full []Card) {
	full = deck
	for _, in := range designated {
		found := false
		for i := range full {
			if (in.ID != "" && full[i].ID == in.ID) || (in.ID == "" && full[i].CurrentFace().Name == in.Name) {
				commanders = append(commanders, full[i])
				found = true
				break
			}
		}
		if !found {
			c := NewCard(in)
			commanders = append(commanders, c)
			full = append(full, c)
		}
	}
	return commanders, full
}

// StartGame resets every player from their initial deck, deals opening
// hands, picks a random active player and sets the turn counter to 1.
func (s *Session) StartGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.Players) == 0 {
		return ErrPlayerNotFound
	}
	for _, p := range s.Players {
		p.Reset(s.Type.StartingLife())
		p.DrawOpeningHand()
	}
	s.Turn = 1
	s.ActivePlayerID = s.Players[RandomIndex(len(s.Players))].ID
	return nil
}

// ResetPlayer runs the game-start procedure for a single player, using
// their initial deck as ground truth.
func (s *Session) ResetPlayer(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.playerByID(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	p.Reset(s.Type.StartingLife())
	p.DrawOpeningHand()
	return nil
}

// NextTurn untaps the ending player's battlefield, draws them a card,
// increments the turn counter and advances the active-player pointer to
// the next player in join order, wrapping around.
func (s *Session) NextTurn() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.Players) == 0 || s.ActivePlayerID == "" {
		return ErrPlayerNotFound
	}
	idx := -1
	for i, p := range s.Players {
		if p.ID == s.ActivePlayerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrPlayerNotFound
	}
	ending := s.Players[idx]
	ending.UntapAll()
	ending.Draw(1)
	s.Turn++
	s.ActivePlayerID = s.Players[(idx+1)%len(s.Players)].ID
	return nil
}

// MarkOffline flags the player bound to the transport id as offline and
// returns their durable name for removal scheduling. When every player
// is offline the game pauses: the active pointer clears and the turn
// counter zeroes.
func (s *Session) MarkOffline(transportID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.playerByID(transportID)
	if p == nil {
		return "", ErrPlayerNotFound
	}
	p.Online = false

	allOffline := true
	for _, other := range s.Players {
		if other.Online {
			allOffline = false
			break
		}
	}
	if allOffline {
		s.ActivePlayerID = ""
		s.Turn = 0
	}
	return p.Name, nil
}

// Leave removes a player immediately, bypassing the grace period. Only
// the player's own connection may remove them. Returns the removed
// player's name so any pending removal task can be cancelled.
func (s *Session) Leave(requesterID, playerID string) (string, error) {
	if requesterID != playerID {
		return "", ErrNotAuthorized
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.Players {
		if p.ID == playerID {
			name := p.Name
			s.removeAt(i)
			return name, nil
		}
	}
	return "", ErrPlayerNotFound
}

// RemoveIfOffline performs the grace-period hard removal: the named
// player is removed only if they are still offline. Returns whether a
// removal happened, so a timer firing after a reconnect is a no-op.
func (s *Session) RemoveIfOffline(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.Players {
		if p.Name == name {
			if p.Online {
				return false
			}
			s.removeAt(i)
			return true
		}
	}
	return false
}

// removeAt deletes the player at index i. If they held the active
// pointer it passes to the first remaining player, or clears.
func (s *Session) removeAt(i int) {
	removed := s.Players[i]
	s.Players = append(s.Players[:i], s.Players[i+1:]...)
	if s.ActivePlayerID == removed.ID {
		if len(s.Players) > 0 {
			s.ActivePlayerID = s.Players[0].ID
		} else {
			s.ActivePlayerID = ""
		}
	}
}

// PlayerCount returns the number of currently tracked players.
func (s *Session) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Players)
}

// ==================== per-player intent operations ====================

// MoveCard is the zone-transfer entry point for one player.
func (s *Session) MoveCard(playerID string, from, to Zone, cardID string, opts MoveOptions) error {
	return s.withPlayer(playerID, func(p *Player) error {
		return p.MoveCard(from, to, cardID, opts)
	})
}

// MoveAllCards bulk-moves every card between two non-battlefield zones.
func (s *Session) MoveAllCards(playerID string, from, to Zone) error {
	return s.withPlayer(playerID, func(p *Player) error {
		return p.MoveAllCards(from, to)
	})
}

// MoveAllToBottom bulk-moves a zone to the bottom of the library.
func (s *Session) MoveAllToBottom(playerID string, from Zone) error {
	return s.withPlayer(playerID, func(p *Player) error {
		return p.MoveAllToBottom(from)
	})
}

// Draw draws count cards (default one).
func (s *Session) Draw(playerID string, count int) error {
	if count <= 0 {
		count = 1
	}
	return s.withPlayer(playerID, func(p *Player) error {
		p.Draw(count)
		return nil
	})
}

// Shuffle shuffles the player's library.
func (s *Session) Shuffle(playerID string) error {
	return s.withPlayer(playerID, func(p *Player) error {
		p.ShuffleLibrary()
		return nil
	})
}

// SetLife sets the player's life total.
func (s *Session) SetLife(playerID string, life int) error {
	return s.withPlayer(playerID, func(p *Player) error {
		p.Life = life
		return nil
	})
}

// SetMana sets one mana pool color to an absolute value.
func (s *Session) SetMana(playerID, color string, value int) error {
	return s.withPlayer(playerID, func(p *Player) error {
		if !p.Mana.Set(mana.Color(color), value) {
			return fmt.Errorf("unknown mana color %q", color)
		}
		return nil
	})
}

// SetCounter sets one named player counter to an absolute value.
func (s *Session) SetCounter(playerID, name string, value int) error {
	return s.withPlayer(playerID, func(p *Player) error {
		p.Counters.Set(name, value)
		return nil
	})
}

// RotateCard toggles a battlefield card between 0 and 90 degrees.
func (s *Session) RotateCard(playerID, cardID string) error {
	return s.withPlayer(playerID, func(p *Player) error {
		return p.RotateCard(cardID)
	})
}

// RotateCard180 toggles a battlefield card between 0 and 180 degrees.
func (s *Session) RotateCard180(playerID, cardID string) error {
	return s.withPlayer(playerID, func(p *Player) error {
		return p.RotateCard180(cardID)
	})
}

// FlipCard flips a double-faced battlefield card.
func (s *Session) FlipCard(playerID, cardID string) error {
	return s.withPlayer(playerID, func(p *Player) error {
		return p.FlipCard(cardID)
	})
}

// SetCardStats sets a battlefield card's live stat modifiers.
func (s *Session) SetCardStats(playerID, cardID string, power, toughness int) error {
	return s.withPlayer(playerID, func(p *Player) error {
		return p.SetCardStats(cardID, power, toughness)
	})
}

// IncrementCardStats adds deltas to a battlefield card's stat modifiers.
func (s *Session) IncrementCardStats(playerID, cardID string, power, toughness int) error {
	return s.withPlayer(playerID, func(p *Player) error {
		return p.IncrementCardStats(cardID, power, toughness)
	})
}

// AdjustCardCounters adds delta to a battlefield card's counter count.
func (s *Session) AdjustCardCounters(playerID, cardID string, delta int) error {
	return s.withPlayer(playerID, func(p *Player) error {
		return p.AdjustCardCounters(cardID, delta)
	})
}

// SortHand orders the player's hand by the given criteria.
func (s *Session) SortHand(playerID, criteria string) error {
	return s.withPlayer(playerID, func(p *Player) error {
		p.SortHand(criteria)
		return nil
	})
}

// DiscardRandom discards a uniformly chosen hand card.
func (s *Session) DiscardRandom(playerID string) error {
	return s.withPlayer(playerID, func(p *Player) error {
		p.DiscardRandom()
		return nil
	})
}

// CreateToken synthesizes a token onto the player's battlefield.
func (s *Session) CreateToken(playerID string, data TokenData) error {
	return s.withPlayer(playerID, func(p *Player) error {
		p.CreateToken(data)
		return nil
	})
}

// CloneCard copies a battlefield card as a token.
func (s *Session) CloneCard(playerID, cardID string) error {
	return s.withPlayer(playerID, func(p *Player) error {
		_, err := p.CloneCard(cardID)
		return err
	})
}

func (s *Session) withPlayer(playerID string, fn func(*Player) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.playerByID(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	return fn(p)
}

func (s *Session) playerByID(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Session) playerByName(name string) *Player {
	for _, p := range s.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

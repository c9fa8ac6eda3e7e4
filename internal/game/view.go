package game

import "github.com/opentabletop/tabletop-server-go/internal/game/mana"

// View structs are the JSON shapes broadcast to clients. They render a
// card's currently showing face into the top-level fields and keep the
// hidden face in secondFace, which is the shape clients draw from.

// SessionView is the full session snapshot.
type SessionView struct {
	Code         string       `json:"code"`
	SessionType  string       `json:"sessionType"`
	Turn         int          `json:"turn"`
	ActivePlayer string       `json:"activePlayer"`
	Players      []PlayerView `json:"players"`
}

// PlayerView is one player's complete visible state.
type PlayerView struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Life          int               `json:"life"`
	Online        bool              `json:"online"`
	Library       []CardView        `json:"library"`
	Hand          []CardView        `json:"hand"`
	Battlefield   []CardOnFieldView `json:"battlefield"`
	Graveyard     []CardView        `json:"graveyard"`
	Exile         []CardView        `json:"exile"`
	CommanderZone []CardView        `json:"commanderZone"`
	Sideboard     []CardView        `json:"sideboard,omitempty"`
	ManaPool      mana.Pool         `json:"manaPool"`
	Counters      map[string]int    `json:"counters"`
}

// CardView is the flat card shape: the active face inlined, the hidden
// face (for double-faced cards) nested.
type CardView struct {
	ID            string `json:"id"`
	Face                 // active face fields, inlined
	HasSecondFace bool   `json:"hasSecondFace"`
	SecondFace    *Face  `json:"secondFace,omitempty"`
}

// CardOnFieldView adds the battlefield transient state to a card view.
type CardOnFieldView struct {
	CardView
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Rotation int       `json:"rotation"`
	Flipped  bool      `json:"isFlipped"`
	Stats    CardStats `json:"stats"`
	Counters int       `json:"counters"`
	IsToken  bool      `json:"isToken"`
}

// View renders a card for clients.
func (c *Card) View() CardView {
	v := CardView{
		ID:            c.ID,
		Face:          *c.CurrentFace(),
		HasSecondFace: c.HasSecondFace,
	}
	if hidden := c.HiddenFace(); hidden != nil {
		cp := *hidden
		v.SecondFace = &cp
	}
	return v
}

// View renders a battlefield card for clients.
func (cf *CardOnField) View() CardOnFieldView {
	return CardOnFieldView{
		CardView: cf.Card.View(),
		X:        cf.X,
		Y:        cf.Y,
		Rotation: cf.Rotation,
		Flipped:  cf.Flipped,
		Stats:    cf.Stats,
		Counters: cf.Counters,
		IsToken:  cf.IsToken,
	}
}

func cardViews(cards []Card) []CardView {
	views := make([]CardView, 0, len(cards))
	for i := range cards {
		views = append(views, cards[i].View())
	}
	return views
}

// Snapshot returns a consistent copy of the session for broadcasting.
func (s *Session) Snapshot() *SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make([]PlayerView, 0, len(s.Players))
	for _, p := range s.Players {
		field := make([]CardOnFieldView, 0, len(p.Battlefield))
		for _, cf := range p.Battlefield {
			field = append(field, cf.View())
		}
		players = append(players, PlayerView{
			ID:            p.ID,
			Name:          p.Name,
			Life:          p.Life,
			Online:        p.Online,
			Library:       cardViews(p.Library),
			Hand:          cardViews(p.Hand),
			Battlefield:   field,
			Graveyard:     cardViews(p.Graveyard),
			Exile:         cardViews(p.Exile),
			CommanderZone: cardViews(p.CommanderZone),
			Sideboard:     cardViews(p.Sideboard),
			ManaPool:      *p.Mana.Copy(),
			Counters:      p.Counters.AsMap(),
		})
	}

	return &SessionView{
		Code:         s.Code,
		SessionType:  string(s.Type),
		Turn:         s.Turn,
		ActivePlayer: s.ActivePlayerID,
		Players:      players,
	}
}

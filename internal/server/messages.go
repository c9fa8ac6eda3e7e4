package server

import (
	"encoding/json"

	"github.com/opentabletop/tabletop-server-go/internal/game"
)

// Inbound event names.
const (
	EventJoinSession           = "joinSession"
	EventStartGame             = "startGame"
	EventResetPlayer           = "resetPlayer"
	EventDraw                  = "draw"
	EventShuffle               = "shuffle"
	EventChangeLife            = "changeLife"
	EventMoveCard              = "moveCard"
	EventMoveAllCards          = "moveAllCards"
	EventMoveAllToBottom       = "moveAllToBottom"
	EventRotateCard            = "rotateCard"
	EventRotateCard180         = "rotateCard180"
	EventNextTurn              = "nextTurn"
	EventChangeMana            = "changeMana"
	EventChangeCounters        = "changeCounters"
	EventIncrementCardStats    = "increment_card_stats"
	EventSetCardStats          = "set_card_stats"
	EventIncrementCardCounters = "increment_card_counters"
	EventDecreaseCardCounters  = "decrease_card_counters"
	EventFlipCard              = "flipCard"
	EventMoveToFieldFlipped    = "moveCardToBattlefieldFlipped"
	EventSortHand              = "sortHand"
	EventDiscardRandomCard     = "discardRandomCard"
	EventCreateToken           = "createToken"
	EventCloneCard             = "cloneCard"
	EventDisconnectPlayer      = "disconnectPlayer"
)

// Outbound event names.
const (
	EventUpdateState        = "updateState"
	EventUpdateSessionStats = "updateSessionStats"
	EventError              = "error"
	EventForceDisconnect    = "forceDisconnect"
)

// Envelope is the wire framing of every event.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// encode frames an outbound event. Payloads here are server-built
// views, so a marshal failure is a programming error worth surfacing to
// the caller as nil.
func encode(eventType string, payload any) []byte {
	raw, err := json.Marshal(struct {
		Type    string `json:"type"`
		Payload any    `json:"payload,omitempty"`
	}{Type: eventType, Payload: payload})
	if err != nil {
		return nil
	}
	return raw
}

type joinSessionPayload struct {
	Code           string           `json:"code"`
	PlayerName     string           `json:"playerName"`
	Deck           []game.CardInput `json:"deck"`
	SideboardCards []game.CardInput `json:"sideboardCards,omitempty"`
	CommanderCard  []game.CardInput `json:"commanderCard,omitempty"`
}

type sessionPayload struct {
	Code string `json:"code"`
}

type playerPayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
}

type drawPayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
	Count    int    `json:"count,omitempty"`
}

type lifePayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
	NewLife  int    `json:"newLife"`
}

type moveCardPayload struct {
	Code     string   `json:"code"`
	PlayerID string   `json:"playerId"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	CardID   string   `json:"cardId"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Position *int     `json:"position,omitempty"`
	ToBottom bool     `json:"toBottom,omitempty"`
}

type moveAllPayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
	From     string `json:"from"`
	To       string `json:"to"`
}

type cardPayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
	CardID   string `json:"cardId"`
}

type flippedMovePayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
	CardID   string `json:"cardId"`
	From     string `json:"from"`
}

type manaPayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
	Color    string `json:"color"`
	NewValue int    `json:"newValue"`
}

type counterPayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
	Type     string `json:"type"`
	NewValue int    `json:"newValue"`
}

type cardStatsPayload struct {
	Code      string `json:"code"`
	PlayerID  string `json:"playerId"`
	CardID    string `json:"cardId"`
	Power     int    `json:"powerValue"`
	Toughness int    `json:"toughnessValue"`
}

type sortHandPayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
	Criteria string `json:"criteria"`
}

type createTokenPayload struct {
	Code      string         `json:"code"`
	PlayerID  string         `json:"playerId"`
	TokenData game.TokenData `json:"tokenData"`
}

type statePayload struct {
	Session *game.SessionView `json:"session"`
}

type errorPayload struct {
	Message string `json:"message"`
}

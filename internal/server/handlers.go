package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/opentabletop/tabletop-server-go/internal/catalog"
	"github.com/opentabletop/tabletop-server-go/internal/game"
)

const catalogLookupTimeout = 2 * time.Second

// Handler dispatches inbound intents against the session registry and
// pushes the resulting snapshots through the hub. Every handler either
// mutates and broadcasts, or leaves state untouched and unicasts an
// error; a benign stale-card error additionally re-broadcasts the
// unchanged snapshot so the requester resynchronizes.
type Handler struct {
	registry  *game.Registry
	hub       *Hub
	catalog   *catalog.Store // nil when disabled
	scheduler *game.RemovalScheduler
	logger    *zap.Logger
}

// NewHandler wires the intent dispatcher. The catalog may be nil.
func NewHandler(registry *game.Registry, hub *Hub, cat *catalog.Store, gracePeriod time.Duration, logger *zap.Logger) *Handler {
	h := &Handler{
		registry: registry,
		hub:      hub,
		catalog:  cat,
		logger:   logger,
	}
	h.scheduler = game.NewRemovalScheduler(gracePeriod, h.onRemovalExpired, logger)
	return h
}

// Close cancels all pending removals.
func (h *Handler) Close() {
	h.scheduler.Stop()
}

// Dispatch routes one inbound message. No error escapes: invalid input
// degrades to a unicast error message, and a panicking handler is
// recovered and reported as a generic failure.
func (h *Handler) Dispatch(c *Client, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("intent handler panic",
				zap.Any("panic", r),
				zap.String("client_id", c.ID),
			)
			h.sendError(c, "internal server error")
		}
	}()

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.sendError(c, "malformed message")
		return
	}

	switch env.Type {
	case EventJoinSession:
		h.handleJoinSession(c, env.Payload)
	case EventStartGame:
		h.handleStartGame(c, env.Payload)
	case EventResetPlayer:
		h.handleResetPlayer(c, env.Payload)
	case EventDraw:
		h.handleDraw(c, env.Payload)
	case EventShuffle:
		h.handleShuffle(c, env.Payload)
	case EventChangeLife:
		h.handleChangeLife(c, env.Payload)
	case EventMoveCard:
		h.handleMoveCard(c, env.Payload)
	case EventMoveAllCards:
		h.handleMoveAllCards(c, env.Payload)
	case EventMoveAllToBottom:
		h.handleMoveAllToBottom(c, env.Payload)
	case EventRotateCard:
		h.handleRotateCard(c, env.Payload, false)
	case EventRotateCard180:
		h.handleRotateCard(c, env.Payload, true)
	case EventNextTurn:
		h.handleNextTurn(c, env.Payload)
	case EventChangeMana:
		h.handleChangeMana(c, env.Payload)
	case EventChangeCounters:
		h.handleChangeCounters(c, env.Payload)
	case EventIncrementCardStats:
		h.handleIncrementCardStats(c, env.Payload)
	case EventSetCardStats:
		h.handleSetCardStats(c, env.Payload)
	case EventIncrementCardCounters:
		h.handleAdjustCardCounters(c, env.Payload, +1)
	case EventDecreaseCardCounters:
		h.handleAdjustCardCounters(c, env.Payload, -1)
	case EventFlipCard:
		h.handleFlipCard(c, env.Payload)
	case EventMoveToFieldFlipped:
		h.handleMoveToFieldFlipped(c, env.Payload)
	case EventSortHand:
		h.handleSortHand(c, env.Payload)
	case EventDiscardRandomCard:
		h.handleDiscardRandom(c, env.Payload)
	case EventCreateToken:
		h.handleCreateToken(c, env.Payload)
	case EventCloneCard:
		h.handleCloneCard(c, env.Payload)
	case EventDisconnectPlayer:
		h.handleDisconnectPlayer(c, env.Payload)
	default:
		h.sendError(c, fmt.Sprintf("unknown event %q", env.Type))
	}
}

// ==================== lifecycle ====================

func (h *Handler) handleJoinSession(c *Client, raw json.RawMessage) {
	var p joinSessionPayload
	if !h.decode(c, raw, &p) {
		return
	}
	sess, ok := h.registry.Get(p.Code)
	if !ok {
		h.sendError(c, game.ErrSessionNotFound.Error())
		return
	}

	reconnected, err := sess.Join(c.ID, p.PlayerName, p.Deck, p.SideboardCards, p.CommanderCard)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}

	h.hub.JoinRoom(c, p.Code)
	h.scheduler.Cancel(p.Code, p.PlayerName)

	h.logger.Info("player joined session",
		zap.String("session", p.Code),
		zap.String("player", p.PlayerName),
		zap.Bool("reconnected", reconnected),
	)

	h.broadcastState(sess)
	h.broadcastStats()
}

// HandleTransportDisconnect marks the player behind a dropped
// connection offline and schedules their grace-period removal.
func (h *Handler) HandleTransportDisconnect(c *Client) {
	code := h.hub.SessionCode(c)
	if code == "" {
		return
	}
	sess, ok := h.registry.Get(code)
	if !ok {
		return
	}
	name, err := sess.MarkOffline(c.ID)
	if err != nil {
		// Already removed (explicit leave) or reconnected elsewhere.
		return
	}
	h.scheduler.Schedule(code, name)

	h.logger.Info("player disconnected",
		zap.String("session", code),
		zap.String("player", name),
	)

	h.broadcastState(sess)
	h.broadcastStats()
}

func (h *Handler) onRemovalExpired(code, name string) {
	sess, ok := h.registry.Get(code)
	if !ok {
		return
	}
	if !sess.RemoveIfOffline(name) {
		return
	}
	h.logger.Info("player removed after grace period",
		zap.String("session", code),
		zap.String("player", name),
	)
	h.broadcastState(sess)
	h.broadcastStats()
}

func (h *Handler) handleDisconnectPlayer(c *Client, raw json.RawMessage) {
	var p playerPayload
	if !h.decode(c, raw, &p) {
		return
	}
	sess, ok := h.registry.Get(p.Code)
	if !ok {
		h.sendError(c, game.ErrSessionNotFound.Error())
		return
	}
	name, err := sess.Leave(c.ID, p.PlayerID)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}
	h.scheduler.Cancel(p.Code, name)
	// The leaver must stop receiving snapshots for a table they left.
	h.hub.LeaveRoom(c)

	h.logger.Info("player left session",
		zap.String("session", p.Code),
		zap.String("player", name),
	)

	h.broadcastState(sess)
	h.broadcastStats()
}

func (h *Handler) handleStartGame(c *Client, raw json.RawMessage) {
	var p sessionPayload
	if !h.decode(c, raw, &p) {
		return
	}
	h.mutate(c, p.Code, func(sess *game.Session) error {
		return sess.StartGame()
	})
}

func (h *Handler) handleResetPlayer(c *Client, raw json.RawMessage) {
	var p playerPayload
	if !h.decode(c, raw, &p) {
		return
	}
	h.mutate(c, p.Code, func(sess *game.Session) error {
		return sess.ResetPlayer(p.PlayerID)
	})
}

// ==================== in-game intents ====================

func (h *Handler) handleDraw(c *Client, raw json.RawMessage) {
	var p drawPayload
	if !h.decode(c, raw, &p) {
		return
	}
	h.mutate(c, p.Code, func(sess *game.Session) error {
		return sess.Draw(p.PlayerID, p.Count)
	})
}

func (h *Handler) handleShuffle(c *Client, raw json.RawMessage) {
	var p playerPayload
	if !h.decode(c, raw, &p) {
		return
	}
	h.mutate(c, p.Code, func(sess *game.Session) error {
		return sess.Shuffle(p.PlayerID)
	})
}

func (h *Handler) handleChangeLife(c *Client, raw json.RawMessage) {
	var p lifePayload
	if !h.decode(c, raw, &p) {
		return
	}
	h.mutate(c, p.Code, func(sess *game.Session) error {
		return sess.SetLife(p.PlayerID, p.NewLife)
	})
}

func (h *Handler) handleMoveCard(c *Client, raw json.RawMessage) {
	var p moveCardPayload
	if !h.decode(c, raw, &p) {
		return
	}
	from, err := game.ParseZone(p.From)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}
	to, err := game.ParseZone(p.To)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}
	opts := game.MoveOptions{
		X:        p.X,
		Y:        p.Y,
		Position: p.Position,
		ToBottom: p.ToBottom,
	}
	h.mutate(c, p.Code, func(sess *game.Session) error {
		return sess.MoveCard(p.PlayerID, from, to, p.CardID, opts)
	})
}

func (h *Handler) handleMoveToFieldFlipped(c *Client, raw json.RawMessage) {
	var p flippedMovePayload
	if !h.decode(c, raw, &p) {
		return
	}
	from, err := game.ParseZone(p.From)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}
	h.mutate(c, p.Code, func(sess *game.Session) error {
		return sess.MoveCard(p.PlayerID, from, game.ZoneBattlefield, p.CardID, game.MoveOptions{Flipped: true})
	})
}

func (h *Handler) handleMoveAllCards(c *Client, raw json.RawMessage) {
	var p moveAllPayload
	if !h.decode(c, raw, &p) {
		return
	}
	from, err := game.ParseZone(p.From)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}
	to, err := game.ParseZone(p.To)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}
	h.mutate(c, p.Code, func(sess *game.Session) error {
		return sess.MoveAllCards(p.PlayerID, from, to)
	})
}

func (h *Handler) handleMoveAllToBottom(c *Client, raw json.RawMessage) {
	var p moveAllPayload
	if !h.decode(c, raw, &p) {
		return
	}
	from, err := game.ParseZone(p.From)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}
	h.mutate(c, p.Code, func(sess *game.Session) error {
		return sess.MoveAllToBottom(p.PlayerID, from)
	})
}

func (h *Handler) handleRotateCard(c *Client, raw json.RawMessage, halfTurn bool) {
	var p cardPayload
	if !h.decode(c, raw, &p) {
		return
	}
	h.mutate(c, p.Code, func(sess *game.Session) error {
		if halfTurn {
			return sess.RotateCard180(p.PlayerID, p.CardID)
		}
		return sess.RotateCard(p.PlayerID, p.CardID)
	})
}

func (h *Handler) handleNextTurn(c *Client, raw json.RawMessage) {
	var p playerPayload
	if !h.decode(c, raw, &p) {
		return
	}
	h.mutate(c, p.Code, func(sess *game.Session) error {
		return sess.NextTurn()
	})
}

func (h *Handler) handleChangeMana(c *Client, raw json.RawMessage) {
	var p manaPayload
	if !h.decode(c, raw, &p) {
		return
	}
	h.mutate(c, p.Code, func(sess *game.Session) error {
		return sess.SetMana(p.PlayerID, p.Color, p.NewValue)
	})
}

func (h *Handler) handleChangeCounters(c *Client, raw json.RawMessage) {
	var p counterPayload
	if !h.decode(c, raw, &p) {
		return
	}
	h.mutate(c, p.Code, func(sess *game.Session) error {
		return sess.SetCounter(p.PlayerID, p.Type, p.NewValue)
	})
}

func (h *Handler) handleIncrementCardStats(c *Client, raw json.RawMessage) {
	var p cardStatsPayload
	if !h.decode(c, raw, &p) {
		return
	}
	h.mutate(c, p.Code, func(sess *game.Session) error {
		return sess.IncrementCardStats(p.PlayerID, p.CardID, p.Power, p.Toughness)
	})
}

func (h *Handler) handleSetCardStats(c *Client, raw json.RawMessage) {
	var p cardStatsPayload
	if !h.decode(c, raw, &p) {
		return
	}
	h.mutate(c, p.Code, func(sess *game.Session) error {
		return sess.SetCardStats(p.PlayerID, p.CardID, p.Power, p.Toughness)
	})
}

func (h *Handler) handleAdjustCardCounters(c *Client, raw json.RawMessage, delta int) {
	var p cardPayload
	if !h.decode(c, raw, &p) {
		return
	}
	h.mutate(c, p.Code, func(sess *game.Session) error {
		return sess.AdjustCardCounters(p.PlayerID, p.CardID, delta)
	})
}

func (h *Handler) handleFlipCard(c *Client, raw json.RawMessage) {
	var p cardPayload
	if !h.decode(c, raw, &p) {
		return
	}
	h.mutate(c, p.Code, func(sess *game.Session) error {
		return sess.FlipCard(p.PlayerID, p.CardID)
	})
}

func (h *Handler) handleSortHand(c *Client, raw json.RawMessage) {
	var p sortHandPayload
	if !h.decode(c, raw, &p) {
		return
	}
	h.mutate(c, p.Code, func(sess *game.Session) error {
		return sess.SortHand(p.PlayerID, p.Criteria)
	})
}

func (h *Handler) handleDiscardRandom(c *Client, raw json.RawMessage) {
	var p playerPayload
	if !h.decode(c, raw, &p) {
		return
	}
	h.mutate(c, p.Code, func(sess *game.Session) error {
		return sess.DiscardRandom(p.PlayerID)
	})
}

func (h *Handler) handleCreateToken(c *Client, raw json.RawMessage) {
	var p createTokenPayload
	if !h.decode(c, raw, &p) {
		return
	}
	data := p.TokenData
	// A bare name with no shape is a catalog lookup when one is wired.
	if h.catalog != nil && data.Name != "" && data.TypeLine == "" {
		ctx, cancel := context.WithTimeout(context.Background(), catalogLookupTimeout)
		defer cancel()
		if resolved, err := h.catalog.TokenTemplate(ctx, data.Name); err == nil {
			data = *resolved
		} else if !errors.Is(err, catalog.ErrTemplateNotFound) {
			h.logger.Warn("token template lookup failed",
				zap.String("name", data.Name),
				zap.Error(err),
			)
		}
	}
	h.mutate(c, p.Code, func(sess *game.Session) error {
		return sess.CreateToken(p.PlayerID, data)
	})
}

func (h *Handler) handleCloneCard(c *Client, raw json.RawMessage) {
	var p cardPayload
	if !h.decode(c, raw, &p) {
		return
	}
	h.mutate(c, p.Code, func(sess *game.Session) error {
		return sess.CloneCard(p.PlayerID, p.CardID)
	})
}

// ==================== plumbing ====================

// mutate runs a session mutation and broadcasts the snapshot. Errors
// are unicast to the requester; a stale-card error still re-broadcasts
// the unchanged snapshot so the requester's view converges.
func (h *Handler) mutate(c *Client, code string, fn func(*game.Session) error) {
	sess, ok := h.registry.Get(code)
	if !ok {
		h.sendError(c, game.ErrSessionNotFound.Error())
		return
	}
	if err := fn(sess); err != nil {
		h.sendError(c, err.Error())
		if errors.Is(err, game.ErrCardNotFound) {
			h.broadcastState(sess)
		}
		return
	}
	h.broadcastState(sess)
}

func (h *Handler) decode(c *Client, raw json.RawMessage, into any) bool {
	if err := json.Unmarshal(raw, into); err != nil {
		h.sendError(c, "malformed payload")
		return false
	}
	return true
}

func (h *Handler) broadcastState(sess *game.Session) {
	h.hub.BroadcastRoom(sess.Code, encode(EventUpdateState, statePayload{Session: sess.Snapshot()}))
}

func (h *Handler) broadcastStats() {
	h.hub.BroadcastAll(encode(EventUpdateSessionStats, h.registry.Stats()))
}

func (h *Handler) sendError(c *Client, message string) {
	h.hub.Unicast(c, encode(EventError, errorPayload{Message: message}))
}

// ForceDisconnectAll tells every client to return to login, used during
// graceful shutdown.
func (h *Handler) ForceDisconnectAll(message string) {
	h.hub.BroadcastAll(encode(EventForceDisconnect, errorPayload{Message: message}))
}

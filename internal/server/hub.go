package server

import (
	"sync"

	"go.uber.org/zap"
)

// Hub tracks every connected client and the per-session rooms. Room
// delivery order follows mutation order: broadcasts happen under the
// caller's control after each mutation completes.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool
	logger  *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		rooms:   make(map[string]map[*Client]bool),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
	h.logger.Debug("client registered", zap.String("client_id", c.ID))
}

// Unregister removes a client from the hub and its room and closes its
// send channel. Safe to call once per client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	h.leaveRoomLocked(c)
	close(c.send)
	h.logger.Debug("client unregistered", zap.String("client_id", c.ID))
}

// JoinRoom moves a client into the room for a session code.
func (h *Hub) JoinRoom(c *Client, code string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveRoomLocked(c)
	room, ok := h.rooms[code]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[code] = room
	}
	room[c] = true
	c.sessionCode = code
}

// LeaveRoom removes a client from its current room while keeping the
// connection registered, used when a player explicitly leaves a table.
func (h *Hub) LeaveRoom(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveRoomLocked(c)
}

func (h *Hub) leaveRoomLocked(c *Client) {
	if c.sessionCode == "" {
		return
	}
	if room, ok := h.rooms[c.sessionCode]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, c.sessionCode)
		}
	}
	c.sessionCode = ""
}

// SessionCode returns the room the client currently belongs to.
func (h *Hub) SessionCode(c *Client) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.sessionCode
}

// BroadcastRoom sends a message to every client in a session's room.
// Delivery is fire-and-forget: a client with a full buffer misses the
// message and catches up on the next snapshot.
func (h *Hub) BroadcastRoom(code string, message []byte) {
	if message == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[code] {
		select {
		case c.send <- message:
		default:
			h.logger.Warn("dropping message for slow client", zap.String("client_id", c.ID))
		}
	}
}

// BroadcastAll sends a message to every connected client.
func (h *Hub) BroadcastAll(message []byte) {
	if message == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- message:
		default:
			h.logger.Warn("dropping message for slow client", zap.String("client_id", c.ID))
		}
	}
}

// Unicast sends a message to one client.
func (h *Hub) Unicast(c *Client, message []byte) {
	if message == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[c] {
		return
	}
	select {
	case c.send <- message:
	default:
		h.logger.Warn("dropping message for slow client", zap.String("client_id", c.ID))
	}
}

package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 1 << 20 // decks with full card data can be large
	sendBufferSize = 64
)

// Client is one websocket connection. Its id is the transport identity
// players are keyed by until they reconnect under a new one.
type Client struct {
	ID          string
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	sessionCode string // guarded by hub.mu
}

// NewClient wraps an upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// readPump feeds inbound messages to the handler until the connection
// drops, then runs the transport-disconnect lifecycle.
func (c *Client) readPump(h *Handler) {
	defer func() {
		h.HandleTransportDisconnect(c)
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		h.Dispatch(c, message)
	}
}

// writePump drains the send channel onto the connection.
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

package server

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

const (
	// sendBufferSize is the per-client outbound queue. A client this
	// far behind gets disconnected.
	sendBufferSize = 256

	// maxMessageSize caps inbound frames. Decklists are the largest
	// legitimate payload and fit with room to spare.
	maxMessageSize = 64 * 1024
)

// Client is one websocket connection. It binds to a game and player on
// create or join and receives that game's pushes from then on.
type Client struct {
	conn *websocket.Conn
	send chan []byte

	mu       sync.Mutex
	gameID   string
	playerID string
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

func (c *Client) bind(gameID, playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gameID != "" {
		c.gameID = gameID
	}
	if playerID != "" {
		c.playerID = playerID
	}
}

func (c *Client) identity() (gameID, playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID, c.playerID
}

// enqueue hands a frame to the write pump, reporting false when the
// client's queue is full.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.drop(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.sendError(c, "", fmt.Errorf("malformed message: %w", err))
			continue
		}
		h.handleMessage(c, msg)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for frame := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			break
		}
	}
}

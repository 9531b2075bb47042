package wshub

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/coder/websocket"

	"sketchparty/internal/protocol"
)

// Client represents a single WebSocket connection in a room's hub. Identity
// is the authenticated username; ConnID distinguishes successive connections
// of the same identity so a displaced tab cannot act on the room after a
// rejoin.
type Client struct {
	Identity string
	ConnID   string
	Conn     *websocket.Conn
	Send     chan []byte
}

func NewClient(identity, connID string, conn *websocket.Conn) *Client {
	return &Client{
		Identity: identity,
		ConnID:   connID,
		Conn:     conn,
		Send:     make(chan []byte, 64),
	}
}

// WritePump reads from the Send channel and writes to the WebSocket
// connection. Closing Send drains any buffered messages first and then
// closes the connection, so a final notice reaches the client.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				if c.Conn != nil {
					c.Conn.Close(websocket.StatusNormalClosure, "")
				}
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Hub manages the WebSocket connections of one room, keyed by identity.
// Exactly one connection is bound per identity at a time.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register binds a client as the authoritative connection for its identity.
// If another connection was bound, it is returned so the caller can notify
// and detach it.
func (h *Hub) Register(c *Client) (displaced *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	displaced = h.clients[c.Identity]
	h.clients[c.Identity] = c
	return displaced
}

// Unregister removes the client bound to identity, but only if connID still
// matches: a connection displaced by a rejoin must not unbind its successor.
// Reports whether the client was actually removed.
func (h *Hub) Unregister(identity, connID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[identity]
	if !ok || c.ConnID != connID {
		return false
	}
	close(c.Send)
	delete(h.clients, identity)
	return true
}

// Bound reports whether connID is the authoritative connection for identity.
func (h *Hub) Bound(identity, connID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[identity]
	return ok && c.ConnID == connID
}

// Broadcast sends a message to every client in the room.
func (h *Hub) Broadcast(msg protocol.ServerMessage) {
	h.send(msg, func(string) bool { return true })
}

// BroadcastExcept sends a message to all clients except the named identity.
func (h *Hub) BroadcastExcept(identity string, msg protocol.ServerMessage) {
	h.send(msg, func(id string) bool { return id != identity })
}

// SendTo sends a message to a single identity, if connected.
func (h *Hub) SendTo(identity string, msg protocol.ServerMessage) {
	h.send(msg, func(id string) bool { return id == identity })
}

// SendSubset sends a message to the listed identities only.
func (h *Hub) SendSubset(identities []string, msg protocol.ServerMessage) {
	members := make(map[string]bool, len(identities))
	for _, id := range identities {
		members[id] = true
	}
	h.send(msg, func(id string) bool { return members[id] })
}

func (h *Hub) send(msg protocol.ServerMessage, include func(identity string) bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WSHub] Marshal error: %v\n", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, c := range h.clients {
		if !include(id) {
			continue
		}
		select {
		case c.Send <- data:
		default:
			// Drop message if channel full
		}
	}
}

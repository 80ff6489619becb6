package collab

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is one connected browser session.
type Client struct {
	ID   string
	conn *websocket.Conn
}

// Hub tracks connected clients and owns every socket write. Writes are
// serialized under the mutex because gorilla connections do not allow
// concurrent writers.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Add registers a connection and returns its client handle.
func (h *Hub) Add(conn *websocket.Conn) *Client {
	c := &Client{ID: uuid.NewString(), conn: conn}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.conn.Close()
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends the envelope to every client, including the originator.
func (h *Hub) Broadcast(env Envelope) {
	h.broadcast(env, nil)
}

// BroadcastExcept sends the envelope to every client but the sender.
func (h *Hub) BroadcastExcept(sender *Client, env Envelope) {
	h.broadcast(env, sender)
}

func (h *Hub) broadcast(env Envelope, skip *Client) {
	b, err := json.Marshal(env)
	if err != nil {
		log.Printf("[hub] marshal %s: %v", env.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if c == skip {
			continue
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = c.conn.Close()
			delete(h.clients, c)
		}
	}
}

// Send unicasts the envelope to a single client.
func (h *Hub) Send(c *Client, env Envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		log.Printf("[hub] marshal %s: %v", env.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

// Package broadcast fans slot lifecycle notifications out to
// websocket subscribers (operator UIs, overlays). It implements the
// registry's Notifier interface.
package broadcast

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is one notification document as written to subscribers.
type Event struct {
	Type     string `json:"type"`
	Code     string `json:"code"`
	Index    *int   `json:"index,omitempty"`
	Nickname string `json:"nickname,omitempty"`
}

// Notification codes.
const (
	CodePadSet        = "pad:set"
	CodePadCleared    = "pad:cleared"
	CodePadAllCleared = "pad:all-cleared"
	CodePadTimeout    = "pad:timeout"
)

type client struct {
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(conn *websocket.Conn) *client {
	c := &client{
		conn: conn,
		send: make(chan []byte, 64),
	}
	go c.writePump()
	return c
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// trySend queues msg without blocking. It reports false when the
// client is closed or its buffer is full.
func (c *client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Hub tracks subscribers and broadcasts events to all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]bool)}
}

func (h *Hub) addClient(conn *websocket.Conn) *client {
	c := newClient(conn)
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	return c
}

func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(ev Event) {
	ev.Type = "notification"
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("broadcast marshal error: %v", err)
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.trySend(data) {
			// Client can't keep up, disconnect it
			log.Printf("broadcast client too slow, disconnecting")
			h.removeClient(c)
		}
	}
}

// SlotClaimed implements pad.Notifier.
func (h *Hub) SlotClaimed(index int, nickname string) {
	i := index
	h.broadcast(Event{Code: CodePadSet, Index: &i, Nickname: nickname})
}

// SlotCleared implements pad.Notifier.
func (h *Hub) SlotCleared(index int) {
	i := index
	h.broadcast(Event{Code: CodePadCleared, Index: &i})
}

// AllCleared implements pad.Notifier.
func (h *Hub) AllCleared() {
	h.broadcast(Event{Code: CodePadAllCleared})
}

// SlotTimedOut implements pad.Notifier.
func (h *Hub) SlotTimedOut(index int) {
	i := index
	h.broadcast(Event{Code: CodePadTimeout, Index: &i})
}

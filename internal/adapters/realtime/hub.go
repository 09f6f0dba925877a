package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"

	"llavedesol/internal/domain/account"
)

// EventNewMessage tells a messaging panel to refresh its list.
const EventNewMessage = "mensaje_nuevo"

// Event is pushed to connected panels as JSON.
type Event struct {
	Type string `json:"type"`
	ID   int64  `json:"id,omitempty"`
	From string `json:"from,omitempty"`
}

// NewMessageEvent announces message id sent by from.
func NewMessageEvent(id int64, from account.Party) Event {
	return Event{Type: EventNewMessage, ID: id, From: string(from)}
}

// Hub tracks connected messaging panels by party.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Register adds c.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes c and closes its send channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Notify sends e to every panel of party to.
// POST: never blocks; a client with a full buffer misses the event
func (h *Hub) Notify(to account.Party, e Event) int {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("push_marshal_failed", "error", err)
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for c := range h.clients {
		if c.party != to {
			continue
		}
		select {
		case c.send <- data:
			sent++
		default:
			slog.Debug("push_dropped", "party", string(to), "type", e.Type)
		}
	}
	return sent
}

// ClientCount returns the number of connected panels.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

package ws

import (
	"sync"

	"clipit_tycoon/internal/logger"
)

// Hub keeps at most one live connection per player. A second connection
// replaces the first, so two tabs never drive the same round.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Register adds c and returns the connection it replaced, if any
func (h *Hub) Register(c *Client) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	prev := h.clients[c.PlayerID]
	h.clients[c.PlayerID] = c
	if prev != nil {
		logger.ForPlayer(c.PlayerID).Info("ws connection replaced")
	}
	return prev
}

// OnDisconnect drops c unless it has already been replaced
func (h *Hub) OnDisconnect(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c.PlayerID] != c {
		return false
	}
	delete(h.clients, c.PlayerID)
	return true
}

// Count returns the number of connected players
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll disconnects every client, used on shutdown
func (h *Hub) CloseAll() {
	h.mu.Lock()
	list := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		list = append(list, c)
	}
	h.mu.Unlock()

	for _, c := range list {
		c.Close()
	}
}

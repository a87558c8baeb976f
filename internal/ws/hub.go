package ws

import (
	"encoding/json"
	"sync"

	"spinwheel/internal/logger"
)

// Hub tracks connected clients per user and pushes balance updates to
// all of a user's open connections.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[c.UserID]
	if !ok {
		conns = make(map[*Client]struct{})
		h.clients[c.UserID] = conns
	}
	conns[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.clients, c.UserID)
	}
}

// BalanceUpdate is pushed whenever a user's balance changes.
type BalanceUpdate struct {
	Type    string `json:"type"`
	Balance int64  `json:"balance"`
	Reason  string `json:"reason,omitempty"`
}

// NotifyBalance pushes the new balance to every open connection of the
// user. Slow clients are skipped rather than blocking the caller.
func (h *Hub) NotifyBalance(userID, balance int64, reason string) {
	msg, err := json.Marshal(BalanceUpdate{Type: "balance", Balance: balance, Reason: reason})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[userID] {
		select {
		case c.Send <- msg:
		default:
			logger.Warn("dropping balance update for slow client", "user", userID)
		}
	}
}

// ConnectedUsers returns how many distinct users have open connections.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

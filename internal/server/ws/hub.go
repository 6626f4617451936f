// Package ws pushes engine frames to websocket clients and serves the latest
// frame over HTTP.
package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/Alia5/kbjoypad/internal/server/api/handler"
	"github.com/Alia5/kbjoypad/joypad"
)

const sendBuffer = 16

type client struct {
	send chan []byte
}

// Hub fans frames out to the connected clients. Publish never blocks; a
// client that cannot keep up is dropped.
type Hub struct {
	logger      *slog.Logger
	minInterval time.Duration

	mu       sync.Mutex
	clients  map[*client]struct{}
	latest   []byte
	lastSent time.Time
	now      func() time.Time
}

// NewHub returns a hub that pushes at most one frame per minInterval.
func NewHub(minInterval time.Duration, logger *slog.Logger) *Hub {
	return &Hub{
		logger:      logger,
		minInterval: minInterval,
		clients:     map[*client]struct{}{},
		now:         time.Now,
	}
}

// Publish encodes s, keeps it as the latest frame and broadcasts it unless
// the previous broadcast was less than minInterval ago. It is meant to be
// registered with Engine.OnFrame.
func (h *Hub) Publish(s joypad.Snapshot) {
	data, err := json.Marshal(handler.NewFrame(s))
	if err != nil {
		h.logger.Error("Failed to encode frame", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = data
	now := h.now()
	if !h.lastSent.IsZero() && now.Sub(h.lastSent) < h.minInterval {
		return
	}
	h.lastSent = now
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("Dropping slow frame client")
			h.removeLocked(c)
		}
	}
}

// Latest returns the most recent encoded frame, or nil before the first.
func (h *Hub) Latest() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add() *client {
	c := &client{send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.latest != nil {
		c.send <- h.latest
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("Frame client connected", "clients", n)
	return c
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.removeLocked(c)
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("Frame client disconnected", "clients", n)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

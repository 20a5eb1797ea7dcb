// Package websocket carries the cross-view change signal. Views holding a
// vault open subscribe here; after a burn they receive a zero-payload
// vault:changed event and re-read the persisted store. The hub never pushes
// state, only the signal to resynchronize.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"flashstore/internal/metrics"
)

// Broadcast message types.
const (
	TypeConnection   = "connection"
	TypeVaultChanged = "vault:changed"
	TypeNotification = "notification"
)

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	logger *slog.Logger

	quit    chan struct{}
	running bool
}

// NewHub creates a hub with dependency injection.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		quit:       make(chan struct{}),
	}
}

// Start launches the hub loop.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()
	go h.run()
}

func (h *Hub) run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id))

			if msg, err := envelope(TypeConnection, map[string]string{"status": "connected", "client_id": client.id}); err == nil {
				select {
				case client.send <- msg:
				default:
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client unregistered", slog.Int("total_clients", count))

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop it rather than block the hub.
					close(client.send)
					delete(h.clients, client)
					h.logger.Warn("client send buffer full, disconnecting",
						slog.String("client_id", client.id))
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastVaultChanged emits the zero-payload resynchronization signal.
func (h *Hub) BroadcastVaultChanged() {
	h.broadcastType(TypeVaultChanged, nil)
}

// BroadcastNotification emits a transient user-visible acknowledgment.
func (h *Hub) BroadcastNotification(message string) {
	h.broadcastType(TypeNotification, map[string]string{"message": message})
}

func (h *Hub) broadcastType(msgType string, data any) {
	msg, err := envelope(msgType, data)
	if err != nil {
		h.logger.Error("failed to marshal broadcast",
			slog.String("type", msgType),
			slog.String("error", err.Error()))
		return
	}
	metrics.Broadcasts.WithLabelValues(msgType).Inc()
	select {
	case h.broadcast <- msg:
	case <-h.quit:
	}
}

func envelope(msgType string, data any) ([]byte, error) {
	payload := map[string]any{
		"type":      msgType,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if data != nil {
		payload["data"] = data
	}
	return json.Marshal(payload)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop shuts down the hub and disconnects all clients.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	close(h.quit)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
	}
}

// Unregister removes a client. Returns immediately once the hub has stopped;
// Stop already disconnects every client.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

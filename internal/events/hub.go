// internal/events/hub.go
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Hub fans subscription lifecycle events out to connected websocket
// clients: the owning user's connections plus any admin connections.
type Hub struct {
	clients map[int64]map[*Client]bool
	admins  map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	publish    chan Event
	done       chan struct{}

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		admins:     make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan Event, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Publish queues an event for delivery. Non-blocking: if the hub is
// backed up the event is dropped, the store remains the source of truth.
func (h *Hub) Publish(ev Event) {
	select {
	case h.publish <- ev:
	default:
		h.logger.Warn("event hub backlog full, dropping event",
			zap.String("type", string(ev.Type)),
			zap.Int64("subscription_id", ev.SubscriptionID),
		)
	}
}

// Register enrolls a client for delivery. Returns false once the hub has
// shut down, so late connections are turned away instead of blocking.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client. A no-op after shutdown, which already
// closed every send channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case ev := <-h.publish:
			h.broadcast(ev)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true
	if client.isAdmin {
		h.admins[client] = true
	}

	h.logger.Debug("events client connected", zap.Int64("user_id", client.userID))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			close(client.send)
			if len(clients) == 0 {
				delete(h.clients, client.userID)
			}
		}
	}
	delete(h.admins, client)
}

func (h *Hub) broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[*Client]bool)

	for client := range h.clients[ev.UserID] {
		h.deliver(client, ev, seen)
	}
	for client := range h.admins {
		h.deliver(client, ev, seen)
	}
}

func (h *Hub) deliver(client *Client, ev Event, seen map[*Client]bool) {
	if seen[client] {
		return
	}
	seen[client] = true

	select {
	case client.send <- ev:
	default:
		// Slow consumer; drop rather than block the hub.
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
	}
	h.clients = make(map[int64]map[*Client]bool)
	h.admins = make(map[*Client]bool)

	close(h.done)
}

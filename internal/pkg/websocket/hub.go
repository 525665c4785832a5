package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/yigit/swimdesk/internal/domain"
	"github.com/yigit/swimdesk/internal/pkg/metrics"
)

// Hub maintains the set of active clients and broadcasts usage snapshots to them
type Hub struct {
	// Registered clients organized by session ID
	clients map[int64]map[*Client]bool

	// Outbound snapshots
	broadcast chan *Message

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan *Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[int64]map[*Client]bool),
		logger:     logger,
	}
}

// Run handles client registrations and broadcasts until ctx is canceled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	sessionID := client.sessionID
	if _, ok := h.clients[sessionID]; !ok {
		h.clients[sessionID] = make(map[*Client]bool)
	}
	h.clients[sessionID][client] = true
	total := h.countLocked()
	h.mu.Unlock()

	metrics.SetWebsocketSubscribers(total)
	h.logger.Info().
		Int64("sessionID", sessionID).
		Int64("userID", client.userID).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	removed := h.removeLocked(client)
	total := h.countLocked()
	h.mu.Unlock()

	if removed {
		metrics.SetWebsocketSubscribers(total)
		h.logger.Info().
			Int64("sessionID", client.sessionID).
			Int64("userID", client.userID).
			Msg("Client unregistered")
	}
}

// removeLocked drops client and closes its send channel. Caller holds mu.
func (h *Hub) removeLocked(client *Client) bool {
	clients, ok := h.clients[client.sessionID]
	if !ok {
		return false
	}
	if _, ok := clients[client]; !ok {
		return false
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.sessionID)
	}
	return true
}

func (h *Hub) countLocked() int {
	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}

// broadcastMessage sends a message to every client watching its session
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Int64("sessionID", message.SessionID).Msg("Failed to marshal message for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[message.SessionID]
	if !ok {
		return
	}

	var slow []*Client
	for client := range clients {
		select {
		case client.send <- data:
		default:
			slow = append(slow, client)
		}
	}
	// Slow consumers are dropped; their write pump closes the connection
	for _, client := range slow {
		h.removeLocked(client)
		h.logger.Warn().Int64("sessionID", message.SessionID).Int64("userID", client.userID).Msg("Dropped slow websocket client")
	}

	h.logger.Debug().
		Int64("sessionID", message.SessionID).
		Int("clientCount", len(clients)).
		Msg("Usage broadcasted to session")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
	metrics.SetWebsocketSubscribers(0)
}

// BroadcastUsage queues a usage snapshot for the session's subscribers.
// It never blocks: when the hub is stopped or its queue is full the snapshot is dropped.
func (h *Hub) BroadcastUsage(sessionID int64, usage domain.CapacityResult) {
	select {
	case h.broadcast <- NewUsageMessage(sessionID, usage):
	case <-h.done:
	default:
		h.logger.Warn().Int64("sessionID", sessionID).Msg("Broadcast queue full, dropping usage snapshot")
	}
}

// GetClientsCount returns the number of connected clients for a session
func (h *Hub) GetClientsCount(sessionID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.clients[sessionID]; ok {
		return len(clients)
	}
	return 0
}

// Register adds a client; it returns false if the hub has stopped
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

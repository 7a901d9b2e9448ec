package notifications

import (
	"context"
	"fmt"
	"log"
	"sync"

	"agora/internal/observability"

	"github.com/gofiber/websocket/v2"
)

// ConversationHub manages WebSocket connections for the sitewide conversation
// stream. Every accepted message and moderation event is fanned out to every
// connected client.
type ConversationHub struct {
	mu sync.RWMutex

	// Map: userID -> set of active Clients (multi-device support)
	userConns map[uint]map[*Client]bool
}

// NewConversationHub creates a new ConversationHub instance.
func NewConversationHub() *ConversationHub {
	return &ConversationHub{
		userConns: make(map[uint]map[*Client]bool),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *ConversationHub) Name() string { return "conversation hub" }

// Register registers a user's websocket connection. Returns Client or error if limits exceeded.
func (h *ConversationHub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()

	if h.userConns[userID] == nil {
		h.userConns[userID] = make(map[*Client]bool)
	}
	if len(h.userConns[userID]) >= maxConnsPerUser {
		h.mu.Unlock()
		return nil, fmt.Errorf("user connection limit reached")
	}

	client := NewClient(h, conn, userID)
	h.userConns[userID][client] = true
	h.mu.Unlock()

	observability.WebSocketConnectionsTotal.Inc()
	log.Printf("ConversationHub: Registered user %d (Active clients: %d)", userID, len(h.userConns[userID]))
	return client, nil
}

// UnregisterClient removes a websocket connection.
func (h *ConversationHub) UnregisterClient(client *Client) {
	h.mu.Lock()
	clients, ok := h.userConns[client.UserID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.userConns, client.UserID)
	}
	h.mu.Unlock()

	observability.WebSocketConnectionsTotal.Dec()
	log.Printf("ConversationHub: Unregistered client for user %d", client.UserID)
}

// Broadcast sends a raw message to every connected client.
func (h *ConversationHub) Broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clients := range h.userConns {
		for client := range clients {
			client.TrySend(message)
		}
	}
}

// ConnectedUsers returns the number of distinct users currently connected.
func (h *ConversationHub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userConns)
}

// StartWiring connects the hub to the Redis event channels so that accepted
// messages and moderation events reach every instance's clients.
func (h *ConversationHub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartEventSubscriber(ctx, func(channel, payload string) {
		h.Broadcast([]byte(payload))
	})
}

// Shutdown gracefully closes all websocket connections.
func (h *ConversationHub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.userConns {
		for client := range clients {
			if err := client.Conn.WriteMessage(websocket.TextMessage,
				[]byte(`{"type":"server_shutdown","payload":{"message":"Server is shutting down"}}`)); err != nil {
				log.Printf("failed to write shutdown message for user %d: %v", userID, err)
			}
			if err := client.Conn.Close(); err != nil {
				log.Printf("failed to close websocket for user %d: %v", userID, err)
			}
		}
	}

	h.userConns = make(map[uint]map[*Client]bool)
	return nil
}

package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cx-tal-miterani/ticket-checkout/internal/logging"
	"github.com/cx-tal-miterani/ticket-checkout/internal/models"
	"github.com/gorilla/websocket"
	"go.temporal.io/sdk/log"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeNotice MessageType = "notice"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType   `json:"type"`
	SessionID string        `json:"sessionId"`
	Notice    models.Notice `json:"notice"`
	Timestamp int64         `json:"timestamp"`
}

// Client represents a WebSocket client connection
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub manages WebSocket connections per checkout session
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
	mu         sync.RWMutex
	logger     log.Logger
}

// NewHub creates a new Hub
func NewHub(logger log.Logger) *Hub {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's main loop. It returns when ctx is done, after
// disconnecting every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for sessionID, clients := range h.clients {
				for client := range clients {
					close(client.send)
				}
				delete(h.clients, sessionID)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.sessionID] == nil {
				h.clients[client.sessionID] = make(map[*Client]bool)
			}
			h.clients[client.sessionID][client] = true
			h.logger.Debug("WebSocket client registered", "sessionId", client.sessionID, "total", len(h.clients[client.sessionID]))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				h.logger.Error("Failed to marshal WebSocket message", "error", err)
				continue
			}

			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients[message.SessionID]))
			for client := range h.clients[message.SessionID] {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			h.logger.Debug("Broadcasting notice", "sessionId", message.SessionID, "notice", message.Notice.Name, "clients", len(clients))

			for _, client := range clients {
				select {
				case client.send <- data:
				default:
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.clients[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	h.logger.Debug("WebSocket client unregistered", "sessionId", client.sessionID, "remaining", len(clients))
	if len(clients) == 0 {
		delete(h.clients, client.sessionID)
	}
}

// Notify queues a notice for every client watching the session. It never
// blocks; when the queue is full the notice is dropped.
func (h *Hub) Notify(sessionID string, n models.Notice) {
	msg := &Message{
		Type:      MessageTypeNotice,
		SessionID: sessionID,
		Notice:    n,
		Timestamp: time.Now().UnixMilli(),
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("Dropped notice, broadcast queue full", "sessionId", sessionID, "notice", n.Name)
	}
}

// ClientCount returns the number of clients watching a session
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

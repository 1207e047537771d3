package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gizetz/gbairai/internal/notify"
)

// Signal is what connected clients receive. It carries ids only; clients
// fetch the conversation over HTTP.
type Signal struct {
	Type           notify.EventType `json:"type"`
	ConversationID int64            `json:"conversation_id"`
	MessageID      int64            `json:"message_id,omitempty"`
}

type delivery struct {
	userID  int64
	payload []byte
}

// Hub tracks live connections per account and pushes notification signals
// to them. It implements notify.Notifier and notify.Presence.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	done       chan struct{}

	mu     sync.RWMutex
	online map[int64]int

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 64),
		done:       make(chan struct{}),
		online:     make(map[int64]int),
		logger:     logger,
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			h.mu.Lock()
			h.online[client.userID]++
			h.mu.Unlock()
		case client := <-h.unregister:
			if h.clients[client] {
				h.drop(client)
			}
		case d := <-h.deliver:
			for client := range h.clients {
				if client.userID != d.userID {
					continue
				}
				select {
				case client.send <- d.payload:
				default:
					h.logger.Warn("dropping slow websocket client", "user_id", client.userID, "client_id", client.id)
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.mu.Lock()
	if h.online[client.userID]--; h.online[client.userID] <= 0 {
		delete(h.online, client.userID)
	}
	h.mu.Unlock()
}

func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.online[userID] > 0
}

// Notify queues a signal for every live session of the event's recipient.
// Recipients without a session are skipped.
func (h *Hub) Notify(ctx context.Context, event notify.Event) error {
	if !h.IsOnline(event.RecipientID) {
		return nil
	}
	payload, err := json.Marshal(Signal{
		Type:           event.Type,
		ConversationID: event.ConversationID,
		MessageID:      event.MessageID,
	})
	if err != nil {
		return err
	}
	select {
	case h.deliver <- delivery{userID: event.RecipientID, payload: payload}:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package websocket

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Event is the JSON payload pushed to connected members.
type Event struct {
	Type      string    `json:"type"` // "channel_message" | "direct_message"
	ChannelID uint      `json:"channel_id,omitempty"`
	GroupID   uint      `json:"group_id,omitempty"`
	SenderID  uint      `json:"sender_id"`
	Sender    string    `json:"sender,omitempty"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sent_at"`
}

type delivery struct {
	recipients []uint
	payload    []byte
}

// Hub tracks one connection per user and fans events out to recipient
// sets. All state is owned by the Run goroutine; other goroutines talk to
// it through channels only.
type Hub struct {
	clients    map[uint]*Client
	register   chan *Client
	unregister chan *Client
	deliveries chan delivery

	log *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uint]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliveries: make(chan delivery, 256),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			// A second connection for the same user replaces the first.
			if old, ok := h.clients[client.UserID]; ok {
				close(old.send)
			}
			h.clients[client.UserID] = client

		case client := <-h.unregister:
			if current, ok := h.clients[client.UserID]; ok && current == client {
				delete(h.clients, client.UserID)
				close(client.send)
			}

		case d := <-h.deliveries:
			for _, userID := range d.recipients {
				client, ok := h.clients[userID]
				if !ok {
					continue
				}
				select {
				case client.send <- d.payload:
				default:
					// Slow consumer: drop the connection rather than block the hub.
					h.log.Warn("dropping slow websocket client", zap.Uint("user_id", userID))
					delete(h.clients, userID)
					close(client.send)
				}
			}
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Deliver pushes an event to every listed recipient currently connected.
// Offline recipients are skipped; history lives in the database.
func (h *Hub) Deliver(recipients []uint, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to marshal event", zap.Error(err))
		return
	}
	h.deliveries <- delivery{recipients: recipients, payload: payload}
}

package api

import (
	"context"
	"sync"
)

// Event types sent over the WebSocket feed.
const (
	EventFormUpdated        = "form_updated"
	EventSubmissionStarted  = "submission_started"
	EventSubmissionFinished = "submission_finished"
	EventSubmissionFailed   = "submission_failed"
)

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// outbound is a message addressed to one session, or to everyone when
// session is empty.
type outbound struct {
	session string
	msg     WSMessage
}

// WSHub manages WebSocket connections and message broadcasting. Each
// client belongs to one form session and only sees that session's events.
type WSHub struct {
	mu         sync.RWMutex
	clients    map[*WSClient]bool
	broadcast  chan outbound
	register   chan *WSClient
	unregister chan *WSClient
	done       chan struct{} // closed when Run returns
}

// WSClient represents a single WebSocket connection.
type WSClient struct {
	hub     *WSHub
	session string
	send    chan WSMessage
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan outbound, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		done:       make(chan struct{}),
	}
}

// Run starts the hub event loop. It returns when ctx is cancelled, closing
// every client's send channel. Run must be called at most once.
func (h *WSHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case out := <-h.broadcast:
			h.deliver(out)
		}
	}
}

func (h *WSHub) deliver(out outbound) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if out.session != "" && client.session != out.session {
			continue
		}
		select {
		case client.send <- out.msg:
		default:
			// Slow client; disconnect
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// Broadcast sends a message to all connected WebSocket clients.
func (h *WSHub) Broadcast(msg WSMessage) {
	h.enqueue(outbound{msg: msg})
}

// Publish sends a message to the clients of one form session.
func (h *WSHub) Publish(session string, msg WSMessage) {
	if session == "" {
		return
	}
	h.enqueue(outbound{session: session, msg: msg})
}

func (h *WSHub) enqueue(out outbound) {
	select {
	case h.broadcast <- out:
	default:
		// Drop message if broadcast channel is full
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub. It reports false, without taking
// ownership of the client, once the hub has stopped.
func (h *WSHub) Register(client *WSClient) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub. It is a no-op once the hub has
// stopped, since Run closed every client on the way out.
func (h *WSHub) Unregister(client *WSClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

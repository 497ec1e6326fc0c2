/*
Package api
File: hub.go
Description:
    The WebSocket Hub is the real-time half of the host adapter.

    It keeps a registry of connected editor clients and fans out every
    container change (equip, unequip, create, load) so open "Show Equipment"
    views refresh without polling.

    Architecture:
    - Hub: The singleton manager, run as a goroutine.
    - Client: Represents one browser connection.
    - ServeWs: The HTTP handler that upgrades a GET request to a WebSocket.
*/

package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Message defines the standard JSON envelope for all real-time communication.
type Message struct {
	Type    string `json:"type"`    // Event Type (e.g., "container_update")
	Payload any    `json:"payload"` // The actual data
	Sender  string `json:"sender"`  // ID of the origin (System or User)
}

// Client represents a single connected editor.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte // Buffered channel for outbound messages
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients map[*Client]bool

	// Broadcast carries encoded envelopes to every client.
	Broadcast chan []byte

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	log        *zap.Logger
}

// NewHub creates a new Hub instance. Run must be started before clients connect.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		Broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run is the main event loop for the Hub.
// It blocks until Close, so it must be run in a goroutine: `go hub.Run()`
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.log.Debug("ws client registered", zap.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			// Clean up resources to prevent leaks.
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// If the client's send buffer is full, assume they hung or disconnected.
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Close stops the Run loop and disconnects every client.
func (h *Hub) Close() {
	close(h.done)
}

// Publish encodes an envelope and queues it for broadcast.
// It never blocks the caller: when the queue is full the event is dropped and logged.
func (h *Hub) Publish(msgType string, payload any) {
	data, err := json.Marshal(Message{Type: msgType, Payload: payload, Sender: "system"})
	if err != nil {
		h.log.Error("marshal ws message", zap.String("type", msgType), zap.Error(err))
		return
	}
	select {
	case h.Broadcast <- data:
	default:
		h.log.Warn("ws broadcast queue full; dropping event", zap.String("type", msgType))
	}
}

// upgrader configures the WebSocket handshake.
// CheckOrigin returns true to allow connections from any host (the editor runs on another origin).
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWs handles the HTTP request that initiates a WebSocket connection.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256)}
	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	// One slow client must not block the hub.
	go client.writePump()
	go client.readPump()
}

// readPump drains the connection so close frames are noticed.
// Clients are read-only subscribers; anything they send is ignored.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("ws read error", zap.Error(err))
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	defer c.conn.Close()

	// This loop exits when c.send is closed.
	for message := range c.send {
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)

		if err := w.Close(); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"photo-capture-backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait = 10 * time.Second

	// Events queued per client before it is considered stalled and dropped
	sendBuffer = 16
)

// feedConn is the part of *websocket.Conn the hub writes through
type feedConn interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// wsClient owns one connection. Only its writer goroutine writes to conn.
type wsClient struct {
	conn feedConn
	send chan []byte
}

func (c *wsClient) writeLoop(h *WSHub, clientID string) {
	defer h.wg.Done()
	defer c.conn.Close()

	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Error().Err(err).Str("client_id", clientID).Msg("Failed to send event")
			h.Unregister(clientID)
			return
		}
	}

	c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
		time.Now().Add(time.Second),
	)
}

// WSHub manages live feed connections and fans events out to all of them
type WSHub struct {
	mu      sync.RWMutex
	clients map[string]*wsClient
	closed  bool
	wg      sync.WaitGroup
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		clients: make(map[string]*wsClient),
	}
}

// Register adds a connection and returns its client ID
func (h *WSHub) Register(conn *websocket.Conn) (string, error) {
	return h.register(conn)
}

func (h *WSHub) register(conn feedConn) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return "", fmt.Errorf("hub is closed")
	}

	clientID := uuid.New().String()
	c := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}
	h.clients[clientID] = c

	h.wg.Add(1)
	go c.writeLoop(h, clientID)

	log.Info().Str("client_id", clientID).Msg("WebSocket connection registered")

	return clientID, nil
}

// Unregister removes a connection. Its writer closes the socket once the
// queued events are flushed.
func (h *WSHub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, exists := h.clients[clientID]; exists {
		close(c.send)
		delete(h.clients, clientID)
		log.Info().Str("client_id", clientID).Msg("WebSocket connection unregistered")
	}
}

// Count returns the number of connected clients
func (h *WSHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish queues an event for every connected client without waiting on
// the network. Clients whose queue is full are dropped.
func (h *WSHub) Publish(event models.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", event.Type).Msg("Failed to marshal event")
		return
	}

	var stalled []string

	h.mu.RLock()
	for id, c := range h.clients {
		select {
		case c.send <- data:
		default:
			stalled = append(stalled, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range stalled {
		log.Warn().Str("client_id", id).Str("type", event.Type).Msg("WebSocket client too slow, dropping")
		h.Unregister(id)
	}
}

// Close disconnects every client, rejects new registrations and waits for
// the writers to finish
func (h *WSHub) Close() {
	h.mu.Lock()
	h.closed = true
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
	h.mu.Unlock()

	h.wg.Wait()
}

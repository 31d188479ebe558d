package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/event"
	"github.com/gorilla/websocket"
)

// writeWait bounds each WebSocket write so one dead client cannot stall
// the broadcast.
const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// eventsHandler pushes emitted snapshots to connected WebSocket clients.
type eventsHandler struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

func newEventsHandler() *eventsHandler {
	return &eventsHandler{
		clients: make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *eventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast sends one snapshot to all connected clients. Failed clients
// are dropped; the next ServeHTTP read error cleans up their map entry.
func (h *eventsHandler) broadcast(snap event.Snapshot) error {
	msg, err := json.Marshal(map[string]any{
		"snapshot":  snap,
		"timestamp": time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
		}
	}
	return nil
}

// closeAll disconnects every client.
func (h *eventsHandler) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
	}
	h.clients = make(map[*websocket.Conn]bool)
}

package ws

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// Hub fans marker snapshots out to connected map viewers.
type Hub struct {
	mu      sync.RWMutex
	writeMu sync.Mutex // gorilla allows one concurrent writer per conn
	clients map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

// Add registers a connection.
func (h *Hub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
}

// Remove deletes and closes a connection. Safe to call for a
// connection that was already removed.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		_ = conn.Close()
		delete(h.clients, conn)
	}
}

// Broadcast sends msg as JSON to every connected client. Clients that
// fail to accept the write are dropped.
func (h *Hub) Broadcast(msg any) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("ws: dropping client: %v", err)
			h.Remove(conn)
		}
	}
}

// Send writes msg as JSON to a single connection.
func (h *Hub) Send(conn *websocket.Conn, msg any) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(msg)
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

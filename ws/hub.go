// ws/hub.go - Per-user WebSocket notification hub
package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"
)

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub fans events out to every open connection a user holds.
type Hub struct {
	mu    sync.RWMutex
	users map[uint]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{
		users: make(map[uint]map[*websocket.Conn]bool),
	}
}

func (h *Hub) AddConnection(userID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.users[userID] == nil {
		h.users[userID] = make(map[*websocket.Conn]bool)
	}
	h.users[userID][conn] = true
	log.Printf("ws: user %d connected (connections: %d)", userID, len(h.users[userID]))
}

func (h *Hub) RemoveConnection(userID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.users[userID]; ok {
		delete(conns, conn)
		conn.Close()
		if len(conns) == 0 {
			delete(h.users, userID)
		}
		log.Printf("ws: user %d disconnected", userID)
	}
}

// Notify pushes an event to all of a user's connections. Users without an
// open connection miss the push; clients reconcile over REST on reconnect.
func (h *Hub) Notify(userID uint, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.users[userID]
	if !ok {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws: marshal error: %v", err)
		return
	}

	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("ws: write error: %v", err)
			conn.Close()
			delete(conns, conn)
		}
	}
}

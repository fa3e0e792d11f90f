package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub keeps the open results-view connections per document so score
// submissions can be pushed to document owners as they happen.
type Hub struct {
	mu        sync.Mutex
	documents map[string]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{
		documents: make(map[string]map[*websocket.Conn]bool),
	}
}

func (h *Hub) AddConnection(documentID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.documents[documentID] == nil {
		h.documents[documentID] = make(map[*websocket.Conn]bool)
	}
	h.documents[documentID][conn] = true
	log.Printf("ws: client connected to document %s (total: %d)", documentID, len(h.documents[documentID]))
}

// ConnectionCount reports how many results views are open for the document.
func (h *Hub) ConnectionCount(documentID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.documents[documentID])
}

func (h *Hub) RemoveConnection(documentID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.documents[documentID]; ok {
		delete(conns, conn)
		conn.Close()
		if len(conns) == 0 {
			delete(h.documents, documentID)
		}
		log.Printf("ws: client disconnected from document %s", documentID)
	}
}

// Broadcast pushes the message to every open results view for the document.
// It holds the full lock for the duration: gorilla/websocket allows at most
// one writer per connection, and dead connections are dropped from the
// registry while iterating.
func (h *Hub) Broadcast(documentID string, message WSMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.documents[documentID]
	if !ok {
		return
	}

	data, err := json.Marshal(message)
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
	if len(conns) == 0 {
		delete(h.documents, documentID)
	}
}

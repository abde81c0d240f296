// Package websocket pushes dispatch activity (remito creation, draft saves,
// packaging updates) to connected dashboard clients.
package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Event is one dispatch activity notification
type Event struct {
	Type string      `json:"type"` // remito_created, remito_updated, draft_saved, pre_remito_received
	Data interface{} `json:"data,omitempty"`
}

// Hub maintains the set of active clients and broadcasts events to them
type Hub struct {
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		clients:    make(map[string]*Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			log.Printf("📡 Dashboard connected: %s", client.ID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
				log.Printf("📴 Dashboard disconnected: %s", client.ID)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Buffer full or client dead; drop the event for this client
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends an event to every connected dashboard. Best effort: a
// failed marshal is logged and dropped, never propagated to the caller.
func (h *Hub) Broadcast(eventType string, data interface{}) {
	msg, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		log.Printf("Error marshaling event %s: %v", eventType, err)
		return
	}

	select {
	case h.broadcast <- msg:
	default:
		log.Printf("⚠️  Event queue full, dropping %s", eventType)
	}
}

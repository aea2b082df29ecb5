// Package formws serves the login form over a websocket: one form controller
// per connection, auth changes broadcast to every connection.
package formws

import (
	"context"
	"encoding/json"

	"authform/internal/domain"
	"authform/internal/logger"
)

type Hub struct {
	ctx    context.Context
	cancel context.CancelFunc

	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	events     chan *domain.WsServerMessage

	log logger.Logger
}

func NewHub(parent context.Context, log logger.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)

	return &Hub{
		ctx:    ctx,
		cancel: cancel,

		clients: make(map[*Client]bool),

		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan *domain.WsServerMessage, 100),

		log: log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			h.log.Info("ws: hub shutting down")
			for client := range h.clients {
				h.remove(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.log.Info("ws: client registered", "id", client.ID, "total_clients", len(h.clients))

		case client := <-h.unregister:
			if !h.clients[client] {
				continue
			}
			h.remove(client)
			h.log.Info("ws: client unregistered", "id", client.ID, "total_clients", len(h.clients))

		case event := <-h.events:
			h.handleEvent(event)
		}
	}
}

func (h *Hub) Stop() {
	h.cancel()
}

// Broadcast queues msg for every connected client.
func (h *Hub) Broadcast(msg *domain.WsServerMessage) {
	select {
	case h.events <- msg:
	case <-h.ctx.Done():
	}
}

func (h *Hub) handleEvent(event *domain.WsServerMessage) {
	message, err := json.Marshal(event)
	if err != nil {
		h.log.Error("ws: failed to marshal server event", "error", err)
		return
	}

	for client := range h.clients {
		if !client.trySend(message) {
			h.log.Warn("ws: client channel full, force unregister", "id", client.ID)
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	client.closeSend()
}

func (h *Hub) addClient(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) removeClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

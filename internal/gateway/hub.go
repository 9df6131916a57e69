// Package gateway is the realtime surface of the service. Clients connect over
// a websocket, join role or table scoped rooms, send commands and receive the
// pushes routed from aggregator events.
package gateway

import (
	"encoding/json"
	"sync"

	"overcooked-live/internal/aggregator"
	"overcooked-live/internal/auth"

	"go.uber.org/zap"
)

const DefaultSendBuffer = 64

// Hub tracks connected clients and their rooms.
type Hub struct {
	logger     *zap.Logger
	sendBuffer int

	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
}

var _ aggregator.Subscriber = (*Hub)(nil)

func NewHub(logger *zap.Logger, sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	return &Hub{
		logger:     logger.Named("hub"),
		sendBuffer: sendBuffer,
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) newClient(conn wsConn, claims *auth.Claims) *Client {
	c := &Client{
		hub:    h,
		conn:   conn,
		claims: claims,
		send:   make(chan []byte, h.sendBuffer),
		rooms:  make(map[string]struct{}),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

// remove unregisters c and closes its send channel. Safe to call repeatedly.
func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for room := range c.rooms {
		members := h.rooms[room]
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) join(c *Client, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return false
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
	return true
}

// trySend queues msg without blocking. Caller holds at least the read lock.
func (h *Hub) trySend(c *Client, msg []byte) bool {
	if c.closed {
		return true
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (h *Hub) sendTo(c *Client, msg []byte) {
	h.mu.RLock()
	ok := h.trySend(c, msg)
	h.mu.RUnlock()
	if !ok {
		h.logger.Warn("client send buffer full, disconnecting", zap.String("session", c.sessionID()))
		h.remove(c)
	}
}

// Broadcast sends one event to every client in any of rooms, each client at most once.
func (h *Hub) Broadcast(rooms []string, push Push) {
	push.Type = MessageEvent
	msg, err := json.Marshal(push)
	if err != nil {
		h.logger.Error("failed to marshal push", zap.String("event", push.Event), zap.Error(err))
		return
	}

	var slow []*Client
	h.mu.RLock()
	seen := make(map[*Client]struct{})
	for _, room := range rooms {
		for c := range h.rooms[room] {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			if !h.trySend(c, msg) {
				slow = append(slow, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("client send buffer full, disconnecting",
			zap.String("session", c.sessionID()),
			zap.String("event", push.Event))
		h.remove(c)
	}
}

func (h *Hub) HandleRestaurantEvent(ev aggregator.Event) {
	for _, delivery := range Route(ev) {
		h.Broadcast(delivery.Rooms, Push{
			Event:        delivery.Event,
			RestaurantID: ev.RestaurantID,
			Data:         delivery.Data,
		})
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSize returns the number of clients in a fully qualified room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.remove(c)
	}
}

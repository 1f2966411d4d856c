// Package ws pushes live order events to pharmacy dashboards over
// WebSocket (gorilla/websocket). Each pharmacy name is a room; a client
// subscribes to exactly one room and only receives that room's events.
//
//	hub := ws.NewHub()
//	go hub.Run(ctx)
//	bus.Listen(event.PurchaseCreated, hub.Relay)
//
//	router.Get("/ws/pharmacy/{name}", "ws.pharmacy", func(w http.ResponseWriter, r *http.Request) {
//	    hub.Upgrade(w, r, chi.URLParam(r, "name"))
//	})
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shashiranjanraj/medcart/pkg/event"
	"github.com/shashiranjanraj/medcart/pkg/logger"
	"github.com/shashiranjanraj/medcart/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SetCheckOrigin replaces the default (allow-all) origin checker.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// ─── Client ───────────────────────────────────────────────────────────────────

type client struct {
	hub  *Hub
	room string
	conn *websocket.Conn
	send chan []byte
}

// readPump only services control frames; dashboards never send data.
func (c *client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws: unexpected close", "room", c.room, "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ─── Hub ──────────────────────────────────────────────────────────────────────

type roomMessage struct {
	room string
	data []byte
}

// Hub tracks connected clients per room and fans messages out to them.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}

	broadcast  chan roomMessage
	register   chan *client
	unregister chan *client
	done       chan struct{}
	once       sync.Once
}

// NewHub creates a Hub. Call Run in its own goroutine.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*client]struct{}),
		broadcast:  make(chan roomMessage, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

// Run is the hub loop. It returns when ctx is cancelled or Close is called,
// closing every client connection.
func (h *Hub) Run(ctx context.Context) {
	defer h.disconnectAll()
	for {
		select {
		case <-ctx.Done():
			h.Close()
			return
		case <-h.done:
			return

		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.room] == nil {
				h.rooms[c.room] = make(map[*client]struct{})
			}
			h.rooms[c.room][c] = struct{}{}
			h.mu.Unlock()
			metrics.WSConnections.Inc()
			logger.Debug("ws: client joined", "room", c.room)

		case c := <-h.unregister:
			h.drop(c)

		case msg := <-h.broadcast:
			h.mu.RLock()
			var slow []*client
			for c := range h.rooms[msg.room] {
				select {
				case c.send <- msg.data:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.RUnlock()
			for _, c := range slow {
				h.drop(c)
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[c.room]
	if !ok {
		return
	}
	if _, ok := members[c]; !ok {
		return
	}
	delete(members, c)
	close(c.send)
	metrics.WSConnections.Dec()
	if len(members) == 0 {
		delete(h.rooms, c.room)
	}
}

func (h *Hub) disconnectAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, members := range h.rooms {
		for c := range members {
			close(c.send)
			metrics.WSConnections.Dec()
		}
		delete(h.rooms, room)
	}
}

func (h *Hub) leave(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Close stops the hub loop. Safe to call more than once.
func (h *Hub) Close() {
	h.once.Do(func() { close(h.done) })
}

// Publish queues data for every client in room. It drops the message when
// the hub is backed up or closed.
func (h *Hub) Publish(room string, data []byte) {
	select {
	case h.broadcast <- roomMessage{room: room, data: data}:
	case <-h.done:
	default:
		logger.Warn("ws: broadcast queue full", "room", room)
	}
}

// Relay is an event.Handler that forwards e as {type, data} to the room of
// its pharmacy. Events for an empty room are not encoded.
func (h *Hub) Relay(e event.Event) {
	if e.Pharmacy == "" || h.RoomSize(e.Pharmacy) == 0 {
		return
	}
	payload, err := json.Marshal(e)
	if err != nil {
		logger.Error("ws: encode event", "event", e.Name, "error", err)
		return
	}
	h.Publish(e.Pharmacy, payload)
}

// RoomSize returns the number of clients subscribed to room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// ─── Upgrade ─────────────────────────────────────────────────────────────────

// Upgrade upgrades the request to a WebSocket subscribed to room.
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("ws: upgrade failed", "error", err)
		return
	}
	c := &client{hub: h, room: room, conn: conn, send: make(chan []byte, sendBuffer)}

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// Subscribe joins room without a WebSocket, e.g. for a Server-Sent Events
// stream. The channel is closed when the subscriber falls behind or the hub
// stops. Call cancel to leave.
func (h *Hub) Subscribe(room string) (msgs <-chan []byte, cancel func()) {
	c := &client{hub: h, room: room, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
		return c.send, func() {}
	}
	var once sync.Once
	return c.send, func() { once.Do(func() { h.leave(c) }) }
}

package realtime

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Connection wraps a websocket.Conn with its owner id.
type Connection struct {
	Conn   *websocket.Conn
	UserID string

	// unix nanos, written by the read goroutine and read by the
	// heartbeat sweep
	lastSeen atomic.Int64

	writeMu sync.Mutex
}

// Hub tracks the open websocket connections per user and fans messages out
// to all of a user's tabs.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]map[*Connection]struct{}
	logger      *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[string]map[*Connection]struct{}),
		logger:      logger,
	}
}

// Add registers a connection for a user.
func (h *Hub) Add(userID string, conn *websocket.Conn) *Connection {
	c := &Connection{Conn: conn, UserID: userID}
	c.Touch()

	h.mu.Lock()
	if _, ok := h.connections[userID]; !ok {
		h.connections[userID] = make(map[*Connection]struct{})
	}
	h.connections[userID][c] = struct{}{}
	total := len(h.connections[userID])
	h.mu.Unlock()

	h.logger.Info("ws connected", zap.String("user_id", userID), zap.Int("connections", total))
	return c
}

// Remove disconnects and removes a connection.
func (h *Hub) Remove(c *Connection) {
	h.mu.Lock()
	if conns, ok := h.connections[c.UserID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.connections, c.UserID)
		}
	}
	h.mu.Unlock()

	_ = c.Conn.Close()
	h.logger.Info("ws disconnected", zap.String("user_id", c.UserID))
}

// Send writes a JSON message to every connection the user has open.
func (h *Hub) Send(userID string, msg interface{}) {
	h.mu.RLock()
	conns := make([]*Connection, 0, 4)
	for c := range h.connections[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		c.writeMu.Lock()
		err := c.Conn.WriteJSON(msg)
		c.writeMu.Unlock()
		if err != nil {
			h.logger.Warn("ws send failed", zap.String("user_id", userID), zap.Error(err))
			go h.Remove(c)
		}
	}
}

// Broadcast sends a JSON message to every connected user.
func (h *Hub) Broadcast(msg interface{}) {
	h.mu.RLock()
	conns := make([]*Connection, 0, 16)
	for _, set := range h.connections {
		for c := range set {
			conns = append(conns, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range conns {
		c.writeMu.Lock()
		err := c.Conn.WriteJSON(msg)
		c.writeMu.Unlock()
		if err != nil {
			h.logger.Warn("ws broadcast failed", zap.Error(err))
			go h.Remove(c)
		}
	}
}

// Heartbeat pings all connections on the given interval and drops the ones
// that stopped answering. Blocks; run it in its own goroutine.
func (h *Hub) Heartbeat(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		h.mu.RLock()
		stale := make([]*Connection, 0)
		for _, set := range h.connections {
			for c := range set {
				if time.Since(c.LastSeenAt()) > 2*interval {
					stale = append(stale, c)
					continue
				}
				_ = c.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second))
			}
		}
		h.mu.RUnlock()
		for _, c := range stale {
			h.Remove(c)
		}
	}
}

// Touch records liveness for the heartbeat sweep.
func (c *Connection) Touch() {
	c.lastSeen.Store(time.Now().UnixNano())
}

// LastSeenAt reports when the connection last showed liveness.
func (c *Connection) LastSeenAt() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

// WriteJSON writes a JSON message to this single connection.
func (c *Connection) WriteJSON(msg interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(msg)
}

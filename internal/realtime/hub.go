// Package realtime streams newly classified samples to websocket
// subscribers (monitoring dashboards, alerting bridges).
package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aquascope/hydro/backend/internal/contracts"
	"github.com/aquascope/hydro/backend/pkg/logger"
)

// Event is what subscribers receive for each ingested sample
type Event struct {
	ID        int64     `json:"id"`
	StationID string    `json:"station_id"`
	District  string    `json:"district"`
	Category  string    `json:"category"`
	HPI       float64   `json:"hpi"`
	MI        float64   `json:"mi"`
	CD        float64   `json:"cd"`
	SampledAt time.Time `json:"sampled_at"`
}

// Hub fans classified samples out to connected websocket clients.
// Slow clients are dropped rather than allowed to stall ingest.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

// NewHub creates a new broadcast hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:  log.WithField("module", "realtime"),
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the connection and subscribes it until it closes
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	c := &client{
		conn: conn,
		send: make(chan Event, 64),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.WithField("clients", count).Debug("Subscriber connected")

	go h.writePump(c)
	h.readPump(c)
}

// Broadcast queues an event to every subscriber. Never blocks: clients
// with a full queue are disconnected.
func (h *Hub) Broadcast(s *contracts.Sample) {
	event := Event{
		ID:        s.ID,
		StationID: s.StationID,
		District:  s.District,
		Category:  s.Category,
		HPI:       s.HPI,
		MI:        s.MI,
		CD:        s.CD,
		SampledAt: s.SampledAt,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- event:
		default:
			h.dropLocked(c)
		}
	}
}

// ClientCount returns the number of connected subscribers
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// writePump drains the client's queue onto the wire
func (h *Hub) writePump(c *client) {
	for event := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteJSON(event); err != nil {
			h.drop(c)
			return
		}
	}
	c.conn.Close()
}

// readPump discards inbound frames and detects disconnects
func (h *Hub) readPump(c *client) {
	defer h.drop(c)
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

// dropLocked removes a client; h.mu must be held
func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

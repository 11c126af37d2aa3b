package chat

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 64 * 1024
)

// WSEvent is a real-time event pushed to connected clients.
type WSEvent struct {
	Type    string      `json:"type"`
	LeadID  int64       `json:"lead_id"`
	Payload interface{} `json:"payload,omitempty"`
}

const (
	EventNewMessage = "new_message"
	EventTyping     = "typing"
)

type connection struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
	leads  map[int64]bool
}

// Hub tracks active WebSocket connections and their lead-thread
// subscriptions. One connection per user; a reconnect replaces the old
// one.
type Hub struct {
	mu          sync.RWMutex
	connections map[int64]*connection
}

func NewHub() *Hub {
	return &Hub{connections: make(map[int64]*connection)}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c.userID] = c
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.connections[c.userID]; ok && existing == c {
		delete(h.connections, c.userID)
		close(c.send)
	}
}

// BroadcastToLead pushes an event to every connected subscriber of the
// lead's thread. Slow clients are skipped, not waited on.
func (h *Hub) BroadcastToLead(leadID int64, event *WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.connections {
		if c.leads[leadID] {
			select {
			case c.send <- data:
			default:
			}
		}
	}
}

// ServeWS runs the connection's read and write loops. Blocks until the
// client disconnects.
func (h *Hub) ServeWS(conn *websocket.Conn, userID int64, initialLeads []int64) {
	c := &connection{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, 256),
		leads:  make(map[int64]bool),
	}
	for _, id := range initialLeads {
		c.leads[id] = true
	}

	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var event struct {
			Type   string `json:"type"`
			LeadID string `json:"lead_id"`
		}
		if err := json.Unmarshal(msg, &event); err != nil {
			continue
		}
		leadID, err := strconv.ParseInt(event.LeadID, 10, 64)
		if err != nil {
			continue
		}

		switch event.Type {
		case "subscribe":
			h.mu.Lock()
			c.leads[leadID] = true
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			delete(c.leads, leadID)
			h.mu.Unlock()
		case "typing":
			h.BroadcastToLead(leadID, &WSEvent{
				Type:    EventTyping,
				LeadID:  leadID,
				Payload: map[string]int64{"user_id": c.userID},
			})
		}
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package server

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tecu23/analysis-server/pkg/events"
	"github.com/tecu23/analysis-server/pkg/messages"
)

// Connection is one client WebSocket plus its outbound queue. Writers go
// through SendJSON; the write pump is the only goroutine touching the
// socket for writes.
type Connection struct {
	ID   uuid.UUID
	ws   *websocket.Conn
	hub  *Hub
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once

	// forwarding tracks which session keys already have a snapshot
	// relay running for this connection, so a repeated CREATE_SESSION
	// does not duplicate every state frame.
	forwardMu  sync.Mutex
	forwarding map[string]bool

	publisher *events.Publisher
	logger    *zap.Logger
}

// NewConnection wraps an upgraded WebSocket.
func NewConnection(
	ws *websocket.Conn,
	hub *Hub,
	publisher *events.Publisher,
	logger *zap.Logger,
) *Connection {
	return &Connection{
		ID:        uuid.New(),
		ws:        ws,
		hub:       hub,
		send:      make(chan []byte, 256),
		done:      make(chan struct{}),
		publisher: publisher,
		logger:    logger,
	}
}

// ReadPump handles inbound messages from the client. On exit the
// connection unregisters and its sessions are torn down via the
// connection-closed event.
func (c *Connection) ReadPump() {
	defer func() {
		c.publisher.Publish(events.Event{
			Type: events.EventConnectionClosed,
			Payload: map[string]string{
				"connection_id": c.ID.String(),
			},
		})
		c.hub.Unregister(c)
		c.Close()
	}()

	for {
		msgType, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Error("read error", zap.Error(err))
			}
			return
		}

		// We only handle text.
		if msgType != websocket.TextMessage {
			continue
		}

		var inbound messages.InboundMessage
		if err := json.Unmarshal(msg, &inbound); err != nil {
			c.logger.Error("failed to parse inbound JSON", zap.Error(err))
			continue
		}
		select {
		case c.hub.inbound <- InboundHubMessage{Conn: c, Message: inbound}:
		case <-c.done:
			return
		}
	}
}

// WritePump drains the outbound queue onto the socket until the connection
// closes.
func (c *Connection) WritePump() {
	defer c.ws.Close()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error("write error", zap.Error(err))
				return
			}
		}
	}
}

// SendJSON queues a JSON message for this connection. Messages are dropped
// once the connection is closed or when the queue is full: the hub and the
// session forwarders must never stall on one slow client.
func (c *Connection) SendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("error marshaling JSON", zap.Error(err))
		return
	}

	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.logger.Warn("outbound queue full, dropping message",
			zap.String("connection_id", c.ID.String()))
	}
}

// beginForward claims the snapshot relay for a session key. It returns
// false when a relay for that key is already running on this connection.
func (c *Connection) beginForward(key string) bool {
	c.forwardMu.Lock()
	defer c.forwardMu.Unlock()
	if c.forwarding == nil {
		c.forwarding = make(map[string]bool)
	}
	if c.forwarding[key] {
		return false
	}
	c.forwarding[key] = true
	return true
}

// endForward releases the claim so a session recreated under the same key
// gets a fresh relay.
func (c *Connection) endForward(key string) {
	c.forwardMu.Lock()
	defer c.forwardMu.Unlock()
	delete(c.forwarding, key)
}

// Close releases the connection. Safe to call more than once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.ws != nil {
			c.ws.Close()
		}
	})
}

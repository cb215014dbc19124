package server

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/tecu23/analysis-server/pkg/analysis"
	"github.com/tecu23/analysis-server/pkg/messages"
	"github.com/tecu23/analysis-server/pkg/notation"
	"github.com/tecu23/analysis-server/pkg/registry"
	"github.com/tecu23/analysis-server/pkg/session"
)

// InboundHubMessage are the messages that the hub receives.
type InboundHubMessage struct {
	Conn    *Connection
	Message messages.InboundMessage
}

// Hub keeps track of all active connections and routes inbound client
// intents to the right engine session. It is the thin per-consumer view
// adapter over pkg/session: clients never hold a transport, they only see
// state snapshots relayed over their WebSocket.
type Hub struct {
	connections map[*Connection]bool

	register   chan *Connection
	unregister chan *Connection
	inbound    chan InboundHubMessage
	quit       chan struct{}

	registry *registry.Registry
	logger   *zap.Logger
}

// NewHub creates a new hub over the given session registry.
func NewHub(reg *registry.Registry, logger *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		inbound:     make(chan InboundHubMessage),
		quit:        make(chan struct{}),
		registry:    reg,
		logger:      logger,
	}
}

// Run is the main execution loop of the hub.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.registerConnection(conn)
		case conn := <-h.unregister:
			h.unregisterConnection(conn)
		case msg := <-h.inbound:
			h.handleInbound(msg)
		case <-h.quit:
			for conn := range h.connections {
				conn.Close()
				delete(h.connections, conn)
			}
			return
		}
	}
}

// Register hands a new connection to the hub loop.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection from the hub loop.
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.quit:
	}
}

// Shutdown stops the hub loop and closes every connection's outbound
// queue.
func (h *Hub) Shutdown() {
	close(h.quit)
}

func (h *Hub) registerConnection(conn *Connection) {
	h.connections[conn] = true
	h.logger.Info("connection registered",
		zap.String("connection_id", conn.ID.String()),
		zap.Int("total", len(h.connections)))

	conn.SendJSON(messages.OutboundMessage{
		Event:   "CONNECTED",
		Payload: messages.ConnectedPayload{ConnectionID: conn.ID.String()},
	})
}

func (h *Hub) unregisterConnection(conn *Connection) {
	if _, ok := h.connections[conn]; ok {
		delete(h.connections, conn)
		conn.Close()
		h.logger.Info("connection unregistered",
			zap.String("connection_id", conn.ID.String()),
			zap.Int("total", len(h.connections)))
	}
}

// handleInbound decodes and routes one client message.
func (h *Hub) handleInbound(msg InboundHubMessage) {
	switch msg.Message.Event {
	case "CREATE_SESSION":
		var payload messages.CreateSessionPayload
		if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil {
			h.sendError(msg.Conn, "invalid CREATE_SESSION payload")
			return
		}
		h.createSession(msg.Conn, payload)

	case "SET_POSITION":
		var payload messages.SetPositionPayload
		if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil {
			h.sendError(msg.Conn, "invalid SET_POSITION payload")
			return
		}
		if mgr, ok := h.lookup(msg.Conn, payload.SessionKey); ok {
			mgr.SetPosition(payload.FEN)
		}

	case "SET_POSITION_MOVES":
		var payload messages.SetPositionMovesPayload
		if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil {
			h.sendError(msg.Conn, "invalid SET_POSITION_MOVES payload")
			return
		}
		if mgr, ok := h.lookup(msg.Conn, payload.SessionKey); ok {
			mgr.SetPositionFromMoves(payload.Moves)
		}

	case "ANALYZE":
		var payload messages.AnalyzePayload
		if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil {
			h.sendError(msg.Conn, "invalid ANALYZE payload")
			return
		}
		if mgr, ok := h.lookup(msg.Conn, payload.SessionKey); ok {
			mgr.Analyze(session.AnalyzeParams{
				Depth:      payload.Depth,
				MovetimeMs: payload.MovetimeMs,
			})
		}

	case "STOP_ANALYSIS":
		var payload messages.SessionKeyPayload
		if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil {
			h.sendError(msg.Conn, "invalid STOP_ANALYSIS payload")
			return
		}
		if mgr, ok := h.lookup(msg.Conn, payload.SessionKey); ok {
			mgr.Stop()
		}

	case "SET_OPTION":
		var payload messages.SetOptionPayload
		if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil {
			h.sendError(msg.Conn, "invalid SET_OPTION payload")
			return
		}
		if mgr, ok := h.lookup(msg.Conn, payload.SessionKey); ok {
			mgr.SetOption(payload.Name, payload.Value)
		}

	case "NEW_GAME":
		var payload messages.SessionKeyPayload
		if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil {
			h.sendError(msg.Conn, "invalid NEW_GAME payload")
			return
		}
		if mgr, ok := h.lookup(msg.Conn, payload.SessionKey); ok {
			mgr.NewGame()
		}

	case "CLOSE_SESSION":
		var payload messages.SessionKeyPayload
		if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil {
			h.sendError(msg.Conn, "invalid CLOSE_SESSION payload")
			return
		}
		h.registry.Remove(payload.SessionKey)

	default:
		h.sendError(msg.Conn, fmt.Sprintf("unknown event %q", msg.Message.Event))
	}
}

func (h *Hub) createSession(conn *Connection, payload messages.CreateSessionPayload) {
	key := payload.Key
	if key == "" {
		key = conn.ID.String()
	}

	mgr, err := h.registry.GetOrCreate(key, conn.ID.String())
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}

	multiPV := payload.MultiPV
	if multiPV < 1 {
		multiPV = 1
	}
	threads := payload.Threads
	if threads < 1 {
		threads = 1
	}
	mgr.Initialize(session.Options{
		MultiPV:    multiPV,
		Threads:    threads,
		SkillLevel: payload.SkillLevel,
	})

	if conn.beginForward(key) {
		go h.forwardSnapshots(conn, key, mgr)
	}

	conn.SendJSON(messages.OutboundMessage{
		Event: "SESSION_CREATED",
		Payload: messages.SessionCreatedPayload{
			SessionKey: key,
			SessionID:  mgr.ID().String(),
		},
	})
}

// forwardSnapshots relays the session's state stream to one connection
// until the session stops emitting, converting each line's moves to SAN
// from the snapshot's position along the way.
func (h *Hub) forwardSnapshots(conn *Connection, key string, mgr *session.Manager) {
	defer conn.endForward(key)

	snaps, cancel := mgr.Subscribe()
	defer cancel()

	for snap := range snaps {
		conn.SendJSON(messages.OutboundMessage{
			Event: "SESSION_STATE",
			Payload: messages.SessionStatePayload{
				SessionKey: key,
				State:      snap,
				LinesSAN:   sanLines(snap),
			},
		})
	}

	conn.SendJSON(messages.OutboundMessage{
		Event:   "SESSION_CLOSED",
		Payload: messages.SessionClosedPayload{SessionKey: key},
	})
}

func sanLines(snap analysis.Snapshot) [][]string {
	if len(snap.Lines) == 0 {
		return nil
	}
	out := make([][]string, len(snap.Lines))
	for i, line := range snap.Lines {
		out[i] = notation.SANLine(snap.FEN, line.Moves)
	}
	return out
}

func (h *Hub) lookup(conn *Connection, key string) (*session.Manager, bool) {
	mgr, ok := h.registry.Get(key)
	if !ok {
		h.sendError(conn, fmt.Sprintf("no session for key %q", key))
		return nil, false
	}
	return mgr, true
}

func (h *Hub) sendError(conn *Connection, msg string) {
	conn.SendJSON(messages.OutboundMessage{
		Event:   "ERROR",
		Payload: messages.ErrorPayload{Message: msg},
	})
}

package messages

import "github.com/tecu23/analysis-server/pkg/analysis"

// OutboundMessage is how we wrap responses before sending them to the
// client.
type OutboundMessage struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// ConnectedPayload is sent once after a connection registers.
type ConnectedPayload struct {
	ConnectionID string `json:"connection_id"`
}

// SessionCreatedPayload acknowledges a CREATE_SESSION request.
type SessionCreatedPayload struct {
	SessionKey string `json:"session_key"`
	SessionID  string `json:"session_id"`
}

// SessionStatePayload carries one full state snapshot. LinesSAN mirrors
// State.Lines with each move sequence converted to standard algebraic
// notation from the current position; a line whose tokens stop converting
// comes through truncated.
type SessionStatePayload struct {
	SessionKey string            `json:"session_key"`
	State      analysis.Snapshot `json:"state"`
	LinesSAN   [][]string        `json:"lines_san,omitempty"`
}

// SessionClosedPayload notifies that a session stopped emitting.
type SessionClosedPayload struct {
	SessionKey string `json:"session_key"`
}

// ErrorPayload reports a request-level failure.
type ErrorPayload struct {
	Message string `json:"message"`
}

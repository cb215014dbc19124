package messages

import "encoding/json"

// InboundMessage is the generic wrapper for messages coming from the
// client. The "event" field tells us the action; "payload" is the data we
// parse further.
type InboundMessage struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// CreateSessionPayload asks for an engine session. Key is optional; when
// empty, the session is keyed to the connection. SkillLevel stays unset
// unless the client explicitly sends one.
type CreateSessionPayload struct {
	Key        string `json:"key,omitempty"`
	MultiPV    int    `json:"multi_pv"`
	Threads    int    `json:"threads"`
	SkillLevel *int   `json:"skill_level,omitempty"`
}

// SetPositionPayload loads a position from a FEN string.
type SetPositionPayload struct {
	SessionKey string `json:"session_key"`
	FEN        string `json:"fen"`
}

// SetPositionMovesPayload loads a position by move-list replay from the
// starting position.
type SetPositionMovesPayload struct {
	SessionKey string   `json:"session_key"`
	Moves      []string `json:"moves"`
}

// AnalyzePayload starts a search episode bounded by depth or movetime.
type AnalyzePayload struct {
	SessionKey string `json:"session_key"`
	Depth      int    `json:"depth,omitempty"`
	MovetimeMs int    `json:"movetime_ms,omitempty"`
}

// SetOptionPayload sets one engine option.
type SetOptionPayload struct {
	SessionKey string `json:"session_key"`
	Name       string `json:"name"`
	Value      string `json:"value"`
}

// SessionKeyPayload is shared by the events that only name a session:
// STOP_ANALYSIS, NEW_GAME, CLOSE_SESSION.
type SessionKeyPayload struct {
	SessionKey string `json:"session_key"`
}

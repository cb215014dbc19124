// Package uci implements the wire-level codec for the Universal Chess
// Interface: serializing outbound commands into engine-input lines and
// parsing engine output lines into structured records. The codec holds no
// state; sequencing and readiness live in pkg/session.
package uci

import (
	"fmt"
	"strings"
)

// DefaultDepth bounds a search when the caller supplies neither a depth
// nor a movetime.
const DefaultDepth = 20

// Command is a single outbound engine command. MarshalUCI returns exactly
// one protocol line, without the trailing newline.
type Command interface {
	MarshalUCI() string
}

// Handshake opens the protocol handshake.
type Handshake struct{}

func (Handshake) MarshalUCI() string { return "uci" }

// ReadyProbe asks the engine to confirm it is idle and has processed all
// prior commands.
type ReadyProbe struct{}

func (ReadyProbe) MarshalUCI() string { return "isready" }

// SetPosition loads a position from a FEN string.
type SetPosition struct {
	FEN string
}

func (c SetPosition) MarshalUCI() string { return "position fen " + c.FEN }

// SetPositionFromMoves replays a move list from the standard starting
// position.
type SetPositionFromMoves struct {
	Moves []string
}

func (c SetPositionFromMoves) MarshalUCI() string {
	if len(c.Moves) == 0 {
		return "position startpos"
	}
	return "position startpos moves " + strings.Join(c.Moves, " ")
}

// StartSearch begins a search bounded by depth or by wall time. MovetimeMs
// wins when both are set; with neither, DefaultDepth applies.
type StartSearch struct {
	Depth      int
	MovetimeMs int
}

func (c StartSearch) MarshalUCI() string {
	if c.MovetimeMs > 0 {
		return fmt.Sprintf("go movetime %d", c.MovetimeMs)
	}
	depth := c.Depth
	if depth <= 0 {
		depth = DefaultDepth
	}
	return fmt.Sprintf("go depth %d", depth)
}

// StopSearch asks the engine to end the current search. Advisory: the
// engine may still emit a trailing bestmove.
type StopSearch struct{}

func (StopSearch) MarshalUCI() string { return "stop" }

// SetOption sets a named engine option.
type SetOption struct {
	Name  string
	Value string
}

func (c SetOption) MarshalUCI() string {
	return fmt.Sprintf("setoption name %s value %s", c.Name, c.Value)
}

// NewGame tells the engine the next position belongs to a new game.
type NewGame struct{}

func (NewGame) MarshalUCI() string { return "ucinewgame" }

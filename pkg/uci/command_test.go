package uci

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarshalUCI(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{"handshake", Handshake{}, "uci"},
		{"ready probe", ReadyProbe{}, "isready"},
		{"new game", NewGame{}, "ucinewgame"},
		{"stop", StopSearch{}, "stop"},
		{
			"position fen",
			SetPosition{FEN: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
			"position fen rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		},
		{"position startpos empty", SetPositionFromMoves{}, "position startpos"},
		{
			"position startpos moves",
			SetPositionFromMoves{Moves: []string{"e2e4", "e7e5", "g1f3"}},
			"position startpos moves e2e4 e7e5 g1f3",
		},
		{"go depth", StartSearch{Depth: 12}, "go depth 12"},
		{"go movetime", StartSearch{MovetimeMs: 1500}, "go movetime 1500"},
		{"movetime wins over depth", StartSearch{Depth: 12, MovetimeMs: 500}, "go movetime 500"},
		{"default depth", StartSearch{}, "go depth 20"},
		{"set option", SetOption{Name: "MultiPV", Value: "3"}, "setoption name MultiPV value 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmd.MarshalUCI())
		})
	}
}

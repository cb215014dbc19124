// Package notation converts engine-native move tokens into display
// notation by replaying them through the rules engine. The engine's
// internal position is opaque and cannot be queried back, so replay from a
// known FEN is the only way to attach human-readable spellings to a
// principal variation.
package notation

import (
	"fmt"

	"github.com/corentings/chess/v2"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// SANLine replays engine moves from fromFEN and returns their standard
// algebraic spellings. Conversion stops at the first token the rules
// engine rejects; the shorter prefix is returned rather than an error, so
// a garbled PV degrades to a truncated display line.
func SANLine(fromFEN string, moves []string) []string {
	if fromFEN == "" {
		fromFEN = StartFEN
	}
	fen, err := chess.FEN(fromFEN)
	if err != nil {
		return nil
	}
	game := chess.NewGame(fen)

	out := make([]string, 0, len(moves))
	for _, token := range moves {
		pos := game.Position()
		move, err := chess.UCINotation{}.Decode(pos, token)
		if err != nil {
			break
		}
		san := chess.AlgebraicNotation{}.Encode(pos, move)
		if err := game.PushMove(san, nil); err != nil {
			break
		}
		out = append(out, san)
	}
	return out
}

// FENAfter replays a move list from the starting position and returns the
// resulting FEN. Used to reconstruct the position behind
// "position startpos moves ...".
func FENAfter(moves []string) (string, error) {
	game := chess.NewGame()
	for i, token := range moves {
		pos := game.Position()
		move, err := chess.UCINotation{}.Decode(pos, token)
		if err != nil {
			return "", fmt.Errorf("move %d (%s): %w", i+1, token, err)
		}
		san := chess.AlgebraicNotation{}.Encode(pos, move)
		if err := game.PushMove(san, nil); err != nil {
			return "", fmt.Errorf("move %d (%s): %w", i+1, token, err)
		}
	}
	return game.FEN(), nil
}

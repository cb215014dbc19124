package uci

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHandshakeLines(t *testing.T) {
	assert.Equal(t, ProtocolReady{}, Parse("uciok"))
	assert.Equal(t, ReadyConfirmed{}, Parse("readyok"))
	assert.Equal(t, ReadyConfirmed{}, Parse("  readyok  "))
}

func TestParseBestMove(t *testing.T) {
	line := Parse("bestmove e2e4 ponder e7e5")
	require.IsType(t, BestMove{}, line)
	assert.Equal(t, "e2e4", line.(BestMove).Move)

	// A bare "bestmove" carries nothing usable.
	assert.IsType(t, Unrecognized{}, Parse("bestmove"))
}

func TestParseSearchInfo(t *testing.T) {
	line := Parse("info depth 10 multipv 1 score cp 35 pv e2e4 e7e5")
	si, ok := line.(*SearchInfo)
	require.True(t, ok, "expected *SearchInfo, got %T", line)

	assert.Equal(t, 10, si.Depth)
	assert.Equal(t, 1, si.MultiPV)
	require.NotNil(t, si.Score)
	assert.Equal(t, ScoreCentipawns, si.Score.Kind)
	assert.Equal(t, 35, si.Score.Value)
	assert.Equal(t, []string{"e2e4", "e7e5"}, si.PV)
	assert.True(t, si.Complete())
}

func TestParseSearchInfoMateAndCounters(t *testing.T) {
	line := Parse("info depth 21 seldepth 30 multipv 2 score mate -3 nodes 48230 nps 1200500 time 41 pv d8h4 g2g3 h4g3")
	si, ok := line.(*SearchInfo)
	require.True(t, ok)

	assert.Equal(t, 21, si.Depth)
	assert.Equal(t, 30, si.SelDepth)
	assert.Equal(t, 2, si.MultiPV)
	require.NotNil(t, si.Score)
	assert.Equal(t, ScoreMate, si.Score.Kind)
	assert.Equal(t, -3, si.Score.Value)
	assert.Equal(t, int64(48230), si.Nodes)
	assert.Equal(t, int64(1200500), si.NPS)
	assert.Equal(t, int64(41), si.TimeMs)
	assert.Equal(t, []string{"d8h4", "g2g3", "h4g3"}, si.PV)
}

func TestParseSkipsUnknownInfoKeys(t *testing.T) {
	line := Parse("info depth 12 currmove e2e4 currmovenumber 1 multipv 1 hashfull 42 score cp 8 pv e2e4")
	si, ok := line.(*SearchInfo)
	require.True(t, ok)
	assert.Equal(t, 12, si.Depth)
	assert.Equal(t, 1, si.MultiPV)
	assert.Equal(t, []string{"e2e4"}, si.PV)
	assert.True(t, si.Complete())
}

func TestParseIncompleteInfoIsNotComplete(t *testing.T) {
	line := Parse("info depth 5 nodes 1000")
	si, ok := line.(*SearchInfo)
	require.True(t, ok)
	assert.False(t, si.Complete())
}

func TestParseDebugAndIdLines(t *testing.T) {
	assert.Equal(t, Unrecognized{Raw: "info string some debug text"}, Parse("info string some debug text"))
	assert.Equal(t, Unrecognized{Raw: "id name Stockfish 16"}, Parse("id name Stockfish 16"))
	assert.Equal(t, Unrecognized{Raw: ""}, Parse(""))
}

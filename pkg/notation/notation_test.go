package notation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSANLineConvertsKnownOpening(t *testing.T) {
	got := SANLine(StartFEN, []string{"e2e4", "e7e5", "g1f3", "b8c6"})
	assert.Equal(t, []string{"e4", "e5", "Nf3", "Nc6"}, got)
}

func TestSANLineSpellsCapturesAndPromotions(t *testing.T) {
	got := SANLine(StartFEN, []string{"e2e4", "d7d5", "e4d5"})
	assert.Equal(t, []string{"e4", "d5", "exd5"}, got)

	got = SANLine("k7/4P3/8/8/8/8/8/4K3 w - - 0 1", []string{"e7e8q"})
	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0], "e8=Q"), got[0])
}

func TestSANLineTruncatesAtIllegalMove(t *testing.T) {
	// The second token moves a pawn that is no longer there.
	got := SANLine(StartFEN, []string{"e2e4", "e2e4", "g1f3"})
	assert.Equal(t, []string{"e4"}, got)
}

func TestSANLineTruncatesAtMalformedToken(t *testing.T) {
	got := SANLine(StartFEN, []string{"e2e4", "not-a-move"})
	assert.Equal(t, []string{"e4"}, got)
}

func TestSANLineEmptyAndBadFEN(t *testing.T) {
	assert.Empty(t, SANLine(StartFEN, nil))
	assert.Empty(t, SANLine("garbage fen", []string{"e2e4"}))
}

func TestFENAfterReplaysFromStart(t *testing.T) {
	fen, err := FENAfter([]string{"e2e4"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(fen, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b"), fen)
}

func TestFENAfterRejectsIllegalMove(t *testing.T) {
	_, err := FENAfter([]string{"e2e5"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "move 1")
}

func TestFENAfterEmptyListIsStartPosition(t *testing.T) {
	fen, err := FENAfter(nil)
	require.NoError(t, err)
	assert.Equal(t, StartFEN, fen)
}

package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tecu23/analysis-server/pkg/uci"
)

func info(depth, multipv, cp int, pv ...string) *uci.SearchInfo {
	return &uci.SearchInfo{
		Depth:   depth,
		MultiPV: multipv,
		Score:   &uci.Score{Kind: uci.ScoreCentipawns, Value: cp},
		PV:      pv,
	}
}

func TestMonotonicDepthReplacement(t *testing.T) {
	agg := NewAggregator()

	require.True(t, agg.IngestInfo(info(10, 1, 30, "e2e4")))
	// Out-of-order shallower report must be discarded.
	require.False(t, agg.IngestInfo(info(8, 1, 90, "d2d4")))
	// Equal depth replaces: the later report refines the same iteration.
	require.True(t, agg.IngestInfo(info(10, 1, 33, "e2e4", "e7e5")))
	require.True(t, agg.IngestInfo(info(12, 1, 28, "e2e4", "c7c5")))

	lines := agg.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 12, lines[0].Depth)
	assert.Equal(t, 28, lines[0].Score.Value)
	assert.Equal(t, []string{"e2e4", "c7c5"}, lines[0].Moves)
}

func TestIncompleteInfoIsDropped(t *testing.T) {
	agg := NewAggregator()

	assert.False(t, agg.IngestInfo(nil))
	assert.False(t, agg.IngestInfo(&uci.SearchInfo{Depth: 10, MultiPV: 1})) // no score, no pv
	assert.False(t, agg.IngestInfo(&uci.SearchInfo{
		Depth: 10,
		Score: &uci.Score{Kind: uci.ScoreCentipawns, Value: 5},
		PV:    []string{"e2e4"},
	})) // no multipv
	assert.Empty(t, agg.Lines())
}

func TestLinesSortedByVariationIndex(t *testing.T) {
	agg := NewAggregator()
	for _, idx := range []int{3, 1, 2} {
		require.True(t, agg.IngestInfo(info(10, idx, idx*10, fmt.Sprintf("m%d", idx))))
	}

	lines := agg.Lines()
	require.Len(t, lines, 3)
	for i, l := range lines {
		assert.Equal(t, i+1, l.MultiPV)
	}
}

func TestResetClearsEpisode(t *testing.T) {
	agg := NewAggregator()
	require.True(t, agg.IngestInfo(info(10, 1, 30, "e2e4")))
	agg.IngestBestMove("e2e4")

	agg.Reset()
	assert.Empty(t, agg.Lines())
	assert.Empty(t, agg.BestMove())

	// Only the new episode's entries survive.
	require.True(t, agg.IngestInfo(info(4, 2, -12, "d2d4")))
	lines := agg.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].MultiPV)
}

func TestRawLogIsBounded(t *testing.T) {
	var log RawLog
	for i := 0; i < 130; i++ {
		log.Append(fmt.Sprintf("line %d", i))
	}

	lines := log.Lines()
	require.Len(t, lines, 100)
	assert.Equal(t, "line 30", lines[0])
	assert.Equal(t, "line 129", lines[99])
}

// Package analysis folds the engine's streamed search reports into a
// consistent snapshot: the best known line per principal variation plus the
// terminal best move of the current search episode.
package analysis

import (
	"sort"

	"github.com/tecu23/analysis-server/pkg/uci"
)

// SearchLine is the best known report for one principal variation within a
// single search episode, keyed by its 1-based multipv index.
type SearchLine struct {
	MultiPV  int       `json:"multipv"`
	Depth    int       `json:"depth"`
	SelDepth int       `json:"seldepth,omitempty"`
	Score    uci.Score `json:"score"`
	Moves    []string  `json:"moves"`
	Nodes    int64     `json:"nodes,omitempty"`
	NPS      int64     `json:"nps,omitempty"`
	TimeMs   int64     `json:"time_ms,omitempty"`
}

// Aggregator accumulates SearchInfo records under the monotonic-depth rule:
// a report replaces the stored line for its variation only when its depth is
// at least the stored depth, so a late shallow report never overwrites a
// deeper one that arrived out of order.
type Aggregator struct {
	lines    map[int]SearchLine
	bestMove string
}

// NewAggregator returns an empty aggregator for a fresh search episode.
func NewAggregator() *Aggregator {
	return &Aggregator{lines: make(map[int]SearchLine)}
}

// IngestInfo folds one parsed info record in. Records missing any of depth,
// multipv, score or pv are dropped without effect. Reports whether the
// tracked lines changed.
func (a *Aggregator) IngestInfo(si *uci.SearchInfo) bool {
	if si == nil || !si.Complete() {
		return false
	}
	if cur, ok := a.lines[si.MultiPV]; ok && si.Depth < cur.Depth {
		return false
	}

	a.lines[si.MultiPV] = SearchLine{
		MultiPV:  si.MultiPV,
		Depth:    si.Depth,
		SelDepth: si.SelDepth,
		Score:    *si.Score,
		Moves:    append([]string(nil), si.PV...),
		Nodes:    si.Nodes,
		NPS:      si.NPS,
		TimeMs:   si.TimeMs,
	}
	return true
}

// IngestBestMove records the terminal report of the episode.
func (a *Aggregator) IngestBestMove(move string) {
	a.bestMove = move
}

// Reset clears all lines and the best move. Every search episode starts
// from empty; stale lines must never leak into a new snapshot.
func (a *Aggregator) Reset() {
	a.lines = make(map[int]SearchLine)
	a.bestMove = ""
}

// BestMove returns the recorded terminal move, if any arrived yet.
func (a *Aggregator) BestMove() string {
	return a.bestMove
}

// Lines returns the tracked lines sorted by variation index.
func (a *Aggregator) Lines() []SearchLine {
	out := make([]SearchLine, 0, len(a.lines))
	for _, l := range a.lines {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MultiPV < out[j].MultiPV })
	return out
}

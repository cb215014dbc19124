package uci

import (
	"strconv"
	"strings"
)

// Line is one parsed engine output line.
type Line interface {
	uciLine()
}

// ProtocolReady is the engine's "uciok" handshake acknowledgement.
type ProtocolReady struct{}

// ReadyConfirmed is the engine's "readyok" idleness confirmation.
type ReadyConfirmed struct{}

// BestMove is the engine's terminal search report. A trailing ponder move
// is dropped.
type BestMove struct {
	Move string
}

// ScoreKind distinguishes centipawn evaluations from forced-mate distances.
type ScoreKind int

// Score kinds reported by engines.
const (
	ScoreCentipawns ScoreKind = iota
	ScoreMate
)

// MarshalJSON renders the kind as "cp" or "mate", matching the wire words.
func (k ScoreKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

func (k ScoreKind) String() string {
	if k == ScoreMate {
		return "mate"
	}
	return "cp"
}

// Score is an engine evaluation, relative to the side to move.
type Score struct {
	Kind  ScoreKind `json:"kind"`
	Value int       `json:"value"`
}

// SearchInfo is one "info" report. Fields the line did not carry stay at
// their zero value; Complete tells the aggregator whether the record is
// usable.
type SearchInfo struct {
	Depth    int
	SelDepth int
	MultiPV  int
	Score    *Score
	Nodes    int64
	NPS      int64
	TimeMs   int64
	PV       []string
}

// Complete reports whether the record carries everything aggregation
// needs: depth, multipv, a score and a principal variation.
func (si *SearchInfo) Complete() bool {
	return si.Depth > 0 && si.MultiPV > 0 && si.Score != nil && len(si.PV) > 0
}

// Unrecognized is any line the codec has no semantics for: id lines,
// "info string" debug output, startup banners. Not an error; such lines
// are kept in the raw log and otherwise ignored.
type Unrecognized struct {
	Raw string
}

func (ProtocolReady) uciLine()  {}
func (ReadyConfirmed) uciLine() {}
func (BestMove) uciLine()       {}
func (*SearchInfo) uciLine()    {}
func (Unrecognized) uciLine()   {}

// Parse maps one raw engine line to its structured form. It never fails:
// anything it cannot give meaning to comes back as Unrecognized.
func Parse(raw string) Line {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 {
		return Unrecognized{Raw: raw}
	}

	switch fields[0] {
	case "uciok":
		return ProtocolReady{}
	case "readyok":
		return ReadyConfirmed{}
	case "bestmove":
		if len(fields) >= 2 {
			return BestMove{Move: fields[1]}
		}
	case "info":
		if si := parseInfo(fields[1:]); si != nil {
			return si
		}
	}
	return Unrecognized{Raw: raw}
}

// parseInfo tokenizes an info line, switching on the keys it knows and
// skipping the rest. "pv" is terminal: it consumes every remaining token.
// Returns nil when no recognized key was present at all.
func parseInfo(fields []string) *SearchInfo {
	si := &SearchInfo{}
	known := false

	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if i+1 < len(fields) {
				si.Depth = atoi(fields[i+1])
				known = true
				i++
			}
		case "seldepth":
			if i+1 < len(fields) {
				si.SelDepth = atoi(fields[i+1])
				known = true
				i++
			}
		case "multipv":
			if i+1 < len(fields) {
				si.MultiPV = atoi(fields[i+1])
				known = true
				i++
			}
		case "score":
			if i+2 < len(fields) {
				switch fields[i+1] {
				case "cp":
					si.Score = &Score{Kind: ScoreCentipawns, Value: atoi(fields[i+2])}
					known = true
				case "mate":
					si.Score = &Score{Kind: ScoreMate, Value: atoi(fields[i+2])}
					known = true
				}
				i += 2
			}
		case "nodes":
			if i+1 < len(fields) {
				si.Nodes = atoi64(fields[i+1])
				known = true
				i++
			}
		case "nps":
			if i+1 < len(fields) {
				si.NPS = atoi64(fields[i+1])
				known = true
				i++
			}
		case "time":
			if i+1 < len(fields) {
				si.TimeMs = atoi64(fields[i+1])
				known = true
				i++
			}
		case "pv":
			if i+1 < len(fields) {
				si.PV = append([]string(nil), fields[i+1:]...)
				known = true
			}
			i = len(fields)
		}
	}

	if !known {
		return nil
	}
	return si
}

func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func atoi64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

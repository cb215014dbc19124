package analysis

// rawLogLimit bounds how many raw engine lines the snapshot keeps for
// diagnostics.
const rawLogLimit = 100

// Snapshot is the externally observable state of one engine session. Every
// mutation of the session replaces it wholesale; subscribers always receive
// the full state, never a diff.
type Snapshot struct {
	Ready     bool         `json:"ready"`
	Searching bool         `json:"searching"`
	FEN       string       `json:"fen,omitempty"`
	Lines     []SearchLine `json:"lines"`
	BestMove  string       `json:"best_move,omitempty"`
	RawLog    []string     `json:"raw_log,omitempty"`
	LastError string       `json:"last_error,omitempty"`
}

// RawLog keeps the last rawLogLimit raw engine lines, recognized or not.
type RawLog struct {
	lines []string
}

// Append adds one raw line, evicting the oldest beyond the limit.
func (l *RawLog) Append(line string) {
	l.lines = append(l.lines, line)
	if len(l.lines) > rawLogLimit {
		l.lines = l.lines[len(l.lines)-rawLogLimit:]
	}
}

// Lines returns a copy safe to hand to subscribers.
func (l *RawLog) Lines() []string {
	return append([]string(nil), l.lines...)
}

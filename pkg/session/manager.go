// Package session implements the engine session manager: the state machine
// that owns one engine transport, sequences commands under the UCI
// readiness protocol, and folds streamed search output into an observable
// snapshot.
//
// All session state lives on a single event-loop goroutine. Public
// operations are fire-and-forget: they post work to the loop and return
// immediately; results surface only on the subscription stream. Searches
// are long-running and multi-valued, so no operation resolves with search
// output directly.
//
// Setting a position does not start a search. Callers that want
// analyze-on-position-change re-issue Analyze after SetPosition; the two
// are kept independent here to keep the state machine simple.
package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tecu23/analysis-server/pkg/analysis"
	"github.com/tecu23/analysis-server/pkg/notation"
	"github.com/tecu23/analysis-server/pkg/transport"
	"github.com/tecu23/analysis-server/pkg/uci"
)

// Options configures the engine once per session. SkillLevel stays unset
// unless explicitly requested: a skill level introduces search randomness
// that defeats deterministic analysis.
type Options struct {
	MultiPV    int
	Threads    int
	SkillLevel *int
}

// AnalyzeParams bounds one search episode. Exactly one of Depth/MovetimeMs
// governs; MovetimeMs wins when both are set, and with neither the codec's
// default depth applies.
type AnalyzeParams struct {
	Depth      int
	MovetimeMs int
}

// Manager drives one UCI engine through its lifecycle: handshake, option
// setup, position changes and search episodes.
type Manager struct {
	id     uuid.UUID
	tr     transport.Transport
	logger *zap.Logger

	ops  chan func()
	quit chan struct{}
	done chan struct{}

	closeOnce sync.Once

	// opsMu fences posting against teardown: once finish flips tornDown
	// under the write lock, no op can land after the final drain.
	opsMu    sync.RWMutex
	tornDown bool

	// Everything below is owned by the run loop and never touched from
	// outside it.
	ready       bool
	searching   bool
	failed      bool
	initialized bool
	lastErr     string
	fen         string
	queue       []func()
	agg         *analysis.Aggregator
	rawLog      analysis.RawLog
	subs        map[chan analysis.Snapshot]bool
}

// New starts the transport, opens the protocol handshake and then starts
// the session loop. A transport that cannot start is a terminal init
// failure: no manager is returned and no retry happens at this layer.
func New(tr transport.Transport, logger *zap.Logger) (*Manager, error) {
	m := &Manager{
		id:     uuid.New(),
		tr:     tr,
		logger: logger,
		ops:    make(chan func(), 32),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		agg:    analysis.NewAggregator(),
		subs:   make(map[chan analysis.Snapshot]bool),
	}

	if err := tr.Start(); err != nil {
		return nil, fmt.Errorf("engine session init: %w", err)
	}

	// Open the handshake before the loop starts reading, so engine
	// output is never consumed ahead of the "uci" request it answers.
	m.transmit(uci.Handshake{})
	go m.run()

	return m, nil
}

// ID identifies the session in logs and registries.
func (m *Manager) ID() uuid.UUID { return m.id }

// Done is closed when the session loop has exited and the transport is
// terminated.
func (m *Manager) Done() <-chan struct{} { return m.done }

// Initialize applies the session-wide engine options and probes for
// idleness. Idempotent: repeat calls are ignored.
func (m *Manager) Initialize(opts Options) {
	m.do(func() {
		if m.initialized {
			m.logger.Warn("session already initialized", zap.String("session_id", m.id.String()))
			return
		}
		m.initialized = true
		m.whenReady(func() {
			m.transmit(uci.SetOption{Name: "MultiPV", Value: fmt.Sprintf("%d", opts.MultiPV)})
			m.transmit(uci.SetOption{Name: "Threads", Value: fmt.Sprintf("%d", opts.Threads)})
			if opts.SkillLevel != nil {
				m.transmit(uci.SetOption{Name: "Skill Level", Value: fmt.Sprintf("%d", *opts.SkillLevel)})
			}
			m.transmit(uci.ReadyProbe{})
		})
	})
}

// SetPosition records fen for downstream notation conversion and loads it
// into the engine. A running search is stopped first so its results are
// never attributed to the new position; no new search starts until the
// caller invokes Analyze.
func (m *Manager) SetPosition(fen string) {
	m.do(func() {
		m.whenReady(func() {
			m.interruptSearch()
			m.fen = fen
			m.transmit(uci.SetPosition{FEN: fen})
			m.publish()
		})
	})
}

// SetPositionFromMoves loads a position by move-list replay from the
// starting position. The resulting FEN is reconstructed through the rules
// engine, since the engine's own position cannot be queried back.
func (m *Manager) SetPositionFromMoves(moves []string) {
	moves = append([]string(nil), moves...)
	m.do(func() {
		m.whenReady(func() {
			m.interruptSearch()
			fen, err := notation.FENAfter(moves)
			if err != nil {
				m.logger.Warn("position replay failed",
					zap.String("session_id", m.id.String()),
					zap.Error(err))
				fen = ""
			}
			m.fen = fen
			m.transmit(uci.SetPositionFromMoves{Moves: moves})
			m.publish()
		})
	})
}

// Analyze starts a fresh search episode: previous lines are cleared so
// nothing stale leaks into the new snapshot.
func (m *Manager) Analyze(params AnalyzeParams) {
	m.do(func() {
		m.whenReady(func() {
			m.agg.Reset()
			m.searching = true
			m.transmit(uci.StartSearch{Depth: params.Depth, MovetimeMs: params.MovetimeMs})
			m.publish()
		})
	})
}

// Stop asks the engine to end the current search and optimistically clears
// the searching flag. Stopping is advisory: a trailing bestmove may still
// arrive and is accepted as usual.
func (m *Manager) Stop() {
	m.do(func() {
		m.whenReady(func() {
			m.transmit(uci.StopSearch{})
			m.searching = false
			m.publish()
		})
	})
}

// SetOption sets one engine option and probes for idleness.
func (m *Manager) SetOption(name, value string) {
	m.do(func() {
		m.whenReady(func() {
			m.transmit(uci.SetOption{Name: name, Value: value})
			m.transmit(uci.ReadyProbe{})
		})
	})
}

// NewGame resets the engine's game state and clears the remembered
// position and all search results.
func (m *Manager) NewGame() {
	m.do(func() {
		m.whenReady(func() {
			m.interruptSearch()
			m.agg.Reset()
			m.searching = false
			m.fen = ""
			m.transmit(uci.NewGame{})
			m.transmit(uci.ReadyProbe{})
			m.publish()
		})
	})
}

// Subscribe registers a listener for state snapshots. The current snapshot
// is delivered first, then every subsequent mutation, in order. The channel
// is closed on cancel or on session teardown; a subscriber that stops
// draining eventually backpressures the session loop.
func (m *Manager) Subscribe() (<-chan analysis.Snapshot, func()) {
	ch := make(chan analysis.Snapshot, 256)
	if !m.do(func() {
		m.subs[ch] = true
		ch <- m.snapshot()
	}) {
		close(ch)
		return ch, func() {}
	}
	cancel := func() {
		m.do(func() {
			if m.subs[ch] {
				delete(m.subs, ch)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Snapshot returns the current state synchronously. After teardown it
// returns the zero snapshot.
func (m *Manager) Snapshot() analysis.Snapshot {
	reply := make(chan analysis.Snapshot, 1)
	if !m.do(func() { reply <- m.snapshot() }) {
		return analysis.Snapshot{}
	}
	select {
	case s := <-reply:
		return s
	case <-m.done:
		return analysis.Snapshot{}
	}
}

// Close tears the session down: the loop exits, the transport is
// terminated, and every subscriber channel is closed. Blocks until done.
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.quit) })
	<-m.done
}

// do posts work to the session loop. Returns false when the session is
// already torn down. The loop only exits via quit, so a post that blocks
// on a full ops channel is released by the quit case.
func (m *Manager) do(op func()) bool {
	m.opsMu.RLock()
	defer m.opsMu.RUnlock()
	if m.tornDown {
		return false
	}
	select {
	case m.ops <- op:
		return true
	case <-m.quit:
		return false
	}
}

func (m *Manager) run() {
	defer m.finish()

	lines := m.tr.Lines()
	for {
		select {
		case <-m.quit:
			return
		case op := <-m.ops:
			op()
		case line, ok := <-lines:
			if !ok {
				m.fatal(m.tr.Err())
				lines = nil
				continue
			}
			m.handleLine(line)
		}
	}
}

func (m *Manager) finish() {
	// Nothing may be transmitted past this point; run any ops that were
	// already posted so late subscribers still get registered and closed.
	m.failed = true
	m.opsMu.Lock()
	m.tornDown = true
	m.opsMu.Unlock()
drain:
	for {
		select {
		case op := <-m.ops:
			op()
		default:
			break drain
		}
	}

	_ = m.tr.Terminate()
	for ch := range m.subs {
		close(ch)
	}
	m.subs = nil
	close(m.done)
	m.logger.Info("session closed", zap.String("session_id", m.id.String()))
}

// whenReady runs f now, or buffers it until the first readyok if the
// handshake has not completed. Buffered work replays in arrival order, so
// callers may issue commands immediately after construction without racing
// engine startup. In the failed state everything becomes a logged no-op.
func (m *Manager) whenReady(f func()) {
	if m.failed {
		m.logger.Warn("command ignored, session failed", zap.String("session_id", m.id.String()))
		return
	}
	if !m.ready {
		m.queue = append(m.queue, f)
		return
	}
	f()
}

func (m *Manager) handleLine(raw string) {
	m.rawLog.Append(raw)
	m.logger.Debug("engine line",
		zap.String("session_id", m.id.String()),
		zap.String("line", raw))

	switch ln := uci.Parse(raw).(type) {
	case uci.ProtocolReady:
		m.transmit(uci.ReadyProbe{})
	case uci.ReadyConfirmed:
		if !m.ready {
			m.ready = true
			m.flushQueue()
		}
	case *uci.SearchInfo:
		m.agg.IngestInfo(ln)
	case uci.BestMove:
		// Accepted even after Stop: stopping never suppresses a
		// trailing result.
		m.agg.IngestBestMove(ln.Move)
		m.searching = false
	case uci.Unrecognized:
	}

	m.publish()
}

func (m *Manager) flushQueue() {
	queued := m.queue
	m.queue = nil
	for _, f := range queued {
		f()
	}
}

// interruptSearch transmits stop when a search is running. The episode
// reset happens on the next Analyze, not here.
func (m *Manager) interruptSearch() {
	if m.searching {
		m.transmit(uci.StopSearch{})
	}
}

func (m *Manager) transmit(cmd uci.Command) {
	if m.failed {
		return
	}
	line := cmd.MarshalUCI()
	if err := m.tr.Send(line); err != nil {
		m.fatal(fmt.Errorf("engine write: %w", err))
		return
	}
	m.logger.Debug("engine command",
		zap.String("session_id", m.id.String()),
		zap.String("line", line))
}

// fatal moves the session to its terminal error state: never ready again,
// nothing transmitted again, the cause surfaced once via the snapshot.
func (m *Manager) fatal(cause error) {
	if m.failed {
		return
	}
	m.failed = true
	m.ready = false
	m.searching = false
	m.queue = nil
	if cause != nil {
		m.lastErr = cause.Error()
	} else {
		m.lastErr = "engine terminated unexpectedly"
	}
	m.logger.Error("session failed",
		zap.String("session_id", m.id.String()),
		zap.String("cause", m.lastErr))
	m.publish()
}

func (m *Manager) snapshot() analysis.Snapshot {
	return analysis.Snapshot{
		Ready:     m.ready,
		Searching: m.searching,
		FEN:       m.fen,
		Lines:     m.agg.Lines(),
		BestMove:  m.agg.BestMove(),
		RawLog:    m.rawLog.Lines(),
		LastError: m.lastErr,
	}
}

func (m *Manager) publish() {
	snap := m.snapshot()
	for ch := range m.subs {
		ch <- snap
	}
}

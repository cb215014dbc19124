package transport

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"go.uber.org/zap"
)

// Process runs a UCI engine as a child process wired over stdin/stdout
// pipes.
type Process struct {
	path string
	args []string

	cmd   *exec.Cmd
	stdin io.WriteCloser

	lines chan string

	mu      sync.Mutex
	started bool
	closed  bool
	err     error

	logger *zap.Logger
}

// NewProcess prepares a subprocess transport for the engine binary at
// path. Nothing is launched until Start.
func NewProcess(path string, args []string, logger *zap.Logger) *Process {
	return &Process{
		path:   path,
		args:   args,
		lines:  make(chan string, 64),
		logger: logger,
	}
}

// Start launches the engine binary and begins the read loop. A failure
// here is terminal for this instance: the caller gets the error once and
// must construct a new transport if it wants to retry.
func (p *Process) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("transport already started")
	}

	cmd := exec.Command(p.path, p.args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting engine %q: %w", p.path, err)
	}

	p.cmd = cmd
	p.stdin = stdin
	p.started = true

	p.logger.Info("engine process started",
		zap.String("path", p.path),
		zap.Int("pid", cmd.Process.Pid))

	go p.readLoop(stdout)

	return nil
}

// readLoop frames stdout into lines and pushes them, in order, to the line
// channel. When the engine goes away the channel is closed; any read error
// is recorded first so Err can surface it.
func (p *Process) readLoop(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		p.lines <- scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		p.setErr(fmt.Errorf("reading engine output: %w", err))
		p.logger.Error("engine read loop failed", zap.Error(err))
	}
	close(p.lines)
}

// Send writes one command line to the engine's stdin.
func (p *Process) Send(line string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return fmt.Errorf("transport not started")
	}
	if p.closed {
		return fmt.Errorf("transport terminated")
	}
	if _, err := io.WriteString(p.stdin, line+"\n"); err != nil {
		return fmt.Errorf("writing to engine: %w", err)
	}
	return nil
}

// Lines is the engine output channel. Closed when the process exits.
func (p *Process) Lines() <-chan string {
	return p.lines
}

// Err returns the fatal cause recorded before the line channel closed, or
// nil when the engine exited cleanly.
func (p *Process) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Terminate asks the engine to quit and reaps the process. Safe to call
// more than once.
func (p *Process) Terminate() error {
	p.mu.Lock()
	if !p.started || p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	_, _ = io.WriteString(p.stdin, "quit\n")
	_ = p.stdin.Close()
	p.mu.Unlock()

	if err := p.cmd.Wait(); err != nil {
		p.logger.Warn("engine exited uncleanly", zap.Error(err))
		return err
	}
	return nil
}

func (p *Process) setErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil {
		p.err = err
	}
}

package registry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tecu23/analysis-server/pkg/events"
	"github.com/tecu23/analysis-server/pkg/transport"
)

type stubTransport struct {
	lines    chan string
	startErr error
}

func newStubTransport() *stubTransport {
	return &stubTransport{lines: make(chan string, 8)}
}

func (s *stubTransport) Start() error           { return s.startErr }
func (s *stubTransport) Send(line string) error { return nil }
func (s *stubTransport) Lines() <-chan string   { return s.lines }
func (s *stubTransport) Err() error             { return nil }
func (s *stubTransport) Terminate() error       { return nil }

func newTestRegistry(startErr error) *Registry {
	factory := func() transport.Transport {
		st := newStubTransport()
		st.startErr = startErr
		return st
	}
	return New(factory, events.NewPublisher(), zap.NewNop())
}

func TestGetOrCreateReturnsExistingSession(t *testing.T) {
	r := newTestRegistry(nil)
	defer r.Shutdown()

	first, err := r.GetOrCreate("board-1", "conn-a")
	require.NoError(t, err)
	second, err := r.GetOrCreate("board-1", "conn-a")
	require.NoError(t, err)

	assert.Same(t, first, second, "one live session per key")

	other, err := r.GetOrCreate("board-2", "conn-a")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

func TestGetOrCreateSurfacesInitFailure(t *testing.T) {
	r := newTestRegistry(errors.New("no such binary"))

	_, err := r.GetOrCreate("board-1", "conn-a")
	require.Error(t, err)

	_, ok := r.Get("board-1")
	assert.False(t, ok, "failed construction must not register a session")
}

func TestRemoveClosesSession(t *testing.T) {
	r := newTestRegistry(nil)

	s, err := r.GetOrCreate("board-1", "conn-a")
	require.NoError(t, err)

	r.Remove("board-1")

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session was not closed on Remove")
	}
	_, ok := r.Get("board-1")
	assert.False(t, ok)
}

func TestRemoveByOwnerTearsDownAllOwnedSessions(t *testing.T) {
	r := newTestRegistry(nil)

	a, err := r.GetOrCreate("board-1", "conn-a")
	require.NoError(t, err)
	b, err := r.GetOrCreate("board-2", "conn-a")
	require.NoError(t, err)
	c, err := r.GetOrCreate("board-3", "conn-b")
	require.NoError(t, err)
	defer r.Shutdown()

	r.RemoveByOwner("conn-a")

	for _, s := range []interface{ Done() <-chan struct{} }{a, b} {
		select {
		case <-s.Done():
		case <-time.After(2 * time.Second):
			t.Fatal("owned session survived RemoveByOwner")
		}
	}

	select {
	case <-c.Done():
		t.Fatal("session of another owner was torn down")
	default:
	}
}

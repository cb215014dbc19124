package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStartFailsForMissingBinary(t *testing.T) {
	p := NewProcess("/nonexistent/engine-binary", nil, zap.NewNop())
	err := p.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "starting engine")
}

func TestLinesDeliveredInOrder(t *testing.T) {
	p := NewProcess("/bin/sh", []string{"-c", "echo uciok; echo readyok; echo 'bestmove e2e4'"}, zap.NewNop())
	require.NoError(t, p.Start())

	var got []string
	for line := range p.Lines() {
		got = append(got, line)
	}

	assert.Equal(t, []string{"uciok", "readyok", "bestmove e2e4"}, got)
	assert.NoError(t, p.Err())
	assert.NoError(t, p.Terminate())
}

func TestSendReachesProcessStdin(t *testing.T) {
	// cat echoes stdin back, so anything sent comes around on the line channel.
	p := NewProcess("/bin/cat", nil, zap.NewNop())
	require.NoError(t, p.Start())

	require.NoError(t, p.Send("isready"))

	select {
	case line := <-p.Lines():
		assert.Equal(t, "isready", line)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for echoed line")
	}

	_ = p.Terminate()
}

func TestSendBeforeStartAndAfterTerminate(t *testing.T) {
	p := NewProcess("/bin/cat", nil, zap.NewNop())
	require.Error(t, p.Send("uci"))

	require.NoError(t, p.Start())
	_ = p.Terminate()
	require.Error(t, p.Send("uci"))

	// Terminate is idempotent.
	assert.NoError(t, p.Terminate())
}

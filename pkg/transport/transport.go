// Package transport owns the isolated execution unit hosting a UCI engine
// and exposes it as a duplex line channel. It carries bytes, not chess
// semantics: framing into lines is the only processing done here.
package transport

// Transport is the single explicit contract the session layer requires
// from whatever hosts the engine. Start either yields a working line pipe
// or fails once, terminally; there is no probing and no retry at this
// layer. Lines delivers engine output in strict FIFO order and is closed
// exactly once, when the engine is gone, after which Err reports the fatal
// cause if there was one.
type Transport interface {
	Start() error
	Send(line string) error
	Lines() <-chan string
	Err() error
	Terminate() error
}

// Package registry guards engine session construction. One live session
// exists per key; asking again for the same key returns the existing
// instance instead of spawning a second, competing engine process. The
// registry is explicit state constructed by the application, never a
// module-level singleton.
package registry

import (
	"sync"

	"go.uber.org/zap"

	"github.com/tecu23/analysis-server/pkg/events"
	"github.com/tecu23/analysis-server/pkg/session"
	"github.com/tecu23/analysis-server/pkg/transport"
)

// TransportFactory yields a fresh, unstarted transport for each new
// session.
type TransportFactory func() transport.Transport

// Registry tracks live engine sessions by key and by owning connection.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session.Manager
	owners   map[string][]string // owner -> session keys

	factory   TransportFactory
	publisher *events.Publisher
	logger    *zap.Logger
}

// New creates an empty registry. Sessions owned by a connection are torn
// down when that connection closes.
func New(factory TransportFactory, publisher *events.Publisher, logger *zap.Logger) *Registry {
	r := &Registry{
		sessions:  make(map[string]*session.Manager),
		owners:    make(map[string][]string),
		factory:   factory,
		publisher: publisher,
		logger:    logger,
	}

	publisher.Subscribe(events.EventConnectionClosed, func(event events.Event) {
		payload, ok := event.Payload.(map[string]string)
		if !ok {
			r.logger.Error("invalid connection closed payload type")
			return
		}
		r.RemoveByOwner(payload["connection_id"])
	})

	return r
}

// GetOrCreate returns the live session for key, constructing one when none
// exists. owner associates the session with a connection for teardown.
func (r *Registry) GetOrCreate(key, owner string) (*session.Manager, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[key]; ok {
		return s, nil
	}

	s, err := session.New(r.factory(), r.logger)
	if err != nil {
		r.logger.Error("failed to create engine session",
			zap.String("key", key), zap.Error(err))
		return nil, err
	}

	r.sessions[key] = s
	if owner != "" {
		r.owners[owner] = append(r.owners[owner], key)
	}

	r.logger.Info("created engine session",
		zap.String("key", key),
		zap.String("session_id", s.ID().String()))

	r.publisher.Publish(events.Event{
		Type:      events.EventSessionCreated,
		SessionID: key,
	})

	return s, nil
}

// Get returns the live session for key, if any.
func (r *Registry) Get(key string) (*session.Manager, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[key]
	return s, ok
}

// Remove tears down the session for key.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	s, ok := r.sessions[key]
	delete(r.sessions, key)
	r.mu.Unlock()

	if !ok {
		return
	}

	s.Close()
	r.logger.Info("removed engine session", zap.String("key", key))
	r.publisher.Publish(events.Event{
		Type:      events.EventSessionTerminated,
		SessionID: key,
	})
}

// RemoveByOwner tears down every session the owner created.
func (r *Registry) RemoveByOwner(owner string) {
	r.mu.Lock()
	keys := r.owners[owner]
	delete(r.owners, owner)
	r.mu.Unlock()

	for _, key := range keys {
		r.Remove(key)
	}
}

// Shutdown tears down every live session.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*session.Manager)
	r.owners = make(map[string][]string)
	r.mu.Unlock()

	for key, s := range sessions {
		s.Close()
		r.logger.Info("shut down engine session", zap.String("key", key))
	}
}

// Package events is the process-wide publisher for coarse lifecycle
// events: session creation and teardown, connection closure. Fine-grained
// analysis state does not travel here; that is the session subscription
// stream's job.
package events

import "sync"

// EventType represents the type of event
type EventType string

// Lifecycle events published across the server.
const (
	EventSessionCreated    EventType = "SESSION_CREATED"
	EventSessionTerminated EventType = "SESSION_TERMINATED"
	EventConnectionClosed  EventType = "CONNECTION_CLOSED"
)

// Event represents one event in the system.
type Event struct {
	Type      EventType
	SessionID string // optional, empty for non-session events
	Payload   interface{}
}

// Handler is a function that processes events.
type Handler func(event Event)

// Publisher is the central event publisher.
type Publisher struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Handler
}

// NewPublisher creates a new event publisher.
func NewPublisher() *Publisher {
	return &Publisher{
		subscribers: make(map[EventType][]Handler),
	}
}

// Subscribe registers a handler for a specific event type.
func (p *Publisher) Subscribe(eventType EventType, handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers[eventType] = append(p.subscribers[eventType], handler)
}

// SubscribeAll registers a handler for every event type.
func (p *Publisher) SubscribeAll(handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers["*"] = append(p.subscribers["*"], handler)
}

// Publish broadcasts an event to its subscribers and to "all events"
// handlers. Handlers run concurrently; no ordering is guaranteed between
// subscribers.
func (p *Publisher) Publish(event Event) {
	p.mu.RLock()
	handlers := p.subscribers[event.Type]
	allHandlers := p.subscribers["*"]
	p.mu.RUnlock()

	for _, handler := range handlers {
		go handler(event)
	}
	for _, handler := range allHandlers {
		go handler(event)
	}
}

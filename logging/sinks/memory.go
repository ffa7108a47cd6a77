package sinks

import (
	"context"
	"sync"

	"duskhollow/server/logging"
)

// Memory retains events for test assertions.
type Memory struct {
	mu     sync.Mutex
	events []logging.Event
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Write(event logging.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *Memory) Close(context.Context) error { return nil }

func (m *Memory) Events() []logging.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]logging.Event(nil), m.events...)
}

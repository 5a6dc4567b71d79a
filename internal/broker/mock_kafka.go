package broker

import (
	"context"
	"errors"
	"sync"
)

// MockWriter records published events in memory for tests.
type MockWriter struct {
	mu         sync.Mutex
	Events     []Event
	ShouldFail bool // flag to simulate failures
}

// Publish appends the event to Events.
func (m *MockWriter) Publish(ctx context.Context, event Event) error {
	if m.ShouldFail {
		return errors.New("mock: publish failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

// Published returns a copy of the recorded events.
func (m *MockWriter) Published() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.Events))
	copy(out, m.Events)
	return out
}

// Close is a no-op.
func (m *MockWriter) Close() error { return nil }

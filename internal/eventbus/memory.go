package eventbus

import (
	"context"
	"sync"
)

// Memory is an in-process Bus used by tests and single-node runs. Routing
// rules are keyed by detail type, so one rule can never match more than one
// endpoint.
type Memory struct {
	mu         sync.Mutex
	routes     map[string]string // detailType -> endpoint
	deliveries map[string][]Event
}

func NewMemory() *Memory {
	return &Memory{
		routes:     make(map[string]string),
		deliveries: make(map[string][]Event),
	}
}

func (m *Memory) Bind(ctx context.Context, detailType, endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.routes[detailType] = endpoint
	return nil
}

func (m *Memory) Unbind(ctx context.Context, detailType, endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.routes[detailType] == endpoint {
		delete(m.routes, detailType)
	}
	return nil
}

// Publish delivers the event to the endpoint bound to its detail type.
// Events with no matching rule are dropped, mirroring bus semantics.
func (m *Memory) Publish(ctx context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	endpoint, ok := m.routes[event.DetailType]
	if !ok {
		return nil
	}
	m.deliveries[endpoint] = append(m.deliveries[endpoint], event)
	return nil
}

// Deliveries returns the events delivered to an endpoint in publish order.
// Test helper.
func (m *Memory) Deliveries(endpoint string) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Event, len(m.deliveries[endpoint]))
	copy(out, m.deliveries[endpoint])
	return out
}

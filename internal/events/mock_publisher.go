package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/NomadCrew/crewtrip-backend/types"
)

// MockPublisher records events in memory and fans them out to local
// subscribers. Tests use it in place of RedisPublisher.
type MockPublisher struct {
	mu            sync.RWMutex
	events        map[int64][]types.Event
	subscriptions map[string]chan types.Event
	closed        bool
}

var _ types.EventPublisher = (*MockPublisher)(nil)

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		events:        make(map[int64][]types.Event),
		subscriptions: make(map[string]chan types.Event),
	}
}

func (m *MockPublisher) Publish(ctx context.Context, tripID int64, event types.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("publisher is closed")
	}
	m.events[tripID] = append(m.events[tripID], event)

	prefix := fmt.Sprintf("%d:", tripID)
	for key, ch := range m.subscriptions {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			select {
			case ch <- event:
			default:
			}
		}
	}
	return nil
}

func (m *MockPublisher) Subscribe(ctx context.Context, tripID int64, userID int64, filters ...types.EventType) (<-chan types.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan types.Event, 16)
	m.subscriptions[subscriptionKey(tripID, userID)] = ch
	return ch, nil
}

func (m *MockPublisher) Unsubscribe(ctx context.Context, tripID int64, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := subscriptionKey(tripID, userID)
	ch, ok := m.subscriptions[key]
	if !ok {
		return fmt.Errorf("no subscription found for trip %d and user %d", tripID, userID)
	}
	close(ch)
	delete(m.subscriptions, key)
	return nil
}

// Events returns a copy of everything published for tripID.
func (m *MockPublisher) Events(tripID int64) []types.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.Event(nil), m.events[tripID]...)
}

// Types lists the event types published for tripID in order.
func (m *MockPublisher) Types(tripID int64) []types.EventType {
	var out []types.EventType
	for _, e := range m.Events(tripID) {
		out = append(out, e.Type)
	}
	return out
}

// Close makes further publishes fail.
func (m *MockPublisher) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

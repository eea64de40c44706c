package mqtt

import (
	"fmt"
	"sync"

	"github.com/retailops/fleetalloc/core/events"
	corepublisher "github.com/retailops/fleetalloc/core/publisher"
)

// Publisher mirrors the core publisher interface.
type Publisher = corepublisher.Publisher

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	Assignments []events.AssignmentEvent
	Statuses    []events.RequestStatusEvent
	FailStores  map[string]bool
	mu          sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{FailStores: make(map[string]bool)}
}

// PublishAssignment records the event or returns an error if configured to
// fail for the store.
func (m *MockPublisher) PublishAssignment(ev events.AssignmentEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailStores[ev.StoreID] {
		return fmt.Errorf("publish failed")
	}
	m.Assignments = append(m.Assignments, ev)
	return nil
}

// PublishStatus records the event or returns an error if configured to fail
// for the store.
func (m *MockPublisher) PublishStatus(ev events.RequestStatusEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailStores[ev.StoreID] {
		return fmt.Errorf("publish failed")
	}
	m.Statuses = append(m.Statuses, ev)
	return nil
}

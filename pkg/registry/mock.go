package registry

import (
	"context"
	"sync"
)

var _ Announcer = &MockAnnouncer{}

// MockAnnouncer keeps announcements in memory for tests and etcd-less runs.
type MockAnnouncer struct {
	mu      sync.RWMutex
	current *Instance
	history []Instance
	closed  bool
}

func NewMockAnnouncer() *MockAnnouncer {
	return &MockAnnouncer{}
}

func (m *MockAnnouncer) Announce(_ context.Context, inst Instance) error {
	if err := inst.validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = &inst
	m.history = append(m.history, inst)
	return nil
}

func (m *MockAnnouncer) Withdraw(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ErrNotAnnounced
	}
	m.current = nil
	return nil
}

func (m *MockAnnouncer) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Current returns the live announcement, if any.
func (m *MockAnnouncer) Current() (Instance, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Instance{}, false
	}
	return *m.current, true
}

// History returns every announcement made, in order.
func (m *MockAnnouncer) History() []Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Instance(nil), m.history...)
}

func (m *MockAnnouncer) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

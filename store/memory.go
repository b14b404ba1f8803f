package store

import (
	"sync"

	"github.com/luxfi/membership/membership"
)

// InMemory is a Store backed by a process-local variable, used by tests
// and by drivers that don't need real persistence.
type InMemory struct {
	mu   sync.Mutex
	snap membership.Snapshot
	has  bool
}

// NewInMemory creates an empty InMemory store.
func NewInMemory() *InMemory {
	return &InMemory{}
}

// Save stores snap, overwriting whatever was saved before.
func (m *InMemory) Save(snap membership.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap
	m.has = true
	return nil
}

// Load returns the last saved snapshot, or ok == false if nothing has
// been saved yet.
func (m *InMemory) Load() (membership.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, m.has, nil
}

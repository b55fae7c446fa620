package helpers

import (
	"context"
	"sync"

	"github.com/kode4food/larder/internal/vegan"
)

// MockVegan is a simple mock implementation of vegan.Checker for testing.
// Ingredients are vegan unless marked otherwise
type MockVegan struct {
	verdicts map[string]bool
	err      error
	lookups  []string
	mu       sync.Mutex
}

var _ vegan.Checker = (*MockVegan)(nil)

// NewMockVegan creates a mock lookup that accepts every ingredient
func NewMockVegan() *MockVegan {
	return &MockVegan{
		verdicts: map[string]bool{},
	}
}

// IsVegan records the lookup and returns the configured verdict or error
func (m *MockVegan) IsVegan(_ context.Context, ingredient string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := vegan.Normalize(ingredient)
	m.lookups = append(m.lookups, key)
	if m.err != nil {
		return false, m.err
	}
	if v, ok := m.verdicts[key]; ok {
		return v, nil
	}
	return true, nil
}

// SetNotVegan marks ingredients as rejected
func (m *MockVegan) SetNotVegan(ingredients ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, in := range ingredients {
		m.verdicts[vegan.Normalize(in)] = false
	}
}

// SetError makes every lookup fail with err; nil clears it
func (m *MockVegan) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Lookups returns the normalized ingredient names looked up so far
func (m *MockVegan) Lookups() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lookups...)
}

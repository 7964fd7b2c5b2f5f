package league

import (
	"context"
	"slices"
	"sync"
)

// MockStore is a mock implementation of Store for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	LoadFunc  func(ctx context.Context) (*State, []HistoryEntry, error)
	SaveFunc  func(ctx context.Context, state *State, appended []HistoryEntry) error
	ResetFunc func(ctx context.Context) error

	// Call records
	LoadCalled  bool
	SaveCalls   []SaveCall
	ResetCalled bool
}

// SaveCall holds the arguments for a call to Save.
type SaveCall struct {
	State    *State
	Appended []HistoryEntry
}

func NewMockStore() *MockStore {
	return &MockStore{}
}

// ResetCalls clears all call records.
func (m *MockStore) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadCalled = false
	m.SaveCalls = nil
	m.ResetCalled = false
}

// Load returns an empty session unless LoadFunc is set.
func (m *MockStore) Load(ctx context.Context) (*State, []HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadCalled = true
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return NewState(), nil, nil
}

// Save records a copy of the state and executes the mock function if provided.
func (m *MockStore) Save(ctx context.Context, state *State, appended []HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveFunc != nil {
		if err := m.SaveFunc(ctx, state, appended); err != nil {
			return err
		}
	}
	m.SaveCalls = append(m.SaveCalls, SaveCall{State: state.Clone(), Appended: slices.Clone(appended)})
	return nil
}

func (m *MockStore) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResetCalled = true
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx)
	}
	return nil
}

// LastSaved returns the most recently saved state, or nil.
func (m *MockStore) LastSaved() *State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.SaveCalls) == 0 {
		return nil
	}
	return m.SaveCalls[len(m.SaveCalls)-1].State
}

// SaveCount returns how many times Save succeeded.
func (m *MockStore) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SaveCalls)
}

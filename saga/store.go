package saga

import "sync"

// Store is the external state holder the interpreter calls into. The
// interpreter never mutates state directly, only through Dispatch, and
// GetState must observe the state as of the most recent completed Dispatch.
type Store interface {
	GetState() any
	Dispatch(Action) Action
}

// Reducer folds an action into a state, returning the next state. It must
// treat both arguments as immutable.
type Reducer func(state any, action Action) any

// ReducerStore is a small reference Store backed by a reducer. It exists
// for examples and tests; production callers typically bring their own
// Store implementation.
type ReducerStore struct {
	mu      sync.RWMutex
	state   any
	reducer Reducer
}

// NewReducerStore returns a store holding initial and folding every
// dispatched action through reduce.
func NewReducerStore(initial any, reduce Reducer) *ReducerStore {
	return &ReducerStore{state: initial, reducer: reduce}
}

func (s *ReducerStore) GetState() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *ReducerStore) Dispatch(a Action) Action {
	s.mu.Lock()
	s.state = s.reducer(s.state, a)
	s.mu.Unlock()
	return a
}

// Package store holds the in-memory task collection.
//
// The collection changes only through actions. Reduce is the pure transition
// function; Store wraps it with locking and change notification so the
// presentation layer can read the current tasks and re-render on change.
package store

import (
	"sync"

	"taskstream/internal/service"
)

// State is the store's value: the ordered task collection.
type State struct {
	Tasks []service.Task
}

// Reduce returns the state that results from applying action to state.
// It has no side effects and never modifies the slice held by state.
// A nil action returns state unchanged.
func Reduce(state State, action Action) State {
	if action == nil {
		return state
	}
	return State{Tasks: action.apply(state.Tasks)}
}

// Listener is called after every dispatch with the new state.
// A listener must not dispatch; it runs while the store holds its notify lock.
type Listener func(State)

// Store is the single authoritative projection of the task collection.
// The zero value is an empty store ready to use.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners []*listener

	// notifyMu keeps listener calls in dispatch order.
	notifyMu sync.Mutex
}

type listener struct {
	fn Listener
}

// New creates a store holding the given tasks.
func New(tasks ...service.Task) *Store {
	return &Store{state: State{Tasks: clone(tasks)}}
}

// Dispatch applies the action and notifies listeners in registration order.
func (s *Store) Dispatch(action Action) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.state = Reduce(s.state, action)
	state := s.snapshotLocked()
	listeners := make([]*listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(state)
	}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Tasks returns a copy of the current task collection.
func (s *Store) Tasks() []service.Task {
	return s.State().Tasks
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.Tasks)
}

// Find returns the first task with the given ID.
func (s *Store) Find(id string) (service.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.state.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// Subscribe registers fn to be called after every dispatch.
// The returned function removes the registration.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	l := &listener{fn: fn}

	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, existing := range s.listeners {
				if existing == l {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) snapshotLocked() State {
	return State{Tasks: clone(s.state.Tasks)}
}

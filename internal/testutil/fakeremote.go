// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"strconv"
	"sync"

	"taskstream/internal/service"
)

// FakeRemote is an in-memory implementation of service.Remote for testing.
// Errors are returned wrapped in *service.OpError like a real backend would.
type FakeRemote struct {
	mu     sync.RWMutex
	tasks  []service.Task
	nextID int

	// Error injection for testing
	FetchAllErr error
	CreateErr   error
	UpdateErr   error
	RemoveErr   error

	// Call counters
	FetchAllCalls int
	CreateCalls   int
	UpdateCalls   int
	RemoveCalls   int
}

var _ service.Remote = (*FakeRemote)(nil)

// NewFakeRemote creates an empty FakeRemote.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{nextID: 1}
}

// AddTask seeds a task with the given ID.
func (f *FakeRemote) AddTask(id, title, description string, status service.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.Task{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      status,
	})
}

// Snapshot returns the tasks held by the fake.
func (f *FakeRemote) Snapshot() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// FetchAll implements service.Remote.
func (f *FakeRemote) FetchAll(ctx context.Context) ([]service.Task, error) {
	f.mu.Lock()
	f.FetchAllCalls++
	f.mu.Unlock()
	if f.FetchAllErr != nil {
		return nil, service.NewOpError(service.OpFetch, f.FetchAllErr)
	}
	return f.Snapshot(), nil
}

// Create implements service.Remote. IDs are "t1", "t2", ... skipping seeded ones.
func (f *FakeRemote) Create(ctx context.Context, draft service.Draft) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls++
	if f.CreateErr != nil {
		return service.Task{}, service.NewOpError(service.OpCreate, f.CreateErr)
	}

	id := f.newIDLocked()
	task := service.Task{
		ID:          id,
		Title:       draft.Title,
		Description: draft.Description,
		Status:      service.StatusTodo,
	}
	f.tasks = append(f.tasks, task)
	return task, nil
}

// Update implements service.Remote.
func (f *FakeRemote) Update(ctx context.Context, task service.Task) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	if f.UpdateErr != nil {
		return service.Task{}, service.NewOpError(service.OpUpdate, f.UpdateErr)
	}

	for i, t := range f.tasks {
		if t.ID == task.ID {
			f.tasks[i] = task
			return task, nil
		}
	}
	return service.Task{}, service.NewOpError(service.OpUpdate, service.ErrNotFound)
}

// Remove implements service.Remote.
func (f *FakeRemote) Remove(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RemoveCalls++
	if f.RemoveErr != nil {
		return service.NewOpError(service.OpRemove, f.RemoveErr)
	}

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return service.NewOpError(service.OpRemove, service.ErrNotFound)
}

func (f *FakeRemote) newIDLocked() string {
	for {
		id := "t" + strconv.Itoa(f.nextID)
		f.nextID++
		taken := false
		for _, t := range f.tasks {
			if t.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}

package store

import "taskstream/internal/service"

// Action is a named state transition. The set of actions is closed:
// Load, Create, Update and Delete are the only implementations.
type Action interface {
	apply(tasks []service.Task) []service.Task
	String() string
}

// Load replaces the whole collection.
type Load struct {
	Tasks []service.Task
}

// Create appends a task to the end of the collection.
// An existing task with the same ID is not replaced.
type Create struct {
	Task service.Task
}

// Update replaces the task with the same ID in place.
// The collection is unchanged if no task matches.
type Update struct {
	Task service.Task
}

// Delete removes the task with the given ID, keeping the order of the rest.
type Delete struct {
	ID string
}

func (a Load) String() string   { return "load" }
func (a Create) String() string { return "create" }
func (a Update) String() string { return "update" }
func (a Delete) String() string { return "delete" }

func (a Load) apply(_ []service.Task) []service.Task {
	return clone(a.Tasks)
}

func (a Create) apply(tasks []service.Task) []service.Task {
	next := make([]service.Task, 0, len(tasks)+1)
	next = append(next, tasks...)
	return append(next, a.Task)
}

func (a Update) apply(tasks []service.Task) []service.Task {
	for i, t := range tasks {
		if t.ID != a.Task.ID {
			continue
		}
		next := clone(tasks)
		next[i] = a.Task
		return next
	}
	return tasks
}

func (a Delete) apply(tasks []service.Task) []service.Task {
	found := false
	for _, t := range tasks {
		if t.ID == a.ID {
			found = true
			break
		}
	}
	if !found {
		return tasks
	}

	next := make([]service.Task, 0, len(tasks)-1)
	for _, t := range tasks {
		if t.ID != a.ID {
			next = append(next, t)
		}
	}
	return next
}

func clone(tasks []service.Task) []service.Task {
	if tasks == nil {
		return []service.Task{}
	}
	out := make([]service.Task, len(tasks))
	copy(out, tasks)
	return out
}

package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Status is the completion state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// ErrInvalidStatus is returned when a status string is not one of the known values.
var ErrInvalidStatus = errors.New("invalid status")

// Statuses returns all valid statuses in workflow order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone}
}

// ParseStatus parses a status name, case-insensitive and trimmed.
// Accepts "in_progress" and "inprogress" as spellings of in-progress.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo":
		return StatusTodo, nil
	case "in-progress", "in_progress", "inprogress":
		return StatusInProgress, nil
	case "done":
		return StatusDone, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task represents a single task item.
// ID is assigned by the remote store and never invented locally.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// UnmarshalJSON decodes a task. Stores that still report completion as a
// boolean "completed" field are mapped onto the status enumeration; a missing
// status means todo.
func (t *Task) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          json.RawMessage `json:"id"`
		Title       string          `json:"title"`
		Description string          `json:"description"`
		Status      string          `json:"status"`
		Completed   *bool           `json:"completed"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}

	status := StatusTodo
	switch {
	case raw.Status != "":
		status, err = ParseStatus(raw.Status)
		if err != nil {
			return err
		}
	case raw.Completed != nil && *raw.Completed:
		status = StatusDone
	}

	*t = Task{
		ID:          id,
		Title:       raw.Title,
		Description: raw.Description,
		Status:      status,
	}
	return nil
}

// decodeID accepts string and numeric ids; numeric ids are kept in their
// decimal text form.
func decodeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("invalid task id: %s", raw)
	}
	return n.String(), nil
}

// Draft is the payload of a create request.
// It has no ID and no status; both are assigned by the remote store.
type Draft struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
}

// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"context"
	"errors"
	"fmt"
)

// Remote defines the synchronization functions against the remote task store.
// Every call issues exactly one request. Implementations report failures as
// *OpError and never touch local state.
// Commands never import a backend directly.
type Remote interface {
	// FetchAll returns the whole task collection in store order.
	FetchAll(ctx context.Context) ([]Task, error)

	// Create asks the store to create a task from the draft and returns the
	// task the store assigned, id and default status included.
	Create(ctx context.Context, draft Draft) (Task, error)

	// Update replaces the task with the same ID and returns the store's
	// resulting representation.
	Update(ctx context.Context, task Task) (Task, error)

	// Remove deletes a task by ID.
	Remove(ctx context.Context, id string) error
}

// Operation names carried by OpError.
const (
	OpFetch  = "fetch"
	OpCreate = "create"
	OpUpdate = "update"
	OpRemove = "remove"
)

// ErrNotFound is returned when a task does not exist.
var ErrNotFound = errors.New("not found")

// OpError reports a failed remote operation.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s task: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// NewOpError wraps err as a failure of op. A nil err yields nil.
func NewOpError(op string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		return err
	}
	return &OpError{Op: op, Err: err}
}

// StatusError is a non-2xx answer from the remote store.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Is lets a 404 match ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == 404
}

// Package tasksync keeps the local task store in step with the remote store.
//
// A Controller is what the presentation layer talks to. Each intent makes one
// remote call and applies the store's answer to the local store only when the
// call succeeds; failures are logged and returned, and local state is left as
// it was.
package tasksync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"taskstream/internal/service"
	"taskstream/internal/store"
)

// ErrEmptyDescription is returned by Create when the draft has no description.
var ErrEmptyDescription = errors.New("description required")

// Controller exposes the intents of the presentation layer.
type Controller struct {
	remote service.Remote
	store  *store.Store
	logger *log.Logger
	locks  *keyLock

	bootOnce sync.Once
	bootErr  error
}

// New creates a controller. A nil store gets a fresh empty one; a nil logger
// discards output.
func New(remote service.Remote, st *store.Store, logger *log.Logger) *Controller {
	if st == nil {
		st = store.New()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{
		remote: remote,
		store:  st,
		logger: logger,
		locks:  newKeyLock(),
	}
}

// Store returns the store the controller applies results to.
func (c *Controller) Store() *store.Store { return c.store }

// Tasks returns the current task collection.
func (c *Controller) Tasks() []service.Task { return c.store.Tasks() }

// Subscribe registers a listener on the underlying store.
func (c *Controller) Subscribe(fn store.Listener) (unsubscribe func()) {
	return c.store.Subscribe(fn)
}

// Bootstrap fetches the collection and loads it into the store.
// Only the first call reaches the remote store; later calls return its result.
// On failure the store keeps whatever it held before.
func (c *Controller) Bootstrap(ctx context.Context) error {
	c.bootOnce.Do(func() {
		start := time.Now()
		tasks, err := c.remote.FetchAll(ctx)
		if err != nil {
			c.bootErr = c.fail(service.OpFetch, err)
			return
		}
		c.store.Dispatch(store.Load{Tasks: tasks})
		c.logger.Debug("tasks loaded", "count", len(tasks), "took", time.Since(start))
	})
	return c.bootErr
}

// Create asks the remote store to create a task and appends the task it returns.
func (c *Controller) Create(ctx context.Context, draft service.Draft) (service.Task, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	if strings.TrimSpace(draft.Description) == "" {
		return service.Task{}, ErrEmptyDescription
	}

	created, err := c.remote.Create(ctx, draft)
	if err != nil {
		return service.Task{}, c.fail(service.OpCreate, err)
	}
	c.store.Dispatch(store.Create{Task: created})
	c.logger.Debug("task created", "id", created.ID)
	return created, nil
}

// SetStatus changes the status of a task already in the store.
func (c *Controller) SetStatus(ctx context.Context, id string, status service.Status) (service.Task, error) {
	if !status.Valid() {
		return service.Task{}, fmt.Errorf("%w: %q", service.ErrInvalidStatus, status)
	}

	unlock := c.locks.Lock(id)
	defer unlock()

	current, ok := c.store.Find(id)
	if !ok {
		return service.Task{}, fmt.Errorf("task %s: %w", id, service.ErrNotFound)
	}
	current.Status = status
	return c.update(ctx, current)
}

// Update replaces a task in the remote store and applies the result.
func (c *Controller) Update(ctx context.Context, task service.Task) (service.Task, error) {
	if !task.Status.Valid() {
		return service.Task{}, fmt.Errorf("%w: %q", service.ErrInvalidStatus, task.Status)
	}

	unlock := c.locks.Lock(task.ID)
	defer unlock()

	return c.update(ctx, task)
}

// Delete removes a task from the remote store, then from the local one.
func (c *Controller) Delete(ctx context.Context, id string) error {
	unlock := c.locks.Lock(id)
	defer unlock()

	if err := c.remote.Remove(ctx, id); err != nil {
		return c.fail(service.OpRemove, err)
	}
	c.store.Dispatch(store.Delete{ID: id})
	c.logger.Debug("task deleted", "id", id)
	return nil
}

// update must be called with the task's key locked.
func (c *Controller) update(ctx context.Context, task service.Task) (service.Task, error) {
	updated, err := c.remote.Update(ctx, task)
	if err != nil {
		return service.Task{}, c.fail(service.OpUpdate, err)
	}
	c.store.Dispatch(store.Update{Task: updated})
	c.logger.Debug("task updated", "id", updated.ID, "status", updated.Status)
	return updated, nil
}

// fail logs a remote failure and returns it as an *service.OpError.
func (c *Controller) fail(op string, err error) error {
	err = service.NewOpError(op, err)
	c.logger.Error("remote operation failed", "op", op, "error", err)
	return err
}

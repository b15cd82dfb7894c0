package tasksync_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskstream/internal/backend/rest"
	"taskstream/internal/service"
	"taskstream/internal/store"
	"taskstream/internal/tasksync"
	"taskstream/internal/testutil"
)

func newController(t *testing.T, remote service.Remote) (*tasksync.Controller, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := log.New(&logs)
	return tasksync.New(remote, store.New(), logger), &logs
}

func TestBootstrap_LoadsOnce(t *testing.T) {
	remote := testutil.NewFakeRemote()
	remote.AddTask("1", "", "x", service.StatusTodo)
	remote.AddTask("2", "", "y", service.StatusDone)
	ctl, _ := newController(t, remote)

	require.NoError(t, ctl.Bootstrap(context.Background()))
	require.NoError(t, ctl.Bootstrap(context.Background()))

	assert.Equal(t, 1, remote.FetchAllCalls)
	assert.Equal(t, remote.Snapshot(), ctl.Tasks())
}

func TestBootstrap_FailureLeavesStoreUntouched(t *testing.T) {
	remote := testutil.NewFakeRemote()
	remote.FetchAllErr = errors.New("connection refused")
	st := store.New(service.Task{ID: "keep", Description: "local"})
	var logs bytes.Buffer
	ctl := tasksync.New(remote, st, log.New(&logs))

	err := ctl.Bootstrap(context.Background())

	var opErr *service.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, service.OpFetch, opErr.Op)
	assert.Equal(t, []service.Task{{ID: "keep", Description: "local"}}, ctl.Tasks())
	assert.Contains(t, logs.String(), "remote operation failed")
}

func TestCreate_AppliesServerTask(t *testing.T) {
	remote := testutil.NewFakeRemote()
	ctl, _ := newController(t, remote)
	require.NoError(t, ctl.Bootstrap(context.Background()))

	var notified []store.State
	ctl.Subscribe(func(s store.State) { notified = append(notified, s) })

	created, err := ctl.Create(context.Background(), service.Draft{Title: " Groceries ", Description: "milk"})
	require.NoError(t, err)

	assert.Equal(t, "t1", created.ID)
	assert.Equal(t, "Groceries", created.Title)
	assert.Equal(t, service.StatusTodo, created.Status)
	assert.Equal(t, []service.Task{created}, ctl.Tasks())
	require.Len(t, notified, 1)
	assert.Equal(t, []service.Task{created}, notified[0].Tasks)
}

func TestCreate_EmptyDescription(t *testing.T) {
	remote := testutil.NewFakeRemote()
	ctl, _ := newController(t, remote)

	_, err := ctl.Create(context.Background(), service.Draft{Title: "t", Description: "   "})

	assert.ErrorIs(t, err, tasksync.ErrEmptyDescription)
	assert.Equal(t, 0, remote.CreateCalls)
}

// A create answered with HTTP 500 must not dispatch anything and must return
// the failure to the caller.
func TestCreate_ServerErrorDispatchesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	remote, err := rest.NewWithHTTPClient(srv.URL, time.Second, srv.Client())
	require.NoError(t, err)
	ctl, logs := newController(t, remote)

	dispatched := 0
	ctl.Subscribe(func(store.State) { dispatched++ })

	_, err = ctl.Create(context.Background(), service.Draft{Description: "y"})

	var opErr *service.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, service.OpCreate, opErr.Op)
	var statusErr *service.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Equal(t, 0, dispatched)
	assert.Empty(t, ctl.Tasks())
	assert.Contains(t, logs.String(), "create")
}

func TestSetStatus(t *testing.T) {
	remote := testutil.NewFakeRemote()
	remote.AddTask("1", "", "x", service.StatusTodo)
	remote.AddTask("2", "", "y", service.StatusTodo)
	ctl, _ := newController(t, remote)
	require.NoError(t, ctl.Bootstrap(context.Background()))

	updated, err := ctl.SetStatus(context.Background(), "1", service.StatusDone)
	require.NoError(t, err)

	assert.Equal(t, service.StatusDone, updated.Status)
	tasks := ctl.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "1", tasks[0].ID)
	assert.Equal(t, service.StatusDone, tasks[0].Status)
	assert.Equal(t, service.StatusTodo, tasks[1].Status)
	assert.Equal(t, service.StatusDone, remote.Snapshot()[0].Status)
}

func TestSetStatus_UnknownTask(t *testing.T) {
	remote := testutil.NewFakeRemote()
	ctl, _ := newController(t, remote)

	_, err := ctl.SetStatus(context.Background(), "nope", service.StatusDone)

	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Equal(t, 0, remote.UpdateCalls)
}

func TestSetStatus_InvalidStatus(t *testing.T) {
	remote := testutil.NewFakeRemote()
	ctl, _ := newController(t, remote)

	_, err := ctl.SetStatus(context.Background(), "1", service.Status("blocked"))

	assert.ErrorIs(t, err, service.ErrInvalidStatus)
}

func TestUpdate_FailureKeepsPriorState(t *testing.T) {
	remote := testutil.NewFakeRemote()
	remote.AddTask("1", "", "x", service.StatusTodo)
	ctl, logs := newController(t, remote)
	require.NoError(t, ctl.Bootstrap(context.Background()))
	before := ctl.Tasks()

	remote.UpdateErr = errors.New("unavailable")
	_, err := ctl.SetStatus(context.Background(), "1", service.StatusDone)

	var opErr *service.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, service.OpUpdate, opErr.Op)
	assert.Equal(t, before, ctl.Tasks())
	assert.Contains(t, logs.String(), "op=update")
	assert.Contains(t, logs.String(), "error=")
	assert.Contains(t, logs.String(), "unavailable")
}

func TestDelete(t *testing.T) {
	remote := testutil.NewFakeRemote()
	remote.AddTask("1", "", "x", service.StatusTodo)
	remote.AddTask("2", "", "y", service.StatusTodo)
	ctl, _ := newController(t, remote)
	require.NoError(t, ctl.Bootstrap(context.Background()))

	require.NoError(t, ctl.Delete(context.Background(), "1"))

	tasks := ctl.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "2", tasks[0].ID)
}

func TestDelete_FailureNotApplied(t *testing.T) {
	remote := testutil.NewFakeRemote()
	remote.AddTask("1", "", "x", service.StatusTodo)
	ctl, _ := newController(t, remote)
	require.NoError(t, ctl.Bootstrap(context.Background()))

	remote.RemoveErr = errors.New("forbidden")
	err := ctl.Delete(context.Background(), "1")

	var opErr *service.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, service.OpRemove, opErr.Op)
	assert.Len(t, ctl.Tasks(), 1)
}

// orderedRemote answers the first update for an id slowly, so an unserialized
// second update would finish first.
type orderedRemote struct {
	*testutil.FakeRemote
	calls    atomic.Int32
	inFlight atomic.Int32
	overlap  atomic.Bool
	started  chan struct{}
}

func (r *orderedRemote) Update(ctx context.Context, task service.Task) (service.Task, error) {
	if r.inFlight.Add(1) > 1 {
		r.overlap.Store(true)
	}
	defer r.inFlight.Add(-1)
	if r.calls.Add(1) == 1 {
		close(r.started)
		time.Sleep(50 * time.Millisecond)
	}
	return r.FakeRemote.Update(ctx, task)
}

func TestUpdate_SerializedPerID(t *testing.T) {
	fake := testutil.NewFakeRemote()
	fake.AddTask("1", "", "x", service.StatusTodo)
	remote := &orderedRemote{FakeRemote: fake, started: make(chan struct{})}
	ctl, _ := newController(t, remote)
	require.NoError(t, ctl.Bootstrap(context.Background()))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = ctl.SetStatus(context.Background(), "1", service.StatusInProgress)
	}()
	<-remote.started
	_, err := ctl.SetStatus(context.Background(), "1", service.StatusDone)
	require.NoError(t, err)
	wg.Wait()

	assert.False(t, remote.overlap.Load())
	assert.Equal(t, service.StatusDone, ctl.Tasks()[0].Status)
}

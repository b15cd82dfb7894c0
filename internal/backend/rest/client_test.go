package rest_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskstream/internal/backend/rest"
	"taskstream/internal/config"
	"taskstream/internal/server"
	"taskstream/internal/service"
)

func newClient(t *testing.T, h http.Handler) *rest.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := rest.NewWithHTTPClient(srv.URL, time.Second, srv.Client())
	require.NoError(t, err)
	return c
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return strconv.Itoa(n)
	}
}

func TestClient_RoundTripAgainstServer(t *testing.T) {
	s := server.New(server.WithIDGenerator(sequentialIDs()))
	c := newClient(t, s.Handler())
	ctx := context.Background()

	tasks, err := c.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.NotNil(t, tasks)

	created, err := c.Create(ctx, service.Draft{Title: "Shop", Description: "milk"})
	require.NoError(t, err)
	assert.Equal(t, service.Task{ID: "1", Title: "Shop", Description: "milk", Status: service.StatusTodo}, created)

	created.Status = service.StatusDone
	updated, err := c.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, created, updated)

	tasks, err = c.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []service.Task{updated}, tasks)

	require.NoError(t, c.Remove(ctx, "1"))
	assert.Empty(t, s.Tasks())
}

func TestClient_ErrorsAreOpErrors(t *testing.T) {
	c := newClient(t, server.New().Handler())
	ctx := context.Background()

	_, err := c.Update(ctx, service.Task{ID: "missing", Description: "x", Status: service.StatusTodo})
	var opErr *service.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, service.OpUpdate, opErr.Op)
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = c.Remove(ctx, "missing")
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, service.OpRemove, opErr.Op)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = c.Create(ctx, service.Draft{Description: ""})
	require.ErrorAs(t, err, &opErr)
	var statusErr *service.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.Code)
}

func TestClient_RequestShape(t *testing.T) {
	var gotMethod, gotPath, gotBody, gotType string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusNoContent)
	})
	c := newClient(t, h)

	task := service.Task{ID: "7", Description: "x", Status: service.StatusInProgress}
	got, err := c.Update(context.Background(), task)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/tasks/7", gotPath)
	assert.Equal(t, "application/json", gotType)
	assert.JSONEq(t, `{"id":"7","description":"x","status":"in-progress"}`, gotBody)
	// empty body: the task as sent is the result
	assert.Equal(t, task, got)
}

func TestClient_CreateSendsDraftOnly(t *testing.T) {
	var gotBody string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":42,"description":"y","completed":true}`))
	})
	c := newClient(t, h)

	got, err := c.Create(context.Background(), service.Draft{Description: "y"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"description":"y"}`, gotBody)
	assert.Equal(t, service.Task{ID: "42", Description: "y", Status: service.StatusDone}, got)
}

func TestClient_CreateWithoutIDFails(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	c := newClient(t, h)

	_, err := c.Create(context.Background(), service.Draft{Description: "y"})

	var opErr *service.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, service.OpCreate, opErr.Op)
}

func TestClient_DecodeErrorIsReported(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	})
	c := newClient(t, h)

	_, err := c.FetchAll(context.Background())

	var opErr *service.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, service.OpFetch, opErr.Op)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c, err := rest.NewWithHTTPClient(srv.URL, 50*time.Millisecond, srv.Client())
	require.NoError(t, err)

	_, err = c.FetchAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestClient_BaseURLWithPath(t *testing.T) {
	var gotPath string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[]`))
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := rest.NewWithHTTPClient(srv.URL+"/api/", time.Second, srv.Client())
	require.NoError(t, err)
	_, err = c.FetchAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/api/tasks", gotPath)
}

func TestNew_InvalidEndpoint(t *testing.T) {
	for _, endpoint := range []string{"", "ftp://example.com", "://bad"} {
		_, err := rest.New(&config.Config{APIEndpoint: endpoint, Timeout: time.Second})
		assert.Error(t, err, endpoint)
	}
}

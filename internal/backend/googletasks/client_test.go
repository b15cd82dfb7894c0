package googletasks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"taskstream/internal/service"
)

// fakeAPI mimics the part of the Google Tasks REST API the client uses.
type fakeAPI struct {
	mu      sync.Mutex
	items   []map[string]any
	lastRaw map[string]any
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	const prefix = "/tasks/v1/lists/work/tasks"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.Error(w, `{"error":{"code":404,"message":"list not found"}}`, http.StatusNotFound)
		return
	}
	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, prefix), "/")

	switch {
	case r.Method == http.MethodGet && id == "":
		writeJSON(w, map[string]any{"kind": "tasks#tasks", "items": f.items})
	case r.Method == http.MethodPost && id == "":
		body := decode(r)
		body["id"] = "g1"
		body["status"] = "needsAction"
		f.items = append(f.items, body)
		writeJSON(w, body)
	case r.Method == http.MethodPatch:
		body := decode(r)
		f.lastRaw = body
		for _, item := range f.items {
			if item["id"] == id {
				for k, v := range body {
					item[k] = v
				}
				writeJSON(w, item)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"task not found"}}`))
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func decode(r *http.Request) map[string]any {
	data, _ := io.ReadAll(r.Body)
	out := map[string]any{}
	_ = json.Unmarshal(data, &out)
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := NewWithHTTPClient(context.Background(), srv.Client(), "work", option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return c
}

func TestFetchAll_MapsStatus(t *testing.T) {
	api := &fakeAPI{items: []map[string]any{
		{"id": "a", "title": "Buy milk", "status": "needsAction"},
		{"id": "b", "title": "Call", "notes": "call the bank", "status": "completed"},
	}}
	c := newTestClient(t, api)

	got, err := c.FetchAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []service.Task{
		{ID: "a", Title: "Buy milk", Description: "Buy milk", Status: service.StatusTodo},
		{ID: "b", Title: "Call", Description: "call the bank", Status: service.StatusDone},
	}, got)
}

func TestCreate_UsesDescriptionAsTitleFallback(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)

	got, err := c.Create(context.Background(), service.Draft{Description: "water plants"})
	require.NoError(t, err)

	assert.Equal(t, service.Task{ID: "g1", Title: "water plants", Description: "water plants", Status: service.StatusTodo}, got)
}

func TestUpdate_Done(t *testing.T) {
	api := &fakeAPI{items: []map[string]any{{"id": "a", "title": "x", "status": "needsAction"}}}
	c := newTestClient(t, api)

	got, err := c.Update(context.Background(), service.Task{ID: "a", Title: "x", Description: "x", Status: service.StatusDone})
	require.NoError(t, err)

	assert.Equal(t, service.StatusDone, got.Status)
	assert.Equal(t, "completed", api.lastRaw["status"])
}

func TestUpdate_ReopenClearsCompleted(t *testing.T) {
	api := &fakeAPI{items: []map[string]any{{"id": "a", "title": "x", "status": "completed"}}}
	c := newTestClient(t, api)

	got, err := c.Update(context.Background(), service.Task{ID: "a", Title: "x", Description: "x", Status: service.StatusTodo})
	require.NoError(t, err)

	assert.Equal(t, service.StatusTodo, got.Status)
	completed, present := api.lastRaw["completed"]
	assert.True(t, present)
	assert.Nil(t, completed)
}

func TestUpdate_InProgressRejected(t *testing.T) {
	api := &fakeAPI{items: []map[string]any{{"id": "a", "title": "x", "status": "needsAction"}}}
	c := newTestClient(t, api)

	_, err := c.Update(context.Background(), service.Task{ID: "a", Description: "x", Status: service.StatusInProgress})

	var opErr *service.OpError
	require.ErrorAs(t, err, &opErr)
	assert.ErrorIs(t, err, ErrUnsupportedStatus)
	assert.Nil(t, api.lastRaw)
}

func TestUpdate_NotFound(t *testing.T) {
	c := newTestClient(t, &fakeAPI{})

	_, err := c.Update(context.Background(), service.Task{ID: "zzz", Description: "x", Status: service.StatusDone})

	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRemove(t *testing.T) {
	c := newTestClient(t, &fakeAPI{})
	assert.NoError(t, c.Remove(context.Background(), "a"))
}

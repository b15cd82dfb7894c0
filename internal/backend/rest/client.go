// Package rest implements service.Remote against a plain JSON REST task store.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskstream/internal/config"
	"taskstream/internal/service"
)

const (
	// DefaultTimeout is the per-request timeout when the config sets none.
	DefaultTimeout = 5 * time.Second

	// maxErrorBody caps how much of an error response is kept.
	maxErrorBody = 512
)

// Client implements service.Remote over HTTP.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
}

var _ service.Remote = (*Client)(nil)

// New creates a client for the store at cfg.APIEndpoint.
func New(cfg *config.Config) (*Client, error) {
	return NewWithHTTPClient(cfg.APIEndpoint, cfg.Timeout, http.DefaultClient)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(endpoint string, timeout time.Duration, httpClient *http.Client) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("api endpoint not configured")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid api endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api endpoint: unsupported scheme %q", u.Scheme)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: u, http: httpClient, timeout: timeout}, nil
}

// FetchAll issues GET /tasks.
func (c *Client) FetchAll(ctx context.Context) ([]service.Task, error) {
	var tasks []service.Task
	if _, err := c.do(ctx, http.MethodGet, c.collectionURL(), nil, &tasks); err != nil {
		return nil, service.NewOpError(service.OpFetch, err)
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	return tasks, nil
}

// Create issues POST /tasks with the draft.
func (c *Client) Create(ctx context.Context, draft service.Draft) (service.Task, error) {
	var created service.Task
	decoded, err := c.do(ctx, http.MethodPost, c.collectionURL(), draft, &created)
	if err != nil {
		return service.Task{}, service.NewOpError(service.OpCreate, err)
	}
	if !decoded || created.ID == "" {
		return service.Task{}, service.NewOpError(service.OpCreate, errors.New("response has no task id"))
	}
	return created, nil
}

// Update issues PUT /tasks/{id} with the full task.
// A store that answers without a body is taken to have stored the task as sent.
func (c *Client) Update(ctx context.Context, task service.Task) (service.Task, error) {
	if task.ID == "" {
		return service.Task{}, service.NewOpError(service.OpUpdate, errors.New("task id required"))
	}
	var updated service.Task
	decoded, err := c.do(ctx, http.MethodPut, c.itemURL(task.ID), task, &updated)
	if err != nil {
		return service.Task{}, service.NewOpError(service.OpUpdate, err)
	}
	if !decoded {
		return task, nil
	}
	if updated.ID == "" {
		updated.ID = task.ID
	}
	return updated, nil
}

// Remove issues DELETE /tasks/{id}. The response body is ignored.
func (c *Client) Remove(ctx context.Context, id string) error {
	if id == "" {
		return service.NewOpError(service.OpRemove, errors.New("task id required"))
	}
	if _, err := c.do(ctx, http.MethodDelete, c.itemURL(id), nil, nil); err != nil {
		return service.NewOpError(service.OpRemove, err)
	}
	return nil
}

// do sends one request. It reports whether a response body was decoded into out.
func (c *Client) do(ctx context.Context, method, target string, body, out any) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, wrapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return false, &service.StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(snippet)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, wrapError(err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return true, nil
}

func (c *Client) collectionURL() string {
	return c.baseURL.JoinPath("tasks").String()
}

func (c *Client) itemURL(id string) string {
	return c.baseURL.JoinPath("tasks", id).String()
}

// wrapError turns transport errors into short messages.
func wrapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	return err
}

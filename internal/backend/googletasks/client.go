// Package googletasks implements service.Remote on a single Google Tasks list.
//
// Google Tasks knows two states, needsAction and completed. They map to todo
// and done; in-progress has no Google equivalent and is rejected on write.
// Task notes carry the description.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"taskstream/internal/config"
	"taskstream/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks requested per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// OAuth scope for Google Tasks
	tasksScope = "https://www.googleapis.com/auth/tasks"

	statusNeedsAction = "needsAction"
	statusCompleted   = "completed"
)

// ErrUnsupportedStatus is returned when a status cannot be stored in Google Tasks.
var ErrUnsupportedStatus = errors.New("status not supported by google tasks")

// Client implements service.Remote using Google Tasks API.
type Client struct {
	svc     *tasks.Service
	listID  string
	timeout time.Duration
}

var _ service.Remote = (*Client)(nil)

// New creates a new Google Tasks client for cfg.TaskList.
// Requires oauth_client.json and token.json to exist in the config directory.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	// Load OAuth client config
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.OAuthClientFile, err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.OAuthClientFile, err)
	}

	// Load token
	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.TokenFile, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.TokenFile, err)
	}

	// Token source refreshes on its own; the refreshed token is not written back.
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))

	c, err := NewWithHTTPClient(ctx, httpClient, cfg.TaskList)
	if err != nil {
		return nil, err
	}
	c.timeout = cfg.Timeout
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// Extra options, such as option.WithEndpoint, are passed to the API service.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, listID string, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	if listID == "" {
		listID = DefaultListID
	}
	return &Client{svc: svc, listID: listID, timeout: APITimeout}, nil
}

// FetchAll returns every task in the list, completed ones included, in API order.
func (c *Client) FetchAll(ctx context.Context) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result := []service.Task{}
	err := c.svc.Tasks.List(c.listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				result = append(result, fromAPI(t))
			}
			return nil
		})
	if err != nil {
		return nil, service.NewOpError(service.OpFetch, wrapError(err))
	}
	return result, nil
}

// Create inserts a task. Google requires a title, so the description is used
// when the draft has none.
func (c *Client) Create(ctx context.Context, draft service.Draft) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	title := draft.Title
	if strings.TrimSpace(title) == "" {
		title = draft.Description
	}
	created, err := c.svc.Tasks.Insert(c.listID, &tasks.Task{
		Title: title,
		Notes: draft.Description,
	}).Context(ctx).Do()
	if err != nil {
		return service.Task{}, service.NewOpError(service.OpCreate, wrapError(err))
	}
	return fromAPI(created), nil
}

// Update patches title, notes and status of the task.
func (c *Client) Update(ctx context.Context, task service.Task) (service.Task, error) {
	status, err := toAPIStatus(task.Status)
	if err != nil {
		return service.Task{}, service.NewOpError(service.OpUpdate, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	patch := &tasks.Task{
		Title:  task.Title,
		Notes:  task.Description,
		Status: status,
	}
	if status == statusNeedsAction {
		// Clearing completion needs an explicit null.
		patch.NullFields = []string{"Completed"}
	}
	updated, err := c.svc.Tasks.Patch(c.listID, task.ID, patch).Context(ctx).Do()
	if err != nil {
		return service.Task{}, service.NewOpError(service.OpUpdate, wrapError(err))
	}
	return fromAPI(updated), nil
}

// Remove deletes a task.
func (c *Client) Remove(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(c.listID, id).Context(ctx).Do(); err != nil {
		return service.NewOpError(service.OpRemove, wrapError(err))
	}
	return nil
}

func fromAPI(t *tasks.Task) service.Task {
	status := service.StatusTodo
	if t.Status == statusCompleted {
		status = service.StatusDone
	}
	description := t.Notes
	if description == "" {
		description = t.Title
	}
	return service.Task{
		ID:          t.Id,
		Title:       t.Title,
		Description: description,
		Status:      status,
	}
}

func toAPIStatus(s service.Status) (string, error) {
	switch s {
	case service.StatusTodo:
		return statusNeedsAction, nil
	case service.StatusDone:
		return statusCompleted, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedStatus, s)
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("token expired or revoked (replace %s)", config.TokenFile)
		case http.StatusNotFound:
			return &service.StatusError{Code: apiErr.Code, Body: apiErr.Message}
		}
	}

	return err
}

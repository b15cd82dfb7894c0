// Package server is an in-memory task store speaking the REST contract the
// rest backend consumes. It backs `taskstream serve` and the backend tests.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"taskstream/internal/service"
)

const (
	// maxBodyBytes caps request bodies.
	maxBodyBytes = 1 << 20

	shutdownTimeout = 5 * time.Second
)

// Server holds tasks in insertion order.
type Server struct {
	mu    sync.RWMutex
	tasks []service.Task

	newID  func() string
	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithRequestLogging logs every request through httplog under serviceName,
// writing to w. Concise output is one plain-text line per request.
func WithRequestLogging(serviceName string, w io.Writer, concise bool) Option {
	return func(s *Server) {
		logger := httplog.NewLogger(serviceName, httplog.Options{
			Concise: concise,
		})
		if concise {
			logger = logger.Output(zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.Kitchen})
		} else {
			logger = logger.Output(w)
		}
		s.router.Use(httplog.RequestLogger(logger))
	}
}

// WithIDGenerator replaces the uuid generator (for testing).
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) {
		s.newID = fn
	}
}

// WithTasks seeds the store.
func WithTasks(tasks ...service.Task) Option {
	return func(s *Server) {
		s.tasks = append(s.tasks, tasks...)
	}
}

// New creates a server. Options are applied before routes are mounted.
func New(opts ...Option) *Server {
	s := &Server{
		newID:  uuid.NewString,
		router: chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Get("/healthz", s.health)
	s.router.Route("/tasks", func(r chi.Router) {
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.get)
			r.Put("/", s.replace)
			r.Patch("/", s.patch)
			r.Delete("/", s.delete)
		})
	})
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Tasks returns a copy of the stored tasks.
func (s *Server) Tasks() []service.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]service.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Tasks())
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var draft service.Draft
	if err := decodeBody(w, r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(draft.Description) == "" {
		writeError(w, http.StatusBadRequest, "description required")
		return
	}

	task := service.Task{
		ID:          s.newID(),
		Title:       draft.Title,
		Description: draft.Description,
		Status:      service.StatusTodo,
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.RLock()
	i := s.indexLocked(id)
	var task service.Task
	if i >= 0 {
		task = s.tasks[i]
	}
	s.mu.RUnlock()

	if i < 0 {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) replace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var task service.Task
	if err := decodeBody(w, r, &task); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if task.ID != "" && task.ID != id {
		writeError(w, http.StatusBadRequest, "task id does not match path")
		return
	}
	if strings.TrimSpace(task.Description) == "" {
		writeError(w, http.StatusBadRequest, "description required")
		return
	}
	task.ID = id

	s.mu.Lock()
	i := s.indexLocked(id)
	if i >= 0 {
		s.tasks[i] = task
	}
	s.mu.Unlock()

	if i < 0 {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// taskPatch carries the fields a PATCH may change. Completed is the boolean
// spelling of done/todo.
type taskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Completed   *bool   `json:"completed"`
}

func (s *Server) patch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var p taskPatch
	if err := decodeBody(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var status service.Status
	switch {
	case p.Status != nil:
		parsed, err := service.ParseStatus(*p.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		status = parsed
	case p.Completed != nil && *p.Completed:
		status = service.StatusDone
	case p.Completed != nil:
		status = service.StatusTodo
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		writeError(w, http.StatusBadRequest, "description required")
		return
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	var task service.Task
	if i >= 0 {
		if p.Title != nil {
			s.tasks[i].Title = *p.Title
		}
		if p.Description != nil {
			s.tasks[i].Description = *p.Description
		}
		if status != "" {
			s.tasks[i].Status = status
		}
		task = s.tasks[i]
	}
	s.mu.Unlock()

	if i < 0 {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	i := s.indexLocked(id)
	if i >= 0 {
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	}
	s.mu.Unlock()

	if i < 0 {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) indexLocked(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

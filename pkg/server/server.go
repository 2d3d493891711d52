// Package server exposes the task processor over HTTP.
//
// Routes:
//
//	POST /api/tasks          submit a task (JSON settings)
//	GET  /api/tasks          list submitted tasks
//	GET  /api/tasks/{id}     one task
//	GET  /api/notifications  the notification board
//	GET  /api/history        finished runs, ?limit=N
//	GET  /docs/*             generated documentation
//	GET  /metrics            Prometheus metrics, when configured
//	GET  /healthz            liveness
//	GET  /version            build information
//
// Tasks submitted over HTTP always write below the server's docs root, so
// the output_dir field of a request is rejected.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/nodedocs/pkg/buildinfo"
	"github.com/matzehuels/nodedocs/pkg/config"
	"github.com/matzehuels/nodedocs/pkg/errors"
	"github.com/matzehuels/nodedocs/pkg/history"
	"github.com/matzehuels/nodedocs/pkg/notify"
	"github.com/matzehuels/nodedocs/pkg/processor"
)

// maxBodyBytes caps task submissions.
const maxBodyBytes = 1 << 20

// Tasks is the part of the processor the server drives.
type Tasks interface {
	Submit(s config.Settings) (*processor.Task, error)
	Tasks() []processor.Info
	Task(id string) (*processor.Task, bool)
}

// Options configures a Server.
type Options struct {
	Tasks Tasks
	// History lists finished runs. Optional.
	History history.Store
	// Board backs /api/notifications. Optional.
	Board *notify.Board
	// DocsRoot is where submitted tasks write and what /docs serves.
	DocsRoot string
	// Defaults are the unvalidated task settings requests are merged over.
	Defaults config.Settings
	// Metrics serves /metrics. Optional.
	Metrics http.Handler
	Logger  *log.Logger
}

// Server is the HTTP front end.
type Server struct {
	opts   Options
	logger *log.Logger
	router chi.Router
}

// New builds the router.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.DocsRoot == "" {
		opts.DocsRoot = config.DefaultOutputRoot
	}
	s := &Server{opts: opts, logger: opts.Logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, buildinfo.Current())
	})
	r.Route("/api", func(r chi.Router) {
		r.Post("/tasks", s.submitTask)
		r.Get("/tasks", s.listTasks)
		r.Get("/tasks/{id}", s.getTask)
		r.Get("/notifications", s.listNotifications)
		r.Get("/history", s.listHistory)
	})
	r.Handle("/docs/*", http.StripPrefix("/docs/", http.FileServer(http.Dir(s.opts.DocsRoot))))
	if s.opts.Metrics != nil {
		r.Handle("/metrics", s.opts.Metrics)
	}
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr, "docs", s.opts.DocsRoot)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) submitTask(w http.ResponseWriter, r *http.Request) {
	settings := s.opts.Defaults.Clone()
	settings.OutputDir = ""

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&settings); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode task settings"))
		return
	}
	if settings.OutputDir != "" {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "output_dir cannot be set over HTTP"))
		return
	}
	if settings.Title == "" {
		settings.Title = config.DefaultTitle
	}
	if err := errors.ValidateTitle(settings.Title); err != nil {
		writeError(w, err)
		return
	}
	settings.OutputDir = config.OutputDirFor(s.opts.DocsRoot, settings.Title)

	task, err := s.opts.Tasks.Submit(settings)
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("task submitted", "task", task.Settings.Title, "id", task.ID)
	w.Header().Set("Location", "/api/tasks/"+task.ID.String())
	writeJSON(w, http.StatusAccepted, task.Info())
}

func (s *Server) listTasks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Tasks.Tasks())
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	task, ok := s.opts.Tasks.Task(id)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "task %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, task.Info())
}

func (s *Server) listNotifications(w http.ResponseWriter, _ *http.Request) {
	if s.opts.Board == nil {
		writeJSON(w, http.StatusOK, []notify.Snapshot{})
		return
	}
	writeJSON(w, http.StatusOK, s.opts.Board.List())
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	if s.opts.History == nil {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "run history is disabled"))
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit: %q", v))
			return
		}
		limit = n
	}
	runs, err := s.opts.History.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("list history", "err", err)
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "list history"))
		return
	}
	if runs == nil {
		runs = []history.Record{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// Package server exposes dashboards over HTTP.
//
// Routes:
//
//	GET /health                                       build info
//	GET /api/v1/dashboard?node=&key=&from=&line=      Grafana dashboard JSON
//	GET /api/v1/nodes?pattern=                        indexed nodes
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/muninboard/pkg/buildinfo"
	muninerrors "github.com/matzehuels/muninboard/pkg/errors"
	"github.com/matzehuels/muninboard/pkg/pipeline"
)

// Options configure the HTTP server.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// RequestTimeout bounds the directory lookup of one request.
	RequestTimeout time.Duration
	// Defaults fill request parameters the client leaves out.
	Defaults pipeline.Options
}

// Server serves dashboards built by a pipeline runner.
type Server struct {
	runner *pipeline.Runner
	opts   Options
	logger *log.Logger
}

// New creates a server. The runner must not be nil.
func New(runner *pipeline.Runner, opts Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return &Server{runner: runner, opts: opts, logger: logger}
}

// Handler returns the router with all middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recovery(s.logger))
	r.Use(Logger(s.logger))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/nodes", s.handleNodes)
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()
	sendJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": info.Version,
		"commit":  info.Commit,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	opts, err := s.dashboardOptions(r)
	if err != nil {
		sendFailure(w, r, err)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	result, err := s.runner.Execute(ctx, opts)
	if err != nil {
		sendFailure(w, r, err)
		return
	}
	w.Header().Set("X-Dashboard-Mode", result.Mode.String())
	sendJSON(w, http.StatusOK, result.Dashboard)
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	nodes, err := s.runner.Nodes(ctx, r.URL.Query().Get("pattern"))
	if err != nil {
		sendFailure(w, r, err)
		return
	}
	if nodes == nil {
		sendJSON(w, http.StatusOK, []any{})
		return
	}
	sendJSON(w, http.StatusOK, nodes)
}

func (s *Server) dashboardOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Node:      q.Get("node"),
		Key:       q.Get("key"),
		Timespan:  q.Get("from"),
		LineWidth: s.opts.Defaults.LineWidth,
	}
	if opts.Timespan == "" {
		opts.Timespan = s.opts.Defaults.Timespan
	}
	if line := q.Get("line"); line != "" {
		n, err := strconv.Atoi(line)
		if err != nil || n <= 0 {
			return opts, muninerrors.New(muninerrors.ErrCodeInvalidInput, "line must be a positive integer, got %q", line)
		}
		opts.LineWidth = n
	}
	if refresh := q.Get("refresh"); refresh != "" {
		opts.Refresh, _ = strconv.ParseBool(refresh)
	}
	return opts, nil
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.opts.RequestTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.opts.RequestTimeout)
}

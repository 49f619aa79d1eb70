// Package server exposes the transformation pipeline over HTTP.
//
// Routes:
//
//	POST /v1/transform           synchronous transformation
//	GET  /v1/transforms          catalog, optionally ?category=
//	GET  /v1/transforms/{key}    one catalog entry
//	POST /v1/jobs                queue a background transformation
//	GET  /v1/jobs/{id}           poll a job
//	GET  /v1/jobs/{id}/ws        websocket that pushes the job's completion
//	GET  /metrics                Prometheus exposition
//	GET  /healthz                liveness and readiness checks
//
// Job and metrics routes are mounted only when the matching option is set.
package server

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bimmerbailey/recase/internal/pipeline"
	"github.com/bimmerbailey/recase/internal/preserve"
	"github.com/bimmerbailey/recase/internal/registry"
	"github.com/bimmerbailey/recase/internal/worker"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = "127.0.0.1:8080"

	defaultShutdownTimeout = 10 * time.Second
	socketWriteTimeout     = 10 * time.Second
)

// Runner executes one transformation. *pipeline.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Catalog lists registered transformations. *registry.Registry satisfies it.
type Catalog interface {
	Lookup(key string) (registry.Descriptor, bool)
	Descriptors() iter.Seq[registry.Descriptor]
}

// Jobs queues background transformations. *worker.Pool satisfies it.
type Jobs interface {
	Submit(job worker.Job) (string, error)
	Get(id string) (worker.Completion, error)
	Wait(ctx context.Context, id string) (worker.Completion, error)
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithTimeouts sets the HTTP read and write timeouts.
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) {
		s.readTimeout = read
		s.writeTimeout = write
	}
}

// WithJobs enables the /v1/jobs routes.
func WithJobs(j Jobs) Option {
	return func(s *Server) {
		s.jobs = j
	}
}

// WithMetrics serves reg on /metrics and records HTTP request metrics in it.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.metricsRegistry = reg
	}
}

// WithDefaults sets the preservation used when a request carries none.
func WithDefaults(cfg preserve.Config) Option {
	return func(s *Server) {
		s.defaults = cfg
	}
}

// WithMaxBytes bounds the text size accepted by the job route before
// queueing, and sizes the request body limit. It should match the
// pipeline's ceiling.
func WithMaxBytes(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithCheck adds a named readiness check to /healthz. A failing check
// turns the response into 503.
func WithCheck(name string, check func(context.Context) error) Option {
	return func(s *Server) {
		if check != nil {
			s.checks = append(s.checks, readinessCheck{name: name, check: check})
		}
	}
}

type readinessCheck struct {
	name  string
	check func(context.Context) error
}

// Server serves the HTTP API.
type Server struct {
	runner  Runner
	catalog Catalog
	jobs    Jobs
	logger  *slog.Logger

	addr         string
	readTimeout  time.Duration
	writeTimeout time.Duration
	maxBytes     int
	defaults     preserve.Config
	checks       []readinessCheck

	metricsRegistry *prometheus.Registry
	httpMetrics     *httpMetrics

	upgrader websocket.Upgrader
	handler  http.Handler
}

// New builds a Server. runner, catalog and logger are required.
func New(runner Runner, catalog Catalog, logger *slog.Logger, opts ...Option) (*Server, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	s := &Server{
		runner:       runner,
		catalog:      catalog,
		logger:       logger,
		addr:         DefaultAddr,
		readTimeout:  30 * time.Second,
		writeTimeout: 60 * time.Second,
		maxBytes:     pipeline.DefaultMaxBytes,
		defaults:     preserve.All(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.metricsRegistry != nil {
		m, err := newHTTPMetrics(s.metricsRegistry)
		if err != nil {
			return nil, fmt.Errorf("failed to register http metrics: %w", err)
		}
		s.httpMetrics = m
	}

	s.handler = s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	if s.httpMetrics != nil {
		r.Use(s.httpMetrics.instrument)
	}

	r.Get("/healthz", s.handleHealth)
	if s.metricsRegistry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/transform", s.handleTransform)
		r.Get("/transforms", s.handleCatalog)
		r.Get("/transforms/{key}", s.handleDescribe)

		if s.jobs != nil {
			r.Post("/jobs", s.handleSubmit)
			r.Get("/jobs/{id}", s.handleJob)
			r.Get("/jobs/{id}/ws", s.handleJobSocket)
		}
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadTimeout:       s.readTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("server listening", "addr", s.addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// bodyLimit allows for JSON escaping of a maximum-size text.
func (s *Server) bodyLimit() int64 {
	return int64(s.maxBytes)*6 + 64*1024
}

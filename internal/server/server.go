package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/urlquery/internal/config"
	"github.com/vango-dev/urlquery/pkg/urlquery"
)

// ShutdownTimeout bounds graceful shutdown in ListenAndServe.
const ShutdownTimeout = 10 * time.Second

// Server serves query state over HTTP and WebSocket.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *Metrics
	gatherer prometheus.Gatherer
	tracer   trace.Tracer
	upgrader websocket.Upgrader
	sessions *SessionManager
	router   chi.Router

	// queryOpts are shared by every QueryState the server builds.
	queryOpts []urlquery.Option
}

// Option configures a Server.
type Option func(*options)

type options struct {
	logger         *slog.Logger
	registry       *prometheus.Registry
	tracerProvider trace.TracerProvider
}

// WithLogger sets the server logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegistry registers metrics on registry instead of a fresh one.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// WithTracerProvider sets the provider used when tracing is enabled. The
// default is the global OpenTelemetry provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// New builds a Server from cfg. A nil cfg uses config.Default().
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	queryOpts, err := cfg.QueryOptions(o.logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		logger:    o.logger,
		queryOpts: queryOpts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		},
	}

	if cfg.Metrics.Enabled {
		registry := o.registry
		if registry == nil {
			registry = prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}
		s.metrics = NewMetrics(cfg.Metrics.Namespace, registry)
		s.gatherer = registry
	}

	var tp trace.TracerProvider = noop.NewTracerProvider()
	if cfg.Tracing.Enabled {
		tp = o.tracerProvider
		if tp == nil {
			tp = otel.GetTracerProvider()
		}
	}
	s.tracer = tp.Tracer(cfg.Tracing.Name)

	s.sessions = NewSessionManager(s.metrics)
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/query", s.handleGetQuery)
	r.Post("/api/query", s.handlePostQuery)
	r.Get("/ws", s.handleWebSocket)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions returns the live session registry.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// ListenAndServe serves on the configured address until ctx is done, then
// shuts down gracefully and closes live sessions.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	s.sessions.CloseAll()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teemow/gdrivehelper/internal/instrumentation"
)

const (
	// DefaultMetricsAddr is where the Prometheus scrape endpoint listens.
	DefaultMetricsAddr = ":9090"

	// DefaultShutdownTimeout bounds graceful shutdown of the HTTP servers.
	DefaultShutdownTimeout = 30 * time.Second

	metricsReadHeaderTimeout = 10 * time.Second
	metricsWriteTimeout      = 10 * time.Second
	metricsIdleTimeout       = 60 * time.Second
)

// MetricsServerConfig configures the Prometheus scrape server.
type MetricsServerConfig struct {
	// Addr defaults to DefaultMetricsAddr.
	Addr string

	// InstrumentationProvider must be enabled and export to Prometheus.
	InstrumentationProvider *instrumentation.Provider

	// Gatherer defaults to prometheus.DefaultGatherer, where the
	// OpenTelemetry prometheus exporter registers itself.
	Gatherer prometheus.Gatherer

	Logger *slog.Logger
}

// MetricsServer serves /metrics on a port separate from the MCP endpoint so
// scrapes never compete with tool calls.
type MetricsServer struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewMetricsServer validates config and prepares the server. It does not
// listen until Start is called.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	provider := config.InstrumentationProvider
	switch {
	case provider == nil:
		return nil, fmt.Errorf("instrumentation provider is required for metrics server")
	case !provider.Enabled():
		return nil, fmt.Errorf("instrumentation provider is not enabled")
	case !provider.ServesPrometheus():
		return nil, fmt.Errorf("metrics exporter is not %s", instrumentation.ExporterPrometheus)
	}

	if config.Addr == "" {
		config.Addr = DefaultMetricsAddr
	}
	if config.Gatherer == nil {
		config.Gatherer = prometheus.DefaultGatherer
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{
		ErrorLog: slog.NewLogLogger(config.Logger.Handler(), slog.LevelError),
	}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	return &MetricsServer{
		httpServer: &http.Server{
			Addr:              config.Addr,
			Handler:           mux,
			ReadHeaderTimeout: metricsReadHeaderTimeout,
			WriteTimeout:      metricsWriteTimeout,
			IdleTimeout:       metricsIdleTimeout,
		},
		logger: config.Logger,
	}, nil
}

// Handler returns the mux serving /metrics and /healthz.
func (s *MetricsServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens and blocks until the server is shut down. A graceful
// shutdown returns nil.
func (s *MetricsServer) Start() error {
	s.logger.Info("starting metrics server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server. It is safe to call before Start.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down metrics server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *MetricsServer) Addr() string {
	return s.httpServer.Addr
}

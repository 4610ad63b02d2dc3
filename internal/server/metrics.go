package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/giantswarm/mcp-kong/internal/instrumentation"
)

// DefaultMetricsAddr is the listen address of the dedicated metrics server.
const DefaultMetricsAddr = ":9090"

// MetricsServerConfig configures a MetricsServer.
type MetricsServerConfig struct {
	// Addr to listen on. Empty means DefaultMetricsAddr.
	Addr string

	// Enabled is informational; callers decide whether to start the server.
	Enabled bool

	// InstrumentationProvider whose metrics are exposed. Required.
	InstrumentationProvider *instrumentation.Provider
}

// MetricsServer serves Prometheus metrics on a port separate from the MCP
// transport so scrapes never share a listener with tool traffic.
type MetricsServer struct {
	addr     string
	provider *instrumentation.Provider
	server   *http.Server
}

// NewMetricsServer creates a MetricsServer. It does not start listening.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	if config.InstrumentationProvider == nil {
		return nil, errors.New("instrumentation provider is required for the metrics server")
	}

	addr := config.Addr
	if addr == "" {
		addr = DefaultMetricsAddr
	}

	metricsPath := config.InstrumentationProvider.Config().PrometheusEndpoint
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &MetricsServer{
		addr:     addr,
		provider: config.InstrumentationProvider,
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Addr returns the listen address.
func (m *MetricsServer) Addr() string {
	return m.addr
}

// Handler returns the metrics mux.
func (m *MetricsServer) Handler() http.Handler {
	return m.server.Handler
}

// Start listens and serves until Shutdown. It returns http.ErrServerClosed
// after a graceful shutdown.
func (m *MetricsServer) Start() error {
	return m.server.ListenAndServe()
}

// Shutdown stops the server. It is safe to call without Start.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.server.Shutdown(ctx)
}

// DefaultShutdownTimeout bounds graceful shutdown of the HTTP transports and
// the metrics server.
const DefaultShutdownTimeout = 30 * time.Second

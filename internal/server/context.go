package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/giantswarm/mcp-kong/internal/admin"
	"github.com/giantswarm/mcp-kong/internal/instrumentation"
)

// ServerContext encapsulates all dependencies needed by the MCP server
// and provides a clean abstraction for dependency injection and lifecycle management.
type ServerContext struct {
	// Core dependencies
	adminClient *admin.Client
	logger      *slog.Logger
	config      *Config

	// OpenTelemetry provider, nil when instrumentation is not configured
	instrumentationProvider *instrumentation.Provider

	// Context management
	ctx    context.Context
	cancel context.CancelFunc

	// Lifecycle management
	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new ServerContext with default values.
// Use the provided functional options to customize the context.
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	serverCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:    serverCtx,
		cancel: cancel,
		config: NewDefaultConfig(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(sc); err != nil {
			cancel()
			return nil, err
		}
	}

	if err := sc.validate(); err != nil {
		cancel()
		return nil, err
	}

	return sc, nil
}

// Context returns the server context for cancellation and deadlines.
func (sc *ServerContext) Context() context.Context {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.ctx
}

// AdminClient returns the Admin API client shared by all tool invocations.
func (sc *ServerContext) AdminClient() *admin.Client {
	return sc.adminClient
}

// Logger returns the server logger, falling back to slog.Default().
func (sc *ServerContext) Logger() *slog.Logger {
	if sc.logger == nil {
		return slog.Default()
	}
	return sc.logger
}

// Config returns the server configuration.
func (sc *ServerContext) Config() *Config {
	return sc.config
}

// InstrumentationProvider returns the instrumentation provider, which may be nil.
func (sc *ServerContext) InstrumentationProvider() *instrumentation.Provider {
	return sc.instrumentationProvider
}

// Metrics returns the OpenTelemetry metrics recorder, or nil when
// instrumentation is disabled. The recorder is nil-safe.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	if sc.instrumentationProvider == nil {
		return nil
	}
	return sc.instrumentationProvider.Metrics()
}

// Shutdown gracefully shuts down the server context.
// It is safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.Logger().Info("Shutting down server context")

	if sc.cancel != nil {
		sc.cancel()
	}
	sc.shutdown = true

	sc.Logger().Info("Server context shutdown complete")
	return nil
}

// IsShutdown returns true if the server context has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// validate ensures all required dependencies are set.
func (sc *ServerContext) validate() error {
	if sc.adminClient == nil {
		return ErrMissingAdminClient
	}
	if sc.logger == nil {
		return ErrMissingLogger
	}
	if sc.config == nil {
		return ErrMissingConfig
	}
	return nil
}

// Config holds the server configuration.
type Config struct {
	// Server settings
	ServerName string `json:"serverName"`
	Version    string `json:"version"`

	// Transport the MCP server is served over: stdio, sse or streamable-http.
	Transport string `json:"transport"`

	// Logging settings
	LogLevel  string `json:"logLevel"`
	LogFormat string `json:"logFormat"`
}

// NewDefaultConfig creates a configuration with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		ServerName: "mcp-kong",
		Version:    "dev",
		Transport:  "stdio",
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

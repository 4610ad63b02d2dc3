package server

import (
	"errors"
	"log/slog"

	"github.com/giantswarm/mcp-kong/internal/admin"
	"github.com/giantswarm/mcp-kong/internal/instrumentation"
)

// Option is a functional option for configuring ServerContext.
type Option func(*ServerContext) error

// WithAdminClient sets the Admin API client for the ServerContext.
func WithAdminClient(client *admin.Client) Option {
	return func(sc *ServerContext) error {
		if client == nil {
			return ErrMissingAdminClient
		}
		sc.adminClient = client
		return nil
	}
}

// WithLogger sets the logger for the ServerContext.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) error {
		if logger == nil {
			return ErrMissingLogger
		}
		sc.logger = logger
		return nil
	}
}

// WithConfig sets the configuration for the ServerContext.
func WithConfig(config *Config) Option {
	return func(sc *ServerContext) error {
		if config == nil {
			return ErrMissingConfig
		}
		sc.config = config.Clone()
		return nil
	}
}

// updateConfig applies fn to the context's configuration, creating the
// default configuration first if none is set yet.
func updateConfig(fn func(*Config)) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		fn(sc.config)
		return nil
	}
}

// WithServerName sets the name reported in the MCP handshake.
func WithServerName(name string) Option {
	return updateConfig(func(c *Config) { c.ServerName = name })
}

// WithVersion sets the version reported to MCP clients.
func WithVersion(version string) Option {
	return updateConfig(func(c *Config) { c.Version = version })
}

// WithTransport records the transport the server is served over.
func WithTransport(transport string) Option {
	return updateConfig(func(c *Config) { c.Transport = transport })
}

// WithLogLevel records the effective log level.
func WithLogLevel(level string) Option {
	return updateConfig(func(c *Config) { c.LogLevel = level })
}

// WithLogFormat records the log output format.
func WithLogFormat(format string) Option {
	return updateConfig(func(c *Config) { c.LogFormat = format })
}

// WithInstrumentationProvider sets the OpenTelemetry instrumentation provider.
func WithInstrumentationProvider(provider *instrumentation.Provider) Option {
	return func(sc *ServerContext) error {
		sc.instrumentationProvider = provider
		return nil
	}
}

// Error definitions for ServerContext validation and operations.
var (
	ErrMissingAdminClient = errors.New("admin API client is required")
	ErrMissingLogger      = errors.New("logger is required")
	ErrMissingConfig      = errors.New("configuration is required")
	ErrServerShutdown     = errors.New("server context has been shutdown")
)

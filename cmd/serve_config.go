package cmd

import (
	"fmt"
	"strings"

	"github.com/giantswarm/mcp-kong/internal/config"
	"github.com/giantswarm/mcp-kong/internal/server/middleware"
)

// Transport type constants for the MCP server.
const (
	transportStdio          = "stdio"
	transportSSE            = "sse"
	transportStreamableHTTP = "streamable-http"
)

// Paths served next to the MCP endpoints on the HTTP transports.
var healthPaths = []string{"/healthz", "/readyz", "/healthz/detailed"}

// ServeConfig holds all configuration for the serve command.
type ServeConfig struct {
	// Transport settings
	Transport string
	HTTPAddr  string

	// Endpoint paths
	SSEEndpoint     string
	MessageEndpoint string
	HTTPEndpoint    string

	// Stateless disables session tracking on the streamable HTTP transport.
	Stateless bool

	// AllowedOrigins is a comma-separated CORS origin list. Empty disables CORS.
	AllowedOrigins string

	// MaxRequestBytes bounds HTTP request bodies; zero or less disables it.
	MaxRequestBytes int64

	DebugMode bool

	// ConfigFile and EnvFile locate the layered settings read by config.Load.
	ConfigFile string
	EnvFile    string

	// Overrides carries the settings given as flags. Only flags set on the
	// command line are non-zero here.
	Overrides config.Config

	Metrics MetricsServeConfig
}

// MetricsServeConfig configures the dedicated metrics server.
type MetricsServeConfig struct {
	Enabled bool
	Addr    string
}

// Validate checks the transport settings. Kong settings are validated after
// they are loaded.
func (c ServeConfig) Validate() error {
	switch c.Transport {
	case transportStdio:
		return nil
	case transportSSE:
		if err := validateEndpoint("sse-endpoint", c.SSEEndpoint); err != nil {
			return err
		}
		if err := validateEndpoint("message-endpoint", c.MessageEndpoint); err != nil {
			return err
		}
		if c.SSEEndpoint == c.MessageEndpoint {
			return fmt.Errorf("sse-endpoint and message-endpoint must differ, both are %q", c.SSEEndpoint)
		}
	case transportStreamableHTTP:
		if err := validateEndpoint("http-endpoint", c.HTTPEndpoint); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: %s, %s, %s)",
			c.Transport, transportStdio, transportSSE, transportStreamableHTTP)
	}

	if c.HTTPAddr == "" {
		return fmt.Errorf("http-addr is required for the %s transport", c.Transport)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == c.HTTPAddr {
		return fmt.Errorf("metrics-addr must differ from http-addr (%s)", c.HTTPAddr)
	}
	if _, err := middleware.ValidateAllowedOrigins(c.AllowedOrigins); err != nil {
		return fmt.Errorf("invalid allowed-origins: %w", err)
	}
	return nil
}

func validateEndpoint(flag, path string) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("%s must start with '/', got %q", flag, path)
	}
	for _, reserved := range healthPaths {
		if path == reserved {
			return fmt.Errorf("%s %q collides with a health endpoint", flag, path)
		}
	}
	return nil
}

// mcpPaths returns the MCP endpoint paths served by the transport.
func (c ServeConfig) mcpPaths() []string {
	switch c.Transport {
	case transportSSE:
		return []string{c.SSEEndpoint, c.MessageEndpoint}
	case transportStreamableHTTP:
		return []string{c.HTTPEndpoint}
	}
	return nil
}

// loadKongConfig layers flags over config.Load.
func loadKongConfig(c ServeConfig) (config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{File: c.ConfigFile, EnvFile: c.EnvFile})
	if err != nil {
		return config.Config{}, err
	}
	cfg = cfg.Merge(c.Overrides)
	if c.DebugMode {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

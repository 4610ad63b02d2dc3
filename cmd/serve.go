package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-kong/internal/admin"
	"github.com/giantswarm/mcp-kong/internal/config"
	"github.com/giantswarm/mcp-kong/internal/instrumentation"
	"github.com/giantswarm/mcp-kong/internal/logging"
	"github.com/giantswarm/mcp-kong/internal/server"
	"github.com/giantswarm/mcp-kong/internal/server/middleware"
	"github.com/giantswarm/mcp-kong/internal/tools"
)

const serverInstructions = `Read-only tools for a Kong Gateway Admin API.
Use get_kong_status first to confirm the gateway is reachable, then list and
inspect services, routes, consumers and plugins. No tool modifies the gateway.`

// newServeCmd creates the Cobra command for starting the MCP server.
func newServeCmd() *cobra.Command {
	var (
		cfg ServeConfig

		adminURL   string
		adminToken string
		logFormat  string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP Kong server",
		Long: `Start the MCP Kong server to provide read-only tools for a Kong Gateway
Admin API via the Model Context Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events over HTTP
  - streamable-http: Streamable HTTP transport

Admin API settings are layered: built-in defaults, then the YAML file given by
--config or MCP_KONG_CONFIG, then the KONG_ADMIN_URL, KONG_ADMIN_TOKEN,
KONG_ADMIN_TIMEOUT and KONG_ADMIN_MAX_PAGES environment variables (a .env file
is loaded first), then command line flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("kong-admin-url") {
				cfg.Overrides.AdminURL = adminURL
			}
			if flags.Changed("kong-admin-token") {
				cfg.Overrides.AdminToken = adminToken
				slog.Warn("admin token provided via CLI flag - it may be visible in process listings; prefer " + config.EnvAdminToken)
			}
			if flags.Changed("log-format") {
				cfg.Overrides.LogFormat = logFormat
			}
			if flags.Changed("log-level") {
				cfg.Overrides.LogLevel = logLevel
			}
			if !flags.Changed("kong-admin-timeout") {
				cfg.Overrides.Timeout = 0
			}
			if !flags.Changed("kong-max-pages") {
				cfg.Overrides.MaxPages = 0
			}

			return runServe(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Transport, "transport", transportStdio, "Transport type: stdio, sse, or streamable-http")
	f.StringVar(&cfg.HTTPAddr, "http-addr", ":8080", "HTTP server address (for sse and streamable-http transports)")
	f.StringVar(&cfg.SSEEndpoint, "sse-endpoint", "/sse", "SSE endpoint path (for sse transport)")
	f.StringVar(&cfg.MessageEndpoint, "message-endpoint", "/message", "Message endpoint path (for sse transport)")
	f.StringVar(&cfg.HTTPEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http transport)")
	f.BoolVar(&cfg.Stateless, "stateless", false, "Run the streamable-http transport without sessions")
	f.StringVar(&cfg.AllowedOrigins, "allowed-origins", "", "Comma-separated list of CORS origins allowed on the HTTP transports")
	f.Int64Var(&cfg.MaxRequestBytes, "max-request-bytes", middleware.DefaultMaxRequestBytes, "Maximum HTTP request body size in bytes (0 disables the limit)")
	f.BoolVar(&cfg.DebugMode, "debug", false, "Enable debug logging (default: false)")

	f.StringVar(&cfg.ConfigFile, "config", "", "YAML config file (can also be set via "+config.EnvConfigFile+" env var)")
	f.StringVar(&cfg.EnvFile, "env-file", config.DefaultEnvFile, "dotenv file loaded into the environment if present")
	f.StringVar(&adminURL, "kong-admin-url", "", "Kong Admin API URL (default http://localhost:8001, can also be set via "+config.EnvAdminURL+" env var)")
	f.StringVar(&adminToken, "kong-admin-token", "", "Kong Admin API bearer token (can also be set via "+config.EnvAdminToken+" env var)")
	f.DurationVar(&cfg.Overrides.Timeout, "kong-admin-timeout", config.DefaultTimeout, "Timeout for a single Admin API request (can also be set via "+config.EnvTimeout+" env var)")
	f.IntVar(&cfg.Overrides.MaxPages, "kong-max-pages", admin.DefaultMaxPages, "Maximum plugin pages fetched by get_plugin_stats (can also be set via "+config.EnvMaxPages+" env var)")
	f.StringVar(&logFormat, "log-format", logging.FormatText, "Log format: text or json")
	f.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")

	f.BoolVar(&cfg.Metrics.Enabled, "enable-metrics-server", true, "Serve Prometheus metrics on a dedicated port when instrumentation is enabled")
	f.StringVar(&cfg.Metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address")

	return cmd
}

// runServe contains the main server logic with support for multiple transports.
func runServe(parent context.Context, cfg ServeConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	kongCfg, err := loadKongConfig(cfg)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Format: kongCfg.LogFormat, Level: kongCfg.LogLevel})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrumentationConfig := instrumentation.DefaultConfig()
	instrumentationConfig.ServiceVersion = rootCmd.Version
	provider, err := instrumentation.NewProvider(ctx, instrumentationConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("error during instrumentation shutdown", logging.Err(err))
		}
	}()
	if provider.Enabled() {
		logger.Info("OpenTelemetry instrumentation enabled",
			"metrics_exporter", instrumentationConfig.MetricsExporter,
			"tracing_exporter", instrumentationConfig.TracingExporter)
	}

	adminClient, err := admin.New(admin.Config{
		BaseURL:  kongCfg.AdminURL,
		Token:    kongCfg.AdminToken,
		Timeout:  kongCfg.Timeout,
		MaxPages: kongCfg.MaxPages,
	}, admin.WithLogger(logger), admin.WithMetrics(provider.Metrics()))
	if err != nil {
		return fmt.Errorf("failed to create Admin API client: %w", err)
	}
	logAdminClient(logger, adminClient, kongCfg)

	sc, err := server.NewServerContext(ctx,
		server.WithAdminClient(adminClient),
		server.WithLogger(logger),
		server.WithVersion(rootCmd.Version),
		server.WithTransport(cfg.Transport),
		server.WithLogLevel(kongCfg.LogLevel),
		server.WithLogFormat(kongCfg.LogFormat),
		server.WithInstrumentationProvider(provider),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := sc.Shutdown(); err != nil {
			logger.Error("error during server context shutdown", logging.Err(err))
		}
	}()

	mcpSrv, err := newMCPServer(sc)
	if err != nil {
		return err
	}

	logger.Info("starting MCP server", logging.Transport(cfg.Transport), "version", rootCmd.Version)
	switch cfg.Transport {
	case transportSSE:
		return runSSEServer(ctx, mcpSrv, cfg, sc)
	case transportStreamableHTTP:
		return runStreamableHTTPServer(ctx, mcpSrv, cfg, sc)
	default:
		return runStdioServer(mcpSrv)
	}
}

// logAdminClient records which Admin API the server talks to. IP addresses
// and the token itself never reach the log.
func logAdminClient(logger *slog.Logger, client *admin.Client, kongCfg config.Config) {
	logger.Info("Kong Admin API configured",
		logging.Host(client.BaseURL()),
		"authenticated", client.HasToken(),
		"token", logging.SanitizeToken(kongCfg.AdminToken),
		"max_pages", client.MaxPages())
}

// newMCPServer creates the MCP server and registers every tool.
func newMCPServer(sc *server.ServerContext) (*mcpserver.MCPServer, error) {
	cfg := sc.Config()
	mcpSrv := mcpserver.NewMCPServer(cfg.ServerName, cfg.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
		mcpserver.WithInstructions(serverInstructions),
	)

	if err := tools.RegisterTools(mcpSrv, sc); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	return mcpSrv, nil
}

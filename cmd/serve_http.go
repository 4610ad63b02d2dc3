package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/mcp-kong/internal/logging"
	"github.com/giantswarm/mcp-kong/internal/server"
	"github.com/giantswarm/mcp-kong/internal/server/middleware"
)

// runStreamableHTTPServer runs the server with Streamable HTTP transport.
func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, cfg ServeConfig, sc *server.ServerContext) error {
	mcpHandler := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(cfg.HTTPEndpoint),
		mcpserver.WithStateLess(cfg.Stateless),
	)

	mux := http.NewServeMux()
	mux.Handle(cfg.HTTPEndpoint, mcpHandler)

	handler, err := newHTTPHandler(mux, cfg, sc)
	if err != nil {
		return err
	}

	sc.Logger().Info("streamable HTTP server starting",
		"addr", cfg.HTTPAddr,
		"endpoint", cfg.HTTPEndpoint,
		"stateless", cfg.Stateless,
		"health_endpoints", healthPaths)

	return serveHTTP(ctx, newHTTPServer(cfg.HTTPAddr, handler), cfg.Metrics, sc)
}

// newHTTPHandler registers the health endpoints on mux and wraps it in the
// middleware chain shared by the HTTP transports.
func newHTTPHandler(mux *http.ServeMux, cfg ServeConfig, sc *server.ServerContext) (http.Handler, error) {
	server.NewHealthChecker(sc).RegisterHealthEndpoints(mux)

	origins, err := middleware.ValidateAllowedOrigins(cfg.AllowedOrigins)
	if err != nil {
		return nil, fmt.Errorf("invalid allowed-origins: %w", err)
	}

	knownPaths := append(cfg.mcpPaths(), healthPaths...)
	chain := []func(http.Handler) http.Handler{
		middleware.HTTPMetrics(sc.InstrumentationProvider(), knownPaths...),
		middleware.SecurityHeaders(false),
	}
	if len(origins) > 0 {
		chain = append(chain, middleware.CORS(origins))
	}
	chain = append(chain, middleware.MaxRequestSize(cfg.MaxRequestBytes))

	return middleware.Chain(mux, chain...), nil
}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// serveHTTP runs httpServer, and the metrics server when enabled, until ctx
// is cancelled or either server fails. Both are shut down before returning.
func serveHTTP(ctx context.Context, httpServer *http.Server, metricsConfig MetricsServeConfig, sc *server.ServerContext) error {
	logger := sc.Logger()
	provider := sc.InstrumentationProvider()

	var metricsServer *server.MetricsServer
	if metricsConfig.Enabled && provider != nil && provider.Enabled() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			Enabled:                 metricsConfig.Enabled,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		return nil
	})

	if metricsServer != nil {
		g.Go(func() error {
			logger.Info("metrics server started", "addr", metricsServer.Addr(), "endpoint", "/metrics")
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server stopped with error: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("stopping HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()

		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("error shutting down metrics server", logging.Err(err))
			}
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("HTTP server gracefully stopped")
	return nil
}

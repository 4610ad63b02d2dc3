package cmd

import (
	"context"
	"net"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-kong/internal/server"
)

// runSSEServer runs the server with SSE transport. The SSE and message
// handlers share one mux with the health endpoints.
func runSSEServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, cfg ServeConfig, sc *server.ServerContext) error {
	sseServer := mcpserver.NewSSEServer(mcpSrv,
		mcpserver.WithSSEEndpoint(cfg.SSEEndpoint),
		mcpserver.WithMessageEndpoint(cfg.MessageEndpoint),
	)

	mux := http.NewServeMux()
	mux.Handle(cfg.SSEEndpoint, sseServer.SSEHandler())
	mux.Handle(cfg.MessageEndpoint, sseServer.MessageHandler())

	handler, err := newHTTPHandler(mux, cfg, sc)
	if err != nil {
		return err
	}

	httpServer := newHTTPServer(cfg.HTTPAddr, handler)
	// Event streams only end when their request context does, so requests
	// inherit the shutdown signal.
	httpServer.BaseContext = func(net.Listener) context.Context { return ctx }

	sc.Logger().Info("SSE server starting",
		"addr", cfg.HTTPAddr,
		"sse_endpoint", cfg.SSEEndpoint,
		"message_endpoint", cfg.MessageEndpoint,
		"health_endpoints", healthPaths)

	return serveHTTP(ctx, httpServer, cfg.Metrics, sc)
}

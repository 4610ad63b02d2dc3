// Package server holds the runtime shared by every transport of the Kong MCP
// server.
//
// ServerContext carries the Admin API client, logger, configuration and
// instrumentation provider, built with functional options:
//
//	sc, err := server.NewServerContext(ctx,
//		server.WithAdminClient(client),
//		server.WithLogger(logger),
//		server.WithInstrumentationProvider(provider),
//	)
//
// HealthChecker serves /healthz, /readyz and /healthz/detailed on the HTTP
// transports. Readiness probes the Admin API /status endpoint; the detailed
// endpoint embeds the Admin API health report.
//
// MetricsServer exposes Prometheus metrics on a dedicated listener.
package server

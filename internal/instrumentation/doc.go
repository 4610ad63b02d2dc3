// Package instrumentation provides OpenTelemetry instrumentation for the
// mcp-kong server.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for HTTP requests, MCP tool calls and Admin API calls
//   - Distributed tracing for tool invocations and Admin API requests
//   - Prometheus metrics export via the /metrics endpoint
//   - OTLP export support for modern observability platforms
//   - Audit logging of tool invocations
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Tool Metrics:
//   - mcp_tool_calls_total: Counter of tool calls by tool and status
//   - mcp_tool_call_duration_seconds: Histogram of tool call durations
//
// Admin API Metrics:
//   - kong_admin_requests_total: Counter of Admin API requests by method, endpoint, status_class
//   - kong_admin_request_duration_seconds: Histogram of Admin API request durations
//   - kong_admin_plugin_pages_total: Counter of plugin pages fetched during aggregation
//
// # Cardinality Considerations
//
// Admin API endpoints carry entity ids and pagination cursors. The endpoint
// label is always passed through ClassifyEndpoint and status codes are
// collapsed into classes. Use traces for per-entity debugging.
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: false)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: mcp-kong)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:     "mcp-kong",
//		ServiceVersion:  "0.1.0",
//		Enabled:         true,
//		MetricsExporter: instrumentation.ExporterPrometheus,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordToolCall(ctx, "list_services", instrumentation.StatusSuccess, time.Since(start))
package instrumentation

package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency and DRY
const (
	attrMethod      = "method"
	attrPath        = "path"
	attrStatus      = "status"
	attrTool        = "tool"
	attrEndpoint    = "endpoint"
	attrStatusClass = "status_class"
)

var durationBuckets = []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0}

// Metrics provides methods for recording observability metrics.
//
// All methods are safe to call on a nil *Metrics, which is what callers hold
// when instrumentation is disabled.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// MCP tool metrics
	toolCallsTotal   metric.Int64Counter
	toolCallDuration metric.Float64Histogram

	// Admin API client metrics
	adminRequestsTotal   metric.Int64Counter
	adminRequestDuration metric.Float64Histogram
	pluginPagesTotal     metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	// HTTP Metrics
	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	// Tool Metrics
	m.toolCallsTotal, err = meter.Int64Counter(
		"mcp_tool_calls_total",
		metric.WithDescription("Total number of MCP tool calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_calls_total counter: %w", err)
	}

	m.toolCallDuration, err = meter.Float64Histogram(
		"mcp_tool_call_duration_seconds",
		metric.WithDescription("MCP tool call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_call_duration_seconds histogram: %w", err)
	}

	// Admin API Metrics
	m.adminRequestsTotal, err = meter.Int64Counter(
		"kong_admin_requests_total",
		metric.WithDescription("Total number of Admin API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kong_admin_requests_total counter: %w", err)
	}

	m.adminRequestDuration, err = meter.Float64Histogram(
		"kong_admin_request_duration_seconds",
		metric.WithDescription("Admin API request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kong_admin_request_duration_seconds histogram: %w", err)
	}

	m.pluginPagesTotal, err = meter.Int64Counter(
		"kong_admin_plugin_pages_total",
		metric.WithDescription("Total number of plugin pages fetched while aggregating plugin stats"),
		metric.WithUnit("{page}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kong_admin_plugin_pages_total counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordToolCall records an MCP tool invocation. Status should be StatusSuccess
// or StatusError.
func (m *Metrics) RecordToolCall(ctx context.Context, tool, status string, duration time.Duration) {
	if m == nil || m.toolCallsTotal == nil || m.toolCallDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status),
	}

	m.toolCallsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolCallDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordAdminRequest records a single Admin API round trip.
//
// CARDINALITY NOTE: the endpoint is classified with ClassifyEndpoint and the
// status code is collapsed into its class, so entity ids and cursors never
// become label values.
func (m *Metrics) RecordAdminRequest(ctx context.Context, method, endpoint string, statusCode int, duration time.Duration) {
	if m == nil || m.adminRequestsTotal == nil || m.adminRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrEndpoint, ClassifyEndpoint(endpoint)),
		attribute.String(attrStatusClass, ClassifyStatusCode(statusCode)),
	}

	m.adminRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.adminRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordPluginPage counts one page fetched by the plugin aggregation loop.
func (m *Metrics) RecordPluginPage(ctx context.Context) {
	if m == nil || m.pluginPagesTotal == nil {
		return // Instrumentation not initialized
	}

	m.pluginPagesTotal.Add(ctx, 1)
}

package instrumentation

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// scrapeGlobalRegistry fetches the Prometheus text exposition of the global
// registry, which is where the OTel prometheus exporter registers.
func scrapeGlobalRegistry(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(promhttp.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("Failed to fetch metrics: %v", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 OK, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read metrics body: %v", err)
	}
	return string(body)
}

func newPrometheusProvider(t *testing.T, name string) *Provider {
	t.Helper()
	ctx := context.Background()
	provider, err := NewProvider(ctx, Config{
		ServiceName:     name,
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})
	if err != nil {
		t.Fatalf("Failed to create instrumentation provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	return provider
}

// TestAllMetricsExposedViaPrometheus verifies every metric defined in
// metrics.go is exposed via the Prometheus /metrics endpoint once recorded.
func TestAllMetricsExposedViaPrometheus(t *testing.T) {
	provider := newPrometheusProvider(t, "test-metrics-integration")
	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("Metrics should not be nil")
	}

	recordAllMetrics(context.Background(), metrics)
	metricsOutput := scrapeGlobalRegistry(t)

	// NOTE: These MUST match the metric names in metrics.go
	expectedMetrics := []struct {
		name        string
		isHistogram bool
	}{
		{"http_requests_total", false},
		{"http_request_duration_seconds", true},
		{"mcp_tool_calls_total", false},
		{"mcp_tool_call_duration_seconds", true},
		{"kong_admin_requests_total", false},
		{"kong_admin_request_duration_seconds", true},
		{"kong_admin_plugin_pages_total", false},
	}

	for _, m := range expectedMetrics {
		found := false
		if m.isHistogram {
			for _, suffix := range []string{"_bucket", "_sum", "_count"} {
				if containsMetric(metricsOutput, m.name+suffix) {
					found = true
					break
				}
			}
		} else {
			found = containsMetric(metricsOutput, m.name)
		}

		if !found {
			t.Errorf("FAIL: Missing metric %s", m.name)
		}
	}
}

// recordAllMetrics calls every Record* function once.
func recordAllMetrics(ctx context.Context, m *Metrics) {
	m.RecordHTTPRequest(ctx, "POST", "/mcp", 200, 10*time.Millisecond)
	m.RecordToolCall(ctx, "get_kong_status", StatusSuccess, 15*time.Millisecond)
	m.RecordAdminRequest(ctx, "GET", "/status", 200, 5*time.Millisecond)
	m.RecordPluginPage(ctx)
}

func containsMetric(metricsOutput, metricName string) bool {
	for _, line := range strings.Split(metricsOutput, "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "# TYPE "+metricName+" ") ||
			strings.HasPrefix(line, "# HELP "+metricName+" ") {
			return true
		}
		if strings.HasPrefix(line, metricName+"{") || strings.HasPrefix(line, metricName+" ") {
			return true
		}
	}
	return false
}

// TestMetricLabelsAreRecorded verifies cardinality controls survive export.
func TestMetricLabelsAreRecorded(t *testing.T) {
	provider := newPrometheusProvider(t, "test-metrics-labels")
	metrics := provider.Metrics()
	ctx := context.Background()

	metrics.RecordHTTPRequest(ctx, "POST", "/mcp", 201, 50*time.Millisecond)
	metrics.RecordToolCall(ctx, "get_consumer", StatusError, 10*time.Millisecond)
	metrics.RecordAdminRequest(ctx, "GET", "/consumers/jane-doe-unique", 404, 3*time.Millisecond)

	metricsOutput := scrapeGlobalRegistry(t)

	labelTests := []struct {
		description string
		expected    string
	}{
		{"HTTP method label", `method="POST"`},
		{"HTTP status label", `status="201"`},
		{"Tool label", `tool="get_consumer"`},
		{"Tool status label", `status="error"`},
		{"Classified endpoint", `endpoint="/consumers/:id"`},
		{"Status class", `status_class="4xx"`},
	}

	for _, tc := range labelTests {
		if !strings.Contains(metricsOutput, tc.expected) {
			t.Errorf("FAIL: Missing label %s (%s)", tc.expected, tc.description)
		}
	}

	if strings.Contains(metricsOutput, "jane-doe-unique") {
		t.Error("entity ids must not appear in metric labels")
	}
}

func TestDisabledProviderHasNoMetrics(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if provider.Enabled() {
		t.Error("provider should report disabled")
	}
	if provider.Metrics() != nil {
		t.Error("disabled provider should not create metrics")
	}
	if provider.AuditLogger() == nil {
		t.Error("audit logger should be available even when disabled")
	}
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled:         true,
		MetricsExporter: "graphite",
	})
	if err == nil {
		t.Fatal("expected error for unsupported metrics exporter")
	}
}

func TestNilProvider(t *testing.T) {
	var p *Provider
	if p.Enabled() {
		t.Error("nil provider should be disabled")
	}
	if p.Metrics() != nil || p.AuditLogger() != nil {
		t.Error("nil provider should return nil components")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown on nil provider: %v", err)
	}
}

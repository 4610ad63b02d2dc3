package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/giantswarm/mcp-kong/internal/instrumentation"
)

func TestNewMetricsServer_RequiresProvider(t *testing.T) {
	_, err := NewMetricsServer(MetricsServerConfig{Addr: ":9090"})
	if err == nil || !strings.Contains(err.Error(), "instrumentation provider is required") {
		t.Fatalf("NewMetricsServer() error = %v, want missing provider error", err)
	}
}

func TestNewMetricsServer_Addr(t *testing.T) {
	provider := createTestProvider(t)

	for addr, want := range map[string]string{
		"":               DefaultMetricsAddr,
		"127.0.0.1:9464": "127.0.0.1:9464",
	} {
		server, err := NewMetricsServer(MetricsServerConfig{Addr: addr, InstrumentationProvider: provider})
		if err != nil {
			t.Fatalf("NewMetricsServer(%q) error = %v", addr, err)
		}
		if got := server.Addr(); got != want {
			t.Errorf("NewMetricsServer(%q).Addr() = %q, want %q", addr, got, want)
		}
	}
}

func TestMetricsServer_Routes(t *testing.T) {
	tests := []struct {
		name         string
		endpoint     string
		path         string
		wantStatuses []int
	}{
		// promhttp answers 500 when another test's provider registered the
		// same families on the default registry.
		{name: "default metrics path", path: "/metrics", wantStatuses: []int{http.StatusOK, http.StatusInternalServerError}},
		{name: "custom metrics path", endpoint: "/internal/metrics", path: "/internal/metrics", wantStatuses: []int{http.StatusOK, http.StatusInternalServerError}},
		{name: "default path unused with custom endpoint", endpoint: "/internal/metrics", path: "/metrics", wantStatuses: []int{http.StatusNotFound}},
		{name: "healthz", path: "/healthz", wantStatuses: []int{http.StatusOK}},
		{name: "mcp endpoint not served", path: "/mcp", wantStatuses: []int{http.StatusNotFound}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := createTestProviderWithEndpoint(t, tt.endpoint)
			server, err := NewMetricsServer(MetricsServerConfig{InstrumentationProvider: provider})
			if err != nil {
				t.Fatalf("NewMetricsServer() error = %v", err)
			}

			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if !slices.Contains(tt.wantStatuses, rec.Code) {
				t.Errorf("GET %s returned %d, want one of %v", tt.path, rec.Code, tt.wantStatuses)
			}
			if tt.path == "/healthz" && rec.Body.String() != "ok" {
				t.Errorf("GET /healthz body = %q, want ok", rec.Body.String())
			}
		})
	}
}

func TestMetricsServer_StartAndShutdown(t *testing.T) {
	server, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    "127.0.0.1:0",
		InstrumentationProvider: createTestProvider(t),
	})
	if err != nil {
		t.Fatalf("NewMetricsServer() error = %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("Start() returned %v, want http.ErrServerClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Timeout waiting for server to stop")
	}
}

func TestMetricsServer_ShutdownWithoutStart(t *testing.T) {
	provider := createTestProvider(t)

	server, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    "127.0.0.1:0",
		InstrumentationProvider: provider,
	})
	if err != nil {
		t.Fatalf("NewMetricsServer() error = %v", err)
	}

	// Shutdown without starting should not error
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() without Start() error = %v", err)
	}
}

// createTestProvider creates an instrumentation provider for testing.
func createTestProvider(t *testing.T) *instrumentation.Provider {
	t.Helper()
	return createTestProviderWithEndpoint(t, "")
}

func createTestProviderWithEndpoint(t *testing.T, endpoint string) *instrumentation.Provider {
	t.Helper()
	ctx := context.Background()
	config := instrumentation.Config{
		Enabled:         true,
		ServiceName:     "mcp-kong-test",
		MetricsExporter: instrumentation.ExporterPrometheus,
		TracingExporter: instrumentation.ExporterNone,

		PrometheusEndpoint: endpoint,
	}
	provider, err := instrumentation.NewProvider(ctx, config)
	if err != nil {
		t.Fatalf("Failed to create test provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	return provider
}

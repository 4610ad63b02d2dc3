package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-kong/internal/instrumentation"
)

func TestResponseWriter_CapturesStatusCode(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{name: "200 OK", statusCode: http.StatusOK},
		{name: "202 Accepted", statusCode: http.StatusAccepted},
		{name: "404 Not Found", statusCode: http.StatusNotFound},
		{name: "502 Bad Gateway", statusCode: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rw := newResponseWriter(httptest.NewRecorder())

			rw.WriteHeader(tt.statusCode)

			assert.Equal(t, tt.statusCode, rw.statusCode)
			assert.True(t, rw.written)
		})
	}
}

func TestResponseWriter_DefaultsTo200(t *testing.T) {
	rw := newResponseWriter(httptest.NewRecorder())

	_, err := rw.Write([]byte(`{"jsonrpc":"2.0"}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rw.statusCode)
	assert.True(t, rw.written)
}

func TestResponseWriter_OnlyFirstWriteHeaderCounts(t *testing.T) {
	rw := newResponseWriter(httptest.NewRecorder())

	rw.WriteHeader(http.StatusAccepted)
	rw.WriteHeader(http.StatusBadRequest)

	assert.Equal(t, http.StatusAccepted, rw.statusCode)
}

func TestResponseWriter_FlushAndUnwrap(t *testing.T) {
	recorder := httptest.NewRecorder()
	rw := newResponseWriter(recorder)

	rw.Flush()

	assert.True(t, recorder.Flushed)
	assert.Equal(t, recorder, rw.Unwrap())
}

func TestNormalizePath(t *testing.T) {
	known := map[string]struct{}{
		"/mcp":     {},
		"/sse":     {},
		"/message": {},
		"/healthz": {},
	}

	tests := []struct {
		input    string
		expected string
	}{
		{input: "/mcp", expected: "/mcp"},
		{input: "/sse", expected: "/sse"},
		{input: "/message", expected: "/message"},
		{input: "/healthz", expected: "/healthz"},
		{input: "/mcp/abc123", expected: pathOther},
		{input: "/wp-login.php", expected: pathOther},
		{input: "/", expected: pathOther},
		{input: "", expected: pathOther},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizePath(tt.input, known))
		})
	}
}

func TestHTTPMetrics_NilProviderPassesThrough(t *testing.T) {
	body := `{"status":"ok"}`
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(body))
	})

	rec := httptest.NewRecorder()
	HTTPMetrics(nil, "/mcp")(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, body, rec.Body.String())
}

func TestHTTPMetrics_RecordsNormalizedPaths(t *testing.T) {
	ctx := context.Background()
	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
		Enabled:         true,
		ServiceName:     "mcp-kong-middleware-test",
		MetricsExporter: instrumentation.ExporterPrometheus,
		TracingExporter: instrumentation.ExporterNone,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mcp" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	wrapped := HTTPMetrics(provider, "/mcp")(handler)

	for _, path := range []string{"/mcp", "/admin.php", "/.env"} {
		wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	paths := map[string]bool{}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "http_requests") {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "path" {
					paths[l.GetValue()] = true
				}
			}
		}
	}

	assert.True(t, paths["/mcp"], "expected /mcp series")
	assert.True(t, paths[pathOther], "expected unknown paths folded into %q", pathOther)
	assert.False(t, paths["/admin.php"])
	assert.False(t, paths["/.env"])
}

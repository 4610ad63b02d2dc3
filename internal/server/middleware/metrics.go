package middleware

import (
	"net/http"
	"time"

	"github.com/giantswarm/mcp-kong/internal/instrumentation"
)

// pathOther replaces request paths that are not registered routes.
const pathOther = "other"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader captures the status code before writing the header.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

// Write marks the response as started.
func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.written = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap returns the underlying ResponseWriter for http.ResponseController.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Flush implements http.Flusher; SSE streams depend on it.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// HTTPMetrics records http_requests_total and http_request_duration_seconds.
//
// Only the paths in knownPaths are used as label values; every other path is
// recorded as "other", so scanners probing random URLs cannot grow the
// series count. A nil or disabled provider makes the middleware a no-op.
func HTTPMetrics(provider *instrumentation.Provider, knownPaths ...string) func(http.Handler) http.Handler {
	known := make(map[string]struct{}, len(knownPaths))
	for _, p := range knownPaths {
		known[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		if provider == nil || !provider.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			provider.Metrics().RecordHTTPRequest(
				r.Context(),
				r.Method,
				normalizePath(r.URL.Path, known),
				wrapped.statusCode,
				time.Since(start),
			)
		})
	}
}

func normalizePath(path string, known map[string]struct{}) string {
	if _, ok := known[path]; ok {
		return path
	}
	return pathOther
}

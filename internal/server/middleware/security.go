package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultMaxRequestBytes bounds JSON-RPC request bodies on the HTTP transports.
const DefaultMaxRequestBytes int64 = 1 << 20

// SecurityHeaders adds security headers to every response. The server only
// returns JSON and event streams, so the content security policy denies
// everything. With enableHSTS, Strict-Transport-Security is also sent on
// plain HTTP, for deployments behind a TLS-terminating proxy.
func SecurityHeaders(enableHSTS bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Cache-Control", "no-store")

			if r.TLS != nil || enableHSTS {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CORS answers cross-origin requests from the configured origins. The MCP
// session header is allowed and exposed so browser clients can keep a
// streamable HTTP session.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if _, ok := allowed[origin]; ok && origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Mcp-Session-Id, Mcp-Protocol-Version")
			w.Header().Set("Access-Control-Expose-Headers", "Mcp-Session-Id")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ValidateAllowedOrigins parses a comma-separated origin list and returns
// the origins normalized to scheme://host[:port].
func ValidateAllowedOrigins(origins string) ([]string, error) {
	if origins == "" {
		return nil, nil
	}

	parts := strings.Split(origins, ",")
	validated := make([]string, 0, len(parts))

	for _, origin := range parts {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}

		u, err := url.Parse(origin)
		if err != nil {
			return nil, fmt.Errorf("invalid origin URL %q: %w", origin, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("origin %q must use http or https scheme", origin)
		}
		if u.Host == "" {
			return nil, fmt.Errorf("origin %q must include a host", origin)
		}
		if (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
			return nil, fmt.Errorf("origin %q must not include a path, query or fragment", origin)
		}

		validated = append(validated, u.Scheme+"://"+u.Host)
	}

	return validated, nil
}

// MaxRequestSize limits request bodies to maxBytes. Reading past the limit
// fails; zero or negative disables the limit.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Chain applies middlewares so the first one listed is the outermost.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

package logging

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation  = "operation"
	KeyMethod     = "method"
	KeyEndpoint   = "endpoint"
	KeyStatusCode = "status_code"
	KeyEntity     = "entity"
	KeyEntityID   = "entity_id"
	KeyPages      = "pages"
	KeyDuration   = "duration"
	KeyStatus     = "status"
	KeyError      = "error"
	KeyHost       = "host"
	KeyTool       = "tool"
	KeyTransport  = "transport"
)

// Status values for consistent logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ipv4Regex matches IPv4 addresses for sanitization.
var ipv4Regex = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)

// ipv6Regex matches IPv6 addresses for sanitization.
// This regex matches common IPv6 formats including:
// - Full form: 2001:0db8:85a3:0000:0000:8a2e:0370:7334
// - Compressed form: 2001:db8:85a3::8a2e:370:7334
// - Bracketed form (used in URLs): [2001:db8::1]
var ipv6Regex = regexp.MustCompile(`\[?([0-9a-fA-F]{0,4}:){2,7}[0-9a-fA-F]{0,4}\]?`)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Method returns a slog attribute for an HTTP method.
func Method(method string) slog.Attr {
	return slog.String(KeyMethod, method)
}

// Endpoint returns a slog attribute for an Admin API endpoint. The query string
// is dropped because it carries pagination cursors and filters.
func Endpoint(endpoint string) slog.Attr {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	return slog.String(KeyEndpoint, endpoint)
}

// StatusCode returns a slog attribute for an HTTP status code.
func StatusCode(code int) slog.Attr {
	return slog.Int(KeyStatusCode, code)
}

// Entity returns a slog attribute for an entity kind.
func Entity(kind string) slog.Attr {
	return slog.String(KeyEntity, kind)
}

// EntityID returns a slog attribute for an entity id or name.
func EntityID(id string) slog.Attr {
	return slog.String(KeyEntityID, id)
}

// Pages returns a slog attribute for a page count.
func Pages(n int) slog.Attr {
	return slog.Int(KeyPages, n)
}

// Duration returns a slog attribute for an elapsed time.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Transport returns a slog attribute for the MCP transport name.
func Transport(name string) slog.Attr {
	return slog.String(KeyTransport, name)
}

// Err returns a slog attribute for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// SanitizedErr returns a slog attribute for an error with IP addresses redacted.
// Transport errors from the HTTP client embed the dialed address, which should
// not end up in logs verbatim.
func SanitizedErr(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	sanitized := SanitizeHost(err.Error())
	return slog.String(KeyError, sanitized)
}

// Host returns a slog attribute for a host with IP addresses sanitized.
func Host(host string) slog.Attr {
	return slog.String(KeyHost, SanitizeHost(host))
}

// SanitizeHost returns a sanitized version of the host for logging purposes.
// IPv4 and IPv6 addresses are redacted while hostnames, schemes and ports are kept.
//
// Examples:
//   - "http://192.168.1.100:8001" -> "http://<redacted-ip>:8001"
//   - "http://kong-admin.kong.svc:8001" -> "http://kong-admin.kong.svc:8001"
//   - "192.168.1.100" -> "<redacted-ip>"
//   - "http://[2001:db8::1]:8001" -> "http://<redacted-ip>:8001"
//   - "" -> "<empty>"
func SanitizeHost(host string) string {
	if host == "" {
		return "<empty>"
	}

	redactIPs := func(s string) string {
		result := ipv4Regex.ReplaceAllString(s, "<redacted-ip>")
		result = ipv6Regex.ReplaceAllString(result, "<redacted-ip>")
		return result
	}

	if !strings.Contains(host, "://") {
		return redactIPs(host)
	}

	parsed, err := url.Parse(host)
	if err != nil {
		return redactIPs(host)
	}

	if ipv4Regex.MatchString(parsed.Host) || ipv6Regex.MatchString(parsed.Host) {
		parsed.Host = redactIPs(parsed.Host)
		return parsed.String()
	}

	return host
}

// SanitizeToken returns a masked version of a token for logging.
// It returns a length indicator without exposing any token content.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}

// Package middleware provides HTTP middleware for the HTTP transports of the
// Kong MCP server: security headers, CORS, request size limits and request
// metrics.
package middleware

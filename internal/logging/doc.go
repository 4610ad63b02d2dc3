// Package logging provides structured logging utilities for the mcp-kong application.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Logger construction with text or JSON output on stderr
//   - Consistent attribute naming for Admin API calls and tool invocations
//   - Host/URL sanitization so Admin API addresses are not leaked
//   - Token masking
//
// # Usage Patterns
//
//	logger, err := logging.New(logging.Options{Format: "json", Debug: true})
//	if err != nil {
//		return err
//	}
//	logger.Debug("admin request",
//	    logging.Method("GET"),
//	    logging.Endpoint("/services?size=100"),
//	    logging.StatusCode(200))
//
// # Security Considerations
//
//   - Admin API URLs have IP addresses redacted
//   - Endpoint attributes drop the query string, which carries cursors and filters
//   - Admin tokens are never logged directly
package logging

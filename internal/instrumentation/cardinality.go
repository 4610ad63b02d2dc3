package instrumentation

import (
	"net/url"
	"strings"
)

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics explosion.
//
// # Warning
//
// Admin API endpoints embed entity ids and pagination cursors. Recording them
// verbatim would create one time series per entity, so always pass endpoints
// through ClassifyEndpoint before using them as label values.

// EndpointOther is the label used for endpoints outside the known set.
const EndpointOther = "other"

// knownCollections are the Admin API collections the client talks to.
var knownCollections = map[string]bool{
	"plugins":   true,
	"services":  true,
	"routes":    true,
	"consumers": true,
}

// knownRoots are single-segment endpoints that carry no id.
var knownRoots = map[string]bool{
	"status":  true,
	"metrics": true,
	"health":  true,
}

// ClassifyEndpoint maps an Admin API endpoint to a bounded label value.
//
// # Classification Rules
//
//	| Endpoint                        | Classification   |
//	|---------------------------------|------------------|
//	| "" or "/"                       | /                |
//	| /status, /metrics, /health      | unchanged        |
//	| /services?size=10               | /services        |
//	| /services/<id>                  | /services/:id    |
//	| http://host:8001/plugins?x=y    | /plugins         |
//	| anything else                   | other            |
//
// The query string and any scheme/host prefix are ignored.
func ClassifyEndpoint(endpoint string) string {
	path := endpoint
	if u, err := url.Parse(endpoint); err == nil {
		path = u.Path
	} else if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	path = strings.Trim(path, "/")
	if path == "" {
		return "/"
	}

	segments := strings.Split(path, "/")
	switch len(segments) {
	case 1:
		if knownRoots[segments[0]] || knownCollections[segments[0]] {
			return "/" + segments[0]
		}
	case 2:
		if knownCollections[segments[0]] && segments[1] != "" {
			return "/" + segments[0] + "/:id"
		}
	}
	return EndpointOther
}

// ClassifyStatusCode collapses an HTTP status code into its class ("2xx",
// "4xx", ...). A zero status code means no response was received and is
// reported as "none".
func ClassifyStatusCode(statusCode int) string {
	switch {
	case statusCode <= 0:
		return "none"
	case statusCode < 200:
		return "1xx"
	case statusCode < 300:
		return "2xx"
	case statusCode < 400:
		return "3xx"
	case statusCode < 500:
		return "4xx"
	case statusCode < 600:
		return "5xx"
	default:
		return EndpointOther
	}
}

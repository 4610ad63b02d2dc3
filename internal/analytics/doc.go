// Package analytics builds the summary reports behind the status, metrics,
// plugin and health tools.
//
// Each report wraps the Admin API payload in an envelope carrying a
// generation timestamp and a fixed list of operational recommendations.
// Prometheus text exposition from /metrics is parsed with expfmt and sorted
// into kong, database, http and latency groups.
package analytics

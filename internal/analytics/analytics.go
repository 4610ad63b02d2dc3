package analytics

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/mcp-kong/internal/admin"
	"github.com/giantswarm/mcp-kong/internal/entities"
)

// Source is the subset of the Admin API client the analytics readers need.
// *admin.Client implements it.
type Source interface {
	GetStatus(ctx context.Context) (admin.RawJSON, error)
	GetNodeInfo(ctx context.Context) (admin.RawJSON, error)
	GetMetrics(ctx context.Context) (admin.RawJSON, error)
	GetHealth(ctx context.Context) (admin.RawJSON, error)
	GetPluginStats(ctx context.Context) (*admin.PluginList, error)
}

// timestampLayout matches the millisecond ISO-8601 form used by the Admin API tooling.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// now is replaced in tests.
var now = time.Now

func timestamp() string {
	return now().UTC().Format(timestampLayout)
}

var (
	statusRecommendations = []string{
		"Check database connectivity if status shows issues",
		"Monitor memory usage for potential resource constraints",
		"Verify configuration hash matches expected values",
	}
	metricsRecommendations = []string{
		"Monitor kong_http_requests_total for traffic patterns",
		"Check kong_latency_bucket for performance issues",
		"Watch kong_upstream_target_health for backend health",
	}
	pluginRecommendations = []string{
		"Review enabled plugins for performance impact",
		"Check plugin configurations for security settings",
		"Monitor plugin-specific metrics for anomalies",
	}
	healthRecommendations = []string{
		"Ensure Kong is responding to health checks",
		"Monitor database connectivity",
		"Check for any configuration errors",
	}
)

// StatusReport is the envelope returned by Status.
type StatusReport struct {
	Metadata struct {
		Timestamp   string        `json:"timestamp"`
		KongVersion admin.RawJSON `json:"kongVersion"`
		NodeID      admin.RawJSON `json:"nodeId"`
	} `json:"metadata"`
	Status struct {
		Database      admin.RawJSON `json:"database"`
		Server        admin.RawJSON `json:"server"`
		Memory        admin.RawJSON `json:"memory"`
		Configuration admin.RawJSON `json:"configuration"`
	} `json:"status"`
	Recommendations []string `json:"recommendations"`
}

type rawStatus struct {
	Database          admin.RawJSON `json:"database"`
	Server            admin.RawJSON `json:"server"`
	Memory            admin.RawJSON `json:"memory"`
	ConfigurationHash admin.RawJSON `json:"configuration_hash"`
	Configuration     admin.RawJSON `json:"configuration"`
}

type rawNode struct {
	Version admin.RawJSON `json:"version"`
	NodeID  admin.RawJSON `json:"node_id"`
}

// Status combines /status and the node information document. Both are
// fetched concurrently; a /status failure takes precedence when both fail.
// Neither fetch cancels the other, so each error keeps its own kind.
func Status(ctx context.Context, src Source) (*StatusReport, error) {
	var statusRaw, nodeRaw admin.RawJSON
	var statusErr, nodeErr error

	var g errgroup.Group
	g.Go(func() error {
		statusRaw, statusErr = src.GetStatus(ctx)
		return statusErr
	})
	g.Go(func() error {
		nodeRaw, nodeErr = src.GetNodeInfo(ctx)
		return nodeErr
	})
	_ = g.Wait()

	if statusErr != nil {
		return nil, statusErr
	}
	if nodeErr != nil {
		return nil, nodeErr
	}

	var st rawStatus
	decodeObject(statusRaw, &st)
	var node rawNode
	decodeObject(nodeRaw, &node)

	report := &StatusReport{Recommendations: statusRecommendations}
	report.Metadata.Timestamp = timestamp()
	report.Metadata.KongVersion = node.Version
	report.Metadata.NodeID = node.NodeID
	report.Status.Database = st.Database
	report.Status.Server = st.Server
	report.Status.Memory = st.Memory
	report.Status.Configuration = st.ConfigurationHash
	if report.Status.Configuration.IsNull() {
		report.Status.Configuration = st.Configuration
	}
	return report, nil
}

// PluginReport is the envelope returned by PluginStats.
type PluginReport struct {
	Metadata struct {
		Timestamp    string `json:"timestamp"`
		TotalPlugins int    `json:"totalPlugins"`
	} `json:"metadata"`
	Plugins         []entities.Plugin `json:"plugins"`
	Recommendations []string          `json:"recommendations"`
}

// PluginStats aggregates every configured plugin. Records that are not JSON
// objects are skipped; every object record is counted whatever its field types.
func PluginStats(ctx context.Context, src Source) (*PluginReport, error) {
	list, err := src.GetPluginStats(ctx)
	if err != nil {
		return nil, err
	}

	report := &PluginReport{
		Plugins:         []entities.Plugin{},
		Recommendations: pluginRecommendations,
	}
	if list != nil {
		for _, raw := range list.Data {
			if !raw.IsObject() {
				continue
			}
			report.Plugins = append(report.Plugins, entities.NormalizePlugin(raw))
		}
	}
	report.Metadata.Timestamp = timestamp()
	report.Metadata.TotalPlugins = len(report.Plugins)
	return report, nil
}

// HealthReport is the envelope returned by Health.
type HealthReport struct {
	Metadata struct {
		Timestamp   string `json:"timestamp"`
		HealthCheck string `json:"healthCheck"`
	} `json:"metadata"`
	Health struct {
		Status    admin.RawJSON `json:"status"`
		Details   admin.RawJSON `json:"details"`
		Timestamp admin.RawJSON `json:"timestamp"`
	} `json:"health"`
	Recommendations []string `json:"recommendations"`
}

type rawHealth struct {
	Status    admin.RawJSON `json:"status"`
	Details   admin.RawJSON `json:"details"`
	Timestamp admin.RawJSON `json:"timestamp"`
}

// Health reads /health. A missing or empty status is reported as "unknown"
// and missing details as an empty object.
func Health(ctx context.Context, src Source) (*HealthReport, error) {
	raw, err := src.GetHealth(ctx)
	if err != nil {
		return nil, err
	}

	var h rawHealth
	decodeObject(raw, &h)

	report := &HealthReport{Recommendations: healthRecommendations}
	report.Metadata.Timestamp = timestamp()
	report.Metadata.HealthCheck = "Kong OSS Health Status"
	report.Health.Status = h.Status
	if text, ok := h.Status.Text(); h.Status.IsNull() || (ok && text == "") {
		report.Health.Status = admin.RawJSON(`"unknown"`)
	}
	report.Health.Details = h.Details
	if h.Details.IsNull() {
		report.Health.Details = emptyObject
	}
	report.Health.Timestamp = h.Timestamp
	return report, nil
}

var emptyObject = admin.RawJSON(`{}`)

// decodeObject decodes raw into v when raw is a JSON object and leaves v
// untouched otherwise.
func decodeObject(raw admin.RawJSON, v any) {
	if raw.IsObject() {
		_ = raw.Decode(v)
	}
}

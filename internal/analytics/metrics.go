package analytics

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"

	"github.com/giantswarm/mcp-kong/internal/admin"
)

// Metric groups in the Metrics envelope.
const (
	GroupKong     = "kong"
	GroupDatabase = "database"
	GroupHTTP     = "http"
	GroupLatency  = "latency"
)

// MetricsReport is the envelope returned by Metrics.
type MetricsReport struct {
	Metadata struct {
		Timestamp   string `json:"timestamp"`
		MetricsType string `json:"metricsType"`
		ParseError  string `json:"parseError,omitempty"`
	} `json:"metadata"`
	Metrics struct {
		Kong     any `json:"kong"`
		Database any `json:"database"`
		HTTP     any `json:"http"`
		Latency  any `json:"latency"`
	} `json:"metrics"`
	Recommendations []string `json:"recommendations"`
}

// MetricFamily is one parsed Prometheus metric family.
type MetricFamily struct {
	Help    string   `json:"help,omitempty"`
	Type    string   `json:"type"`
	Samples []Sample `json:"samples"`
}

// Sample is one series of a family. Counters, gauges and untyped metrics set
// Value; histograms and summaries set Count, Sum and Buckets or Quantiles.
// Non-finite values are omitted.
type Sample struct {
	Labels    map[string]string  `json:"labels,omitempty"`
	Value     *float64           `json:"value,omitempty"`
	Count     *uint64            `json:"count,omitempty"`
	Sum       *float64           `json:"sum,omitempty"`
	Buckets   map[string]uint64  `json:"buckets,omitempty"`
	Quantiles map[string]float64 `json:"quantiles,omitempty"`
}

// Metrics reads /metrics. Prometheus text bodies are parsed and grouped by
// family name; JSON object bodies have their four groups passed through.
func Metrics(ctx context.Context, src Source) (*MetricsReport, error) {
	raw, err := src.GetMetrics(ctx)
	if err != nil {
		return nil, err
	}

	report := &MetricsReport{Recommendations: metricsRecommendations}
	report.Metadata.Timestamp = timestamp()
	report.Metadata.MetricsType = "Prometheus format"

	if text, ok := raw.Text(); ok {
		groups, err := ParsePrometheus(text)
		if err != nil {
			report.Metadata.ParseError = err.Error()
			groups = emptyGroups()
		}
		report.Metrics.Kong = groups[GroupKong]
		report.Metrics.Database = groups[GroupDatabase]
		report.Metrics.HTTP = groups[GroupHTTP]
		report.Metrics.Latency = groups[GroupLatency]
		return report, nil
	}

	var passthrough struct {
		Kong     admin.RawJSON `json:"kong"`
		Database admin.RawJSON `json:"database"`
		HTTP     admin.RawJSON `json:"http"`
		Latency  admin.RawJSON `json:"latency"`
	}
	decodeObject(raw, &passthrough)
	report.Metrics.Kong = orEmpty(passthrough.Kong)
	report.Metrics.Database = orEmpty(passthrough.Database)
	report.Metrics.HTTP = orEmpty(passthrough.HTTP)
	report.Metrics.Latency = orEmpty(passthrough.Latency)
	return report, nil
}

func orEmpty(raw admin.RawJSON) admin.RawJSON {
	if raw.IsNull() {
		return emptyObject
	}
	return raw
}

func emptyGroups() map[string]map[string]MetricFamily {
	return map[string]map[string]MetricFamily{
		GroupKong:     {},
		GroupDatabase: {},
		GroupHTTP:     {},
		GroupLatency:  {},
	}
}

// ParsePrometheus parses a Prometheus text exposition and sorts the families
// into the four groups, keyed by family name.
func ParsePrometheus(text string) (map[string]map[string]MetricFamily, error) {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	parser := expfmt.NewTextParser(model.UTF8Validation)
	families, err := parser.TextToMetricFamilies(strings.NewReader(text))
	if err != nil {
		return nil, err
	}

	groups := emptyGroups()
	for name, mf := range families {
		groups[Classify(name)][name] = convertFamily(mf)
	}
	return groups, nil
}

// Classify returns the group a metric family belongs to.
func Classify(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "latency"):
		return GroupLatency
	case strings.Contains(lower, "http"):
		return GroupHTTP
	case strings.Contains(lower, "datastore"),
		strings.Contains(lower, "database"),
		strings.Contains(lower, "db"):
		return GroupDatabase
	default:
		return GroupKong
	}
}

func convertFamily(mf *dto.MetricFamily) MetricFamily {
	out := MetricFamily{
		Help:    mf.GetHelp(),
		Type:    strings.ToLower(mf.GetType().String()),
		Samples: make([]Sample, 0, len(mf.GetMetric())),
	}
	for _, m := range mf.GetMetric() {
		out.Samples = append(out.Samples, convertMetric(mf.GetType(), m))
	}
	return out
}

func convertMetric(kind dto.MetricType, m *dto.Metric) Sample {
	s := Sample{}
	if pairs := m.GetLabel(); len(pairs) > 0 {
		s.Labels = make(map[string]string, len(pairs))
		for _, lp := range pairs {
			s.Labels[lp.GetName()] = lp.GetValue()
		}
	}

	switch kind {
	case dto.MetricType_COUNTER:
		s.Value = finite(m.GetCounter().GetValue())
	case dto.MetricType_GAUGE:
		s.Value = finite(m.GetGauge().GetValue())
	case dto.MetricType_HISTOGRAM, dto.MetricType_GAUGE_HISTOGRAM:
		h := m.GetHistogram()
		count := h.GetSampleCount()
		s.Count = &count
		s.Sum = finite(h.GetSampleSum())
		s.Buckets = make(map[string]uint64, len(h.GetBucket()))
		for _, b := range h.GetBucket() {
			s.Buckets[formatBound(b.GetUpperBound())] = b.GetCumulativeCount()
		}
	case dto.MetricType_SUMMARY:
		sum := m.GetSummary()
		count := sum.GetSampleCount()
		s.Count = &count
		s.Sum = finite(sum.GetSampleSum())
		s.Quantiles = make(map[string]float64, len(sum.GetQuantile()))
		for _, q := range sum.GetQuantile() {
			if v := q.GetValue(); !math.IsNaN(v) && !math.IsInf(v, 0) {
				s.Quantiles[formatBound(q.GetQuantile())] = v
			}
		}
	default:
		s.Value = finite(m.GetUntyped().GetValue())
	}
	return s
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// FamilyNames returns the sorted family names of a group, mainly for display.
func FamilyNames(group map[string]MetricFamily) []string {
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

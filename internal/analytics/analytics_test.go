package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-kong/internal/admin"
)

type fakeSource struct {
	status, node, metrics, health admin.RawJSON
	plugins                       *admin.PluginList

	statusErr, nodeErr, metricsErr, healthErr, pluginsErr error

	calls atomic.Int32
}

func (f *fakeSource) GetStatus(context.Context) (admin.RawJSON, error) {
	f.calls.Add(1)
	return f.status, f.statusErr
}

func (f *fakeSource) GetNodeInfo(context.Context) (admin.RawJSON, error) {
	f.calls.Add(1)
	return f.node, f.nodeErr
}

func (f *fakeSource) GetMetrics(context.Context) (admin.RawJSON, error) {
	f.calls.Add(1)
	return f.metrics, f.metricsErr
}

func (f *fakeSource) GetHealth(context.Context) (admin.RawJSON, error) {
	f.calls.Add(1)
	return f.health, f.healthErr
}

func (f *fakeSource) GetPluginStats(context.Context) (*admin.PluginList, error) {
	f.calls.Add(1)
	return f.plugins, f.pluginsErr
}

func fixedClock(t *testing.T) {
	t.Helper()
	orig := now
	now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 45, 123000000, time.UTC) }
	t.Cleanup(func() { now = orig })
}

const fixedTimestamp = "2024-03-01T12:30:45.123Z"

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestStatus(t *testing.T) {
	fixedClock(t)
	src := &fakeSource{
		status: admin.RawJSON(`{
			"database": {"reachable": true},
			"server": {"connections_active": 3},
			"memory": {"lua_shared_dicts": {}},
			"configuration_hash": "abc123"
		}`),
		node: admin.RawJSON(`{"version": "3.6.1", "node_id": "node-1", "hostname": "kong-0"}`),
	}

	report, err := Status(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())

	assert.JSONEq(t, `{
		"metadata": {"timestamp": "`+fixedTimestamp+`", "kongVersion": "3.6.1", "nodeId": "node-1"},
		"status": {
			"database": {"reachable": true},
			"server": {"connections_active": 3},
			"memory": {"lua_shared_dicts": {}},
			"configuration": "abc123"
		},
		"recommendations": [
			"Check database connectivity if status shows issues",
			"Monitor memory usage for potential resource constraints",
			"Verify configuration hash matches expected values"
		]
	}`, mustJSON(t, report))
}

func TestStatus_MissingFieldsAreNull(t *testing.T) {
	src := &fakeSource{status: admin.RawJSON(`"plain text"`), node: admin.RawJSON(`null`)}

	report, err := Status(context.Background(), src)
	require.NoError(t, err)

	out := mustJSON(t, report)
	assert.Contains(t, out, `"kongVersion":null`)
	assert.Contains(t, out, `"database":null`)
	assert.Contains(t, out, `"configuration":null`)
}

func TestStatus_ConfigurationFallback(t *testing.T) {
	src := &fakeSource{
		status: admin.RawJSON(`{"configuration": {"hash": "h"}}`),
		node:   admin.RawJSON(`{}`),
	}

	report, err := Status(context.Background(), src)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hash":"h"}`, string(report.Status.Configuration))
}

func TestStatus_ErrorPrecedence(t *testing.T) {
	statusErr := &admin.UpstreamError{StatusCode: 500, Detail: "boom"}
	nodeErr := &admin.NetworkError{Err: errors.New("refused")}

	_, err := Status(context.Background(), &fakeSource{statusErr: statusErr, nodeErr: nodeErr})
	assert.Same(t, statusErr, err)

	_, err = Status(context.Background(), &fakeSource{status: admin.RawJSON(`{}`), nodeErr: nodeErr})
	assert.Same(t, nodeErr, err)
}

func TestStatus_NodeFailureDoesNotCancelStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"boom"}`))
		case "/status":
			select {
			case <-time.After(300 * time.Millisecond):
			case <-r.Context().Done():
				return
			}
			_, _ = w.Write([]byte(`{"database":{"reachable":true}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client, err := admin.New(admin.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = Status(context.Background(), client)
	require.Error(t, err)

	var upstream *admin.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
	assert.Equal(t, "Admin API Error (Status 500): boom", err.Error())
	assert.NotErrorIs(t, err, admin.ErrNetwork)
}

func TestPluginStats(t *testing.T) {
	fixedClock(t)
	src := &fakeSource{plugins: &admin.PluginList{Data: []admin.RawJSON{
		admin.RawJSON(`{"id":"p1","name":"cors","enabled":true,"route":{"id":"r1"},"config":{},"created_at":1,"updated_at":2}`),
		admin.RawJSON(`"garbage"`),
		admin.RawJSON(`{"id":"p2","name":"key-auth","enabled":false}`),
	}}}

	report, err := PluginStats(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, fixedTimestamp, report.Metadata.Timestamp)
	assert.Equal(t, 2, report.Metadata.TotalPlugins)
	require.Len(t, report.Plugins, 2)
	assert.JSONEq(t, `{
		"id":"p1","name":"cors","enabled":true,
		"serviceId":null,"routeId":"r1","consumerId":null,
		"config":{},"createdAt":1,"updatedAt":2
	}`, mustJSON(t, report.Plugins[0]))
	assert.Len(t, report.Recommendations, 3)
}

func TestPluginStats_MismatchedFieldTypesAreCounted(t *testing.T) {
	src := &fakeSource{plugins: &admin.PluginList{Data: []admin.RawJSON{
		admin.RawJSON(`{"id":"p1","name":"cors","enabled":"true","created_at":1700000000.5}`),
		admin.RawJSON(`{"id":2,"name":"acl","service":{"id":7},"route":"r1"}`),
		admin.RawJSON(`{"id":"p3","name":"key-auth","enabled":true}`),
	}}}

	report, err := PluginStats(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Metadata.TotalPlugins)
	require.Len(t, report.Plugins, 3)
	assert.JSONEq(t, `"true"`, string(report.Plugins[0].Enabled))
	assert.JSONEq(t, `1700000000.5`, string(report.Plugins[0].CreatedAt))
	assert.JSONEq(t, `2`, string(report.Plugins[1].ID))
	assert.JSONEq(t, `7`, string(report.Plugins[1].ServiceID))
	assert.True(t, report.Plugins[1].RouteID.IsNull())
}

func TestPluginStats_Empty(t *testing.T) {
	report, err := PluginStats(context.Background(), &fakeSource{plugins: &admin.PluginList{}})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Metadata.TotalPlugins)
	assert.Contains(t, mustJSON(t, report), `"plugins":[]`)
}

func TestPluginStats_PropagatesError(t *testing.T) {
	limit := fmt.Errorf("%w: upstream still paginating after 3 pages", admin.ErrPageLimitExceeded)
	_, err := PluginStats(context.Background(), &fakeSource{pluginsErr: limit})
	assert.ErrorIs(t, err, admin.ErrPageLimitExceeded)
}

func TestHealth(t *testing.T) {
	fixedClock(t)

	tests := []struct {
		name        string
		body        string
		wantStatus  string
		wantDetails string
		wantStamp   string
	}{
		{
			name:        "full document",
			body:        `{"status":"healthy","details":{"db":"ok"},"timestamp":"2024-01-01T00:00:00Z"}`,
			wantStatus:  `"healthy"`,
			wantDetails: `{"db":"ok"}`,
			wantStamp:   `"2024-01-01T00:00:00Z"`,
		},
		{
			name:        "empty status",
			body:        `{"status":""}`,
			wantStatus:  `"unknown"`,
			wantDetails: `{}`,
			wantStamp:   `null`,
		},
		{
			name:        "not an object",
			body:        `"OK"`,
			wantStatus:  `"unknown"`,
			wantDetails: `{}`,
			wantStamp:   `null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Health(context.Background(), &fakeSource{health: admin.RawJSON(tt.body)})
			require.NoError(t, err)

			assert.Equal(t, "Kong OSS Health Status", report.Metadata.HealthCheck)
			assert.Equal(t, fixedTimestamp, report.Metadata.Timestamp)
			assert.JSONEq(t, tt.wantStatus, mustJSON(t, report.Health.Status))
			assert.JSONEq(t, tt.wantDetails, mustJSON(t, report.Health.Details))
			assert.JSONEq(t, tt.wantStamp, mustJSON(t, report.Health.Timestamp))
		})
	}
}

func TestHealth_PropagatesError(t *testing.T) {
	upstream := &admin.UpstreamError{StatusCode: 503, Detail: "unavailable"}
	_, err := Health(context.Background(), &fakeSource{healthErr: upstream})
	assert.Same(t, upstream, err)
}

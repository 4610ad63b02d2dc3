package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/giantswarm/mcp-kong/internal/instrumentation"
)

func TestGetPluginStats_FollowsCursor(t *testing.T) {
	var requests []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.RequestURI())
		switch r.URL.Query().Get("offset") {
		case "":
			_, _ = w.Write([]byte(`{"data":[{"id":"a"},{"id":"b"}],"next":"/plugins?offset=p2"}`))
		case "p2":
			_, _ = w.Write([]byte(`{"data":[{"id":"c"}],"next":null}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}), Config{})

	result, err := client.GetPluginStats(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(result.Data))
	for _, item := range result.Data {
		var p struct {
			ID string `json:"id"`
		}
		require.NoError(t, item.Decode(&p))
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, []string{"/plugins", "/plugins?offset=p2"}, requests)
}

func TestGetPluginStats_IgnoresNonArrayData(t *testing.T) {
	pages := map[string]string{
		"":   `{"data":{"not":"an array"},"next":"/plugins?offset=2"}`,
		"2":  `{"next":"/plugins?offset=3"}`,
		"3":  `{"data":[{"id":"only"}]}`,
		"xx": `{}`,
	}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pages[r.URL.Query().Get("offset")]))
	}), Config{})

	result, err := client.GetPluginStats(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	assert.JSONEq(t, `{"id":"only"}`, string(result.Data[0]))
}

func TestGetPluginStats_EmptyResultSerializesAsArray(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[],"next":null}`))
	}), Config{})

	result, err := client.GetPluginStats(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Data)
}

func TestGetPluginStats_PageLimit(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		_, _ = fmt.Fprintf(w, `{"data":[{"id":"%d"}],"next":"/plugins?offset=%d"}`, n, n)
	}), Config{MaxPages: 3})

	_, err := client.GetPluginStats(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPageLimitExceeded))
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetPluginStats_ExactlyMaxPagesSucceeds(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "" {
			_, _ = w.Write([]byte(`{"data":[{"id":"1"}],"next":"/plugins?offset=2"}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"2"}],"next":null}`))
	}), Config{MaxPages: 2})

	result, err := client.GetPluginStats(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Data, 2)
}

func TestGetPluginStats_PropagatesErrors(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "" {
			_, _ = w.Write([]byte(`{"data":[{"id":"1"}],"next":"/plugins?offset=2"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid authentication credentials"}`))
	}), Config{})

	_, err := client.GetPluginStats(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Admin API Error (Status 401): Invalid authentication credentials", err.Error())
}

func TestPluginEndpoint(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"/plugins", "/plugins"},
		{"/plugins?offset=abc", "/plugins?offset=abc"},
		{"http://kong:8001/plugins?offset=abc", "/plugins?offset=abc"},
		{"/workspace/plugins?offset=abc", "/plugins?offset=abc"},
		{"?offset=abc", "/plugins?offset=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			assert.Equal(t, tt.want, pluginEndpoint(tt.next))
		})
	}
}

func TestGetPluginStats_StopsOnCancelledContext(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		cancel()
		_, _ = w.Write([]byte(`{"data":[{"id":"1"}],"next":"/plugins?offset=2"}`))
	}), Config{})

	_, err := client.GetPluginStats(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetPluginStats_TracesPagination(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	tests := []struct {
		name      string
		maxPages  int
		wantPages int64
		wantErr   bool
	}{
		{name: "two pages", maxPages: 10, wantPages: 2},
		{name: "page limit", maxPages: 1, wantPages: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter.Reset()
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("offset") == "" {
					_, _ = w.Write([]byte(`{"data":[{"id":"a"}],"next":"/plugins?offset=p2"}`))
					return
				}
				_, _ = w.Write([]byte(`{"data":[{"id":"b"}],"next":null}`))
			}), Config{MaxPages: tt.maxPages})

			_, err := client.GetPluginStats(context.Background())
			assert.Equal(t, tt.wantErr, err != nil)

			var found bool
			for _, span := range exporter.GetSpans() {
				if span.Name != "kong.admin.plugins" {
					continue
				}
				found = true
				for _, attr := range span.Attributes {
					if attr.Key == instrumentation.SpanAttrPages {
						assert.Equal(t, tt.wantPages, attr.Value.AsInt64())
					}
				}
				assert.Len(t, span.Events, int(tt.wantPages)+boolToInt(tt.wantErr))
				if tt.wantErr {
					assert.Equal(t, codes.Error, span.Status.Code)
				} else {
					assert.Equal(t, codes.Ok, span.Status.Code)
				}
			}
			assert.True(t, found, "pagination span not recorded")
		})
	}
}

// boolToInt counts the exception event SetSpanError adds.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

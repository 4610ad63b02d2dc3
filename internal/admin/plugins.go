package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/giantswarm/mcp-kong/internal/instrumentation"
	"github.com/giantswarm/mcp-kong/internal/logging"
)

const pluginsEndpoint = "/plugins"

// PluginList is the accumulated result of GetPluginStats.
type PluginList struct {
	Data []RawJSON `json:"data"`
}

// pluginPage is the subset of a /plugins page the pagination loop reads.
type pluginPage struct {
	Data RawJSON `json:"data"`
	Next RawJSON `json:"next"`
}

// GetPluginStats lists every plugin by following the next cursor from /plugins.
//
// Pages are fetched one after another. A page whose data is missing or not an
// array contributes nothing. The loop stops when next is null or absent, and
// fails with ErrPageLimitExceeded once MaxPages pages were read and the
// upstream still reports a next cursor.
func (c *Client) GetPluginStats(ctx context.Context) (*PluginList, error) {
	ctx, span := instrumentation.StartSpan(ctx, "kong.admin.plugins")
	defer span.End()

	result, pages, err := c.collectPlugins(ctx, span)
	span.SetAttributes(attribute.Int(instrumentation.SpanAttrPages, pages))
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}
	instrumentation.SetSpanSuccess(span)

	c.logger.Debug("plugin pagination finished",
		logging.Pages(pages),
		slog.Int("plugins", len(result.Data)))

	return result, nil
}

func (c *Client) collectPlugins(ctx context.Context, span trace.Span) (*PluginList, int, error) {
	result := &PluginList{Data: []RawJSON{}}

	next := pluginsEndpoint
	pages := 0
	for next != "" {
		if pages >= c.maxPages {
			return nil, pages, fmt.Errorf("%w: upstream still paginating after %d pages", ErrPageLimitExceeded, pages)
		}
		if err := ctx.Err(); err != nil {
			return nil, pages, &NetworkError{Err: err}
		}

		raw, err := c.Request(ctx, pluginEndpoint(next), http.MethodGet, nil)
		if err != nil {
			return nil, pages, err
		}
		pages++
		c.metrics.RecordPluginPage(ctx)

		var page pluginPage
		if !raw.IsObject() || json.Unmarshal(raw, &page) != nil {
			break
		}

		if page.Data.IsArray() {
			var items []RawJSON
			if err := json.Unmarshal(page.Data, &items); err == nil {
				result.Data = append(result.Data, items...)
			}
		}
		instrumentation.AddSpanEvent(span, "page",
			attribute.Int(instrumentation.SpanAttrPages, pages),
			attribute.Int("kong.plugins", len(result.Data)))

		next, _ = page.Next.Text()
	}

	return result, pages, nil
}

// pluginEndpoint maps a next cursor onto a /plugins request path.
// Cursors may be relative paths, absolute URLs or bare query strings.
func pluginEndpoint(next string) string {
	if strings.HasPrefix(next, pluginsEndpoint) {
		return next
	}
	if i := strings.LastIndex(next, pluginsEndpoint); i >= 0 {
		return next[i:]
	}
	return pluginsEndpoint + next
}

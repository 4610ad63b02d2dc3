package entities

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/giantswarm/mcp-kong/internal/admin"
)

// DefaultPageSize is used when ListOptions.PageSize is zero.
const DefaultPageSize = 100

const paginationHint = "Use the 'next' offset for more results."

// Requester performs a single Admin API call. *admin.Client implements it.
type Requester interface {
	Request(ctx context.Context, endpoint, method string, body any) (admin.RawJSON, error)
}

// ListOptions selects one page of a collection.
type ListOptions struct {
	// PageSize is sent as size. Zero means DefaultPageSize.
	PageSize int
	// Offset is the cursor from a previous page's next. Empty means first page.
	Offset string
	// Filter narrows by name (services, routes) or username (consumers).
	Filter string
}

// Metadata describes the page that was returned. Offset and Filter are null
// when they were not supplied; Next and Total are copied from the upstream
// page and are null when absent.
type Metadata struct {
	PageSize int           `json:"pageSize"`
	Offset   *string       `json:"offset"`
	Next     admin.RawJSON `json:"next"`
	Total    admin.RawJSON `json:"total"`
	Filter   *string       `json:"filter"`
}

// Usage carries hints for the caller on how to continue.
type Usage struct {
	Instructions string `json:"instructions"`
	Pagination   string `json:"pagination"`
}

// ServiceList is the envelope returned by ListServices.
type ServiceList struct {
	Metadata Metadata  `json:"metadata"`
	Services []Service `json:"services"`
	Usage    Usage     `json:"usage"`
}

// RouteList is the envelope returned by ListRoutes.
type RouteList struct {
	Metadata Metadata `json:"metadata"`
	Routes   []Route  `json:"routes"`
	Usage    Usage    `json:"usage"`
}

// ConsumerList is the envelope returned by ListConsumers.
type ConsumerList struct {
	Metadata  Metadata   `json:"metadata"`
	Consumers []Consumer `json:"consumers"`
	Usage     Usage      `json:"usage"`
}

// ListServices returns one normalized page of /services, filtered by name.
func ListServices(ctx context.Context, r Requester, opts ListOptions) (*ServiceList, error) {
	meta, records, err := list(ctx, r, "/services", "name", opts)
	if err != nil {
		return nil, err
	}
	out := &ServiceList{
		Metadata: meta,
		Services: make([]Service, 0, len(records)),
		Usage: Usage{
			Instructions: "Use the service id from these results with getService to fetch more details.",
			Pagination:   paginationHint,
		},
	}
	for _, rec := range records {
		out.Services = append(out.Services, normalizeService(rec))
	}
	return out, nil
}

// ListRoutes returns one normalized page of /routes, filtered by name.
func ListRoutes(ctx context.Context, r Requester, opts ListOptions) (*RouteList, error) {
	meta, records, err := list(ctx, r, "/routes", "name", opts)
	if err != nil {
		return nil, err
	}
	out := &RouteList{
		Metadata: meta,
		Routes:   make([]Route, 0, len(records)),
		Usage: Usage{
			Instructions: "Use the route id from these results with getRoute to fetch more details.",
			Pagination:   paginationHint,
		},
	}
	for _, rec := range records {
		out.Routes = append(out.Routes, normalizeRoute(rec))
	}
	return out, nil
}

// ListConsumers returns one normalized page of /consumers, filtered by username.
func ListConsumers(ctx context.Context, r Requester, opts ListOptions) (*ConsumerList, error) {
	meta, records, err := list(ctx, r, "/consumers", "username", opts)
	if err != nil {
		return nil, err
	}
	out := &ConsumerList{
		Metadata:  meta,
		Consumers: make([]Consumer, 0, len(records)),
		Usage: Usage{
			Instructions: "Use the consumer id from these results with getConsumer to fetch more details.",
			Pagination:   paginationHint,
		},
	}
	for _, rec := range records {
		out.Consumers = append(out.Consumers, normalizeConsumer(rec))
	}
	return out, nil
}

// list fetches one page of collection. Admin API errors are returned as-is.
// The page itself is never rejected: a body without a data array is an empty
// page and records are kept whatever their field types.
func list(ctx context.Context, r Requester, collection, filterParam string, opts ListOptions) (Metadata, []record, error) {
	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	query := url.Values{}
	query.Set("size", strconv.Itoa(pageSize))
	if opts.Offset != "" {
		query.Set("offset", opts.Offset)
	}
	if opts.Filter != "" {
		query.Set(filterParam, opts.Filter)
	}

	raw, err := r.Request(ctx, collection+"?"+query.Encode(), http.MethodGet, nil)
	if err != nil {
		return Metadata{}, nil, err
	}

	page := newRecord(raw)
	var items []admin.RawJSON
	if data := page["data"]; data.IsArray() {
		_ = json.Unmarshal(data, &items)
	}
	records := make([]record, 0, len(items))
	for _, item := range items {
		records = append(records, newRecord(item))
	}

	return Metadata{
		PageSize: pageSize,
		Offset:   optional(opts.Offset),
		Next:     page["next"],
		Total:    page["total"],
		Filter:   optional(opts.Filter),
	}, records, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

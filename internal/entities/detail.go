package entities

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/giantswarm/mcp-kong/internal/admin"
)

// ErrMissingID is returned by the detail readers when the id is empty.
var ErrMissingID = errors.New("entity id is required")

// ServiceDetail wraps the unmodified /services/{id} document.
type ServiceDetail struct {
	Service admin.RawJSON `json:"service"`
}

// RouteDetail wraps the unmodified /routes/{id} document.
type RouteDetail struct {
	Route admin.RawJSON `json:"route"`
}

// ConsumerDetail wraps the unmodified /consumers/{id} document.
type ConsumerDetail struct {
	Consumer admin.RawJSON `json:"consumer"`
}

// NodeDetail wraps the unmodified node information document.
type NodeDetail struct {
	Node admin.RawJSON `json:"node"`
}

// GetService fetches a service by id or name.
func GetService(ctx context.Context, r Requester, id string) (*ServiceDetail, error) {
	raw, err := detail(ctx, r, "/services", "service", id)
	if err != nil {
		return nil, err
	}
	return &ServiceDetail{Service: raw}, nil
}

// GetRoute fetches a route by id or name.
func GetRoute(ctx context.Context, r Requester, id string) (*RouteDetail, error) {
	raw, err := detail(ctx, r, "/routes", "route", id)
	if err != nil {
		return nil, err
	}
	return &RouteDetail{Route: raw}, nil
}

// GetConsumer fetches a consumer by id or username.
func GetConsumer(ctx context.Context, r Requester, id string) (*ConsumerDetail, error) {
	raw, err := detail(ctx, r, "/consumers", "consumer", id)
	if err != nil {
		return nil, err
	}
	return &ConsumerDetail{Consumer: raw}, nil
}

// GetNode fetches the node information document served at /.
func GetNode(ctx context.Context, r Requester) (*NodeDetail, error) {
	raw, err := r.Request(ctx, "/", http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	return &NodeDetail{Node: raw}, nil
}

func detail(ctx context.Context, r Requester, collection, kind, id string) (admin.RawJSON, error) {
	if id == "" {
		return nil, fmt.Errorf("%s: %w", kind, ErrMissingID)
	}
	return r.Request(ctx, collection+"/"+url.PathEscape(id), http.MethodGet, nil)
}

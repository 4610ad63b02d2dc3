package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/trace"

	"github.com/giantswarm/mcp-kong/internal/analytics"
	"github.com/giantswarm/mcp-kong/internal/entities"
	"github.com/giantswarm/mcp-kong/internal/instrumentation"
	"github.com/giantswarm/mcp-kong/internal/logging"
)

// Backend is the Admin API surface the tools read from. *admin.Client
// implements it.
type Backend interface {
	entities.Requester
	analytics.Source
}

// Dispatcher routes tool calls to the entity readers and analytics reports.
// It holds no mutable state and is safe for concurrent use.
type Dispatcher struct {
	backend Backend
	logger  *slog.Logger
}

// NewDispatcher creates a Dispatcher. A nil logger falls back to slog.Default().
func NewDispatcher(backend Backend, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{backend: backend, logger: logger}
}

// Dispatch validates args for the named tool and runs it.
//
// Unknown names fail with *UnknownToolError and invalid arguments with
// *ValidationError, both before any Admin API request. Errors from the
// Admin API are returned unchanged.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) (any, error) {
	desc, ok := Lookup(name)
	if !ok {
		return nil, &UnknownToolError{Name: name}
	}

	in, err := desc.validate(args)
	if err != nil {
		return nil, err
	}

	kind, id := target(desc.ID, in)
	trace.SpanFromContext(ctx).SetAttributes(instrumentation.NewSpanAttributeBuilder().
		WithEntity(kind, id).
		WithPageSize(in.integer(paramPageSize)).
		Build()...)
	if id != "" {
		logging.WithTool(d.logger, name).Debug("looking up entity", logging.Entity(kind), logging.EntityID(id))
	}

	return d.run(ctx, desc.ID, in)
}

// target names the entity kind a tool reads and, for detail lookups, the
// requested id.
func target(id ToolID, in arguments) (kind, entityID string) {
	switch id {
	case ListServices:
		return "service", ""
	case GetService:
		return "service", in.str(paramServiceID)
	case ListRoutes:
		return "route", ""
	case GetRoute:
		return "route", in.str(paramRouteID)
	case ListConsumers:
		return "consumer", ""
	case GetConsumer:
		return "consumer", in.str(paramConsumerID)
	case GetPluginStats:
		return "plugin", ""
	}
	return "", ""
}

func (d *Dispatcher) run(ctx context.Context, id ToolID, in arguments) (any, error) {
	switch id {
	case GetKongStatus:
		return analytics.Status(ctx, d.backend)
	case GetKongMetrics:
		return analytics.Metrics(ctx, d.backend)
	case GetPluginStats:
		return analytics.PluginStats(ctx, d.backend)
	case ListServices:
		return entities.ListServices(ctx, d.backend, listOptions(in, paramFilterName))
	case GetService:
		return entities.GetService(ctx, d.backend, in.str(paramServiceID))
	case ListRoutes:
		return entities.ListRoutes(ctx, d.backend, listOptions(in, paramFilterName))
	case GetRoute:
		return entities.GetRoute(ctx, d.backend, in.str(paramRouteID))
	case ListConsumers:
		return entities.ListConsumers(ctx, d.backend, listOptions(in, paramFilterUsername))
	case GetConsumer:
		return entities.GetConsumer(ctx, d.backend, in.str(paramConsumerID))
	}
	return nil, &UnknownToolError{Name: id.String()}
}

func listOptions(in arguments, filter string) entities.ListOptions {
	return entities.ListOptions{
		PageSize: in.integer(paramPageSize),
		Offset:   in.str(paramOffset),
		Filter:   in.str(filter),
	}
}

// Handle serves an MCP tool call. Every outcome, including unknown tools and
// invalid arguments, is returned as a tool result; the error return is always
// nil so nothing reaches the transport as a protocol error.
func (d *Dispatcher) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.Params.Name
	logger := logging.WithTool(d.logger, name)

	result, err := d.Dispatch(ctx, name, request.GetArguments())
	if err != nil {
		logger.Debug("tool call failed", logging.Status(logging.StatusError), logging.SanitizedErr(err))
		return mcp.NewToolResultError(FormatError(err)), nil
	}
	logger.Debug("tool call completed", logging.Status(logging.StatusSuccess))

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(FormatError(fmt.Errorf("failed to marshal result: %w", err))), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

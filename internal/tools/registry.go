package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// ToolID identifies one of the tools this server exposes. The set is closed;
// Descriptors lists every member in registration order.
type ToolID int

const (
	GetKongStatus ToolID = iota
	GetKongMetrics
	GetPluginStats
	ListServices
	GetService
	ListRoutes
	GetRoute
	ListConsumers
	GetConsumer
)

// String returns the wire name of the tool.
func (id ToolID) String() string {
	switch id {
	case GetKongStatus:
		return "get_kong_status"
	case GetKongMetrics:
		return "get_kong_metrics"
	case GetPluginStats:
		return "get_plugin_stats"
	case ListServices:
		return "list_services"
	case GetService:
		return "get_service"
	case ListRoutes:
		return "list_routes"
	case GetRoute:
		return "get_route"
	case ListConsumers:
		return "list_consumers"
	case GetConsumer:
		return "get_consumer"
	}
	return "unknown"
}

// Category groups tools for display. It is published to clients under the
// tool's _meta as "category".
type Category string

const (
	CategoryAnalytics Category = "analytics"
	CategoryEntities  Category = "entities"
)

// ParamKind is the JSON type a parameter accepts.
type ParamKind int

const (
	KindString ParamKind = iota
	KindNumber
)

func (k ParamKind) String() string {
	if k == KindNumber {
		return "number"
	}
	return "string"
}

// Param declares one tool argument.
type Param struct {
	Name        string
	Kind        ParamKind
	Required    bool
	Description string

	// Min and Max bound KindNumber parameters, which must also be integers.
	Min, Max float64
}

// Descriptor is the static description of a tool.
type Descriptor struct {
	ID          ToolID
	Title       string
	Description string
	Category    Category
	Params      []Param
}

// Name returns the wire name of the tool.
func (d Descriptor) Name() string {
	return d.ID.String()
}

const (
	maxPageSize = 1000

	metaCategory = "category"

	paramPageSize       = "pageSize"
	paramOffset         = "offset"
	paramFilterName     = "filterName"
	paramFilterUsername = "filterUsername"
	paramServiceID      = "serviceId"
	paramRouteID        = "routeId"
	paramConsumerID     = "consumerId"
)

func listParams(filter, filterDescription string) []Param {
	return []Param{
		{
			Name:        paramPageSize,
			Kind:        KindNumber,
			Description: "Number of records to return (1-1000, default 100)",
			Min:         1,
			Max:         maxPageSize,
		},
		{
			Name:        paramOffset,
			Kind:        KindString,
			Description: "Pagination offset returned as 'next' by a previous call",
		},
		{
			Name:        filter,
			Kind:        KindString,
			Description: filterDescription,
		},
	}
}

func idParam(name, description string) []Param {
	return []Param{{Name: name, Kind: KindString, Required: true, Description: description}}
}

var descriptors = []Descriptor{
	{
		ID:          GetKongStatus,
		Title:       "Get Kong Status",
		Description: "Get Kong OSS node status, database connectivity, and basic system information including memory usage and configuration hash.",
		Category:    CategoryAnalytics,
	},
	{
		ID:          GetKongMetrics,
		Title:       "Get Kong Metrics",
		Description: "Retrieve Kong OSS metrics in Prometheus format including HTTP requests, latency, database operations, and upstream health.",
		Category:    CategoryAnalytics,
	},
	{
		ID:          GetPluginStats,
		Title:       "Get Plugin Statistics",
		Description: "Get statistics and configuration details for all plugins configured in Kong OSS including enabled status and performance impact.",
		Category:    CategoryAnalytics,
	},
	{
		ID:          ListServices,
		Title:       "List Services",
		Description: "List all services in Kong OSS, with optional pagination and filtering.",
		Category:    CategoryEntities,
		Params:      listParams(paramFilterName, "Only return services with this name"),
	},
	{
		ID:          GetService,
		Title:       "Get Service",
		Description: "Get detailed information about a specific service by ID.",
		Category:    CategoryEntities,
		Params:      idParam(paramServiceID, "Service ID or name"),
	},
	{
		ID:          ListRoutes,
		Title:       "List Routes",
		Description: "List all routes in Kong OSS, with optional pagination and filtering.",
		Category:    CategoryEntities,
		Params:      listParams(paramFilterName, "Only return routes with this name"),
	},
	{
		ID:          GetRoute,
		Title:       "Get Route",
		Description: "Get detailed information about a specific route by ID.",
		Category:    CategoryEntities,
		Params:      idParam(paramRouteID, "Route ID or name"),
	},
	{
		ID:          ListConsumers,
		Title:       "List Consumers",
		Description: "List all consumers in Kong OSS, with optional pagination and filtering.",
		Category:    CategoryEntities,
		Params:      listParams(paramFilterUsername, "Only return consumers with this username"),
	},
	{
		ID:          GetConsumer,
		Title:       "Get Consumer",
		Description: "Get detailed information about a specific consumer by ID.",
		Category:    CategoryEntities,
		Params:      idParam(paramConsumerID, "Consumer ID or username"),
	},
}

// Descriptors returns every tool descriptor in registration order. The
// returned slice is a copy.
func Descriptors() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors)
	return out
}

// Lookup finds the descriptor for a wire name.
func Lookup(name string) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.Name() == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Tool builds the MCP tool declaration. Every tool is read-only.
func (d Descriptor) Tool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(d.Description),
		mcp.WithTitleAnnotation(d.Title),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	}

	for _, p := range d.Params {
		propOpts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			propOpts = append(propOpts, mcp.Required())
		}
		switch p.Kind {
		case KindNumber:
			propOpts = append(propOpts, mcp.Min(p.Min), mcp.Max(p.Max))
			opts = append(opts, mcp.WithNumber(p.Name, propOpts...))
		case KindString:
			opts = append(opts, mcp.WithString(p.Name, propOpts...))
		}
	}

	tool := mcp.NewTool(d.Name(), opts...)
	tool.Meta = mcp.NewMetaFromMap(map[string]any{metaCategory: string(d.Category)})
	return tool
}

package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for the mcp-kong package.
const TracerName = "github.com/giantswarm/mcp-kong"

// Span attribute keys.
const (
	// SpanAttrTool is the MCP tool name.
	SpanAttrTool = "mcp.tool"

	// SpanAttrHTTPMethod is the HTTP method of an Admin API request.
	SpanAttrHTTPMethod = "http.method"

	// SpanAttrHTTPStatus is the HTTP status code returned by the Admin API.
	SpanAttrHTTPStatus = "http.status_code"

	// SpanAttrEndpoint is the classified Admin API endpoint.
	SpanAttrEndpoint = "kong.endpoint"

	// SpanAttrEntity is the entity kind (service, route, consumer, plugin).
	SpanAttrEntity = "kong.entity"

	// SpanAttrEntityID is the id or name of a looked up entity.
	SpanAttrEntityID = "kong.entity_id"

	// SpanAttrPageSize is the requested list page size.
	SpanAttrPageSize = "kong.page_size"

	// SpanAttrPages is the number of pages fetched by a paginated call.
	SpanAttrPages = "kong.pages"
)

// SpanAttributeBuilder helps construct OpenTelemetry span attributes
// with consistent naming and cardinality controls.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewSpanAttributeBuilder creates a new SpanAttributeBuilder.
func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 6),
	}
}

// WithTool adds the MCP tool name attribute.
func (b *SpanAttributeBuilder) WithTool(tool string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrTool, tool))
	return b
}

// WithEntity adds the entity kind and, when set, its id.
func (b *SpanAttributeBuilder) WithEntity(kind, id string) *SpanAttributeBuilder {
	if kind != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrEntity, kind))
	}
	if id != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrEntityID, id))
	}
	return b
}

// WithPageSize adds the page size attribute when it is positive.
func (b *SpanAttributeBuilder) WithPageSize(size int) *SpanAttributeBuilder {
	if size > 0 {
		b.attrs = append(b.attrs, attribute.Int(SpanAttrPageSize, size))
	}
	return b
}

// WithEndpoint adds the classified Admin API endpoint.
func (b *SpanAttributeBuilder) WithEndpoint(endpoint string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrEndpoint, ClassifyEndpoint(endpoint)))
	return b
}

// Build returns the constructed attributes.
func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// StartSpan starts a new span with the given name and attributes.
// The caller is responsible for ending the span with defer span.End().
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartToolSpan starts a span for an MCP tool invocation.
// Automatically adds tool name and sets appropriate span kind.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append(NewSpanAttributeBuilder().WithTool(toolName).Build(), attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "tool."+toolName,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartAdminSpan starts a client span for one Admin API request. The span is
// named after the classified endpoint so ids do not leak into span names.
func StartAdminSpan(ctx context.Context, method, endpoint string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append(NewSpanAttributeBuilder().WithEndpoint(endpoint).Build(),
		attribute.String(SpanAttrHTTPMethod, method))
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "kong.admin "+method+" "+ClassifyEndpoint(endpoint),
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records an error on the span and sets the status to error.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddSpanEvent adds an event to the span with optional attributes.
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// GetTraceID returns the trace ID from the current span in context.
// Returns empty string if no valid span is present.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

// GetSpanID returns the span ID from the current span in context.
// Returns empty string if no valid span is present.
func GetSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().SpanID().String()
	}
	return ""
}

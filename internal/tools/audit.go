// Package tools declares the Kong Admin API tools and routes MCP calls to them.
package tools

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-kong/internal/instrumentation"
)

// ToolHandler is the signature of an MCP tool handler.
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// WrapWithAuditLogging wraps a tool handler with tracing, metrics and audit
// logging. Each call gets a tool span, a tool call metric and one audit
// record. Argument values are never logged, only their names.
//
// A nil provider returns handler unchanged.
func WrapWithAuditLogging(toolName string, handler ToolHandler, provider *instrumentation.Provider) ToolHandler {
	if provider == nil {
		return handler
	}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := instrumentation.StartToolSpan(ctx, toolName)
		defer span.End()

		args := request.GetArguments()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithArguments(args).
			WithSpanContext(ctx)
		start := time.Now()

		result, err := handler(ctx, request)

		switch {
		case err != nil:
			invocation.CompleteWithError(err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			// Tool failures travel in the result, not as Go errors.
			msg := resultText(result)
			invocation.Complete(false, nil)
			invocation.Error = msg
			instrumentation.SetSpanError(span, errors.New(msg))
		default:
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		provider.Metrics().RecordToolCall(ctx, toolName, invocation.Status(), time.Since(start))
		provider.AuditLogger().LogToolInvocation(ctx, invocation)

		return result, err
	}
}

// resultText returns the first text content of a result.
func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}

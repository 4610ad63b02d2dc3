package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-kong/internal/instrumentation"
)

// createTestProvider returns a provider whose audit records are written to buf.
func createTestProvider(t *testing.T, buf *bytes.Buffer) *instrumentation.Provider {
	t.Helper()
	provider, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{Enabled: false})
	require.NoError(t, err)
	provider.SetAuditLogger(instrumentation.NewAuditLogger(slog.New(slog.NewJSONHandler(buf, nil))))
	return provider
}

func createTestRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func decodeAuditRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestWrapWithAuditLogging_HandlesSuccess(t *testing.T) {
	var buf bytes.Buffer
	provider := createTestProvider(t, &buf)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("success"), nil
	}

	wrapped := WrapWithAuditLogging("get_service", handler, provider)
	result, err := wrapped(context.Background(), createTestRequest("get_service", map[string]any{"serviceId": "secret-id"}))

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	record := decodeAuditRecord(t, &buf)
	assert.Equal(t, "tool_invocation", record["msg"])
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "get_service", record["tool"])
	assert.Equal(t, true, record["success"])
	assert.NotEmpty(t, record["invocation_id"])
	assert.NotContains(t, buf.String(), "secret-id")
	assert.Contains(t, buf.String(), "serviceId")
}

func TestWrapWithAuditLogging_HandlesMCPToolError(t *testing.T) {
	var buf bytes.Buffer
	provider := createTestProvider(t, &buf)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("Error: boom"), nil
	}

	wrapped := WrapWithAuditLogging("get_kong_status", handler, provider)
	result, err := wrapped(context.Background(), createTestRequest("get_kong_status", nil))

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)

	record := decodeAuditRecord(t, &buf)
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, false, record["success"])
	assert.Equal(t, "Error: boom", record["error"])
}

func TestWrapWithAuditLogging_HandlesGoError(t *testing.T) {
	var buf bytes.Buffer
	provider := createTestProvider(t, &buf)

	expectedErr := errors.New("handler error")
	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	}

	wrapped := WrapWithAuditLogging("list_routes", handler, provider)
	result, err := wrapped(context.Background(), createTestRequest("list_routes", nil))

	assert.Same(t, expectedErr, err)
	assert.Nil(t, result)

	record := decodeAuditRecord(t, &buf)
	assert.Equal(t, "handler error", record["error"])
}

func TestWrapWithAuditLogging_NoProvider(t *testing.T) {
	called := false
	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	}

	wrapped := WrapWithAuditLogging("list_services", handler, nil)
	result, err := wrapped(context.Background(), createTestRequest("list_services", nil))

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, called)
}

func TestResultText(t *testing.T) {
	assert.Equal(t, "", resultText(&mcp.CallToolResult{}))
	assert.Equal(t, "hello", resultText(mcp.NewToolResultText("hello")))
}

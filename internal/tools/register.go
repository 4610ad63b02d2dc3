package tools

import (
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-kong/internal/server"
)

// RegisterTools registers every tool with the MCP server. All tools share one
// Dispatcher built around the server context's Admin API client.
func RegisterTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if sc.AdminClient() == nil {
		return server.ErrMissingAdminClient
	}

	dispatcher := NewDispatcher(sc.AdminClient(), sc.Logger())
	provider := sc.InstrumentationProvider()

	for _, d := range Descriptors() {
		handler := WrapWithAuditLogging(d.Name(), dispatcher.Handle, provider)
		s.AddTool(d.Tool(), mcpserver.ToolHandlerFunc(handler))
	}

	sc.Logger().Debug("registered tools", "count", len(descriptors))
	return nil
}

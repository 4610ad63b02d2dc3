package cmd

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// runStdioServer runs the server with STDIO transport. Nothing else may
// write to stdout while it runs; logs go to stderr.
func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

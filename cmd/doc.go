// Package cmd provides the command-line interface for mcp-kong.
//
// Command Structure:
//
//	mcp-kong [flags]                 # Starts the MCP server (default)
//	mcp-kong serve [flags]           # Explicitly starts the MCP server
//	mcp-kong version                 # Shows version information
//	mcp-kong self-update             # Updates to latest release
//
// The serve command supports three transports:
//
//	mcp-kong serve --transport stdio
//	mcp-kong serve --transport sse --http-addr :8080 --sse-endpoint /sse
//	mcp-kong serve --transport streamable-http --http-addr :8080 --http-endpoint /mcp
//
// The Admin API is selected with --kong-admin-url or KONG_ADMIN_URL.
package cmd

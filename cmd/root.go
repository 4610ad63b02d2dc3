package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the mcp-kong command. Without a subcommand it runs serve.
var rootCmd = &cobra.Command{
	Use:   "mcp-kong",
	Short: "MCP server for the Kong Admin API",
	Long: `mcp-kong is a Model Context Protocol (MCP) server that exposes read-only
tools for a Kong Gateway Admin API: node status, Prometheus metrics, plugin
inventory, and the services, routes and consumers configured on the gateway.

When run without subcommands, it starts the MCP server (equivalent to 'mcp-kong serve').`,
	SilenceUsage: true,
}

// SetVersion sets the version reported by --version, version and the MCP
// server handshake. It is called from main with the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcp-kong version %s\n" .Version}}`)

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
	rootCmd.AddCommand(newServeCmd())
}

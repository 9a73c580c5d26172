package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kubectl-mcp",
	Short: "MCP server for Kubernetes and Helm operations",
	Long: `kubectl-mcp is a Model Context Protocol (MCP) server that exposes
Kubernetes and Helm management as tools. It answers natural-language queries,
manages pods, deployments and namespaces through the typed Kubernetes API with
kubectl as fallback, drives Helm releases and repositories, and streams
resource change events to subscribers.

When run without subcommands, it starts the MCP server (equivalent to 'kubectl-mcp serve').`,
	SilenceUsage: true,
}

// SetVersion records the build version reported by "version" and checked by
// "self-update".
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the CLI. A bare invocation starts the server.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "kubectl-mcp version %s\n" .Version}}`)
	if len(os.Args) == 1 {
		rootCmd.SetArgs([]string{"serve"})
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd(), newVersionCmd(), newSelfUpdateCmd())
}

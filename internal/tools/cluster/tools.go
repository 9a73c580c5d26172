// Package cluster provides the MCP tools that report on the cluster as a whole.
package cluster

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/kubectl-mcp/internal/server"
	"github.com/giantswarm/kubectl-mcp/internal/tools"
)

// RegisterClusterTools registers all cluster tools with the MCP server
func RegisterClusterTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// cluster_ping tool
	pingTool := mcp.NewTool("cluster_ping",
		mcp.WithDescription("Check connectivity to the cluster by running kubectl cluster-info"),
	)
	s.AddTool(pingTool, tools.WrapWithAuditLogging("cluster_ping", handleClusterPing, sc))

	return nil
}

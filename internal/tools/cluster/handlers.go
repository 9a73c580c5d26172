package cluster

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/kubectl-mcp/internal/server"
	"github.com/giantswarm/kubectl-mcp/internal/tools"
)

// handleClusterPing reports whether the cluster answers. A disconnected
// cluster is a regular answer, not a tool error.
func handleClusterPing(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	return tools.JSONResult(sc.Cluster().Ping(ctx))
}

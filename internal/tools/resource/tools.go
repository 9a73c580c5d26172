// Package resource provides generic MCP tools that dispatch on a resource
// kind through the service registry.
package resource

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/kubectl-mcp/internal/server"
	"github.com/giantswarm/kubectl-mcp/internal/tools"
)

// RegisterResourceTools registers the kind-generic resource tools with the MCP server
func RegisterResourceTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	kindParam := mcp.WithString("kind",
		mcp.Required(),
		mcp.Description("Resource kind: "+strings.Join(sc.Registry().Kinds(), ", ")+" (plural forms and short names are accepted)"),
	)
	nameParam := mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Name of the resource"),
	)

	// resource_get tool
	getTool := mcp.NewTool("resource_get",
		mcp.WithDescription("Get a single resource of any supported kind"),
		kindParam,
		nameParam,
		tools.NamespaceParam(),
	)
	s.AddTool(getTool, tools.WrapWithAuditLogging("resource_get", handleGetResource, sc))

	// resource_list tool
	listTool := mcp.NewTool("resource_list",
		mcp.WithDescription("List resources of any supported kind"),
		kindParam,
		tools.NamespaceParam(),
		mcp.WithString("labelSelector",
			mcp.Description("Label selector, e.g. 'app=web' (optional)"),
		),
		mcp.WithObject("filter",
			mcp.Description("Client-side criteria on item fields, e.g. {\"status\": \"Running\"} or {\"labels.app\": \"web\"}. Paths may use [*] to match any array element (optional)"),
		),
		tools.LimitParam(),
	)
	s.AddTool(listTool, tools.WrapWithAuditLogging("resource_list", handleListResources, sc))

	// resource_delete tool
	deleteTool := mcp.NewTool("resource_delete",
		mcp.WithDescription("Delete a resource of any supported kind"),
		kindParam,
		nameParam,
		tools.NamespaceParam(),
		mcp.WithNumber("gracePeriod",
			mcp.Description("Grace period in seconds (optional)"),
		),
	)
	s.AddTool(deleteTool, tools.WrapWithAuditLogging("resource_delete",
		tools.Mutating("resource_delete", handleDeleteResource), sc))

	return nil
}

// Package namespace provides the MCP tools that manage namespaces.
package namespace

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/kubectl-mcp/internal/server"
	"github.com/giantswarm/kubectl-mcp/internal/tools"
)

// RegisterNamespaceTools registers all namespace management tools with the MCP server
func RegisterNamespaceTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	nameParam := mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Name of the namespace"),
	)

	// create_namespace tool
	createTool := mcp.NewTool("create_namespace",
		mcp.WithDescription("Create a namespace. Names must start with a letter, contain only lowercase alphanumerics or '-', and must not use the kube- prefix"),
		nameParam,
		mcp.WithObject("labels",
			mcp.Description("Labels for the namespace (optional)"),
		),
	)
	s.AddTool(createTool, tools.WrapWithAuditLogging("create_namespace",
		tools.Mutating("create_namespace", handleCreateNamespace), sc))

	// delete_namespace tool
	deleteTool := mcp.NewTool("delete_namespace",
		mcp.WithDescription("Delete a namespace and everything in it"),
		nameParam,
		mcp.WithBoolean("force",
			mcp.Description("Delete immediately without a grace period (default: false)"),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Seconds to wait for the deletion command (optional)"),
		),
	)
	s.AddTool(deleteTool, tools.WrapWithAuditLogging("delete_namespace",
		tools.Mutating("delete_namespace", handleDeleteNamespace), sc))

	// list_namespaces tool
	listTool := mcp.NewTool("list_namespaces",
		mcp.WithDescription("List namespaces"),
		mcp.WithString("outputFormat",
			mcp.Description("Output format (default: wide)"),
			mcp.Enum("wide", "json", "yaml", "name"),
		),
	)
	s.AddTool(listTool, tools.WrapWithAuditLogging("list_namespaces", handleListNamespaces, sc))

	// describe_namespace tool
	describeTool := mcp.NewTool("describe_namespace",
		mcp.WithDescription("Describe a namespace, including quotas and limit ranges"),
		nameParam,
	)
	s.AddTool(describeTool, tools.WrapWithAuditLogging("describe_namespace", handleDescribeNamespace, sc))

	// namespace_exists tool
	existsTool := mcp.NewTool("namespace_exists",
		mcp.WithDescription("Check whether a namespace exists"),
		nameParam,
	)
	s.AddTool(existsTool, tools.WrapWithAuditLogging("namespace_exists", handleNamespaceExists, sc))

	// label_namespace tool
	labelTool := mcp.NewTool("label_namespace",
		mcp.WithDescription("Add or overwrite labels on a namespace"),
		nameParam,
		mcp.WithObject("labels",
			mcp.Required(),
			mcp.Description("Labels to set"),
		),
	)
	s.AddTool(labelTool, tools.WrapWithAuditLogging("label_namespace",
		tools.Mutating("label_namespace", handleLabelNamespace), sc))

	return nil
}

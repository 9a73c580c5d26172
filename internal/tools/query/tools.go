// Package query provides the MCP tools that resolve free-text queries to
// kubectl and helm commands.
package query

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/kubectl-mcp/internal/server"
	"github.com/giantswarm/kubectl-mcp/internal/tools"
)

// RegisterQueryTools registers the free-text query tools with the MCP server
func RegisterQueryTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// process_query tool
	processTool := mcp.NewTool("process_query",
		mcp.WithDescription("Resolve a free-text request such as 'show all pods in namespace kube-system' to a command and run it. Call list_supported_queries for the accepted phrasings"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The request in plain language"),
		),
		mcp.WithString("namespace",
			mcp.Description("Namespace to run in (optional, overrides an 'in namespace X' phrase)"),
		),
	)
	s.AddTool(processTool, tools.WrapWithAuditLogging("process_query", handleProcessQuery, sc))

	// validate_query tool
	validateTool := mcp.NewTool("validate_query",
		mcp.WithDescription("Show the command a free-text request resolves to without running it"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The request in plain language"),
		),
	)
	s.AddTool(validateTool, tools.WrapWithAuditLogging("validate_query", handleValidateQuery, sc))

	// list_supported_queries tool
	listTool := mcp.NewTool("list_supported_queries",
		mcp.WithDescription("List the supported free-text phrasings and the commands they resolve to, in priority order"),
	)
	s.AddTool(listTool, tools.WrapWithAuditLogging("list_supported_queries", handleListSupportedQueries, sc))

	return nil
}

// Package helm provides the MCP tools that manage Helm releases and chart
// repositories. Every tool runs the helm binary through the release executor.
package helm

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/kubectl-mcp/internal/server"
	"github.com/giantswarm/kubectl-mcp/internal/tools"
)

// RegisterHelmTools registers all Helm management tools with the MCP server
func RegisterHelmTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	releaseNameParam := mcp.WithString("releaseName",
		mcp.Required(),
		mcp.Description("Name of the Helm release"),
	)

	// helm_list tool
	listTool := mcp.NewTool("helm_list",
		mcp.WithDescription("List Helm releases in a namespace"),
		tools.NamespaceParam(),
	)
	s.AddTool(listTool, tools.WrapWithAuditLogging("helm_list", handleHelmList, sc))

	// helm_install tool
	installTool := mcp.NewTool("helm_install",
		mcp.WithDescription("Install a Helm chart"),
		releaseNameParam,
		mcp.WithString("chart",
			mcp.Required(),
			mcp.Description("Chart reference (repo/chart or path to chart)"),
		),
		tools.NamespaceParam(),
		mcp.WithString("version",
			mcp.Description("Chart version to install (optional, uses latest)"),
		),
		mcp.WithObject("values",
			mcp.Description("Values to override in the chart (optional)"),
		),
	)
	s.AddTool(installTool, tools.WrapWithAuditLogging("helm_install",
		tools.Mutating("helm_install", handleHelmInstall), sc))

	// helm_upgrade tool
	upgradeTool := mcp.NewTool("helm_upgrade",
		mcp.WithDescription("Upgrade a Helm release"),
		releaseNameParam,
		mcp.WithString("chart",
			mcp.Required(),
			mcp.Description("Chart reference (repo/chart or path to chart)"),
		),
		tools.NamespaceParam(),
		mcp.WithString("version",
			mcp.Description("Chart version to upgrade to (optional, uses latest)"),
		),
		mcp.WithObject("values",
			mcp.Description("Values to override in the chart (optional)"),
		),
	)
	s.AddTool(upgradeTool, tools.WrapWithAuditLogging("helm_upgrade",
		tools.Mutating("helm_upgrade", handleHelmUpgrade), sc))

	// helm_uninstall tool
	uninstallTool := mcp.NewTool("helm_uninstall",
		mcp.WithDescription("Uninstall a Helm release"),
		releaseNameParam,
		tools.NamespaceParam(),
		mcp.WithBoolean("keepHistory",
			mcp.Description("Keep the release history (default: false)"),
		),
	)
	s.AddTool(uninstallTool, tools.WrapWithAuditLogging("helm_uninstall",
		tools.Mutating("helm_uninstall", handleHelmUninstall), sc))

	// helm_get_values tool
	getValuesTool := mcp.NewTool("helm_get_values",
		mcp.WithDescription("Show the values of a Helm release"),
		releaseNameParam,
		tools.NamespaceParam(),
		mcp.WithBoolean("all",
			mcp.Description("Include computed chart defaults (default: false)"),
		),
	)
	s.AddTool(getValuesTool, tools.WrapWithAuditLogging("helm_get_values", handleHelmGetValues, sc))

	// helm_rollback tool
	rollbackTool := mcp.NewTool("helm_rollback",
		mcp.WithDescription("Roll a Helm release back to a previous revision"),
		releaseNameParam,
		tools.NamespaceParam(),
		mcp.WithNumber("revision",
			mcp.Description("Revision to roll back to (optional, defaults to the previous revision)"),
		),
	)
	s.AddTool(rollbackTool, tools.WrapWithAuditLogging("helm_rollback",
		tools.Mutating("helm_rollback", handleHelmRollback), sc))

	// helm_search tool
	searchTool := mcp.NewTool("helm_search",
		mcp.WithDescription("Search the configured chart repositories"),
		mcp.WithString("keyword",
			mcp.Description("Keyword to search for (optional, lists all charts when empty)"),
		),
		mcp.WithBoolean("regex",
			mcp.Description("Treat the keyword as a regular expression (default: false)"),
		),
	)
	s.AddTool(searchTool, tools.WrapWithAuditLogging("helm_search", handleHelmSearch, sc))

	repoNameParam := mcp.WithString("repoName",
		mcp.Required(),
		mcp.Description("Name of the chart repository"),
	)

	// helm_repo_add tool
	repoAddTool := mcp.NewTool("helm_repo_add",
		mcp.WithDescription("Add a chart repository"),
		repoNameParam,
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Repository URL"),
		),
	)
	s.AddTool(repoAddTool, tools.WrapWithAuditLogging("helm_repo_add",
		tools.Mutating("helm_repo_add", handleHelmRepoAdd), sc))

	// helm_repo_update tool
	repoUpdateTool := mcp.NewTool("helm_repo_update",
		mcp.WithDescription("Refresh the chart indexes of all repositories"),
	)
	s.AddTool(repoUpdateTool, tools.WrapWithAuditLogging("helm_repo_update",
		tools.Mutating("helm_repo_update", handleHelmRepoUpdate), sc))

	// helm_repo_list tool
	repoListTool := mcp.NewTool("helm_repo_list",
		mcp.WithDescription("List the configured chart repositories"),
	)
	s.AddTool(repoListTool, tools.WrapWithAuditLogging("helm_repo_list", handleHelmRepoList, sc))

	// helm_repo_remove tool
	repoRemoveTool := mcp.NewTool("helm_repo_remove",
		mcp.WithDescription("Remove a chart repository"),
		repoNameParam,
	)
	s.AddTool(repoRemoveTool, tools.WrapWithAuditLogging("helm_repo_remove",
		tools.Mutating("helm_repo_remove", handleHelmRepoRemove), sc))

	return nil
}

package helm

import (
	"context"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/kubectl-mcp/internal/executor"
	"github.com/giantswarm/kubectl-mcp/internal/server"
	"github.com/giantswarm/kubectl-mcp/internal/tools"
)

func handleHelmList(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	return tools.CommandResult(sc, sc.ReleaseExecutor().List(ctx, tools.Namespace(args, sc)))
}

func handleHelmInstall(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	req, errResult := installRequest(request.GetArguments(), sc)
	if errResult != nil {
		return errResult, nil
	}
	return tools.CommandResult(sc, sc.ReleaseExecutor().Install(ctx, req))
}

func handleHelmUpgrade(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	req, errResult := installRequest(request.GetArguments(), sc)
	if errResult != nil {
		return errResult, nil
	}
	return tools.CommandResult(sc, sc.ReleaseExecutor().Upgrade(ctx, req))
}

func handleHelmUninstall(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, errResult := tools.RequiredString(args, "releaseName")
	if errResult != nil {
		return errResult, nil
	}
	keepHistory, _ := args["keepHistory"].(bool)

	return tools.CommandResult(sc, sc.ReleaseExecutor().Uninstall(ctx, name, tools.Namespace(args, sc), keepHistory))
}

func handleHelmGetValues(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, errResult := tools.RequiredString(args, "releaseName")
	if errResult != nil {
		return errResult, nil
	}
	all, _ := args["all"].(bool)

	return tools.CommandResult(sc, sc.ReleaseExecutor().GetValues(ctx, name, tools.Namespace(args, sc), all))
}

func handleHelmRollback(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, errResult := tools.RequiredString(args, "releaseName")
	if errResult != nil {
		return errResult, nil
	}

	revision, _, err := tools.Int(args, "revision")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if revision < 0 {
		return mcp.NewToolResultError("revision must not be negative"), nil
	}

	return tools.CommandResult(sc, sc.ReleaseExecutor().Rollback(ctx, name, tools.Namespace(args, sc), revision))
}

func handleHelmSearch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	keyword, _ := args["keyword"].(string)
	regex, _ := args["regex"].(bool)

	return tools.CommandResult(sc, sc.ReleaseExecutor().Search(ctx, keyword, regex))
}

func handleHelmRepoAdd(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, errResult := tools.RequiredString(args, "repoName")
	if errResult != nil {
		return errResult, nil
	}
	repoURL, errResult := tools.RequiredString(args, "url")
	if errResult != nil {
		return errResult, nil
	}
	if u, err := url.Parse(repoURL); err != nil || u.Scheme == "" || u.Host == "" {
		return mcp.NewToolResultError("url must be an absolute repository URL"), nil
	}

	return tools.CommandResult(sc, sc.ReleaseExecutor().RepoAdd(ctx, name, repoURL))
}

func handleHelmRepoUpdate(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	return tools.CommandResult(sc, sc.ReleaseExecutor().RepoUpdate(ctx))
}

func handleHelmRepoList(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	return tools.CommandResult(sc, sc.ReleaseExecutor().RepoList(ctx))
}

func handleHelmRepoRemove(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, errResult := tools.RequiredString(args, "repoName")
	if errResult != nil {
		return errResult, nil
	}

	return tools.CommandResult(sc, sc.ReleaseExecutor().RepoRemove(ctx, name))
}

// installRequest collects the arguments shared by install and upgrade.
func installRequest(args map[string]any, sc *server.ServerContext) (executor.InstallRequest, *mcp.CallToolResult) {
	name, errResult := tools.RequiredString(args, "releaseName")
	if errResult != nil {
		return executor.InstallRequest{}, errResult
	}
	chart, errResult := tools.RequiredString(args, "chart")
	if errResult != nil {
		return executor.InstallRequest{}, errResult
	}

	req := executor.InstallRequest{
		Name:      name,
		Chart:     chart,
		Namespace: tools.Namespace(args, sc),
	}
	req.Version, _ = args["version"].(string)

	if raw, ok := args["values"]; ok && raw != nil {
		values, ok := raw.(map[string]any)
		if !ok {
			return executor.InstallRequest{}, mcp.NewToolResultError("values must be an object")
		}
		req.Values = values
	}
	return req, nil
}

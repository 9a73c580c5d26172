package namespace

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/kubectl-mcp/internal/server"
	"github.com/giantswarm/kubectl-mcp/internal/services"
	"github.com/giantswarm/kubectl-mcp/internal/tools"
)

// handleCreateNamespace handles namespace creation
func handleCreateNamespace(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, errResult := tools.RequiredString(args, "name")
	if errResult != nil {
		return errResult, nil
	}

	labels, err := tools.StringMap(args, "labels")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp := sc.Namespaces().Create(ctx, services.Request{Name: name, Labels: labels})
	return tools.ServiceResult(sc, resp)
}

// handleDeleteNamespace handles namespace deletion
func handleDeleteNamespace(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, errResult := tools.RequiredString(args, "name")
	if errResult != nil {
		return errResult, nil
	}

	force, _ := args["force"].(bool)
	req := services.Request{Name: name, Force: force}

	seconds, ok, err := tools.Int(args, "timeout")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ok {
		if seconds <= 0 {
			return mcp.NewToolResultError("timeout must be positive"), nil
		}
		req.Timeout = time.Duration(seconds) * time.Second
	}

	return tools.ServiceResult(sc, sc.Namespaces().Delete(ctx, req))
}

// handleListNamespaces handles namespace listing
func handleListNamespaces(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	outputFormat, _ := args["outputFormat"].(string)

	resp := sc.Namespaces().List(ctx, services.Request{OutputFormat: outputFormat})
	return tools.ServiceResult(sc, resp)
}

// handleDescribeNamespace handles namespace descriptions
func handleDescribeNamespace(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, errResult := tools.RequiredString(args, "name")
	if errResult != nil {
		return errResult, nil
	}

	return tools.ServiceResult(sc, sc.Namespaces().Describe(ctx, name))
}

// handleNamespaceExists reports whether a namespace exists
func handleNamespaceExists(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, errResult := tools.RequiredString(args, "name")
	if errResult != nil {
		return errResult, nil
	}

	return tools.JSONResult(map[string]any{
		"name":   name,
		"exists": sc.Namespaces().Exists(ctx, name),
	})
}

// handleLabelNamespace merges labels into a namespace
func handleLabelNamespace(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, errResult := tools.RequiredString(args, "name")
	if errResult != nil {
		return errResult, nil
	}

	labels, err := tools.StringMap(args, "labels")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return tools.ServiceResult(sc, sc.Namespaces().Label(ctx, name, labels))
}

package pod

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/kubectl-mcp/internal/server"
	"github.com/giantswarm/kubectl-mcp/internal/services"
	"github.com/giantswarm/kubectl-mcp/internal/tools"
)

// handleCreatePod handles pod creation
func handleCreatePod(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, errResult := tools.RequiredString(args, "name")
	if errResult != nil {
		return errResult, nil
	}

	labels, err := tools.StringMap(args, "labels")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	env, err := tools.StringMap(args, "env")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	image, _ := args["image"].(string)

	resp := sc.Pods().Create(ctx, services.Request{
		Name:      name,
		Namespace: tools.Namespace(args, sc),
		Image:     image,
		Labels:    labels,
		Env:       env,
	})
	return tools.ServiceResult(sc, resp)
}

// handleGetPod handles pod lookups
func handleGetPod(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, errResult := tools.RequiredString(args, "name")
	if errResult != nil {
		return errResult, nil
	}

	resp := sc.Pods().Get(ctx, services.Request{Name: name, Namespace: tools.Namespace(args, sc)})
	return tools.ServiceResult(sc, resp)
}

// handleUpdatePodLabels replaces the labels of a pod
func handleUpdatePodLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, errResult := tools.RequiredString(args, "name")
	if errResult != nil {
		return errResult, nil
	}

	labels, err := tools.StringMap(args, "labels")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if labels == nil {
		return mcp.NewToolResultError("labels is required"), nil
	}

	resp := sc.Pods().UpdateLabels(ctx, name, tools.Namespace(args, sc), labels)
	return tools.ServiceResult(sc, resp)
}

// handleDeletePod handles pod deletion
func handleDeletePod(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, errResult := tools.RequiredString(args, "name")
	if errResult != nil {
		return errResult, nil
	}

	req := services.Request{Name: name, Namespace: tools.Namespace(args, sc)}

	seconds, ok, err := tools.Int(args, "gracePeriod")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ok {
		if seconds < 0 {
			return mcp.NewToolResultError("gracePeriod must not be negative"), nil
		}
		gracePeriod := int64(seconds)
		req.GracePeriod = &gracePeriod
	}

	return tools.ServiceResult(sc, sc.Pods().Delete(ctx, req))
}

// handleListPods handles pod listing
func handleListPods(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	labelSelector, _ := args["labelSelector"].(string)

	resp := sc.Pods().List(ctx, services.Request{
		Namespace:     tools.Namespace(args, sc),
		LabelSelector: labelSelector,
	})

	items, ok := resp.Items.([]services.PodInfo)
	if !ok {
		return tools.ServiceResult(sc, resp)
	}
	limited, warning := tools.LimitItems(sc, args, items)
	resp.Items = limited
	if resp.Message == "" {
		resp.Message = fmt.Sprintf("Found %d pods", len(items))
	}
	return tools.ServiceResult(sc, resp, warning)
}

// handlePortForward handles port forwarding to a pod
func handlePortForward(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, errResult := tools.RequiredString(args, "name")
	if errResult != nil {
		return errResult, nil
	}

	localPort, ok, err := tools.Int(args, "localPort")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError("localPort is required"), nil
	}
	podPort, ok, err := tools.Int(args, "podPort")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError("podPort is required"), nil
	}

	resp := sc.Pods().PortForward(ctx, name, tools.Namespace(args, sc), localPort, podPort)
	return tools.ServiceResult(sc, resp)
}

// handleExecInPod handles command execution inside a pod
func handleExecInPod(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, errResult := tools.RequiredString(args, "name")
	if errResult != nil {
		return errResult, nil
	}
	command, errResult := tools.RequiredString(args, "command")
	if errResult != nil {
		return errResult, nil
	}

	container, _ := args["container"].(string)

	resp := sc.Pods().Exec(ctx, name, tools.Namespace(args, sc), container, command)
	return tools.ServiceResult(sc, resp)
}

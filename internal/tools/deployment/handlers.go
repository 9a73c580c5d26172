package deployment

import (
	"context"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/kubectl-mcp/internal/server"
	"github.com/giantswarm/kubectl-mcp/internal/services"
	"github.com/giantswarm/kubectl-mcp/internal/tools"
)

// handleCreateDeployment handles deployment creation
func handleCreateDeployment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	req, errResult := deploymentRequest(args, sc)
	if errResult != nil {
		return errResult, nil
	}

	env, err := tools.StringMap(args, "env")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	req.Env = env

	port, ok, err := tools.Int(args, "containerPort")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ok {
		if port <= 0 || port > 65535 {
			return mcp.NewToolResultError(fmt.Sprintf("containerPort %d is out of range", port)), nil
		}
		req.ContainerPort = int32(port)
	}

	resources, err := resourceRequirements(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	req.Resources = resources

	return tools.ServiceResult(sc, sc.Deployments().Create(ctx, req))
}

// handleGetDeployment handles deployment lookups
func handleGetDeployment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, errResult := tools.RequiredString(args, "name")
	if errResult != nil {
		return errResult, nil
	}

	resp := sc.Deployments().Get(ctx, services.Request{Name: name, Namespace: tools.Namespace(args, sc)})
	return tools.ServiceResult(sc, resp)
}

// handleUpdateDeployment handles partial deployment updates
func handleUpdateDeployment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	req, errResult := deploymentRequest(request.GetArguments(), sc)
	if errResult != nil {
		return errResult, nil
	}
	return tools.ServiceResult(sc, sc.Deployments().Update(ctx, req))
}

// handleDeleteDeployment handles deployment deletion
func handleDeleteDeployment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
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

	return tools.ServiceResult(sc, sc.Deployments().Delete(ctx, req))
}

// handleListDeployments handles deployment listing
func handleListDeployments(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	labelSelector, _ := args["labelSelector"].(string)

	resp := sc.Deployments().List(ctx, services.Request{
		Namespace:     tools.Namespace(args, sc),
		LabelSelector: labelSelector,
	})

	items, ok := resp.Items.([]services.DeploymentInfo)
	if !ok {
		return tools.ServiceResult(sc, resp)
	}
	limited, warning := tools.LimitItems(sc, args, items)
	resp.Items = limited
	resp.Message = fmt.Sprintf("Found %d deployments", len(items))
	return tools.ServiceResult(sc, resp, warning)
}

// handleScaleDeployment handles replica count changes
func handleScaleDeployment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, errResult := tools.RequiredString(args, "name")
	if errResult != nil {
		return errResult, nil
	}

	replicas, errResult := replicasArg(args)
	if errResult != nil {
		return errResult, nil
	}
	if replicas == nil {
		return mcp.NewToolResultError("replicas is required"), nil
	}

	resp := sc.Deployments().Scale(ctx, name, tools.Namespace(args, sc), *replicas)
	return tools.ServiceResult(sc, resp)
}

// deploymentRequest reads the arguments shared by create and update.
func deploymentRequest(args map[string]any, sc *server.ServerContext) (services.Request, *mcp.CallToolResult) {
	name, errResult := tools.RequiredString(args, "name")
	if errResult != nil {
		return services.Request{}, errResult
	}

	replicas, errResult := replicasArg(args)
	if errResult != nil {
		return services.Request{}, errResult
	}

	labels, err := tools.StringMap(args, "labels")
	if err != nil {
		return services.Request{}, mcp.NewToolResultError(err.Error())
	}

	image, _ := args["image"].(string)

	return services.Request{
		Name:      name,
		Namespace: tools.Namespace(args, sc),
		Image:     image,
		Replicas:  replicas,
		Labels:    labels,
	}, nil
}

func replicasArg(args map[string]any) (*int32, *mcp.CallToolResult) {
	n, ok, err := tools.Int(args, "replicas")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	if !ok {
		return nil, nil
	}
	if n < 0 || n > math.MaxInt32 {
		return nil, mcp.NewToolResultError("replicas must be between 0 and 2147483647")
	}
	replicas := int32(n)
	return &replicas, nil
}

func resourceRequirements(args map[string]any) (*services.ResourceRequirements, error) {
	raw, ok := args["resources"]
	if !ok || raw == nil {
		return nil, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("resources must be an object")
	}

	requests, err := tools.StringMap(obj, "requests")
	if err != nil {
		return nil, fmt.Errorf("resources.%w", err)
	}
	limits, err := tools.StringMap(obj, "limits")
	if err != nil {
		return nil, fmt.Errorf("resources.%w", err)
	}
	if requests == nil && limits == nil {
		return nil, nil
	}
	return &services.ResourceRequirements{Requests: requests, Limits: limits}, nil
}

package resource

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/kubectl-mcp/internal/server"
	"github.com/giantswarm/kubectl-mcp/internal/services"
	"github.com/giantswarm/kubectl-mcp/internal/tools"
)

// lookupService resolves the kind argument to its service.
func lookupService(args map[string]any, sc *server.ServerContext) (services.ResourceService, *mcp.CallToolResult) {
	kind, errResult := tools.RequiredString(args, "kind")
	if errResult != nil {
		return nil, errResult
	}
	svc, err := sc.Registry().Lookup(kind)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return svc, nil
}

func handleGetResource(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	svc, errResult := lookupService(args, sc)
	if errResult != nil {
		return errResult, nil
	}
	name, errResult := tools.RequiredString(args, "name")
	if errResult != nil {
		return errResult, nil
	}

	resp := svc.Get(ctx, services.Request{Name: name, Namespace: tools.Namespace(args, sc)})
	return tools.ServiceResult(sc, resp)
}

func handleListResources(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	svc, errResult := lookupService(args, sc)
	if errResult != nil {
		return errResult, nil
	}

	var filter Filter
	if raw, ok := args["filter"]; ok && raw != nil {
		criteria, ok := raw.(map[string]any)
		if !ok {
			return mcp.NewToolResultError("filter must be an object"), nil
		}
		filter = Filter(criteria)
		if err := filter.Validate(); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	labelSelector, _ := args["labelSelector"].(string)
	resp := svc.List(ctx, services.Request{
		Namespace:     tools.Namespace(args, sc),
		LabelSelector: labelSelector,
	})
	if !resp.Success || resp.Items == nil {
		// Command output is returned as text; filters address typed items only.
		return tools.ServiceResult(sc, resp)
	}

	items, err := toMaps(resp.Items)
	if err != nil {
		return nil, err
	}
	items = filter.Apply(items)

	limited, warning := tools.LimitItems(sc, args, items)
	resp.Items = limited
	resp.Message = fmt.Sprintf("Found %d %s resources", len(items), svc.Kind())
	return tools.ServiceResult(sc, resp, warning)
}

func handleDeleteResource(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	svc, errResult := lookupService(args, sc)
	if errResult != nil {
		return errResult, nil
	}
	name, errResult := tools.RequiredString(args, "name")
	if errResult != nil {
		return errResult, nil
	}

	req := services.Request{Name: name, Namespace: tools.Namespace(args, sc)}
	grace, ok, err := tools.Int(args, "gracePeriod")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ok {
		if grace < 0 {
			return mcp.NewToolResultError("gracePeriod must not be negative"), nil
		}
		seconds := int64(grace)
		req.GracePeriod = &seconds
	}

	return tools.ServiceResult(sc, svc.Delete(ctx, req))
}

// Package deployment provides the MCP tools that manage deployments.
package deployment

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/kubectl-mcp/internal/server"
	"github.com/giantswarm/kubectl-mcp/internal/tools"
)

// RegisterDeploymentTools registers all deployment management tools with the MCP server
func RegisterDeploymentTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	nameParam := mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Name of the deployment"),
	)

	// create_deployment tool
	createTool := mcp.NewTool("create_deployment",
		mcp.WithDescription("Create a deployment with a single container"),
		nameParam,
		tools.NamespaceParam(),
		mcp.WithString("image",
			mcp.Description("Container image (default: nginx:latest)"),
		),
		mcp.WithNumber("replicas",
			mcp.Description("Number of replicas (default: 1)"),
		),
		mcp.WithObject("labels",
			mcp.Description("Labels for the deployment, its selector and pods (default: app=<name>)"),
		),
		mcp.WithObject("env",
			mcp.Description("Environment variables for the container"),
		),
		mcp.WithNumber("containerPort",
			mcp.Description("Port exposed by the container (optional)"),
		),
		mcp.WithObject("resources",
			mcp.Description("Container resources, e.g. {\"requests\": {\"cpu\": \"100m\"}, \"limits\": {\"memory\": \"128Mi\"}}"),
		),
	)
	s.AddTool(createTool, tools.WrapWithAuditLogging("create_deployment",
		tools.Mutating("create_deployment", handleCreateDeployment), sc))

	// get_deployment tool
	getTool := mcp.NewTool("get_deployment",
		mcp.WithDescription("Get a deployment's replicas, image, labels and selector"),
		nameParam,
		tools.NamespaceParam(),
	)
	s.AddTool(getTool, tools.WrapWithAuditLogging("get_deployment", handleGetDeployment, sc))

	// update_deployment tool
	updateTool := mcp.NewTool("update_deployment",
		mcp.WithDescription("Update replicas, image or labels of a deployment. Only supplied fields change"),
		nameParam,
		tools.NamespaceParam(),
		mcp.WithString("image",
			mcp.Description("New container image"),
		),
		mcp.WithNumber("replicas",
			mcp.Description("New number of replicas"),
		),
		mcp.WithObject("labels",
			mcp.Description("Labels merged into the deployment and its pod template"),
		),
	)
	s.AddTool(updateTool, tools.WrapWithAuditLogging("update_deployment",
		tools.Mutating("update_deployment", handleUpdateDeployment), sc))

	// delete_deployment tool
	deleteTool := mcp.NewTool("delete_deployment",
		mcp.WithDescription("Delete a deployment"),
		nameParam,
		tools.NamespaceParam(),
		mcp.WithNumber("gracePeriod",
			mcp.Description("Seconds to wait before the pods are killed (optional)"),
		),
	)
	s.AddTool(deleteTool, tools.WrapWithAuditLogging("delete_deployment",
		tools.Mutating("delete_deployment", handleDeleteDeployment), sc))

	// list_deployments tool
	listTool := mcp.NewTool("list_deployments",
		mcp.WithDescription("List deployments in a namespace"),
		tools.NamespaceParam(),
		mcp.WithString("labelSelector",
			mcp.Description("Label selector to filter deployments (e.g. app=web)"),
		),
		tools.LimitParam(),
	)
	s.AddTool(listTool, tools.WrapWithAuditLogging("list_deployments", handleListDeployments, sc))

	// scale_deployment tool
	scaleTool := mcp.NewTool("scale_deployment",
		mcp.WithDescription("Set the replica count of a deployment"),
		nameParam,
		tools.NamespaceParam(),
		mcp.WithNumber("replicas",
			mcp.Required(),
			mcp.Description("Desired number of replicas"),
		),
	)
	s.AddTool(scaleTool, tools.WrapWithAuditLogging("scale_deployment",
		tools.Mutating("scale_deployment", handleScaleDeployment), sc))

	return nil
}

// Package pod provides the MCP tools that manage individual pods.
package pod

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/kubectl-mcp/internal/server"
	"github.com/giantswarm/kubectl-mcp/internal/tools"
)

// RegisterPodTools registers all pod management tools with the MCP server
func RegisterPodTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// create_pod tool
	createTool := mcp.NewTool("create_pod",
		mcp.WithDescription("Create a single-container pod"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the pod and its container"),
		),
		tools.NamespaceParam(),
		mcp.WithString("image",
			mcp.Description("Container image (default: nginx:latest)"),
		),
		mcp.WithObject("labels",
			mcp.Description("Pod labels (default: app=<name>)"),
		),
		mcp.WithObject("env",
			mcp.Description("Environment variables for the container"),
		),
	)
	s.AddTool(createTool, tools.WrapWithAuditLogging("create_pod",
		tools.Mutating("create_pod", handleCreatePod), sc))

	// get_pod tool
	getTool := mcp.NewTool("get_pod",
		mcp.WithDescription("Get a pod's status, IP, node and labels"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the pod"),
		),
		tools.NamespaceParam(),
	)
	s.AddTool(getTool, tools.WrapWithAuditLogging("get_pod", handleGetPod, sc))

	// update_pod_labels tool
	labelsTool := mcp.NewTool("update_pod_labels",
		mcp.WithDescription("Replace all labels of a pod"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the pod"),
		),
		tools.NamespaceParam(),
		mcp.WithObject("labels",
			mcp.Required(),
			mcp.Description("The complete new label set"),
		),
	)
	s.AddTool(labelsTool, tools.WrapWithAuditLogging("update_pod_labels",
		tools.Mutating("update_pod_labels", handleUpdatePodLabels), sc))

	// delete_pod tool
	deleteTool := mcp.NewTool("delete_pod",
		mcp.WithDescription("Delete a pod"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the pod"),
		),
		tools.NamespaceParam(),
		mcp.WithNumber("gracePeriod",
			mcp.Description("Seconds to wait before the pod is killed (optional)"),
		),
	)
	s.AddTool(deleteTool, tools.WrapWithAuditLogging("delete_pod",
		tools.Mutating("delete_pod", handleDeletePod), sc))

	// list_pods tool
	listTool := mcp.NewTool("list_pods",
		mcp.WithDescription("List pods in a namespace"),
		tools.NamespaceParam(),
		mcp.WithString("labelSelector",
			mcp.Description("Label selector to filter pods (e.g. app=web)"),
		),
		tools.LimitParam(),
	)
	s.AddTool(listTool, tools.WrapWithAuditLogging("list_pods", handleListPods, sc))

	// port_forward tool
	portForwardTool := mcp.NewTool("port_forward",
		mcp.WithDescription("Forward a local port to a pod port. The call lasts as long as the session, at most one hour"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the pod"),
		),
		tools.NamespaceParam(),
		mcp.WithNumber("localPort",
			mcp.Required(),
			mcp.Description("Local port to listen on"),
		),
		mcp.WithNumber("podPort",
			mcp.Required(),
			mcp.Description("Pod port to forward to"),
		),
	)
	s.AddTool(portForwardTool, tools.WrapWithAuditLogging("port_forward",
		tools.Mutating("port_forward", handlePortForward), sc))

	// exec_in_pod tool
	execTool := mcp.NewTool("exec_in_pod",
		mcp.WithDescription("Execute a command inside a pod container"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the pod"),
		),
		tools.NamespaceParam(),
		mcp.WithString("container",
			mcp.Description("Name of the container (optional for single-container pods)"),
		),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("Command line to run, e.g. \"ls -la /tmp\""),
		),
	)
	s.AddTool(execTool, tools.WrapWithAuditLogging("exec_in_pod",
		tools.Mutating("exec_in_pod", handleExecInPod), sc))

	return nil
}

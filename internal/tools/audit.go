// Package tools provides shared utilities and types for MCP tool implementations.
package tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/kubectl-mcp/internal/instrumentation"
	"github.com/giantswarm/kubectl-mcp/internal/server"
)

// ToolHandler is the signature for MCP tool handler functions that take ServerContext.
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error)

// WrapWithAuditLogging wraps a tool handler with a trace span and an audit
// record. The wrapper captures:
//   - Tool invocation timing
//   - Namespace, resource kind and name from the request arguments
//   - Success/error status from the handler result
//   - OpenTelemetry trace context for correlation
//
// Calls arriving after the server context was shut down are refused.
func WrapWithAuditLogging(
	toolName string,
	handler ToolHandler,
	sc *server.ServerContext,
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	auditLogger := sc.InstrumentationProvider().AuditLogger()
	if auditLogger == nil {
		auditLogger = instrumentation.NewAuditLogger(sc.Logger())
	}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		namespace, resourceType, resourceName := auditInfoFromArgs(args)

		ctx, span := instrumentation.StartToolSpan(ctx, toolName,
			instrumentation.NewSpanAttributeBuilder().
				WithNamespace(namespace).
				WithResource(resourceType, resourceName).
				Build()...)
		defer span.End()

		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx).
			WithResource(namespace, resourceType, resourceName)

		var result *mcp.CallToolResult
		var err error
		if sc.IsShutdown() {
			result = mcp.NewToolResultError(server.ErrServerShutdown.Error())
		} else {
			result, err = handler(ctx, request, sc)
		}

		switch {
		case err != nil:
			invocation.CompleteWithError(err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			// Domain failures travel in the result, not as Go errors.
			msg := resultText(result)
			invocation.CompleteWithError(errors.New(msg))
			instrumentation.SetSpanError(span, errors.New(msg))
		default:
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		auditLogger.LogToolInvocation(invocation)
		return result, err
	}
}

// auditInfoFromArgs extracts namespace, resource kind and resource name from
// tool arguments. Tools name their target differently, so several keys are
// tried.
func auditInfoFromArgs(args map[string]any) (namespace, resourceType, resourceName string) {
	namespace, _ = args["namespace"].(string)

	for _, key := range []string{"kind", "resourceType"} {
		if v, ok := args[key].(string); ok && v != "" {
			resourceType = v
			break
		}
	}

	for _, key := range []string{"name", "podName", "deploymentName", "releaseName", "repoName"} {
		if v, ok := args[key].(string); ok && v != "" {
			resourceName = v
			break
		}
	}
	return namespace, resourceType, resourceName
}

func resultText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "tool returned an error"
	}
	if text, ok := result.Content[0].(mcp.TextContent); ok {
		return text.Text
	}
	return "tool returned an error"
}

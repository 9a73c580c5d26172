package query

import (
	"context"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/kubectl-mcp/internal/server"
	"github.com/giantswarm/kubectl-mcp/internal/tools"
)

// mutatingVerbs are the command verbs that change cluster or repository
// state, keyed by binary.
var mutatingVerbs = map[string][]string{
	"kubectl": {"annotate", "apply", "create", "delete", "edit", "label", "patch", "replace", "rollout", "run", "scale", "set"},
	"helm":    {"install", "rollback", "uninstall", "upgrade"},
}

// handleProcessQuery resolves a query and runs the resulting command. A query
// resolving to a mutating command passes the non-destructive gate first.
func handleProcessQuery(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	q, errResult := tools.RequiredString(args, "query")
	if errResult != nil {
		return errResult, nil
	}
	namespace, _ := args["namespace"].(string)

	match := sc.Matcher().Resolve(q, namespace)
	if isMutating(match.Command) {
		if blocked := tools.CheckMutatingOperation(sc, "process_query"); blocked != nil {
			return blocked, nil
		}
	}

	return tools.CommandResult(sc, sc.Matcher().Process(ctx, q, namespace))
}

func handleValidateQuery(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	q, _ := request.GetArguments()["query"].(string)
	return tools.JSONResult(sc.Matcher().Validate(q))
}

func handleListSupportedQueries(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	queries := slices.Collect(sc.Matcher().ListSupportedCommands())
	return tools.JSONResult(map[string]any{
		"queries": queries,
		"count":   len(queries),
	})
}

func isMutating(command string) bool {
	fields := strings.Fields(command)
	if len(fields) < 2 {
		return false
	}
	if fields[0] == "helm" && fields[1] == "repo" {
		return len(fields) > 2 && fields[2] != "list"
	}
	return slices.Contains(mutatingVerbs[fields[0]], fields[1])
}

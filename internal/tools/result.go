package tools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/kubectl-mcp/internal/executor"
	"github.com/giantswarm/kubectl-mcp/internal/server"
	"github.com/giantswarm/kubectl-mcp/internal/services"
	"github.com/giantswarm/kubectl-mcp/internal/tools/output"
)

// envelope is the JSON shape of every service-backed tool result.
type envelope struct {
	services.Response
	Warnings []*output.TruncationWarning `json:"warnings,omitempty"`
}

// ServiceResult encodes resp as the tool result. Command output is shaped by
// the server's output processor. Failed responses are marked as errors so
// clients can tell them apart without parsing the body.
func ServiceResult(sc *server.ServerContext, resp services.Response, warnings ...*output.TruncationWarning) (*mcp.CallToolResult, error) {
	env := envelope{Response: resp}
	for _, w := range warnings {
		if w != nil {
			env.Warnings = append(env.Warnings, w)
		}
	}

	if resp.Output != "" {
		shaped, warning := sc.OutputProcessor().Text(resp.Output)
		env.Output = shaped
		if warning != nil {
			env.Warnings = append(env.Warnings, warning)
		}
	}

	result, err := JSONResult(env)
	if err != nil {
		return nil, err
	}
	result.IsError = !resp.Success
	return result, nil
}

// CommandResult encodes an executor result as the tool result.
func CommandResult(sc *server.ServerContext, res executor.Result) (*mcp.CallToolResult, error) {
	return ServiceResult(sc, services.FromCommand(res))
}

// JSONResult encodes v as an indented JSON text result.
func JSONResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// LimitItems truncates a typed item list to the request's limit argument
// bounded by the configured maximum.
func LimitItems[T any](sc *server.ServerContext, args map[string]any, items []T) ([]T, *output.TruncationWarning) {
	requested, _, _ := Int(args, "limit")
	limit := output.EffectiveLimit(requested, sc.OutputProcessor().Config().MaxItems)
	return output.TruncateItems(items, limit)
}

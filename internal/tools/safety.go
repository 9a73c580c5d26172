package tools

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/giantswarm/kubectl-mcp/internal/server"
)

// CheckMutatingOperation returns an error result when non-destructive mode
// refuses toolName, and nil when the call may proceed. Tools named in
// AllowedOperations always pass.
func CheckMutatingOperation(sc *server.ServerContext, toolName string) *mcp.CallToolResult {
	config := sc.Config()
	if !config.NonDestructiveMode || slices.Contains(config.AllowedOperations, toolName) {
		return nil
	}

	return mcp.NewToolResultError(fmt.Sprintf(
		"%s operations are not allowed in non-destructive mode",
		cases.Title(language.English).String(strings.ReplaceAll(toolName, "_", " ")),
	))
}

// Mutating wraps handler with the non-destructive gate for toolName.
func Mutating(toolName string, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
		if blocked := CheckMutatingOperation(sc, toolName); blocked != nil {
			return blocked, nil
		}
		return handler(ctx, request, sc)
	}
}

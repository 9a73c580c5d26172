// Package toolstest provides helpers for testing MCP tool handlers against a
// real ServerContext backed by a scripted command runner.
package toolstest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/kubectl-mcp/internal/executor"
	"github.com/giantswarm/kubectl-mcp/internal/executor/executortest"
	"github.com/giantswarm/kubectl-mcp/internal/server"
)

// NewServerContext builds a ServerContext whose commands are answered by
// runner. Pass server.WithClientset to exercise the typed path. The context
// is shut down when the test ends.
func NewServerContext(t testing.TB, runner *executortest.Runner, opts ...server.Option) *server.ServerContext {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	exec := executor.New(
		executor.WithRunner(runner),
		executor.WithLogger(logger),
	)

	all := append([]server.Option{
		server.WithExecutor(exec),
		server.WithLogger(logger),
	}, opts...)

	sc, err := server.NewServerContext(context.Background(), all...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

// Request builds a tool call request carrying args.
func Request(name string, args map[string]any) mcp.CallToolRequest {
	if args == nil {
		args = map[string]any{}
	}
	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args
	return request
}

// Text returns the text of the first content item of result.
func Text(t testing.TB, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

// Decode parses the JSON body of result.
func Decode(t testing.TB, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(Text(t, result)), &body))
	return body
}

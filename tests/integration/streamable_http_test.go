// Package integration provides end-to-end integration tests for kubectl-mcp.
//
// These tests start a real MCP server and make requests to it using the mcp-go client.
// They help diagnose issues that might not be caught by unit tests.
//
// Run with: go test -v ./tests/integration/... -tags=integration
//
//go:build integration

package integration

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/giantswarm/kubectl-mcp/internal/events"
	"github.com/giantswarm/kubectl-mcp/internal/executor"
	"github.com/giantswarm/kubectl-mcp/internal/executor/executortest"
	"github.com/giantswarm/kubectl-mcp/internal/server"
	"github.com/giantswarm/kubectl-mcp/internal/tools/namespace"
	querytools "github.com/giantswarm/kubectl-mcp/internal/tools/query"
	"github.com/giantswarm/kubectl-mcp/internal/tools/toolstest"
)

func newClient(t *testing.T, ctx context.Context, url string) *client.Client {
	t.Helper()

	mcpClient, err := client.NewStreamableHttpClient(url)
	require.NoError(t, err, "Failed to create MCP client")
	require.NoError(t, mcpClient.Start(ctx), "Failed to start MCP client transport")
	t.Cleanup(func() { _ = mcpClient.Close() })

	_, err = mcpClient.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "integration-test",
				Version: "1.0.0",
			},
		},
	})
	require.NoError(t, err, "Failed to initialize MCP client")
	return mcpClient
}

func callTool(t *testing.T, ctx context.Context, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := c.CallTool(ctx, mcp.CallToolRequest{
		Request: mcp.Request{Method: "tools/call"},
		Params:  mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "Failed to call %s", name)
	return result
}

// TestStreamableHTTPTools drives query and namespace tools through the
// streamable-http transport.
func TestStreamableHTTPTools(t *testing.T) {
	runner := executortest.NewRunner().
		On("kubectl get pods -A -o wide", executor.Process{Stdout: "NAMESPACE   NAME    READY\ndefault     web-1   1/1\n"})
	clientset := fake.NewSimpleClientset()
	sc := toolstest.NewServerContext(t, runner, server.WithClientset(clientset))

	mcpSrv := mcpserver.NewMCPServer("kubectl-mcp", "test", mcpserver.WithToolCapabilities(true))
	require.NoError(t, querytools.RegisterQueryTools(mcpSrv, sc))
	require.NoError(t, namespace.RegisterNamespaceTools(mcpSrv, sc))

	ts := httptest.NewServer(mcpserver.NewStreamableHTTPServer(mcpSrv, mcpserver.WithEndpointPath("/mcp")))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	mcpClient := newClient(t, ctx, ts.URL+"/mcp")

	toolsResp, err := mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	var names []string
	for _, tool := range toolsResp.Tools {
		names = append(names, tool.Name)
	}
	assert.Contains(t, names, "process_query")
	assert.Contains(t, names, "create_namespace")

	result := callTool(t, ctx, mcpClient, "process_query", map[string]any{"query": "show all pods"})
	assert.False(t, result.IsError)
	assert.Contains(t, toolstest.Text(t, result), "web-1")
	assert.Equal(t, "kubectl get pods -A -o wide", runner.Last())

	sub := sc.EventBus().Subscribe(events.Filter{ResourceType: "namespace"})
	defer sc.EventBus().Unsubscribe(sub)

	result = callTool(t, ctx, mcpClient, "create_namespace", map[string]any{"name": "team-a"})
	assert.False(t, result.IsError, toolstest.Text(t, result))

	_, err = clientset.CoreV1().Namespaces().Get(ctx, "team-a", metav1.GetOptions{})
	require.NoError(t, err)

	ev, err := sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, events.Name("namespace", events.Created), ev.Type)
}

// TestStreamableHTTPTimeout tests that requests don't hang indefinitely.
func TestStreamableHTTPTimeout(t *testing.T) {
	mcpSrv := mcpserver.NewMCPServer(
		"test-server",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	slowTool := mcp.NewTool("slow_tool",
		mcp.WithDescription("A slow tool that takes time"),
		mcp.WithNumber("delay_seconds",
			mcp.Description("How long to delay"),
		),
	)

	mcpSrv.AddTool(slowTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		delay := 5.0
		if d, ok := request.GetArguments()["delay_seconds"].(float64); ok {
			delay = d
		}

		select {
		case <-time.After(time.Duration(delay) * time.Second):
			return mcp.NewToolResultText("Done after delay"), nil
		case <-ctx.Done():
			return mcp.NewToolResultError("cancelled"), ctx.Err()
		}
	})

	ts := httptest.NewServer(mcpserver.NewStreamableHTTPServer(mcpSrv, mcpserver.WithEndpointPath("/mcp")))
	defer ts.Close()

	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer initCancel()
	mcpClient := newClient(t, initCtx, ts.URL+"/mcp")

	callCtx, callCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer callCancel()

	_, err := mcpClient.CallTool(callCtx, mcp.CallToolRequest{
		Request: mcp.Request{Method: "tools/call"},
		Params: mcp.CallToolParams{
			Name:      "slow_tool",
			Arguments: map[string]any{"delay_seconds": 10.0},
		},
	})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "context deadline exceeded") ||
		strings.Contains(err.Error(), "timeout") ||
		strings.Contains(err.Error(), "canceled"),
		"Expected timeout-related error, got: %v", err)
}

// TestMain sets up logging for integration tests
func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	os.Exit(m.Run())
}

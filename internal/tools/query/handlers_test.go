package query

import (
	"context"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/kubectl-mcp/internal/executor"
	"github.com/giantswarm/kubectl-mcp/internal/executor/executortest"
	"github.com/giantswarm/kubectl-mcp/internal/server"
	"github.com/giantswarm/kubectl-mcp/internal/tools/toolstest"
)

func TestRegisterQueryTools(t *testing.T) {
	sc := toolstest.NewServerContext(t, executortest.NewRunner())

	mcpSrv := mcpserver.NewMCPServer("test", "0.0.1", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterQueryTools(mcpSrv, sc))

	registered := mcpSrv.ListTools()
	for _, name := range []string{"process_query", "validate_query", "list_supported_queries"} {
		assert.Contains(t, registered, name)
	}
}

func TestHandleProcessQuery(t *testing.T) {
	tests := []struct {
		name        string
		args        map[string]any
		wantCommand string
	}{
		{
			name:        "all namespaces",
			args:        map[string]any{"query": "show all pods"},
			wantCommand: "kubectl get pods -A -o wide",
		},
		{
			name:        "embedded namespace",
			args:        map[string]any{"query": "show all pods in namespace kube-system"},
			wantCommand: "kubectl get pods -o wide -n kube-system",
		},
		{
			name:        "explicit namespace wins",
			args:        map[string]any{"query": "show all pods in namespace kube-system", "namespace": "apps"},
			wantCommand: "kubectl get pods -o wide -n apps",
		},
		{
			name:        "release command",
			args:        map[string]any{"query": "show all releases"},
			wantCommand: "helm list -A",
		},
		{
			name:        "unmatched query falls back",
			args:        map[string]any{"query": "what is going on"},
			wantCommand: "kubectl get all -A -o wide",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := executortest.NewRunner()
			sc := toolstest.NewServerContext(t, runner)

			result, err := handleProcessQuery(context.Background(), toolstest.Request("process_query", tt.args), sc)
			require.NoError(t, err)
			assert.False(t, result.IsError, toolstest.Text(t, result))
			assert.Equal(t, tt.wantCommand, runner.Last())
		})
	}
}

func TestHandleProcessQuery_Output(t *testing.T) {
	runner := executortest.NewRunner().On("kubectl get nodes -o wide", executor.Process{
		Stdout: "NAME     STATUS   ROLES\nnode-1   Ready    control-plane\n",
	})
	sc := toolstest.NewServerContext(t, runner)

	result, err := handleProcessQuery(context.Background(), toolstest.Request("process_query", map[string]any{
		"query": "list nodes",
	}), sc)
	require.NoError(t, err)

	body := toolstest.Decode(t, result)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "kubectl get nodes -o wide", body["command"])
	assert.Contains(t, body["output"], "node-1")
}

func TestHandleProcessQuery_NonDestructiveMode(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		allowed   []string
		wantBlock bool
	}{
		{name: "read query runs", query: "show all pods"},
		{name: "delete is refused", query: "delete pod web", wantBlock: true},
		{name: "scale is refused", query: "scale deployment web to 3", wantBlock: true},
		{name: "helm uninstall is refused", query: "uninstall release web", wantBlock: true},
		{name: "allowed explicitly", query: "delete pod web", allowed: []string{"process_query"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := executortest.NewRunner()
			sc := toolstest.NewServerContext(t, runner,
				server.WithNonDestructiveMode(true),
				server.WithAllowedOperations(tt.allowed),
			)

			result, err := handleProcessQuery(context.Background(), toolstest.Request("process_query", map[string]any{
				"query": tt.query,
			}), sc)
			require.NoError(t, err)

			if tt.wantBlock {
				assert.True(t, result.IsError)
				assert.Contains(t, toolstest.Text(t, result), "not allowed in non-destructive mode")
				assert.Empty(t, runner.Commands())
				return
			}
			assert.False(t, result.IsError)
			assert.Len(t, runner.Commands(), 1)
		})
	}
}

func TestHandleProcessQuery_MissingQuery(t *testing.T) {
	sc := toolstest.NewServerContext(t, executortest.NewRunner())

	result, err := handleProcessQuery(context.Background(), toolstest.Request("process_query", nil), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "query is required", toolstest.Text(t, result))
}

func TestHandleValidateQuery(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantValid   bool
		wantCommand string
	}{
		{name: "matching query", query: "describe pod web", wantValid: true, wantCommand: "kubectl describe pod web"},
		{name: "unmatched query", query: "make me a sandwich"},
		{name: "empty query", query: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := executortest.NewRunner()
			sc := toolstest.NewServerContext(t, runner)

			result, err := handleValidateQuery(context.Background(), toolstest.Request("validate_query", map[string]any{
				"query": tt.query,
			}), sc)
			require.NoError(t, err)

			body := toolstest.Decode(t, result)
			assert.Equal(t, tt.wantValid, body["valid"])
			if tt.wantValid {
				assert.Equal(t, tt.wantCommand, body["command"])
			} else {
				assert.NotEmpty(t, body["error"])
			}
			assert.Empty(t, runner.Commands(), "validation must not run commands")
		})
	}
}

func TestHandleListSupportedQueries(t *testing.T) {
	sc := toolstest.NewServerContext(t, executortest.NewRunner())

	result, err := handleListSupportedQueries(context.Background(), toolstest.Request("list_supported_queries", nil), sc)
	require.NoError(t, err)

	body := toolstest.Decode(t, result)
	queries, ok := body["queries"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, queries)
	assert.Equal(t, float64(len(queries)), body["count"])
	assert.Equal(t, "describe pod <name> -> kubectl describe pod <name>", queries[0])
	assert.Equal(t, "<anything else> -> kubectl get all -A -o wide", queries[len(queries)-1])
}

func TestIsMutating(t *testing.T) {
	tests := []struct {
		command string
		want    bool
	}{
		{"kubectl get pods -A", false},
		{"kubectl logs web --tail=10", false},
		{"kubectl delete pod web", true},
		{"kubectl rollout restart deployment web", true},
		{"helm list -A", false},
		{"helm install web bitnami/nginx", true},
		{"helm repo list", false},
		{"helm repo add bitnami https://charts.bitnami.com/bitnami", true},
		{"kubectl", false},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			assert.Equal(t, tt.want, isMutating(tt.command))
		})
	}
}

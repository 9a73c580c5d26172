package cluster

import (
	"context"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/kubectl-mcp/internal/executor"
	"github.com/giantswarm/kubectl-mcp/internal/executor/executortest"
	"github.com/giantswarm/kubectl-mcp/internal/tools/toolstest"
)

func TestRegisterClusterTools(t *testing.T) {
	sc := toolstest.NewServerContext(t, executortest.NewRunner())

	mcpSrv := mcpserver.NewMCPServer("test", "0.0.1", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterClusterTools(mcpSrv, sc))
	assert.Contains(t, mcpSrv.ListTools(), "cluster_ping")
}

func TestHandleClusterPing(t *testing.T) {
	tests := []struct {
		name       string
		process    executor.Process
		wantStatus string
	}{
		{
			name:       "connected",
			process:    executor.Process{Stdout: "Kubernetes control plane is running at https://127.0.0.1:6443\n"},
			wantStatus: "connected",
		},
		{
			name:       "disconnected",
			process:    executor.Process{Stderr: "The connection to the server was refused", ExitCode: 1},
			wantStatus: "disconnected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := executortest.NewRunner().On("kubectl cluster-info", tt.process)
			sc := toolstest.NewServerContext(t, runner)

			result, err := handleClusterPing(context.Background(), toolstest.Request("cluster_ping", nil), sc)
			require.NoError(t, err)
			assert.False(t, result.IsError)

			body := toolstest.Decode(t, result)
			assert.Equal(t, tt.wantStatus, body["status"])
			details, ok := body["details"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "kubectl cluster-info", details["command"])
		})
	}
}

func TestHandleClusterPing_BypassesCache(t *testing.T) {
	runner := executortest.NewRunner()
	sc := toolstest.NewServerContext(t, runner)

	for range 2 {
		_, err := handleClusterPing(context.Background(), toolstest.Request("cluster_ping", nil), sc)
		require.NoError(t, err)
	}
	assert.Len(t, runner.Commands(), 2)
}

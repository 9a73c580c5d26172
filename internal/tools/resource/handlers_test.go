package resource

import (
	"context"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/giantswarm/kubectl-mcp/internal/executor/executortest"
	"github.com/giantswarm/kubectl-mcp/internal/server"
	"github.com/giantswarm/kubectl-mcp/internal/tools/toolstest"
)

func testPod(name, app string, phase corev1.PodPhase) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "default", Labels: map[string]string{"app": app}},
		Status:     corev1.PodStatus{Phase: phase},
	}
}

func TestRegisterResourceTools(t *testing.T) {
	sc := toolstest.NewServerContext(t, executortest.NewRunner())

	mcpSrv := mcpserver.NewMCPServer("test", "0.0.1", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterResourceTools(mcpSrv, sc))

	registered := mcpSrv.ListTools()
	for _, name := range []string{"resource_get", "resource_list", "resource_delete"} {
		assert.Contains(t, registered, name)
	}
}

func TestHandleGetResource(t *testing.T) {
	client := fake.NewSimpleClientset(testPod("web-1", "web", corev1.PodRunning))
	sc := toolstest.NewServerContext(t, executortest.NewRunner(), server.WithClientset(client))

	result, err := handleGetResource(context.Background(), toolstest.Request("resource_get", map[string]any{
		"kind": "pods",
		"name": "web-1",
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, toolstest.Text(t, result))

	resource, ok := toolstest.Decode(t, result)["resource"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "web-1", resource["name"])
	assert.Equal(t, "Running", resource["status"])
}

func TestHandleGetResource_UnknownKind(t *testing.T) {
	runner := executortest.NewRunner()
	sc := toolstest.NewServerContext(t, runner)

	result, err := handleGetResource(context.Background(), toolstest.Request("resource_get", map[string]any{
		"kind": "widget",
		"name": "x",
	}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, toolstest.Text(t, result), `unsupported resource kind "widget"`)
	assert.Empty(t, runner.Commands())
}

func TestHandleListResources(t *testing.T) {
	client := fake.NewSimpleClientset(
		testPod("web-1", "web", corev1.PodRunning),
		testPod("web-2", "web", corev1.PodPending),
		testPod("db-1", "db", corev1.PodRunning),
	)

	tests := []struct {
		name      string
		args      map[string]any
		wantCount int
		wantError string
	}{
		{name: "all", args: map[string]any{"kind": "po"}, wantCount: 3},
		{name: "label selector", args: map[string]any{"kind": "pod", "labelSelector": "app=web"}, wantCount: 2},
		{name: "filter", args: map[string]any{"kind": "pod", "filter": map[string]any{"status": "Running"}}, wantCount: 2},
		{name: "limit", args: map[string]any{"kind": "pod", "limit": 1.0}, wantCount: 1},
		{name: "bad filter", args: map[string]any{"kind": "pod", "filter": "status=Running"}, wantError: "filter must be an object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := toolstest.NewServerContext(t, executortest.NewRunner(), server.WithClientset(client))

			result, err := handleListResources(context.Background(), toolstest.Request("resource_list", tt.args), sc)
			require.NoError(t, err)
			if tt.wantError != "" {
				assert.True(t, result.IsError)
				assert.Equal(t, tt.wantError, toolstest.Text(t, result))
				return
			}
			require.False(t, result.IsError, toolstest.Text(t, result))

			items, ok := toolstest.Decode(t, result)["items"].([]any)
			require.True(t, ok)
			assert.Len(t, items, tt.wantCount)
		})
	}
}

func TestHandleListResources_CommandOutput(t *testing.T) {
	runner := executortest.NewRunner()
	sc := toolstest.NewServerContext(t, runner)

	result, err := handleListResources(context.Background(), toolstest.Request("resource_list", map[string]any{
		"kind": "ns",
	}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "kubectl get namespaces -o wide", runner.Last())
}

func TestHandleDeleteResource(t *testing.T) {
	tests := []struct {
		name        string
		args        map[string]any
		wantCommand string
		wantError   string
	}{
		{
			name:        "deployment",
			args:        map[string]any{"kind": "deploy", "name": "web"},
			wantCommand: "kubectl delete deployment web -n default",
		},
		{
			name:        "pod with grace period",
			args:        map[string]any{"kind": "pod", "name": "web-1", "gracePeriod": 5.0},
			wantCommand: "kubectl delete pod web-1 --grace-period=5 -n default",
		},
		{
			name:      "negative grace period",
			args:      map[string]any{"kind": "pod", "name": "web-1", "gracePeriod": -1.0},
			wantError: "gracePeriod must not be negative",
		},
		{
			name:      "missing name",
			args:      map[string]any{"kind": "pod"},
			wantError: "name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := executortest.NewRunner()
			sc := toolstest.NewServerContext(t, runner)

			result, err := handleDeleteResource(context.Background(), toolstest.Request("resource_delete", tt.args), sc)
			require.NoError(t, err)
			if tt.wantError != "" {
				assert.True(t, result.IsError)
				assert.Equal(t, tt.wantError, toolstest.Text(t, result))
				assert.Empty(t, runner.Commands())
				return
			}
			assert.False(t, result.IsError, toolstest.Text(t, result))
			assert.Equal(t, tt.wantCommand, runner.Last())
		})
	}
}

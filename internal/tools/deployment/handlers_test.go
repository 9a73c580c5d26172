package deployment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/giantswarm/kubectl-mcp/internal/events"
	"github.com/giantswarm/kubectl-mcp/internal/executor/executortest"
	"github.com/giantswarm/kubectl-mcp/internal/server"
	"github.com/giantswarm/kubectl-mcp/internal/tools/toolstest"
)

func webDeployment(replicas int32) *appsv1.Deployment {
	labels := map[string]string{"app": "web"}
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "default", Labels: labels},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: labels},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec: corev1.PodSpec{Containers: []corev1.Container{{
					Name:  "web",
					Image: "nginx:1.25",
				}}},
			},
		},
	}
}

func TestHandleCreateDeployment(t *testing.T) {
	client := fake.NewSimpleClientset()
	sc := toolstest.NewServerContext(t, executortest.NewRunner(), server.WithClientset(client))

	result, err := handleCreateDeployment(context.Background(), toolstest.Request("create_deployment", map[string]any{
		"name":          "web",
		"image":         "nginx:1.27",
		"replicas":      3.0,
		"containerPort": 8080.0,
		"resources": map[string]any{
			"requests": map[string]any{"cpu": "100m"},
			"limits":   map[string]any{"memory": "128Mi"},
		},
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, toolstest.Text(t, result))

	d, err := client.AppsV1().Deployments("default").Get(context.Background(), "web", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(3), *d.Spec.Replicas)
	container := d.Spec.Template.Spec.Containers[0]
	assert.Equal(t, "nginx:1.27", container.Image)
	assert.Equal(t, int32(8080), container.Ports[0].ContainerPort)
	assert.Equal(t, "100m", container.Resources.Requests.Cpu().String())
	assert.Equal(t, "128Mi", container.Resources.Limits.Memory().String())
}

func TestHandleCreateDeployment_InvalidArguments(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		wantErr string
	}{
		{name: "missing name", args: map[string]any{}, wantErr: "name is required"},
		{name: "negative replicas", args: map[string]any{"name": "web", "replicas": -1.0}, wantErr: "replicas must be between 0 and 2147483647"},
		{name: "fractional replicas", args: map[string]any{"name": "web", "replicas": 1.5}, wantErr: "replicas must be an integer"},
		{name: "port out of range", args: map[string]any{"name": "web", "containerPort": 70000.0}, wantErr: "containerPort 70000 is out of range"},
		{name: "resources not an object", args: map[string]any{"name": "web", "resources": "big"}, wantErr: "resources must be an object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := executortest.NewRunner()
			sc := toolstest.NewServerContext(t, runner)

			result, err := handleCreateDeployment(context.Background(), toolstest.Request("create_deployment", tt.args), sc)
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Equal(t, tt.wantErr, toolstest.Text(t, result))
			assert.Empty(t, runner.Commands())
		})
	}
}

func TestHandleCreateDeployment_CommandPath(t *testing.T) {
	runner := executortest.NewRunner()
	sc := toolstest.NewServerContext(t, runner)

	result, err := handleCreateDeployment(context.Background(), toolstest.Request("create_deployment", map[string]any{
		"name":     "web",
		"replicas": 2.0,
	}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "kubectl create deployment web --image=nginx:latest --replicas=2 -n default", runner.Last())
}

func TestHandleUpdateDeployment(t *testing.T) {
	client := fake.NewSimpleClientset(webDeployment(1))
	sc := toolstest.NewServerContext(t, executortest.NewRunner(), server.WithClientset(client))

	result, err := handleUpdateDeployment(context.Background(), toolstest.Request("update_deployment", map[string]any{
		"name":     "web",
		"replicas": 4.0,
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, toolstest.Text(t, result))

	d, err := client.AppsV1().Deployments("default").Get(context.Background(), "web", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(4), *d.Spec.Replicas)
	assert.Equal(t, "nginx:1.25", d.Spec.Template.Spec.Containers[0].Image)
}

func TestHandleUpdateDeployment_NothingToUpdate(t *testing.T) {
	sc := toolstest.NewServerContext(t, executortest.NewRunner())

	result, err := handleUpdateDeployment(context.Background(), toolstest.Request("update_deployment", map[string]any{
		"name": "web",
	}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "Deployment update failed: nothing to update", toolstest.Decode(t, result)["error"])
}

func TestHandleScaleDeployment(t *testing.T) {
	client := fake.NewSimpleClientset(webDeployment(1))
	sc := toolstest.NewServerContext(t, executortest.NewRunner(), server.WithClientset(client))

	sub := sc.EventBus().Subscribe(events.Filter{ResourceType: "deployment"})
	defer sc.EventBus().Unsubscribe(sub)

	result, err := handleScaleDeployment(context.Background(), toolstest.Request("scale_deployment", map[string]any{
		"name":     "web",
		"replicas": 5.0,
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, toolstest.Text(t, result))
	assert.Equal(t, "Deployment web scaled to 5 replicas", toolstest.Decode(t, result)["message"])

	evs := sub.Drain()
	require.Len(t, evs, 1)
	assert.Equal(t, "deployment_scaled", evs[0].Type)
}

func TestHandleScaleDeployment_RequiresReplicas(t *testing.T) {
	sc := toolstest.NewServerContext(t, executortest.NewRunner())

	result, err := handleScaleDeployment(context.Background(), toolstest.Request("scale_deployment", map[string]any{
		"name": "web",
	}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "replicas is required", toolstest.Text(t, result))
}

func TestHandleScaleDeployment_TransportFailure(t *testing.T) {
	client := fake.NewSimpleClientset(webDeployment(1))
	client.PrependReactor("patch", "deployments", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("dial tcp 10.0.0.1:443: connect: connection refused")
	})
	runner := executortest.NewRunner()
	sc := toolstest.NewServerContext(t, runner, server.WithClientset(client))

	result, err := handleScaleDeployment(context.Background(), toolstest.Request("scale_deployment", map[string]any{
		"name":     "web",
		"replicas": 2.0,
	}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Empty(t, runner.Commands())
}

func TestHandleListDeployments(t *testing.T) {
	client := fake.NewSimpleClientset(webDeployment(2))
	sc := toolstest.NewServerContext(t, executortest.NewRunner(), server.WithClientset(client))

	result, err := handleListDeployments(context.Background(), toolstest.Request("list_deployments", nil), sc)
	require.NoError(t, err)

	body := toolstest.Decode(t, result)
	assert.Equal(t, "Found 1 deployments", body["message"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "nginx:1.25", items[0].(map[string]any)["image"])
	assert.Equal(t, float64(2), items[0].(map[string]any)["replicas"])
}

func TestHandleDeleteDeployment(t *testing.T) {
	client := fake.NewSimpleClientset(webDeployment(1))
	sc := toolstest.NewServerContext(t, executortest.NewRunner(), server.WithClientset(client))

	result, err := handleDeleteDeployment(context.Background(), toolstest.Request("delete_deployment", map[string]any{
		"name": "web",
	}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	_, err = client.AppsV1().Deployments("default").Get(context.Background(), "web", metav1.GetOptions{})
	assert.Error(t, err)
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	deps := newFixture().deps()
	registry := NewRegistry(NewPodService(deps), NewDeploymentService(deps), NewNamespaceService(deps))

	tests := []struct {
		kind     string
		expected string
	}{
		{kind: "pod", expected: KindPod},
		{kind: "Pods", expected: KindPod},
		{kind: "po", expected: KindPod},
		{kind: "deploy", expected: KindDeployment},
		{kind: "deployments", expected: KindDeployment},
		{kind: " ns ", expected: KindNamespace},
		{kind: "namespace", expected: KindNamespace},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			svc, err := registry.Lookup(tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, svc.Kind())
		})
	}

	_, err := registry.Lookup("statefulset")
	assert.ErrorContains(t, err, "unsupported resource kind")
	assert.Equal(t, []string{KindDeployment, KindNamespace, KindPod}, registry.Kinds())
}

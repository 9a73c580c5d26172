package pod

import (
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/kubectl-mcp/internal/executor/executortest"
	"github.com/giantswarm/kubectl-mcp/internal/tools/toolstest"
)

func TestRegisterPodTools(t *testing.T) {
	sc := toolstest.NewServerContext(t, executortest.NewRunner())

	mcpSrv := mcpserver.NewMCPServer("test", "0.0.1",
		mcpserver.WithToolCapabilities(true),
	)

	require.NoError(t, RegisterPodTools(mcpSrv, sc))

	registered := mcpSrv.ListTools()
	for _, name := range []string{
		"create_pod",
		"get_pod",
		"update_pod_labels",
		"delete_pod",
		"list_pods",
		"port_forward",
		"exec_in_pod",
	} {
		assert.Contains(t, registered, name, "tool %s should be registered", name)
	}
}

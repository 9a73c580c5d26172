// Package executortest provides test doubles for code that runs commands
// through the executor package.
package executortest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/giantswarm/kubectl-mcp/internal/executor"
)

// MockCommander is a testify mock of anything exposing Execute. Expectations
// are keyed by the command string and the folded executor.CallOptions:
//
//	m.On("Execute", "kubectl get pods", executor.CallOptions{Namespace: "dev"}).
//	    Return(executor.Succeeded("kubectl get pods -n dev", "..."))
type MockCommander struct {
	mock.Mock
}

// Execute implements the command runner contract.
func (m *MockCommander) Execute(_ context.Context, command string, opts ...executor.CallOption) executor.Result {
	args := m.Called(command, executor.ApplyCallOptions(opts...))
	return args.Get(0).(executor.Result)
}

package executortest

import (
	"context"
	"strings"
	"sync"

	"github.com/giantswarm/kubectl-mcp/internal/executor"
)

// Runner is an executor.Runner that records every command line and answers
// from canned processes. Commands without a canned answer get Default.
type Runner struct {
	// Default answers commands that have no canned process.
	Default executor.Process

	// Err, when set, is returned for every command.
	Err error

	mu        sync.Mutex
	responses map[string]executor.Process
	commands  []string
}

// NewRunner returns a Runner whose default answer is an empty success.
func NewRunner() *Runner {
	return &Runner{responses: make(map[string]executor.Process)}
}

// On cans the answer for the command line argv joined by single spaces.
func (r *Runner) On(command string, p executor.Process) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[command] = p
	return r
}

// Run implements executor.Runner.
func (r *Runner) Run(_ context.Context, args []string, _ []string) (executor.Process, error) {
	line := strings.Join(args, " ")

	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, line)
	if r.Err != nil {
		return executor.Process{}, r.Err
	}
	if p, ok := r.responses[line]; ok {
		return p, nil
	}
	return r.Default, nil
}

// Commands returns the command lines run so far.
func (r *Runner) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.commands...)
}

// Last returns the most recent command line, or "" if none ran.
func (r *Runner) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.commands) == 0 {
		return ""
	}
	return r.commands[len(r.commands)-1]
}

package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Process is what a Runner observed from a finished process.
type Process struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner starts a process and waits for it. A non-zero exit status is not an
// error; an error means the process could not be started or was interrupted
// by ctx.
type Runner interface {
	Run(ctx context.Context, args []string, env []string) (Process, error)
}

// ExecRunner runs commands with os/exec. Binaries maps a command name (for
// example "kubectl") to the executable actually launched.
type ExecRunner struct {
	Binaries map[string]string
}

// waitDelay bounds how long Run waits for output pipes after the process
// was killed, so orphaned grandchildren cannot hold a call open.
const waitDelay = 2 * time.Second

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, args []string, env []string) (Process, error) {
	if len(args) == 0 {
		return Process{}, errors.New("empty command")
	}

	name := args[0]
	if path, ok := r.Binaries[name]; ok && path != "" {
		name = path
	}

	cmd := exec.CommandContext(ctx, name, args[1:]...)
	cmd.Env = env
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Process{}, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Process{
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			ExitCode: exitErr.ExitCode(),
		}, nil
	}
	if err != nil {
		return Process{}, err
	}

	return Process{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

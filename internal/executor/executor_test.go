package executor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records invocations and answers through fn.
type fakeRunner struct {
	mu    sync.Mutex
	calls [][]string
	envs  [][]string
	fn    func(ctx context.Context, args []string) (Process, error)
}

func (f *fakeRunner) Run(ctx context.Context, args []string, env []string) (Process, error) {
	f.mu.Lock()
	f.calls = append(f.calls, args)
	f.envs = append(f.envs, env)
	f.mu.Unlock()
	if f.fn == nil {
		return Process{Stdout: "ok"}, nil
	}
	return f.fn(ctx, args)
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRunner) lastCall() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

type fakeRecorder struct {
	mu         sync.Mutex
	executions []string
	hits       int
	misses     int
}

func (r *fakeRecorder) RecordCommandExecution(tool, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executions = append(r.executions, tool+":"+status)
}

func (r *fakeRecorder) RecordCacheLookup(_ string, hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hit {
		r.hits++
	} else {
		r.misses++
	}
}

func TestBuildCommand(t *testing.T) {
	tests := []struct {
		name      string
		command   string
		namespace string
		expected  string
	}{
		{name: "no namespace", command: "kubectl get pods", expected: "kubectl get pods"},
		{name: "appends short flag", command: "kubectl get pods", namespace: "dev", expected: "kubectl get pods -n dev"},
		{name: "keeps existing short flag", command: "kubectl get pods -n prod", namespace: "dev", expected: "kubectl get pods -n prod"},
		{name: "keeps existing long flag", command: "kubectl get pods --namespace prod", namespace: "dev", expected: "kubectl get pods --namespace prod"},
		{name: "keeps existing long flag with equals", command: "kubectl get pods --namespace=prod", namespace: "dev", expected: "kubectl get pods --namespace=prod"},
		{name: "inserts before separator", command: "kubectl exec web -- ls -n", namespace: "dev", expected: "kubectl exec web -n dev -- ls -n"},
		{name: "flag after separator belongs to the remote command", command: "kubectl exec web -- grep -n foo", namespace: "dev", expected: "kubectl exec web -n dev -- grep -n foo"},
		{name: "trims whitespace", command: "  kubectl get pods  ", namespace: "dev", expected: "kubectl get pods -n dev"},
		{name: "flag-like word inside a name is not a flag", command: "kubectl get pod web-n", namespace: "dev", expected: "kubectl get pod web-n -n dev"},
		{name: "namespace with spaces stays one argument", command: "kubectl delete pod web", namespace: "dev --all", expected: "kubectl delete pod web -n 'dev --all'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildCommand(tt.command, tt.namespace))
		})
	}
}

func TestBuildCommandAddsExactlyOneNamespaceFlag(t *testing.T) {
	commands := []string{
		"kubectl get pods",
		"kubectl describe deployment web",
		"helm list",
		"kubectl delete pod web --grace-period=5",
	}
	for _, cmd := range commands {
		built := BuildCommand(cmd, "team-a")
		assert.Equal(t, 1, strings.Count(built, " -n "), built)
		assert.True(t, strings.HasSuffix(built, "-n team-a"), built)
		assert.Equal(t, built, BuildCommand(built, "other"), "already-targeted command must be unchanged")
	}
}

func TestExecute(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		runner := &fakeRunner{fn: func(context.Context, []string) (Process, error) {
			return Process{Stdout: "pod-a\npod-b\n"}, nil
		}}
		e := New(WithRunner(runner), WithKubeconfig("/tmp/kubeconfig"))

		res := e.Execute(context.Background(), "kubectl get pods", InNamespace("default"))

		assert.True(t, res.Success)
		assert.Empty(t, res.Error)
		assert.Equal(t, "pod-a\npod-b\n", res.Output)
		assert.Equal(t, "kubectl get pods -n default", res.Command)
		assert.Equal(t, []string{"kubectl", "get", "pods", "-n", "default"}, runner.lastCall())
		assert.Contains(t, runner.envs[0], "KUBECONFIG=/tmp/kubeconfig")
	})

	t.Run("non-zero exit reports stderr", func(t *testing.T) {
		runner := &fakeRunner{fn: func(context.Context, []string) (Process, error) {
			return Process{Stdout: "partial", Stderr: "Error from server (NotFound)\n", ExitCode: 1}, nil
		}}
		e := New(WithRunner(runner))

		res := e.Execute(context.Background(), "kubectl delete pod missing")

		assert.False(t, res.Success)
		assert.Equal(t, "Error from server (NotFound)", res.Error)
		assert.Equal(t, "partial", res.Output)
	})

	t.Run("non-zero exit without stderr still carries an error", func(t *testing.T) {
		runner := &fakeRunner{fn: func(context.Context, []string) (Process, error) {
			return Process{ExitCode: 3}, nil
		}}
		res := New(WithRunner(runner)).Execute(context.Background(), "kubectl apply -f x.yaml")

		assert.False(t, res.Success)
		assert.Equal(t, "exit status 3", res.Error)
	})

	t.Run("start failure", func(t *testing.T) {
		runner := &fakeRunner{fn: func(context.Context, []string) (Process, error) {
			return Process{}, errors.New(`exec: "kubectl": executable file not found in $PATH`)
		}}
		res := New(WithRunner(runner)).Execute(context.Background(), "kubectl version")

		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "executable file not found")
		assert.Empty(t, res.Output)
	})

	t.Run("timeout", func(t *testing.T) {
		runner := &fakeRunner{fn: func(ctx context.Context, _ []string) (Process, error) {
			<-ctx.Done()
			return Process{}, ctx.Err()
		}}
		e := New(WithRunner(runner), WithTimeout(time.Hour))

		res := e.Execute(context.Background(), "kubectl get pods", WithTimeoutOverride(20*time.Millisecond))

		assert.Equal(t, Result{Command: "kubectl get pods", Output: "", Error: TimeoutMessage, Success: false}, res)
	})

	t.Run("unbalanced quotes are rejected before running", func(t *testing.T) {
		runner := &fakeRunner{}
		res := New(WithRunner(runner)).Execute(context.Background(), `kubectl get pods -l 'app=web`)

		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "failed to parse command")
		assert.Equal(t, 0, runner.callCount())
	})

	t.Run("empty command", func(t *testing.T) {
		res := New(WithRunner(&fakeRunner{})).Execute(context.Background(), "   ")

		assert.False(t, res.Success)
		assert.Equal(t, "empty command", res.Error)
	})

	t.Run("quoted arguments are kept together", func(t *testing.T) {
		runner := &fakeRunner{}
		New(WithRunner(runner)).Execute(context.Background(), `kubectl exec web -- sh -c 'echo hello world'`)

		assert.Equal(t, []string{"kubectl", "exec", "web", "--", "sh", "-c", "echo hello world"}, runner.lastCall())
	})
}

func TestExecuteMemoization(t *testing.T) {
	t.Run("read-only command is served from cache", func(t *testing.T) {
		runner := &fakeRunner{}
		recorder := &fakeRecorder{}
		e := New(WithRunner(runner), WithRecorder(recorder))

		first := e.Execute(context.Background(), "kubectl get pods", InNamespace("default"))
		second := e.Execute(context.Background(), "kubectl get pods", InNamespace("default"))

		assert.Equal(t, first, second)
		assert.Equal(t, 1, runner.callCount())
		assert.Equal(t, 1, recorder.hits)
		assert.Equal(t, 1, recorder.misses)
		assert.Equal(t, 1, e.CacheLen())
	})

	t.Run("namespace is part of the key", func(t *testing.T) {
		runner := &fakeRunner{}
		e := New(WithRunner(runner))

		e.Execute(context.Background(), "kubectl get pods", InNamespace("a"))
		e.Execute(context.Background(), "kubectl get pods", InNamespace("b"))

		assert.Equal(t, 2, runner.callCount())
	})

	t.Run("mutating command always runs", func(t *testing.T) {
		runner := &fakeRunner{}
		e := New(WithRunner(runner))

		e.Execute(context.Background(), "kubectl delete pod web", InNamespace("default"))
		e.Execute(context.Background(), "kubectl delete pod web", InNamespace("default"))

		assert.Equal(t, 2, runner.callCount())
		assert.Equal(t, 0, e.CacheLen())
	})

	t.Run("failures are not memoized", func(t *testing.T) {
		runner := &fakeRunner{fn: func(context.Context, []string) (Process, error) {
			return Process{Stderr: "connection refused", ExitCode: 1}, nil
		}}
		e := New(WithRunner(runner))

		e.Execute(context.Background(), "kubectl get pods")
		e.Execute(context.Background(), "kubectl get pods")

		assert.Equal(t, 2, runner.callCount())
	})

	t.Run("bypass and clear", func(t *testing.T) {
		runner := &fakeRunner{}
		e := New(WithRunner(runner))

		e.Execute(context.Background(), "kubectl get ns")
		e.Execute(context.Background(), "kubectl get ns", WithoutCache())
		assert.Equal(t, 2, runner.callCount())

		e.ClearCache()
		assert.Equal(t, 0, e.CacheLen())
		e.Execute(context.Background(), "kubectl get ns")
		assert.Equal(t, 3, runner.callCount())
	})

	t.Run("eviction past capacity", func(t *testing.T) {
		runner := &fakeRunner{}
		e := New(WithRunner(runner), WithCacheSize(2))

		e.Execute(context.Background(), "kubectl get pods")
		e.Execute(context.Background(), "kubectl get services")
		e.Execute(context.Background(), "kubectl get nodes")
		require.Equal(t, 3, runner.callCount())

		// "pods" was least recently used and has been evicted.
		e.Execute(context.Background(), "kubectl get pods")
		assert.Equal(t, 4, runner.callCount())
		e.Execute(context.Background(), "kubectl get nodes")
		assert.Equal(t, 4, runner.callCount())
	})

	t.Run("disabled cache", func(t *testing.T) {
		runner := &fakeRunner{}
		e := New(WithRunner(runner), WithCacheSize(0))

		e.Execute(context.Background(), "kubectl get pods")
		e.Execute(context.Background(), "kubectl get pods")

		assert.Equal(t, 2, runner.callCount())
		assert.Equal(t, 0, e.CacheLen())
	})

	t.Run("concurrent identical reads share one process", func(t *testing.T) {
		release := make(chan struct{})
		var started atomic.Int32
		runner := &fakeRunner{fn: func(context.Context, []string) (Process, error) {
			started.Add(1)
			<-release
			return Process{Stdout: "shared"}, nil
		}}
		e := New(WithRunner(runner))

		var wg sync.WaitGroup
		results := make([]Result, 5)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = e.Execute(context.Background(), "kubectl get pods -A")
			}(i)
		}
		require.Eventually(t, func() bool { return started.Load() == 1 }, time.Second, time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		for _, r := range results {
			assert.Equal(t, "shared", r.Output)
		}
		assert.Equal(t, 1, runner.callCount())
	})
}

func TestIsReadOnly(t *testing.T) {
	e := New(WithRunner(&fakeRunner{}))

	readOnly := []string{"kubectl get pods", "kubectl describe ns x", "helm list -A", "helm repo list", "helm get values web"}
	for _, cmd := range readOnly {
		assert.True(t, e.IsReadOnly(cmd), cmd)
	}

	mutating := []string{"kubectl delete pod x", "kubectl create namespace x", "helm install a b", "helm repo add a b", "kubectl getter", "kubectl"}
	for _, cmd := range mutating {
		assert.False(t, e.IsReadOnly(cmd), cmd)
	}
}

func TestExecuteRecordsMetrics(t *testing.T) {
	runner := &fakeRunner{fn: func(_ context.Context, args []string) (Process, error) {
		if args[1] == "delete" {
			return Process{Stderr: "boom", ExitCode: 1}, nil
		}
		return Process{}, nil
	}}
	recorder := &fakeRecorder{}
	e := New(WithRunner(runner), WithRecorder(recorder))

	e.Execute(context.Background(), "kubectl apply -f x.yaml")
	e.Execute(context.Background(), "kubectl delete pod x")

	assert.Equal(t, []string{"kubectl:success", "kubectl:error"}, recorder.executions)
}

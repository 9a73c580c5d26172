package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mattn/go-shellwords"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/giantswarm/kubectl-mcp/internal/logging"
)

// TimeoutMessage is the error reported when a command exceeds its deadline.
const TimeoutMessage = "Command timed out"

var namespaceFlagRegex = regexp.MustCompile(`(^|\s)(-n|--namespace)(\s|=)`)

// HasNamespaceFlag reports whether command already carries -n or --namespace.
func HasNamespaceFlag(command string) bool {
	return namespaceFlagRegex.MatchString(command)
}

// BuildCommand targets command at namespace. The command is returned unchanged
// when namespace is empty or a namespace flag is already present before any
// " -- " separator. Otherwise "-n <namespace>" is inserted before the
// separator, or appended when there is none. The namespace is quoted so it
// stays a single argument.
func BuildCommand(command, namespace string) string {
	command = strings.TrimSpace(command)
	if namespace == "" {
		return command
	}
	head, tail := command, ""
	if idx := strings.Index(command, " -- "); idx >= 0 {
		head, tail = command[:idx], command[idx:]
	}
	if HasNamespaceFlag(head) {
		return command
	}
	return head + " -n " + QuoteArg(namespace) + tail
}

// Executor runs textual commands with a namespace override, a timeout and a
// memo cache for read-only commands.
type Executor struct {
	runner     Runner
	kubeconfig string
	timeout    time.Duration
	cacheSize  int
	readOnly   [][]string
	logger     *slog.Logger
	recorder   Recorder
	tracer     trace.Tracer

	cache *lru.Cache[cacheKey, Result]
	group singleflight.Group
}

// New returns an Executor configured with opts.
func New(opts ...Option) *Executor {
	e := &Executor{
		runner:    ExecRunner{},
		timeout:   DefaultTimeout,
		cacheSize: DefaultCacheSize,
		readOnly:  compilePrefixes(DefaultReadOnlyPrefixes),
		logger:    slog.Default(),
		tracer:    otel.Tracer("github.com/giantswarm/kubectl-mcp/internal/executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cacheSize > 0 {
		// lru.New only fails for a non-positive size.
		e.cache, _ = lru.New[cacheKey, Result](e.cacheSize)
	}
	return e
}

// Execute runs command and returns its normalized Result. It never returns a
// Go error: every failure is described by Result.Error.
func (e *Executor) Execute(ctx context.Context, command string, opts ...CallOption) Result {
	call := CallOptions{Timeout: e.timeout}
	for _, opt := range opts {
		opt(&call)
	}

	full := BuildCommand(command, call.Namespace)
	if call.NoCache || e.cache == nil || !e.IsReadOnly(full) {
		return e.run(ctx, full, call.Timeout)
	}

	key := cacheKey{command: strings.TrimSpace(command), namespace: call.Namespace}
	tool := toolName(full)
	if res, ok := e.cache.Get(key); ok {
		e.recordCacheLookup(tool, true)
		return res
	}
	e.recordCacheLookup(tool, false)

	// The shared invocation must not be cut short by whichever caller
	// happened to start it; the timeout still bounds it.
	shared := context.WithoutCancel(ctx)
	v, _, _ := e.group.Do(key.String(), func() (any, error) {
		res := e.run(shared, full, call.Timeout)
		if res.Success {
			e.cache.Add(key, res)
		}
		return res, nil
	})
	return v.(Result)
}

// IsReadOnly reports whether command may be served from the memo cache.
func (e *Executor) IsReadOnly(command string) bool {
	return matchesPrefix(e.readOnly, command)
}

// ClearCache drops every memoized result.
func (e *Executor) ClearCache() {
	if e.cache != nil {
		e.cache.Purge()
	}
}

// CacheLen returns the number of memoized results.
func (e *Executor) CacheLen() int {
	if e.cache == nil {
		return 0
	}
	return e.cache.Len()
}

// Timeout returns the default per-command timeout.
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

func (e *Executor) run(ctx context.Context, command string, timeout time.Duration) Result {
	args, err := shellwords.Parse(command)
	if err != nil {
		return Failed(command, fmt.Sprintf("failed to parse command: %v", err))
	}
	if len(args) == 0 {
		return Failed(command, "empty command")
	}
	tool := filepath.Base(args[0])

	ctx, span := e.tracer.Start(ctx, "executor.run", trace.WithAttributes(
		attribute.String("command.tool", tool),
		attribute.String("command.verb", verb(args)),
	))
	defer span.End()

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	proc, err := e.runner.Run(runCtx, args, e.environ())
	elapsed := time.Since(start)

	var res Result
	switch {
	case err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res = Failed(command, TimeoutMessage)
	case err != nil:
		res = Failed(command, err.Error())
	case proc.ExitCode != 0:
		res = Result{Command: command, Output: proc.Stdout, Error: strings.TrimSpace(proc.Stderr)}
		if res.Error == "" {
			res.Error = fmt.Sprintf("exit status %d", proc.ExitCode)
		}
	default:
		res = Succeeded(command, proc.Stdout)
	}

	status := logging.StatusSuccess
	if !res.Success {
		status = logging.StatusError
		span.SetStatus(codes.Error, res.Error)
		e.logger.Warn("command failed",
			logging.Command(command),
			logging.Status(status),
			logging.Duration(elapsed),
			slog.String(logging.KeyError, logging.SanitizeHost(res.Error)))
	} else {
		e.logger.Debug("command completed",
			logging.Command(command),
			logging.Duration(elapsed))
	}
	if e.recorder != nil {
		e.recorder.RecordCommandExecution(tool, status, elapsed)
	}

	return res
}

func (e *Executor) environ() []string {
	env := os.Environ()
	if e.kubeconfig != "" {
		env = append(env, "KUBECONFIG="+e.kubeconfig)
	}
	return env
}

func (e *Executor) recordCacheLookup(tool string, hit bool) {
	if e.recorder != nil {
		e.recorder.RecordCacheLookup(tool, hit)
	}
}

func toolName(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return filepath.Base(fields[0])
}

func verb(args []string) string {
	for _, a := range args[1:] {
		if !strings.HasPrefix(a, "-") {
			return a
		}
	}
	return ""
}

package executor

import (
	"log/slog"
	"time"
)

const (
	// DefaultTimeout bounds a single command invocation.
	DefaultTimeout = 10 * time.Second

	// PortForwardTimeout is the extended bound used for port-forwarding sessions.
	PortForwardTimeout = time.Hour

	// DefaultCacheSize is the capacity of the read-command memo cache.
	DefaultCacheSize = 128
)

// Recorder receives execution measurements. It is satisfied by
// *instrumentation.Metrics.
type Recorder interface {
	RecordCommandExecution(tool, status string, duration time.Duration)
	RecordCacheLookup(tool string, hit bool)
}

// Option configures an Executor.
type Option func(*Executor)

// WithRunner replaces the process runner, mainly for tests.
func WithRunner(r Runner) Option {
	return func(e *Executor) {
		e.runner = r
	}
}

// WithKubeconfig sets the path exported as KUBECONFIG to every command.
func WithKubeconfig(path string) Option {
	return func(e *Executor) {
		e.kubeconfig = path
	}
}

// WithTimeout sets the default per-command timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithCacheSize sets the memo cache capacity. Zero disables memoization.
func WithCacheSize(size int) Option {
	return func(e *Executor) {
		e.cacheSize = size
	}
}

// WithReadOnlyPrefixes replaces the command prefixes considered safe to memoize.
func WithReadOnlyPrefixes(prefixes ...string) Option {
	return func(e *Executor) {
		e.readOnly = compilePrefixes(prefixes)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Executor) {
		e.recorder = r
	}
}

// CallOption adjusts a single Execute call.
type CallOption func(*CallOptions)

// CallOptions is the effective per-call configuration.
type CallOptions struct {
	Namespace string
	Timeout   time.Duration
	NoCache   bool
}

// ApplyCallOptions folds opts into a CallOptions value. Test doubles of
// command runners use it to inspect what a caller asked for.
func ApplyCallOptions(opts ...CallOption) CallOptions {
	var o CallOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// InNamespace targets the command at ns unless the command already carries a
// namespace flag.
func InNamespace(ns string) CallOption {
	return func(o *CallOptions) {
		o.Namespace = ns
	}
}

// WithTimeoutOverride replaces the executor's default timeout for this call.
func WithTimeoutOverride(d time.Duration) CallOption {
	return func(o *CallOptions) {
		if d > 0 {
			o.Timeout = d
		}
	}
}

// WithoutCache forces a fresh invocation even for read-only commands. The
// fresh result is not stored either.
func WithoutCache() CallOption {
	return func(o *CallOptions) {
		o.NoCache = true
	}
}

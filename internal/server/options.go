package server

import (
	"errors"
	"log/slog"

	"k8s.io/client-go/kubernetes"

	"github.com/giantswarm/kubectl-mcp/internal/events"
	"github.com/giantswarm/kubectl-mcp/internal/executor"
	"github.com/giantswarm/kubectl-mcp/internal/instrumentation"
	"github.com/giantswarm/kubectl-mcp/internal/tools/output"
)

// Option is a functional option for configuring ServerContext.
type Option func(*ServerContext) error

// WithClientset sets the typed Kubernetes client. A nil client is accepted:
// the resource services then answer every operation through commands.
func WithClientset(client kubernetes.Interface) Option {
	return func(sc *ServerContext) error {
		sc.clientset = client
		return nil
	}
}

// WithExecutor sets the kubectl command executor.
func WithExecutor(exec *executor.Executor) Option {
	return func(sc *ServerContext) error {
		if exec == nil {
			return ErrMissingExecutor
		}
		sc.kubectl = exec
		return nil
	}
}

// WithReleaseExecutor sets the helm command executor. When omitted, one
// sharing the kubectl executor's cache and timeout is created.
func WithReleaseExecutor(exec *executor.ReleaseExecutor) Option {
	return func(sc *ServerContext) error {
		sc.helm = exec
		return nil
	}
}

// WithEventBus sets the resource change broadcaster. When omitted, a new bus
// is created.
func WithEventBus(bus *events.Bus) Option {
	return func(sc *ServerContext) error {
		sc.bus = bus
		return nil
	}
}

// WithLogger sets the logger for the ServerContext.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) error {
		if logger == nil {
			return ErrMissingLogger
		}
		sc.logger = logger
		return nil
	}
}

// WithConfig sets the configuration for the ServerContext.
func WithConfig(config *Config) Option {
	return func(sc *ServerContext) error {
		if config == nil {
			return ErrMissingConfig
		}
		sc.config = config.Clone()
		return nil
	}
}

// WithServerName sets the server name in the configuration.
func WithServerName(name string) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		sc.config.ServerName = name
		return nil
	}
}

// WithDefaultNamespace sets the default namespace for Kubernetes operations.
func WithDefaultNamespace(namespace string) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		sc.config.DefaultNamespace = namespace
		return nil
	}
}

// WithNonDestructiveMode enables or disables non-destructive mode.
func WithNonDestructiveMode(enabled bool) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		sc.config.NonDestructiveMode = enabled
		return nil
	}
}

// WithAllowedOperations lists the mutating tools that stay available in
// non-destructive mode.
func WithAllowedOperations(operations []string) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		if operations != nil {
			sc.config.AllowedOperations = make([]string, len(operations))
			copy(sc.config.AllowedOperations, operations)
		}
		return nil
	}
}

// WithOutputConfig sets how tool responses are truncated, slimmed and masked.
func WithOutputConfig(cfg *output.Config) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		sc.config.Output = cfg.Clone()
		return nil
	}
}

// WithInstrumentationProvider sets the OpenTelemetry instrumentation provider.
// Its metrics are recorded by the executors, the resource services and the
// event bus.
func WithInstrumentationProvider(provider *instrumentation.Provider) Option {
	return func(sc *ServerContext) error {
		sc.instrumentationProvider = provider
		return nil
	}
}

// Error definitions for ServerContext validation and operations.
var (
	ErrMissingExecutor = errors.New("command executor is required")
	ErrMissingLogger   = errors.New("logger is required")
	ErrMissingConfig   = errors.New("configuration is required")
	ErrServerShutdown  = errors.New("server context has been shutdown")
)

package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"k8s.io/client-go/kubernetes"

	"github.com/giantswarm/kubectl-mcp/internal/events"
	"github.com/giantswarm/kubectl-mcp/internal/executor"
	"github.com/giantswarm/kubectl-mcp/internal/instrumentation"
	"github.com/giantswarm/kubectl-mcp/internal/query"
	"github.com/giantswarm/kubectl-mcp/internal/services"
	"github.com/giantswarm/kubectl-mcp/internal/tools/output"
)

// ServerContext encapsulates all dependencies needed by the MCP server
// and provides a clean abstraction for dependency injection and lifecycle management.
type ServerContext struct {
	// Core dependencies
	clientset kubernetes.Interface
	kubectl   *executor.Executor
	helm      *executor.ReleaseExecutor
	bus       *events.Bus
	logger    *slog.Logger
	config    *Config

	instrumentationProvider *instrumentation.Provider

	// Built from the core dependencies in NewServerContext.
	matcher     *query.Matcher
	pods        *services.PodService
	deployments *services.DeploymentService
	namespaces  *services.NamespaceService
	cluster     *services.ClusterService
	registry    *services.Registry
	output      *output.Processor

	// Context management
	ctx    context.Context
	cancel context.CancelFunc

	// Lifecycle management
	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new ServerContext with default values.
// Use the provided functional options to customize the context.
// WithExecutor is required; the typed client is optional.
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	serverCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:    serverCtx,
		cancel: cancel,
		config: NewDefaultConfig(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(sc); err != nil {
			cancel()
			return nil, err
		}
	}

	if err := sc.validate(); err != nil {
		cancel()
		return nil, err
	}

	if err := sc.wire(); err != nil {
		cancel()
		return nil, err
	}

	return sc, nil
}

// wire builds the matcher and the resource services from the core dependencies.
func (sc *ServerContext) wire() error {
	if sc.helm == nil {
		sc.helm = executor.NewReleaseExecutor(sc.kubectl)
	}
	if sc.bus == nil {
		sc.bus = events.NewBus(
			events.WithLogger(sc.logger),
			events.WithRecorder(sc.metrics()),
		)
	}

	matcher, err := query.NewMatcher(sc.kubectl, sc.helm, query.WithLogger(sc.logger))
	if err != nil {
		return err
	}
	sc.matcher = matcher

	deps := services.Deps{
		Client:   sc.clientset,
		Executor: sc.kubectl,
		Events:   sc.bus,
		Logger:   sc.logger,
		Recorder: sc.metrics(),

		PortForwardTimeout: sc.config.PortForwardTimeout,
	}
	sc.pods = services.NewPodService(deps)
	sc.deployments = services.NewDeploymentService(deps)
	sc.namespaces = services.NewNamespaceService(deps)
	sc.cluster = services.NewClusterService(deps)
	sc.registry = services.NewRegistry(sc.pods, sc.deployments, sc.namespaces)
	sc.output = output.NewProcessor(sc.config.Output)

	sc.logger.Debug("server context wired",
		slog.Bool("typed_client", sc.clientset != nil),
		slog.Any("kinds", sc.registry.Kinds()))
	return nil
}

// metrics returns the recorder shared by the executors, services and bus. It
// is nil when no instrumentation provider is configured.
func (sc *ServerContext) metrics() *instrumentation.Metrics {
	if sc.instrumentationProvider == nil {
		return nil
	}
	return sc.instrumentationProvider.Metrics()
}

// Context returns the server context for cancellation and deadlines.
func (sc *ServerContext) Context() context.Context {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.ctx
}

// Clientset returns the typed Kubernetes client. It is nil when the server
// runs without cluster API access and every operation uses the command path.
func (sc *ServerContext) Clientset() kubernetes.Interface {
	return sc.clientset
}

// Executor returns the kubectl command executor.
func (sc *ServerContext) Executor() *executor.Executor {
	return sc.kubectl
}

// ReleaseExecutor returns the helm command executor.
func (sc *ServerContext) ReleaseExecutor() *executor.ReleaseExecutor {
	return sc.helm
}

// Matcher returns the natural-language query matcher.
func (sc *ServerContext) Matcher() *query.Matcher {
	return sc.matcher
}

// Pods returns the pod service.
func (sc *ServerContext) Pods() *services.PodService {
	return sc.pods
}

// Deployments returns the deployment service.
func (sc *ServerContext) Deployments() *services.DeploymentService {
	return sc.deployments
}

// Namespaces returns the namespace service.
func (sc *ServerContext) Namespaces() *services.NamespaceService {
	return sc.namespaces
}

// Cluster returns the cluster service.
func (sc *ServerContext) Cluster() *services.ClusterService {
	return sc.cluster
}

// Registry returns the resource services keyed by kind.
func (sc *ServerContext) Registry() *services.Registry {
	return sc.registry
}

// OutputProcessor returns the processor that shapes tool responses.
func (sc *ServerContext) OutputProcessor() *output.Processor {
	return sc.output
}

// EventBus returns the resource change broadcaster.
func (sc *ServerContext) EventBus() *events.Bus {
	return sc.bus
}

// Logger returns the logger.
func (sc *ServerContext) Logger() *slog.Logger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.logger
}

// Config returns the server configuration.
func (sc *ServerContext) Config() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config
}

// InstrumentationProvider returns the OpenTelemetry provider, or nil.
func (sc *ServerContext) InstrumentationProvider() *instrumentation.Provider {
	return sc.instrumentationProvider
}

// Shutdown gracefully shuts down the server context.
// This cancels the context, disconnects every event subscriber and drops
// memoized command results.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.logger.Info("Shutting down server context")

	if sc.bus != nil {
		sc.bus.Close()
	}
	if sc.kubectl != nil {
		sc.kubectl.ClearCache()
	}

	if sc.cancel != nil {
		sc.cancel()
	}

	sc.shutdown = true

	sc.logger.Info("Server context shutdown complete")
	return nil
}

// IsShutdown returns true if the server context has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// validate ensures all required dependencies are set.
func (sc *ServerContext) validate() error {
	if sc.kubectl == nil {
		return ErrMissingExecutor
	}
	if sc.logger == nil {
		return ErrMissingLogger
	}
	if sc.config == nil {
		return ErrMissingConfig
	}
	return nil
}

// Config holds the server configuration.
type Config struct {
	// Server settings
	ServerName string `json:"serverName"`
	Version    string `json:"version"`

	// Kubernetes settings
	DefaultNamespace string `json:"defaultNamespace"`
	KubeConfigPath   string `json:"kubeConfigPath"`
	InCluster        bool   `json:"inCluster"`

	// Command settings
	CommandTimeout     time.Duration `json:"commandTimeout"`
	PortForwardTimeout time.Duration `json:"portForwardTimeout"`

	// Non-destructive mode settings
	NonDestructiveMode bool     `json:"nonDestructiveMode"`
	AllowedOperations  []string `json:"allowedOperations"`

	// EventsEndpoint is the path of the Server-Sent Events stream. The
	// WebSocket stream is served below it at "/ws".
	EventsEndpoint string `json:"eventsEndpoint"`

	// Output controls truncation, slim output and secret masking of tool
	// responses.
	Output *output.Config `json:"output"`
}

// DefaultEventsEndpoint is the default path of the event stream.
const DefaultEventsEndpoint = "/events"

// NewDefaultConfig creates a configuration with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		ServerName:         "kubectl-mcp",
		Version:            "0.1.0",
		DefaultNamespace:   "default",
		CommandTimeout:     executor.DefaultTimeout,
		PortForwardTimeout: executor.PortForwardTimeout,
		NonDestructiveMode: false,
		EventsEndpoint:     DefaultEventsEndpoint,
		Output:             output.DefaultConfig(),
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c

	if c.AllowedOperations != nil {
		clone.AllowedOperations = make([]string, len(c.AllowedOperations))
		copy(clone.AllowedOperations, c.AllowedOperations)
	}
	clone.Output = c.Output.Clone()

	return &clone
}

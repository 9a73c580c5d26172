package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"

	"github.com/giantswarm/kubectl-mcp/internal/events"
	"github.com/giantswarm/kubectl-mcp/internal/executor"
	"github.com/giantswarm/kubectl-mcp/internal/instrumentation"
	"github.com/giantswarm/kubectl-mcp/internal/k8s"
	"github.com/giantswarm/kubectl-mcp/internal/server"
	"github.com/giantswarm/kubectl-mcp/internal/tools"
	"github.com/giantswarm/kubectl-mcp/internal/tools/cluster"
	"github.com/giantswarm/kubectl-mcp/internal/tools/deployment"
	"github.com/giantswarm/kubectl-mcp/internal/tools/helm"
	"github.com/giantswarm/kubectl-mcp/internal/tools/namespace"
	"github.com/giantswarm/kubectl-mcp/internal/tools/output"
	"github.com/giantswarm/kubectl-mcp/internal/tools/pod"
	querytools "github.com/giantswarm/kubectl-mcp/internal/tools/query"
	"github.com/giantswarm/kubectl-mcp/internal/tools/resource"
)

// newServeCmd creates the Cobra command for starting the MCP server.
func newServeCmd() *cobra.Command {
	var (
		config            ServeConfig
		allowedOperations string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the kubectl MCP server",
		Long: `Start the kubectl MCP server to provide tools for managing Kubernetes
clusters and Helm releases via the Model Context Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events over HTTP
  - streamable-http: Streamable HTTP transport

Operations use the typed Kubernetes API when a cluster connection can be
established and fall back to the kubectl binary otherwise. Release
management always runs the helm binary.

The HTTP transports additionally serve the resource change stream at
--events-endpoint (Server-Sent Events) and below it at /ws (WebSocket).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(os.Stderr, config.DebugMode)

			if !cmd.Flags().Changed("command-timeout") {
				if d, ok := parseDurationEnv(logger, os.Getenv(commandTimeoutEnv), commandTimeoutEnv); ok {
					config.CommandTimeout = d
				}
			}
			config.AllowedOperations = splitList(allowedOperations)
			config.EnableHSTS = envTrue("ENABLE_HSTS")

			if err := config.Validate(); err != nil {
				return err
			}
			return runServe(config, logger)
		},
	}

	// Add flags for configuring the server
	cmd.Flags().StringVar(&config.Kubeconfig, "kubeconfig", "", "Path to the kubeconfig file (default: $KUBECONFIG or ~/.kube/config)")
	cmd.Flags().BoolVar(&config.InCluster, "in-cluster", false, "Use in-cluster authentication (service account token) instead of kubeconfig")
	cmd.Flags().Float32Var(&config.QPSLimit, "qps-limit", k8s.DefaultQPSLimit, "QPS limit for Kubernetes API calls")
	cmd.Flags().IntVar(&config.BurstLimit, "burst-limit", k8s.DefaultBurstLimit, "Burst limit for Kubernetes API calls")
	cmd.Flags().BoolVar(&config.DebugMode, "debug", false, "Enable debug logging")

	// Command execution flags
	cmd.Flags().DurationVar(&config.CommandTimeout, "command-timeout", executor.DefaultTimeout, "Timeout for a single kubectl or helm invocation (can also be set via "+commandTimeoutEnv+")")
	cmd.Flags().DurationVar(&config.PortForwardTimeout, "port-forward-timeout", executor.PortForwardTimeout, "Timeout for port-forwarding sessions")
	cmd.Flags().IntVar(&config.CacheSize, "cache-size", executor.DefaultCacheSize, "Number of read-only command results kept in the memo cache (0 disables caching)")
	cmd.Flags().StringVar(&config.KubectlBinary, "kubectl-binary", "kubectl", "kubectl executable to run")
	cmd.Flags().StringVar(&config.HelmBinary, "helm-binary", "helm", "helm executable to run")

	// Safety flags
	cmd.Flags().BoolVar(&config.NonDestructiveMode, "non-destructive", false, "Refuse mutating operations unless listed in --allowed-operations")
	cmd.Flags().StringVar(&allowedOperations, "allowed-operations", "", "Comma separated tool names allowed in non-destructive mode")

	// Output flags
	cmd.Flags().IntVar(&config.MaxItems, "max-items", output.DefaultMaxItems, "Maximum number of items returned by list tools")
	cmd.Flags().IntVar(&config.MaxOutputBytes, "max-output-bytes", output.DefaultMaxOutputBytes, "Maximum size of command output returned by tools")

	// Transport flags
	cmd.Flags().StringVar(&config.Transport, "transport", transportStdio, "Transport type: stdio, sse, or streamable-http")
	cmd.Flags().StringVar(&config.HTTPAddr, "http-addr", ":8080", "HTTP server address (for sse and streamable-http transports)")
	cmd.Flags().StringVar(&config.SSEEndpoint, "sse-endpoint", "/sse", "SSE endpoint path (for sse transport)")
	cmd.Flags().StringVar(&config.MessageEndpoint, "message-endpoint", "/message", "Message endpoint path (for sse transport)")
	cmd.Flags().StringVar(&config.HTTPEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http transport)")
	cmd.Flags().StringVar(&config.EventsEndpoint, "events-endpoint", server.DefaultEventsEndpoint, "Resource event stream path (for sse and streamable-http transports)")
	cmd.Flags().StringVar(&config.CORSAllowedOrigins, "cors-allowed-origins", "", "Comma separated browser origins allowed to read the HTTP endpoints")

	// Metrics flags
	cmd.Flags().BoolVar(&config.Metrics.Enabled, "enable-metrics", true, "Serve Prometheus metrics on --metrics-addr when instrumentation is enabled")
	cmd.Flags().StringVar(&config.Metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address")

	return cmd
}

// runServe wires the executors, the typed client, instrumentation and the
// tool surface, then serves the selected transport until a shutdown signal.
func runServe(config ServeConfig, logger *slog.Logger) error {
	// Setup graceful shutdown - listen for both SIGINT and SIGTERM
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrumentationConfig := instrumentation.DefaultConfig()
	instrumentationConfig.ServiceVersion = rootCmd.Version
	instrumentationProvider, err := instrumentation.NewProvider(shutdownCtx, instrumentationConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := instrumentationProvider.Shutdown(context.Background()); err != nil {
			logger.Error("instrumentation shutdown failed", slog.Any("error", err))
		}
	}()
	if instrumentationProvider.Enabled() {
		logger.Info("OpenTelemetry instrumentation enabled",
			slog.String("metrics_exporter", instrumentationConfig.MetricsExporter),
			slog.String("tracing_exporter", instrumentationConfig.TracingExporter))
	}

	kubeconfig := ""
	if !config.InCluster {
		kubeconfig = k8s.KubeconfigPath(config.Kubeconfig)
	}

	kubectl := executor.New(
		executor.WithRunner(executor.ExecRunner{Binaries: map[string]string{
			"kubectl": config.KubectlBinary,
			"helm":    config.HelmBinary,
		}}),
		executor.WithKubeconfig(kubeconfig),
		executor.WithTimeout(config.CommandTimeout),
		executor.WithCacheSize(config.CacheSize),
		executor.WithLogger(logger),
		executor.WithRecorder(instrumentationProvider.Metrics()),
	)

	bus := events.NewBus(
		events.WithLogger(logger),
		events.WithRecorder(instrumentationProvider.Metrics()),
	)

	outputConfig := output.DefaultConfig()
	outputConfig.MaxItems = config.MaxItems
	outputConfig.MaxOutputBytes = config.MaxOutputBytes

	serverConfig := server.NewDefaultConfig()
	serverConfig.Version = rootCmd.Version
	serverConfig.KubeConfigPath = kubeconfig
	serverConfig.InCluster = config.InCluster
	serverConfig.CommandTimeout = config.CommandTimeout
	serverConfig.PortForwardTimeout = config.PortForwardTimeout
	serverConfig.NonDestructiveMode = config.NonDestructiveMode
	serverConfig.AllowedOperations = config.AllowedOperations
	serverConfig.EventsEndpoint = config.EventsEndpoint
	serverConfig.Output = outputConfig

	serverContext, err := server.NewServerContext(shutdownCtx,
		server.WithConfig(serverConfig),
		server.WithLogger(logger),
		server.WithExecutor(kubectl),
		server.WithReleaseExecutor(executor.NewReleaseExecutor(kubectl)),
		server.WithClientset(newClientset(config, logger)),
		server.WithEventBus(bus),
		server.WithInstrumentationProvider(instrumentationProvider),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("server context shutdown failed", slog.Any("error", err))
		}
	}()

	mcpSrv := mcpserver.NewMCPServer(serverConfig.ServerName, rootCmd.Version,
		mcpserver.WithToolCapabilities(true),
	)
	if err := registerTools(mcpSrv, serverContext); err != nil {
		return err
	}

	stopForwarding := tools.ForwardEvents(mcpSrv, bus)
	defer stopForwarding()

	switch config.Transport {
	case transportStdio:
		return runStdioServer(mcpSrv)
	case transportSSE:
		logger.Info("starting server", slog.String("transport", config.Transport))
		return runSSEServer(shutdownCtx, mcpSrv, config, instrumentationProvider, serverContext)
	case transportStreamableHTTP:
		logger.Info("starting server", slog.String("transport", config.Transport))
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, config, instrumentationProvider, serverContext)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, sse, streamable-http)", config.Transport)
	}
}

// registerTools adds every tool category to the MCP server.
func registerTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	categories := []struct {
		name     string
		register func(*mcpserver.MCPServer, *server.ServerContext) error
	}{
		{"query", querytools.RegisterQueryTools},
		{"pod", pod.RegisterPodTools},
		{"deployment", deployment.RegisterDeploymentTools},
		{"namespace", namespace.RegisterNamespaceTools},
		{"cluster", cluster.RegisterClusterTools},
		{"helm", helm.RegisterHelmTools},
		{"resource", resource.RegisterResourceTools},
	}
	for _, c := range categories {
		if err := c.register(mcpSrv, sc); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", c.name, err)
		}
	}
	return nil
}

// newClientset builds the typed client. Without one every operation runs
// through kubectl, so a failure is logged rather than returned.
func newClientset(config ServeConfig, logger *slog.Logger) kubernetes.Interface {
	clientset, err := k8s.NewClientset(k8s.ClientConfig{
		KubeconfigPath: config.Kubeconfig,
		InCluster:      config.InCluster,
		QPSLimit:       config.QPSLimit,
		BurstLimit:     config.BurstLimit,
		Timeout:        k8s.DefaultTimeout,
		Logger:         logger,
	})
	if err != nil {
		logger.Warn("typed Kubernetes client unavailable, using kubectl for all operations",
			slog.Any("error", err))
		return nil
	}
	return clientset
}

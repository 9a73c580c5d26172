// Package server provides the ServerContext pattern and related infrastructure
// for the kubectl MCP server.
//
// The ServerContext owns every long-lived collaborator of a server process:
//
//   - the kubectl command executor and the helm release executor
//   - the optional typed Kubernetes client
//   - the query matcher and the pod, deployment, namespace and cluster services
//   - the resource change event bus
//   - the OpenTelemetry instrumentation provider
//
// Dependencies are injected using functional options; the services are built
// from them once, so every tool handler shares the same cache, bus and
// metrics.
//
// Example usage:
//
//	serverCtx, err := NewServerContext(ctx,
//		WithExecutor(executor.New(executor.WithTimeout(10*time.Second))),
//		WithClientset(clientset), // may be nil
//		WithLogger(logger),
//		WithNonDestructiveMode(true),
//	)
//	if err != nil {
//		return err
//	}
//	defer serverCtx.Shutdown()
//
//	resp := serverCtx.Pods().Get(ctx, services.Request{Name: "web"})
//
// The package also carries the HTTP side of the server: the /healthz and
// /readyz probes and the dedicated Prometheus metrics server.
package server

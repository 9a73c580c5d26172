// Package instrumentation provides OpenTelemetry metrics, tracing and tool
// audit logging for the kubectl-mcp server.
//
// # Metrics
//
// HTTP:
//   - http_requests_total, http_request_duration_seconds
//
// Command execution:
//   - command_executions_total, command_execution_duration_seconds
//   - command_cache_lookups_total (result=hit|miss)
//
// Typed Kubernetes calls:
//   - kubernetes_operations_total, kubernetes_operation_duration_seconds (outcome=ok|api_error|transport_error|unavailable)
//   - kubernetes_fallbacks_total
//
// Events:
//   - events_broadcast_total
//   - event_subscribers
//
// The tool and resource_type labels are only recorded when DetailedLabels is
// set.
//
// # Configuration
//
//   - INSTRUMENTATION_ENABLED: enable metrics and tracing (default: false)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_INSECURE
//   - OTEL_TRACES_SAMPLER_ARG: sampling rate (default: 0.1)
//   - OTEL_SERVICE_NAME: service name (default: kubectl-mcp)
//   - METRICS_DETAILED_LABELS: add high-cardinality labels (default: false)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	exec := executor.New(executor.WithRecorder(provider.Metrics()))
package instrumentation

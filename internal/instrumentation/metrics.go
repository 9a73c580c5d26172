package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrMethod       = "method"
	attrPath         = "path"
	attrStatus       = "status"
	attrTool         = "tool"
	attrResult       = "result"
	attrOperation    = "operation"
	attrResourceType = "resource_type"
	attrOutcome      = "outcome"
	attrEventType    = "event_type"
)

var durationBuckets = []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}

// Metrics records server measurements. A zero Metrics is valid and records
// nothing, so callers never need to check whether instrumentation is on.
//
// Metrics satisfies the Recorder interfaces of the executor, services and
// events packages.
type Metrics struct {
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	commandExecutionsTotal   metric.Int64Counter
	commandExecutionDuration metric.Float64Histogram
	commandCacheLookups      metric.Int64Counter

	k8sOperationsTotal   metric.Int64Counter
	k8sOperationDuration metric.Float64Histogram
	k8sFallbacksTotal    metric.Int64Counter

	eventsBroadcastTotal metric.Int64Counter
	eventSubscribers     metric.Int64UpDownCounter

	// detailedLabels controls whether the tool and resource_type labels are recorded.
	detailedLabels bool
}

// NewMetrics creates all instruments on meter.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}

	var err error
	if m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	if m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	if m.commandExecutionsTotal, err = meter.Int64Counter(
		"command_executions_total",
		metric.WithDescription("Total number of external command executions"),
		metric.WithUnit("{execution}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create command_executions_total counter: %w", err)
	}

	if m.commandExecutionDuration, err = meter.Float64Histogram(
		"command_execution_duration_seconds",
		metric.WithDescription("External command duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create command_execution_duration_seconds histogram: %w", err)
	}

	if m.commandCacheLookups, err = meter.Int64Counter(
		"command_cache_lookups_total",
		metric.WithDescription("Total number of command result cache lookups"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create command_cache_lookups_total counter: %w", err)
	}

	if m.k8sOperationsTotal, err = meter.Int64Counter(
		"kubernetes_operations_total",
		metric.WithDescription("Total number of typed Kubernetes API calls"),
		metric.WithUnit("{operation}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create kubernetes_operations_total counter: %w", err)
	}

	if m.k8sOperationDuration, err = meter.Float64Histogram(
		"kubernetes_operation_duration_seconds",
		metric.WithDescription("Typed Kubernetes API call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create kubernetes_operation_duration_seconds histogram: %w", err)
	}

	if m.k8sFallbacksTotal, err = meter.Int64Counter(
		"kubernetes_fallbacks_total",
		metric.WithDescription("Total number of typed calls retried as commands"),
		metric.WithUnit("{fallback}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create kubernetes_fallbacks_total counter: %w", err)
	}

	if m.eventsBroadcastTotal, err = meter.Int64Counter(
		"events_broadcast_total",
		metric.WithDescription("Total number of broadcast resource events"),
		metric.WithUnit("{event}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create events_broadcast_total counter: %w", err)
	}

	if m.eventSubscribers, err = meter.Int64UpDownCounter(
		"event_subscribers",
		metric.WithDescription("Number of connected event stream subscribers"),
		metric.WithUnit("{subscriber}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create event_subscribers gauge: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCommandExecution records one run of an external tool.
func (m *Metrics) RecordCommandExecution(tool, status string, duration time.Duration) {
	if m == nil || m.commandExecutionsTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{attribute.String(attrStatus, status)}
	if m.detailedLabels {
		attrs = append(attrs, attribute.String(attrTool, tool))
	}
	ctx := context.Background()
	m.commandExecutionsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.commandExecutionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordCacheLookup records a memoization cache lookup.
func (m *Metrics) RecordCacheLookup(tool string, hit bool) {
	if m == nil || m.commandCacheLookups == nil {
		return
	}

	result := CacheMiss
	if hit {
		result = CacheHit
	}
	attrs := []attribute.KeyValue{attribute.String(attrResult, result)}
	if m.detailedLabels {
		attrs = append(attrs, attribute.String(attrTool, tool))
	}
	m.commandCacheLookups.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}

// RecordK8sOperation records a typed API call and how it ended.
//
// CARDINALITY NOTE: resource_type is only recorded with detailed labels.
func (m *Metrics) RecordK8sOperation(operation, resourceType, outcome string, duration time.Duration) {
	if m == nil || m.k8sOperationsTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrOutcome, outcome),
	}
	if m.detailedLabels {
		attrs = append(attrs, attribute.String(attrResourceType, resourceType))
	}
	ctx := context.Background()
	m.k8sOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.k8sOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordFallback records a typed call answered through the command path.
func (m *Metrics) RecordFallback(operation, resourceType string) {
	if m == nil || m.k8sFallbacksTotal == nil {
		return
	}

	m.k8sFallbacksTotal.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrResourceType, resourceType),
	))
}

// RecordEventBroadcast records one broadcast. Pruned subscribers are counted
// by RecordSubscribers.
func (m *Metrics) RecordEventBroadcast(eventType string, delivered, pruned int) {
	if m == nil || m.eventsBroadcastTotal == nil {
		return
	}

	m.eventsBroadcastTotal.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String(attrEventType, eventType),
		attribute.Bool("delivered", delivered > 0),
		attribute.Bool("pruned", pruned > 0),
	))
}

// RecordSubscribers adjusts the subscriber gauge by delta.
func (m *Metrics) RecordSubscribers(delta int64) {
	if m == nil || m.eventSubscribers == nil {
		return
	}

	m.eventSubscribers.Add(context.Background(), delta)
}

package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// MeterName is the name of the meter all instruments are created on.
const MeterName = "github.com/giantswarm/kubectl-mcp"

// Provider owns the meter and tracer providers and the metrics built on them.
type Provider struct {
	config         Config
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	registry       *prom.Registry
	metrics        *Metrics
	audit          *AuditLogger
}

// NewProvider sets up metrics and tracing according to config. When
// config.Enabled is false the provider is inert and Metrics returns a no-op
// recorder.
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	p := &Provider{config: config, metrics: &Metrics{}, audit: NewAuditLogger(nil)}
	if !config.Enabled {
		return p, nil
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid instrumentation config: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", config.ServiceName),
		attribute.String("service.version", config.ServiceVersion),
	)

	reader, err := p.metricReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics exporter: %w", err)
	}
	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(p.meterProvider)

	p.metrics, err = NewMetrics(p.meterProvider.Meter(MeterName), config.DetailedLabels)
	if err != nil {
		return nil, err
	}

	spanExporter, err := p.spanExporter(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracing exporter: %w", err)
	}
	if spanExporter != nil {
		p.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithBatcher(spanExporter),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(config.TraceSamplingRate))),
		)
		otel.SetTracerProvider(p.tracerProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}

	return p, nil
}

func (p *Provider) metricReader(ctx context.Context) (sdkmetric.Reader, error) {
	switch p.config.MetricsExporter {
	case ExporterPrometheus, "":
		p.registry = prom.NewRegistry()
		return prometheus.New(prometheus.WithRegisterer(p.registry))
	case ExporterOTLP:
		var opts []otlpmetrichttp.Option
		if p.config.OTLPEndpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpointURL(p.config.OTLPEndpoint))
		}
		if p.config.OTLPInsecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exp, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, err
		}
		return sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(DefaultMetricInterval)), nil
	case ExporterStdout:
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(os.Stderr))
		if err != nil {
			return nil, err
		}
		return sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(DefaultMetricInterval)), nil
	default:
		return nil, fmt.Errorf("unknown metrics exporter %q", p.config.MetricsExporter)
	}
}

func (p *Provider) spanExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	switch p.config.TracingExporter {
	case ExporterNone, "":
		return nil, nil
	case ExporterOTLP:
		var opts []otlptracehttp.Option
		if p.config.OTLPEndpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpointURL(p.config.OTLPEndpoint))
		}
		if p.config.OTLPInsecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	case ExporterStdout:
		// stdout carries the MCP stdio transport, so spans go to stderr.
		return stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
	default:
		return nil, fmt.Errorf("unknown tracing exporter %q", p.config.TracingExporter)
	}
}

// Enabled reports whether instrumentation is active.
func (p *Provider) Enabled() bool {
	return p != nil && p.config.Enabled
}

// Config returns the configuration the provider was built with.
func (p *Provider) Config() Config {
	return p.config
}

// Metrics returns the metrics recorder. It is never nil.
func (p *Provider) Metrics() *Metrics {
	if p == nil || p.metrics == nil {
		return &Metrics{}
	}
	return p.metrics
}

// AuditLogger returns the tool invocation audit logger. Auditing is active
// even when metrics and tracing are disabled.
func (p *Provider) AuditLogger() *AuditLogger {
	if p == nil {
		return nil
	}
	return p.audit
}

// Handler serves the Prometheus exposition of the provider's metrics. It
// reports 404 when the Prometheus exporter is not in use.
func (p *Provider) Handler() http.Handler {
	if p == nil || p.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the exporters.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.tracerProvider != nil {
		errs = append(errs, p.tracerProvider.Shutdown(ctx))
	}
	if p.meterProvider != nil {
		errs = append(errs, p.meterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

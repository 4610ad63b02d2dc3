package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Provider owns the OpenTelemetry meter and tracer providers.
type Provider struct {
	config         Config
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	metrics        *Metrics
	auditLogger    *AuditLogger
}

// NewProvider creates a Provider from config. When config.Enabled is false the
// provider is inert: Metrics returns nil and no exporter is started, but the
// audit logger still works.
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	p := &Provider{
		config:      config,
		auditLogger: NewAuditLogger(slog.Default()),
	}
	if !config.Enabled {
		return p, nil
	}

	if config.TracingExporter == "" {
		config.TracingExporter = ExporterNone
		p.config.TracingExporter = ExporterNone
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid instrumentation config: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", config.ServiceName),
		attribute.String("service.version", config.ServiceVersion),
	)

	reader, err := newMetricReader(ctx, config)
	if err != nil {
		return nil, err
	}
	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(p.meterProvider)

	p.metrics, err = NewMetrics(p.meterProvider.Meter(TracerName))
	if err != nil {
		_ = p.meterProvider.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	spanExporter, err := newSpanExporter(ctx, config)
	if err != nil {
		_ = p.meterProvider.Shutdown(ctx)
		return nil, err
	}
	if spanExporter != nil {
		p.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(spanExporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(config.TraceSamplingRate))),
		)
		otel.SetTracerProvider(p.tracerProvider)
	}

	return p, nil
}

func newMetricReader(ctx context.Context, config Config) (sdkmetric.Reader, error) {
	switch config.MetricsExporter {
	case ExporterPrometheus:
		exporter, err := otelprom.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		return exporter, nil
	case ExporterOTLP:
		var opts []otlpmetrichttp.Option
		if config.OTLPEndpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpointURL(config.OTLPEndpoint))
		}
		if config.OTLPInsecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(DefaultMetricInterval)), nil
	case ExporterStdout:
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout metrics exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(DefaultMetricInterval)), nil
	default:
		return nil, fmt.Errorf("unsupported metrics exporter: %s", config.MetricsExporter)
	}
}

// newSpanExporter returns nil when tracing is disabled.
func newSpanExporter(ctx context.Context, config Config) (sdktrace.SpanExporter, error) {
	switch config.TracingExporter {
	case ExporterNone:
		return nil, nil
	case ExporterOTLP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(config.OTLPEndpoint)}
		if config.OTLPInsecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exporter, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		return exporter, nil
	case ExporterStdout:
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
		return exporter, nil
	default:
		return nil, fmt.Errorf("unsupported tracing exporter: %s", config.TracingExporter)
	}
}

// Enabled reports whether metrics and tracing are active.
func (p *Provider) Enabled() bool {
	return p != nil && p.config.Enabled
}

// Config returns the configuration the provider was built with.
func (p *Provider) Config() Config {
	return p.config
}

// Metrics returns the metric recorder, or nil when instrumentation is disabled.
// All Metrics methods are safe to call on a nil receiver.
func (p *Provider) Metrics() *Metrics {
	if p == nil {
		return nil
	}
	return p.metrics
}

// AuditLogger returns the tool invocation audit logger.
func (p *Provider) AuditLogger() *AuditLogger {
	if p == nil {
		return nil
	}
	return p.auditLogger
}

// SetAuditLogger replaces the audit logger, e.g. to route audit records to a
// dedicated handler.
func (p *Provider) SetAuditLogger(al *AuditLogger) {
	if al != nil {
		p.auditLogger = al
	}
}

// Shutdown flushes and stops the exporters.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

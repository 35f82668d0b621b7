package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"

	"licmgr/internal/config"
)

const (
	ServiceName = "licmgr"
	MeterName   = "licmgr"
)

// ServiceVersion is stamped into telemetry resources; set by the linker
var ServiceVersion = "dev"

// Telemetry holds the metric and trace providers for one process run.
// Metrics are collected by a private Prometheus registry and written as a
// textfile on Shutdown; spans are written as JSON lines.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider

	meter       metric.Meter
	registry    *prometheus.Registry
	metricsFile string
	traceFile   *os.File
	logger      *slog.Logger
}

// InitTelemetry builds the providers enabled in cfg. Disabled signals fall
// back to no-op implementations so instruments can always be created.
func InitTelemetry(cfg config.TelemetryConfig, paths *config.Paths, logger *slog.Logger) (*Telemetry, error) {
	t := &Telemetry{
		meter:  noop.NewMeterProvider().Meter(MeterName),
		logger: logger.With(slog.String("component", "telemetry")),
	}
	if !cfg.MetricsEnabled && !cfg.TracingEnabled {
		return t, nil
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(ServiceVersion),
	)

	if cfg.TracingEnabled {
		if err := t.initTracing(paths.TracesFile, cfg.SampleRatio, res); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.MetricsEnabled {
		if err := t.initMetrics(paths.MetricsFile, res); err != nil {
			_ = t.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	t.logger.Debug("Telemetry initialized",
		slog.Bool("metrics_enabled", cfg.MetricsEnabled),
		slog.Bool("tracing_enabled", cfg.TracingEnabled),
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return t, nil
}

func (t *Telemetry) initTracing(path string, ratio float64, res *resource.Resource) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create trace directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(file))
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	t.traceFile = file
	t.TracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	)
	otel.SetTracerProvider(t.TracerProvider)
	return nil
}

func (t *Telemetry) initMetrics(path string, res *resource.Resource) error {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	t.registry = registry
	t.metricsFile = path
	t.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	t.meter = t.MeterProvider.Meter(MeterName, metric.WithInstrumentationVersion(ServiceVersion))
	otel.SetMeterProvider(t.MeterProvider)
	return nil
}

// Meter returns the meter instruments should be created on
func (t *Telemetry) Meter() metric.Meter {
	return t.meter
}

// WriteMetrics snapshots the current metric values to the textfile
func (t *Telemetry) WriteMetrics() error {
	if t.registry == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(t.metricsFile), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(t.metricsFile, t.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Shutdown flushes spans and metrics and releases the trace file
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if err := t.WriteMetrics(); err != nil {
		errs = append(errs, err)
	}
	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if t.traceFile != nil {
		if err := t.traceFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close trace file: %w", err))
		}
		t.traceFile = nil
	}

	return errors.Join(errs...)
}

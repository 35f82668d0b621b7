package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"licmgr/internal/config"
)

func telemetryPaths(t *testing.T) *config.Paths {
	dir := t.TempDir()
	return &config.Paths{
		MetricsFile: filepath.Join(dir, "logs", "licmgr.prom"),
		TracesFile:  filepath.Join(dir, "logs", "traces.jsonl"),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitTelemetryDisabled(t *testing.T) {
	paths := telemetryPaths(t)

	tel, err := InitTelemetry(config.TelemetryConfig{}, paths, discardLogger())
	require.NoError(t, err)

	assert.Nil(t, tel.MeterProvider)
	assert.Nil(t, tel.TracerProvider)

	counter, err := tel.Meter().Int64Counter("license_noop_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	require.NoError(t, tel.Shutdown(context.Background()))
	assert.NoFileExists(t, paths.MetricsFile)
	assert.NoFileExists(t, paths.TracesFile)
}

func TestInitTelemetryMetricsTextfile(t *testing.T) {
	paths := telemetryPaths(t)
	previous := otel.GetMeterProvider()
	t.Cleanup(func() { otel.SetMeterProvider(previous) })

	tel, err := InitTelemetry(config.TelemetryConfig{MetricsEnabled: true, SampleRatio: 1}, paths, discardLogger())
	require.NoError(t, err)

	counter, err := tel.Meter().Int64Counter("license_codes_derived_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	require.NoError(t, tel.Shutdown(context.Background()))

	content, err := os.ReadFile(paths.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "license_codes_derived_total")
	assert.Contains(t, string(content), "} 3")
}

func TestInitTelemetryTracesFile(t *testing.T) {
	paths := telemetryPaths(t)
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	tel, err := InitTelemetry(config.TelemetryConfig{TracingEnabled: true, SampleRatio: 1}, paths, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)

	_, span := otel.Tracer("test").Start(context.Background(), "license.issue")
	span.End()

	require.NoError(t, tel.Shutdown(context.Background()))

	content, err := os.ReadFile(paths.TracesFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"Name":"license.issue"`)
}

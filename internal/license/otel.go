package license

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const (
	TracerName = "licmgr/license"
	MeterName  = "licmgr/license"
)

// Metrics holds the license manager counters
type Metrics struct {
	CodesDerived       metric.Int64Counter
	DerivationFailures metric.Int64Counter
	RecordsAdded       metric.Int64Counter
	RecordsRemoved     metric.Int64Counter
	LoginFailures      metric.Int64Counter
	Exports            metric.Int64Counter
}

// NewMetrics creates all counters on meter. A nil meter yields no-op instruments.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(MeterName)
	}

	m := &Metrics{}
	counters := []struct {
		target *metric.Int64Counter
		name   string
		desc   string
	}{
		{&m.CodesDerived, "license_codes_derived_total", "Total number of access codes derived"},
		{&m.DerivationFailures, "license_derivation_failures_total", "Total number of failed derivations"},
		{&m.RecordsAdded, "license_records_added_total", "Total number of customer records added"},
		{&m.RecordsRemoved, "license_records_removed_total", "Total number of customer records removed"},
		{&m.LoginFailures, "license_login_failures_total", "Total number of rejected administrator logins"},
		{&m.Exports, "license_exports_total", "Total number of customer exports written"},
	}

	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
		*c.target = counter
	}

	return m, nil
}

func (m *Metrics) recordDerived(ctx context.Context) {
	if m == nil {
		return
	}
	m.CodesDerived.Add(ctx, 1)
}

func (m *Metrics) recordDerivationFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.DerivationFailures.Add(ctx, 1)
}

// RecordAdded counts a persisted customer record
func (m *Metrics) RecordAdded(ctx context.Context) {
	if m == nil {
		return
	}
	m.RecordsAdded.Add(ctx, 1)
}

// RecordRemoved counts a removed customer record
func (m *Metrics) RecordRemoved(ctx context.Context) {
	if m == nil {
		return
	}
	m.RecordsRemoved.Add(ctx, 1)
}

// RecordLoginFailure counts a rejected login, labelled by reason
func (m *Metrics) RecordLoginFailure(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.LoginFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordExport counts a written export, labelled by format
func (m *Metrics) RecordExport(ctx context.Context, format string) {
	if m == nil {
		return
	}
	m.Exports.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}

// Trace runs fn inside a span named "license.<operation>" and records its outcome
func Trace(ctx context.Context, operation string, fn func(ctx context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := otel.Tracer(TracerName).Start(ctx, "license."+operation,
		trace.WithAttributes(append(attrs,
			attribute.String("license.operation", operation),
			attribute.String("component", "license_manager"),
		)...),
	)
	defer span.End()

	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

package analytics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// instruments holds the OTel instruments the monitor exports through.
// A nil *instruments is valid and records nothing.
type instruments struct {
	requestCount metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

func newInstruments(meter metric.Meter) (*instruments, error) {
	requestCount, err := meter.Int64Counter(
		"cache.requests",
		metric.WithDescription("Total number of cache requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"cache.generate.errors",
		metric.WithDescription("Total number of failed generator calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"cache.generate.duration_ms",
		metric.WithDescription("Generator call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &instruments{
		requestCount: requestCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

func (i *instruments) recordRequest(ctx context.Context, kind, result string) {
	if i == nil {
		return
	}
	i.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache.kind", kind),
		attribute.String("cache.result", result),
	))
}

func (i *instruments) recordGeneration(ctx context.Context, kind string, duration time.Duration, err error) {
	if i == nil {
		return
	}

	opt := metric.WithAttributes(attribute.String("cache.kind", kind))
	if err != nil {
		i.errorCount.Add(ctx, 1, opt)
	}
	i.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

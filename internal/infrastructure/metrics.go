package infrastructure

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics are the instruments recorded for every API request
type HTTPMetrics struct {
	Requests     metric.Int64Counter
	Duration     metric.Float64Histogram
	InFlight     metric.Int64UpDownCounter
	ServerErrors metric.Int64Counter
}

// NewHTTPMetrics creates the request instruments on meter
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	var (
		m   HTTPMetrics
		err error
	)
	if m.Requests, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total number of HTTP requests")); err != nil {
		return nil, fmt.Errorf("http_requests_total: %w", err)
	}
	if m.Duration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30)); err != nil {
		return nil, fmt.Errorf("http_request_duration_seconds: %w", err)
	}
	if m.InFlight, err = meter.Int64UpDownCounter("http_active_requests",
		metric.WithDescription("Number of HTTP requests being served")); err != nil {
		return nil, fmt.Errorf("http_active_requests: %w", err)
	}
	if m.ServerErrors, err = meter.Int64Counter("system_errors_total",
		metric.WithDescription("Total number of responses with a 5xx status")); err != nil {
		return nil, fmt.Errorf("system_errors_total: %w", err)
	}
	return &m, nil
}

// RegisterSessionGauge reports count() as sessions_active on every collection
func RegisterSessionGauge(meter metric.Meter, count func() int) error {
	gauge, err := meter.Int64ObservableGauge(
		"sessions_active",
		metric.WithDescription("Number of live dashboard sessions"),
	)
	if err != nil {
		return err
	}
	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(gauge, int64(count()))
		return nil
	}, gauge)
	return err
}

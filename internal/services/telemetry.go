package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"fielddash/internal/infrastructure"
)

const TracerName = "fielddash.pipeline"

// pipelineTelemetry instruments the dashboard pipeline stages
type pipelineTelemetry struct {
	tracer   trace.Tracer
	runs     metric.Int64Counter
	duration metric.Float64Histogram
	uploads  metric.Int64Counter
	exports  metric.Int64Counter
}

func newPipelineTelemetry() (*pipelineTelemetry, error) {
	meter := otel.Meter(infrastructure.MeterName)

	runs, err := meter.Int64Counter(
		"pipeline_runs_total",
		metric.WithDescription("Total number of dashboard pipeline runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline runs counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		"pipeline_duration_seconds",
		metric.WithDescription("Dashboard pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline duration histogram: %w", err)
	}

	uploads, err := meter.Int64Counter(
		"uploads_total",
		metric.WithDescription("Total number of uploaded workbooks"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create uploads counter: %w", err)
	}

	exports, err := meter.Int64Counter(
		"exports_total",
		metric.WithDescription("Total number of chart and table exports"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create exports counter: %w", err)
	}

	return &pipelineTelemetry{
		tracer:   otel.Tracer(TracerName),
		runs:     runs,
		duration: duration,
		uploads:  uploads,
		exports:  exports,
	}, nil
}

// stage starts a span for one pipeline stage. The returned func ends the span
// and records the run with its outcome.
func (p *pipelineTelemetry) stage(ctx context.Context, name, sheet string) (context.Context, func(err error)) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "pipeline."+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("pipeline.stage", name),
			attribute.String("pipeline.sheet", sheet),
		),
	)

	return ctx, func(err error) {
		status := "success"
		if err != nil {
			status = "failure"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		attrs := metric.WithAttributes(
			attribute.String("stage", name),
			attribute.String("sheet", sheet),
			attribute.String("status", status),
		)
		p.runs.Add(ctx, 1, attrs)
		p.duration.Record(ctx, time.Since(start).Seconds(), attrs)
		span.End()
	}
}

func (p *pipelineTelemetry) recordUpload(ctx context.Context, files int, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	p.uploads.Add(ctx, int64(files), metric.WithAttributes(attribute.String("status", status)))
}

func (p *pipelineTelemetry) recordExport(ctx context.Context, format ExportFormat, status string) {
	p.exports.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", string(format)),
		attribute.String("status", status),
	))
}

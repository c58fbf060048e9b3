package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BusinessTracer opens spans around domain operations that are not plain HTTP or SQL.
type BusinessTracer struct {
	tracer trace.Tracer
}

// NewBusinessTracer uses the global tracer provider.
func NewBusinessTracer() *BusinessTracer {
	return NewBusinessTracerWithProvider(otel.GetTracerProvider())
}

func NewBusinessTracerWithProvider(tp trace.TracerProvider) *BusinessTracer {
	return &BusinessTracer{tracer: tp.Tracer(instrumentationName + "/business")}
}

// AnalysisSummary is what gets attached to a finished forecast analysis span.
type AnalysisSummary struct {
	Windows       int
	TotalValue    float64
	HasPrediction bool
	NarrativeSize int
}

// TraceForecastAnalysis starts the span covering one analysis request.
func (bt *BusinessTracer) TraceForecastAnalysis(ctx context.Context, observations, windowSize int) (context.Context, trace.Span) {
	return bt.tracer.Start(ctx, "forecast.analysis",
		trace.WithAttributes(
			attribute.Int("forecast.observations", observations),
			attribute.Int("forecast.window_size", windowSize),
		),
	)
}

func (bt *BusinessTracer) RecordAnalysisResult(span trace.Span, summary AnalysisSummary) {
	span.SetAttributes(
		attribute.Int("forecast.windows", summary.Windows),
		attribute.Float64("forecast.total_value", summary.TotalValue),
		attribute.Bool("forecast.has_prediction", summary.HasPrediction),
		attribute.Int("forecast.narrative_length", summary.NarrativeSize),
	)
}

// TraceScheduleChange starts a span for a schedule write that may raise an alert.
func (bt *BusinessTracer) TraceScheduleChange(ctx context.Context, operation, status string) (context.Context, trace.Span) {
	return bt.tracer.Start(ctx, "schedule."+operation,
		trace.WithAttributes(attribute.String("schedule.status", status)),
	)
}

// RecordError marks span as failed. A nil error is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

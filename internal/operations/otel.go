package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"huntstats/internal/infrastructure"
)

// TracerName is the instrumentation scope of pipeline spans
const TracerName = "huntstats.pipeline"

// StepTracer provides OpenTelemetry instrumentation for pipeline runs
type StepTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewStepTracer creates a tracer. A nil tracer falls back to a no-op
// tracer and nil metrics are skipped.
func NewStepTracer(tracer trace.Tracer, metrics *infrastructure.PipelineMetrics) *StepTracer {
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(TracerName)
	}
	return &StepTracer{tracer: tracer, metrics: metrics}
}

// NewStepTracerFromProviders builds the tracer and pipeline metrics from
// initialized OpenTelemetry providers
func NewStepTracerFromProviders(providers *infrastructure.OTelProviders) (*StepTracer, error) {
	if providers == nil {
		return NewStepTracer(nil, nil), nil
	}
	metrics, err := infrastructure.NewPipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	return NewStepTracer(providers.Tracer, metrics), nil
}

// TraceRun creates a span for a whole pipeline run
func (st *StepTracer) TraceRun(ctx context.Context, runID string, steps int) (context.Context, trace.Span) {
	return st.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("pipeline.run_id", runID),
			attribute.Int("pipeline.steps", steps),
		),
	)
}

// TraceStep creates a span for one Step execution
func (st *StepTracer) TraceStep(ctx context.Context, runID string, index int, stepID string) (context.Context, trace.Span) {
	return st.tracer.Start(ctx, fmt.Sprintf("pipeline.step.%s", stepID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("pipeline.run_id", runID),
			attribute.String("step.id", stepID),
			attribute.Int("step.index", index),
		),
	)
}

// RecordStepCompletion ends a Step span and records its metrics
func (st *StepTracer) RecordStepCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, rowsIn, rowsOut int, err error) {
	span.SetAttributes(
		attribute.Int("step.rows_in", rowsIn),
		attribute.Int("step.rows_out", rowsOut),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "step execution failed")
	} else {
		span.SetStatus(codes.Ok, "step completed")
	}
	span.End()

	st.metrics.RecordStep(ctx, stepID, duration, err)
}

// RecordRunCompletion ends the run span
func (st *StepTracer) RecordRunCompletion(span trace.Span, state *RunState) {
	status := state.GetStatus()
	span.SetAttributes(
		attribute.String("pipeline.status", string(status)),
		attribute.Int("pipeline.completed_steps", state.CountByStatus(StepStatusCompleted)),
	)
	if status == RunStatusCompleted {
		span.SetStatus(codes.Ok, "pipeline completed")
	} else {
		span.SetStatus(codes.Error, fmt.Sprintf("pipeline finished with status %s", status))
	}
	span.End()
}

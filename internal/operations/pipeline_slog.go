package operations

import (
	"context"
	"log/slog"
	"time"
)

func (p *Pipeline) logRunStart(ctx context.Context, runID string, specs []StepSpec) {
	ids := make([]string, len(specs))
	for i, s := range specs {
		ids[i] = s.ID
	}
	p.logger.InfoContext(ctx, "pipeline_start",
		slog.String("run_id", runID),
		slog.Any("steps", ids))
}

func (p *Pipeline) logRunComplete(ctx context.Context, runID string, duration time.Duration, rows int) {
	p.logger.InfoContext(ctx, "pipeline_complete",
		slog.String("run_id", runID),
		slog.Duration("duration", duration),
		slog.Int("rows", rows))
}

func (p *Pipeline) logRunError(ctx context.Context, runID string, err error) {
	p.logger.ErrorContext(ctx, "pipeline_error",
		slog.String("run_id", runID),
		slog.String("error", err.Error()))
}

func (p *Pipeline) logStepStart(ctx context.Context, runID string, index int, stepID string) {
	p.logger.DebugContext(ctx, "step_start",
		slog.String("run_id", runID),
		slog.Int("index", index),
		slog.String("step", stepID))
}

func (p *Pipeline) logStepComplete(ctx context.Context, runID string, index int, stepID string, duration time.Duration, rowsIn, rowsOut int) {
	p.logger.InfoContext(ctx, "step_complete",
		slog.String("run_id", runID),
		slog.Int("index", index),
		slog.String("step", stepID),
		slog.Duration("duration", duration),
		slog.Int("rows_in", rowsIn),
		slog.Int("rows_out", rowsOut))
}

func (p *Pipeline) logStepError(ctx context.Context, runID string, index int, stepID string, err error) {
	p.logger.ErrorContext(ctx, "step_error",
		slog.String("run_id", runID),
		slog.Int("index", index),
		slog.String("step", stepID),
		slog.String("error", err.Error()))
}

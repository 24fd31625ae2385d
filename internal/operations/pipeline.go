package operations

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"huntstats/internal/infrastructure"
	"huntstats/pkg/contracts/domain"
)

// Pipeline runs step specs sequentially over a table
type Pipeline struct {
	registry *Registry
	tracer   *StepTracer
	logger   *slog.Logger
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the pipeline logger
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTracer sets the span and metrics recorder
func WithTracer(tracer *StepTracer) Option {
	return func(p *Pipeline) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// NewPipeline creates a pipeline over the given registry
func NewPipeline(registry *Registry, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry: registry,
		tracer:   NewStepTracer(nil, nil),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = infrastructure.WithComponent(p.logger, "pipeline")
	return p
}

// Registry returns the Step registry
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// Result is the outcome of a pipeline run. Table is nil when the run
// failed; State always describes every Step.
type Result struct {
	Table *domain.Table
	State *RunState
}

// Resolve looks up and validates every spec without running anything
func (p *Pipeline) Resolve(specs []StepSpec) ([]Step, error) {
	steps := make([]Step, len(specs))
	for i, spec := range specs {
		step, err := p.registry.Get(spec.ID)
		if err != nil {
			return nil, NewValidationError(spec.ID, i, "unknown step")
		}
		if err := step.Validate(spec.Params); err != nil {
			return nil, NewValidationError(spec.ID, i, err.Error())
		}
		steps[i] = step
	}
	return steps, nil
}

// Run executes specs in order. The first failing Step aborts the run and
// later steps stay pending. The input table is never modified.
func (p *Pipeline) Run(ctx context.Context, t *domain.Table, specs []StepSpec) (*Result, error) {
	if t == nil {
		return nil, NewValidationError("", 0, "no input table")
	}
	steps, err := p.Resolve(specs)
	if err != nil {
		return nil, err
	}

	state := NewRunState(uuid.New().String(), steps)
	ctx, runSpan := p.tracer.TraceRun(ctx, state.ID, len(steps))
	defer p.tracer.RecordRunCompletion(runSpan, state)

	p.logRunStart(ctx, state.ID, specs)
	state.Start()

	current := t
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			opErr := NewCancellationError(step.ID(), i, err)
			state.Fail(opErr)
			p.logRunError(ctx, state.ID, opErr)
			return &Result{State: state}, opErr
		}

		next, err := p.executeStep(ctx, state, i, step, specs[i].Params, current)
		if err != nil {
			opErr := NewExecutionError(step.ID(), i, err)
			state.Fail(opErr)
			p.logRunError(ctx, state.ID, opErr)
			return &Result{State: state}, opErr
		}
		current = next
	}

	if current == t {
		current = t.Clone()
	}
	state.Complete()
	p.logRunComplete(ctx, state.ID, state.Duration(), current.Len())
	return &Result{Table: current, State: state}, nil
}

func (p *Pipeline) executeStep(ctx context.Context, run *RunState, index int, step Step, params Params, in *domain.Table) (*domain.Table, error) {
	stepState := run.Step(index)
	ctx, span := p.tracer.TraceStep(ctx, run.ID, index, step.ID())

	p.logStepStart(ctx, run.ID, index, step.ID())
	stepState.Start(in.Len())
	start := time.Now()

	out, err := step.Apply(ctx, in, params, stepState)
	duration := time.Since(start)

	if err != nil {
		stepState.Fail(err)
		p.tracer.RecordStepCompletion(ctx, span, step.ID(), duration, in.Len(), 0, err)
		p.logStepError(ctx, run.ID, index, step.ID(), err)
		return nil, err
	}

	stepState.Complete(out.Len())
	p.tracer.RecordStepCompletion(ctx, span, step.ID(), duration, in.Len(), out.Len(), nil)
	p.logStepComplete(ctx, run.ID, index, step.ID(), duration, in.Len(), out.Len())
	return out, nil
}

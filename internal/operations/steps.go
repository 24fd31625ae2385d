package operations

import (
	"context"
	"fmt"

	"huntstats/internal/dataprocessing"
	"huntstats/pkg/contracts/domain"
)

type applyFunc func(t *domain.Table, params Params, state *StepState) (*domain.Table, error)

// TransformStep adapts a dataprocessing function to the Step interface
type TransformStep struct {
	BaseStep
	required []string
	validate func(Params) error
	apply    applyFunc
}

// Validate checks that the required string parameters are present and
// that the remaining parameters parse
func (s *TransformStep) Validate(params Params) error {
	for _, key := range s.required {
		v, ok, err := params.String(key)
		if err != nil {
			return err
		}
		if !ok || v == "" {
			return fmt.Errorf("parameter %q is required", key)
		}
	}
	if s.validate != nil {
		return s.validate(params)
	}
	return nil
}

// Apply runs the transformation
func (s *TransformStep) Apply(ctx context.Context, t *domain.Table, params Params, state *StepState) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.apply(t, params, state)
}

func builtinSteps(opts dataprocessing.ProcessingOptions) []Step {
	return []Step{
		&TransformStep{
			BaseStep: NewBaseStep(StepIDCleanMissing, StepNameCleanMissing),
			apply: func(t *domain.Table, _ Params, _ *StepState) (*domain.Table, error) {
				return dataprocessing.CleanMissing(t)
			},
		},
		&TransformStep{
			BaseStep: NewBaseStep(StepIDEncodeDifficulty, StepNameEncodeDifficulty),
			apply: func(t *domain.Table, _ Params, _ *StepState) (*domain.Table, error) {
				return dataprocessing.EncodeDifficulty(t)
			},
		},
		&TransformStep{
			BaseStep: NewBaseStep(StepIDAddRewardPerKill, StepNameAddRewardPerKill),
			validate: func(p Params) error {
				_, err := zeroPolicy(p, opts.ZeroDivision)
				return err
			},
			apply: func(t *domain.Table, p Params, _ *StepState) (*domain.Table, error) {
				policy, err := zeroPolicy(p, opts.ZeroDivision)
				if err != nil {
					return nil, err
				}
				return dataprocessing.AddRewardPerKill(t, policy)
			},
		},
		&TransformStep{
			BaseStep: NewBaseStep(StepIDFilterRare, StepNameFilterRare),
			validate: func(p Params) error {
				_, err := p.Int(ParamThreshold, opts.RareThreshold)
				return err
			},
			apply: func(t *domain.Table, p Params, _ *StepState) (*domain.Table, error) {
				threshold, err := p.Int(ParamThreshold, opts.RareThreshold)
				if err != nil {
					return nil, err
				}
				return dataprocessing.FilterRare(t, threshold)
			},
		},
		&TransformStep{
			BaseStep: NewBaseStep(StepIDNormalizeKills, StepNameNormalizeKills),
			apply: func(t *domain.Table, _ Params, _ *StepState) (*domain.Table, error) {
				return dataprocessing.NormalizeKills(t)
			},
		},
		&TransformStep{
			BaseStep: NewBaseStep(StepIDStandardizeRewards, StepNameStandardizeRewards),
			validate: func(p Params) error {
				_, err := stdConvention(p, opts.StdConvention)
				return err
			},
			apply: func(t *domain.Table, p Params, _ *StepState) (*domain.Table, error) {
				convention, err := stdConvention(p, opts.StdConvention)
				if err != nil {
					return nil, err
				}
				return dataprocessing.StandardizeRewards(t, convention)
			},
		},
		&TransformStep{
			BaseStep: NewBaseStep(StepIDLabelEncode, StepNameLabelEncode),
			required: []string{ParamColumn},
			apply: func(t *domain.Table, p Params, state *StepState) (*domain.Table, error) {
				column, _, _ := p.String(ParamColumn)
				out, mapping, err := dataprocessing.LabelEncode(t, column)
				if err != nil {
					return nil, err
				}
				state.SetMetadata(MetadataMapping, mapping)
				return out, nil
			},
		},
		&TransformStep{
			BaseStep: NewBaseStep(StepIDOneHotEncode, StepNameOneHotEncode),
			required: []string{ParamColumn},
			apply: func(t *domain.Table, p Params, state *StepState) (*domain.Table, error) {
				column, _, _ := p.String(ParamColumn)
				out, err := dataprocessing.OneHotEncode(t, column)
				if err != nil {
					return nil, err
				}
				state.SetMetadata(MetadataColumns, out.Columns()[t.Width()-1:])
				return out, nil
			},
		},
		&TransformStep{
			BaseStep: NewBaseStep(StepIDDownSample, StepNameDownSample),
			required: []string{ParamLabel},
			validate: func(p Params) error {
				_, err := sampling(p, opts.Sampling)
				return err
			},
			apply: func(t *domain.Table, p Params, _ *StepState) (*domain.Table, error) {
				label, _, _ := p.String(ParamLabel)
				so, err := sampling(p, opts.Sampling)
				if err != nil {
					return nil, err
				}
				return dataprocessing.DownSample(t, label, so)
			},
		},
		&TransformStep{
			BaseStep: NewBaseStep(StepIDUpSample, StepNameUpSample),
			required: []string{ParamLabel},
			validate: func(p Params) error {
				_, err := sampling(p, opts.Sampling)
				return err
			},
			apply: func(t *domain.Table, p Params, _ *StepState) (*domain.Table, error) {
				label, _, _ := p.String(ParamLabel)
				so, err := sampling(p, opts.Sampling)
				if err != nil {
					return nil, err
				}
				return dataprocessing.UpSample(t, label, so)
			},
		},
	}
}

func zeroPolicy(p Params, def dataprocessing.ZeroDivisionPolicy) (dataprocessing.ZeroDivisionPolicy, error) {
	s, ok, err := p.String(ParamPolicy)
	if err != nil || !ok {
		return def, err
	}
	return dataprocessing.ParseZeroDivisionPolicy(s)
}

func stdConvention(p Params, def dataprocessing.StdConvention) (dataprocessing.StdConvention, error) {
	s, ok, err := p.String(ParamConvention)
	if err != nil || !ok {
		return def, err
	}
	return dataprocessing.ParseStdConvention(s)
}

func sampling(p Params, def dataprocessing.SamplingOptions) (dataprocessing.SamplingOptions, error) {
	if _, ok := p[ParamSeed]; !ok {
		return def, nil
	}
	seed, err := p.Int(ParamSeed, 0)
	if err != nil {
		return def, err
	}
	if seed < 0 {
		return def, fmt.Errorf("parameter %q must not be negative", ParamSeed)
	}
	return dataprocessing.SamplingOptions{Seed: uint64(seed)}, nil
}

package operations

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"huntstats/internal/dataprocessing"
)

// Step identifiers
const (
	StepIDCleanMissing       = "clean_missing"
	StepIDEncodeDifficulty   = "encode_difficulty"
	StepIDAddRewardPerKill   = "add_reward_per_kill"
	StepIDFilterRare         = "filter_rare"
	StepIDNormalizeKills     = "normalize_kills"
	StepIDStandardizeRewards = "standardize_rewards"
	StepIDLabelEncode        = "label_encode"
	StepIDOneHotEncode       = "one_hot_encode"
	StepIDDownSample         = "down_sample"
	StepIDUpSample           = "up_sample"
)

// Step names
const (
	StepNameCleanMissing       = "Missing Value Imputation"
	StepNameEncodeDifficulty   = "Difficulty Encoding"
	StepNameAddRewardPerKill   = "Reward Per Kill"
	StepNameFilterRare         = "Rare Monster Filter"
	StepNameNormalizeKills     = "Kill Normalization"
	StepNameStandardizeRewards = "Reward Standardization"
	StepNameLabelEncode        = "Label Encoding"
	StepNameOneHotEncode       = "One-Hot Encoding"
	StepNameDownSample         = "Class Down-Sampling"
	StepNameUpSample           = "Class Up-Sampling"
)

// Parameter keys understood by the built-in steps
const (
	ParamColumn     = "column"
	ParamLabel      = "label"
	ParamThreshold  = "threshold"
	ParamPolicy     = "policy"
	ParamConvention = "convention"
	ParamSeed       = "seed"
)

// Metadata keys written by the built-in steps
const (
	MetadataMapping = "mapping"
	MetadataColumns = "columns"
)

// Params carries the per-step arguments of a StepSpec
type Params map[string]any

// String returns a string parameter. A missing key yields ok=false.
func (p Params) String(key string) (value string, ok bool, err error) {
	raw, exists := p[key]
	if !exists || raw == nil {
		return "", false, nil
	}
	s, isString := raw.(string)
	if !isString {
		return "", false, fmt.Errorf("parameter %q must be a string, got %T", key, raw)
	}
	return s, true, nil
}

// Int returns an integer parameter or def when the key is absent.
// JSON numbers and numeric strings are accepted.
func (p Params) Int(key string, def int64) (int64, error) {
	raw, exists := p[key]
	if !exists || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("parameter %q out of range", key)
		}
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("parameter %q must be an integer, got %v", key, v)
		}
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parameter %q must be an integer: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("parameter %q must be an integer, got %T", key, raw)
	}
}

// StepSpec names a registered Step and its parameters
type StepSpec struct {
	ID     string `json:"id" validate:"required"`
	Params Params `json:"params,omitempty"`
}

// DefaultSteps returns the preparation pipeline run by the CLI: impute,
// encode tiers, derive reward per kill, then scale kills and rewards.
// Policies come from opts.
func DefaultSteps(opts dataprocessing.ProcessingOptions) []StepSpec {
	policy := "null"
	if opts.ZeroDivision == dataprocessing.ZeroAsError {
		policy = "error"
	}
	return []StepSpec{
		{ID: StepIDCleanMissing},
		{ID: StepIDEncodeDifficulty},
		{ID: StepIDAddRewardPerKill, Params: Params{ParamPolicy: policy}},
		{ID: StepIDNormalizeKills},
		{ID: StepIDStandardizeRewards, Params: Params{ParamConvention: opts.StdConvention.String()}},
	}
}

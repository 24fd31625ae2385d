package dataprocessing

import (
	"fmt"

	"huntstats/internal/config"
)

// ZeroDivisionPolicy decides what a ratio becomes when its divisor is zero
type ZeroDivisionPolicy int

const (
	// ZeroAsNull stores a missing value
	ZeroAsNull ZeroDivisionPolicy = iota
	// ZeroAsError fails the whole transformation with a COMPUTATION error
	ZeroAsError
)

// ParseZeroDivisionPolicy accepts "null" and "error"
func ParseZeroDivisionPolicy(s string) (ZeroDivisionPolicy, error) {
	switch s {
	case "", "null":
		return ZeroAsNull, nil
	case "error":
		return ZeroAsError, nil
	default:
		return ZeroAsNull, fmt.Errorf("unknown zero division policy %q", s)
	}
}

// StdConvention selects the standard deviation denominator
type StdConvention int

const (
	// SampleStd divides by n-1
	SampleStd StdConvention = iota
	// PopulationStd divides by n
	PopulationStd
)

// ParseStdConvention accepts "sample" and "population"
func ParseStdConvention(s string) (StdConvention, error) {
	switch s {
	case "", "sample":
		return SampleStd, nil
	case "population":
		return PopulationStd, nil
	default:
		return SampleStd, fmt.Errorf("unknown std convention %q", s)
	}
}

func (c StdConvention) ddof() int {
	if c == PopulationStd {
		return 0
	}
	return 1
}

// String returns the configuration spelling
func (c StdConvention) String() string {
	if c == PopulationStd {
		return "population"
	}
	return "sample"
}

// SamplingOptions controls row selection in DownSample and UpSample
type SamplingOptions struct {
	// Seed enables seeded random selection. Zero keeps selection
	// deterministic.
	Seed uint64
}

// ProcessingOptions bundles the policies used by the default pipeline
type ProcessingOptions struct {
	RareThreshold int64
	ZeroDivision  ZeroDivisionPolicy
	StdConvention StdConvention
	Sampling      SamplingOptions
}

// DefaultOptions returns default processing options
func DefaultOptions() ProcessingOptions {
	return ProcessingOptions{
		RareThreshold: 3,
		ZeroDivision:  ZeroAsNull,
		StdConvention: SampleStd,
	}
}

// OptionsFromConfig maps the processing section of the configuration
func OptionsFromConfig(cfg config.ProcessingConfig) (ProcessingOptions, error) {
	zero, err := ParseZeroDivisionPolicy(cfg.ZeroKillPolicy)
	if err != nil {
		return ProcessingOptions{}, err
	}
	std, err := ParseStdConvention(cfg.StdConvention)
	if err != nil {
		return ProcessingOptions{}, err
	}
	return ProcessingOptions{
		RareThreshold: cfg.RareThreshold,
		ZeroDivision:  zero,
		StdConvention: std,
		Sampling:      SamplingOptions{Seed: cfg.SamplingSeed},
	}, nil
}

// LabelMapping maps each category to its integer code
type LabelMapping map[string]int64

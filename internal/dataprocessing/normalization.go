package dataprocessing

import (
	"fmt"

	apperrors "huntstats/internal/errors"
	"huntstats/pkg/contracts/domain"
)

// FilterRare keeps the rows whose kill count is below threshold, in their
// original order. Rows without a kill count are dropped.
func FilterRare(t *domain.Table, threshold int64) (*domain.Table, error) {
	kills, _, err := numericColumn(t, domain.ColKills)
	if err != nil {
		return nil, err
	}

	limit := float64(threshold)
	keep := make([]int, 0, len(kills))
	for i, v := range kills {
		if k, ok := v.Float64(); ok && k < limit {
			keep = append(keep, i)
		}
	}
	return t.SelectRows(keep), nil
}

// NormalizeKills min-max scales kills to [0,1]. When every present value
// is equal they all become 0.
func NormalizeKills(t *domain.Table) (*domain.Table, error) {
	return rescale(t, domain.ColKills, func(xs []float64) (float64, float64, error) {
		lo, hi, ok := minMax(xs)
		if !ok {
			return 0, 0, emptyColumnError(domain.ColKills, "min-max normalization")
		}
		return lo, hi - lo, nil
	})
}

// StandardizeRewards replaces reward with its z-score (x - mean) / std.
// When std is zero or undefined every present value becomes 0.
func StandardizeRewards(t *domain.Table, convention StdConvention) (*domain.Table, error) {
	return rescale(t, domain.ColReward, func(xs []float64) (float64, float64, error) {
		m, ok := mean(xs)
		if !ok {
			return 0, 0, emptyColumnError(domain.ColReward, "standardization")
		}
		std, _ := stddev(xs, convention.ddof())
		return m, std, nil
	})
}

// rescale maps every present value x of column to (x - center) / scale.
// A zero scale maps every present value to 0.
func rescale(t *domain.Table, name string, params func([]float64) (center, scale float64, err error)) (*domain.Table, error) {
	vals, xs, err := numericColumn(t, name)
	if err != nil {
		return nil, err
	}
	center, scale, err := params(xs)
	if err != nil {
		return nil, err
	}

	for i, v := range vals {
		x, ok := v.Float64()
		switch {
		case !ok:
		case scale == 0:
			vals[i] = domain.Float(0)
		default:
			vals[i] = domain.Float((x - center) / scale)
		}
	}

	out := t.Clone()
	if err := out.SetColumn(name, vals); err != nil {
		return nil, err
	}
	return out, nil
}

func emptyColumnError(name, op string) error {
	return apperrors.NewComputationError(
		fmt.Sprintf("%s of column %q is undefined: no values present", op, name)).
		WithContext("column", name)
}

package dataprocessing

import (
	"fmt"
	"sort"

	apperrors "huntstats/internal/errors"
	"huntstats/pkg/contracts/domain"
)

// CleanMissing fills missing entries. Numeric columns get the mean of
// their present values; every other column, including one with no present
// value at all, gets UnknownLabel.
func CleanMissing(t *domain.Table) (*domain.Table, error) {
	out := t.Clone()

	for _, name := range out.Columns() {
		vals, err := column(out, name)
		if err != nil {
			return nil, err
		}
		if !hasNull(vals) {
			continue
		}

		fill := domain.String(domain.UnknownLabel)
		if out.IsNumeric(name) {
			_, xs, err := numericColumn(out, name)
			if err != nil {
				return nil, err
			}
			m, _ := mean(xs)
			fill = domain.Float(m)
		}

		for i, v := range vals {
			if v.IsNull() {
				vals[i] = fill
			}
		}
		if err := out.SetColumn(name, vals); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// EncodeDifficulty replaces difficulty tiers with their ordinal code.
// Integer values that already are valid codes are kept; anything else
// outside the mapping becomes Null.
func EncodeDifficulty(t *domain.Table) (*domain.Table, error) {
	vals, err := column(t, domain.ColDifficulty)
	if err != nil {
		return nil, err
	}

	for i, v := range vals {
		vals[i] = encodeTier(v)
	}

	out := t.Clone()
	if err := out.SetColumn(domain.ColDifficulty, vals); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeTier(v domain.Value) domain.Value {
	if s, ok := v.Str(); ok {
		if code, ok := domain.Difficulty(s).Code(); ok {
			return domain.Int(code)
		}
		return domain.Null()
	}
	if v.Kind() == domain.KindInt {
		code, _ := v.Int64()
		for _, c := range domain.DifficultyCodes {
			if c == code {
				return v
			}
		}
	}
	return domain.Null()
}

// AddRewardPerKill appends reward_per_kill = reward / kills. Rows with a
// missing operand get Null; rows with zero kills follow policy.
func AddRewardPerKill(t *domain.Table, policy ZeroDivisionPolicy) (*domain.Table, error) {
	rewards, _, err := numericColumn(t, domain.ColReward)
	if err != nil {
		return nil, err
	}
	kills, _, err := numericColumn(t, domain.ColKills)
	if err != nil {
		return nil, err
	}

	ratios := make([]domain.Value, t.Len())
	for i := range ratios {
		r, rok := rewards[i].Float64()
		k, kok := kills[i].Float64()
		switch {
		case !rok || !kok:
			ratios[i] = domain.Null()
		case k == 0 && policy == ZeroAsError:
			return nil, apperrors.NewComputationError(
				fmt.Sprintf("reward_per_kill undefined: row %d has zero kills", i)).
				WithContext("row", i)
		case k == 0:
			ratios[i] = domain.Null()
		default:
			ratios[i] = domain.Float(r / k)
		}
	}

	out := t.Clone()
	if err := out.SetColumn(domain.ColRewardPerKill, ratios); err != nil {
		return nil, err
	}
	return out, nil
}

// categories returns the distinct non-null values of a column rendered as
// strings, in lexicographic order
func categories(vals []domain.Value) []string {
	seen := make(map[string]bool)
	var cats []string
	for _, v := range vals {
		if v.IsNull() {
			continue
		}
		key := v.String()
		if !seen[key] {
			seen[key] = true
			cats = append(cats, key)
		}
	}
	sort.Strings(cats)
	return cats
}

// LabelEncode replaces each category of column with an integer code.
// Codes 0..n-1 follow the lexicographic order of the categories' string
// form, so the same input always yields the same mapping. Nulls stay Null.
func LabelEncode(t *domain.Table, name string) (*domain.Table, LabelMapping, error) {
	vals, err := column(t, name)
	if err != nil {
		return nil, nil, err
	}

	mapping := make(LabelMapping)
	for code, cat := range categories(vals) {
		mapping[cat] = int64(code)
	}

	for i, v := range vals {
		if v.IsNull() {
			continue
		}
		vals[i] = domain.Int(mapping[v.String()])
	}

	out := t.Clone()
	if err := out.SetColumn(name, vals); err != nil {
		return nil, nil, err
	}
	return out, mapping, nil
}

// OneHotEncode replaces column with one Bool indicator column per
// category, named <column>_<category> and appended in lexicographic
// category order. A Null row is false in every indicator.
func OneHotEncode(t *domain.Table, name string) (*domain.Table, error) {
	vals, err := column(t, name)
	if err != nil {
		return nil, err
	}

	cats := categories(vals)
	for _, cat := range cats {
		if indicator := name + "_" + cat; t.HasColumn(indicator) {
			return nil, apperrors.NewAppError(apperrors.ErrTypeSchema,
				fmt.Sprintf("indicator column %q already exists", indicator), nil).
				WithContext("column", indicator)
		}
	}

	out := t.Clone()
	if err := out.DropColumn(name); err != nil {
		return nil, apperrors.NewSchemaError(name, err)
	}

	for _, cat := range cats {
		indicator := make([]domain.Value, len(vals))
		for i, v := range vals {
			indicator[i] = domain.Bool(!v.IsNull() && v.String() == cat)
		}
		if err := out.SetColumn(name+"_"+cat, indicator); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func hasNull(vals []domain.Value) bool {
	for _, v := range vals {
		if v.IsNull() {
			return true
		}
	}
	return false
}

package dataprocessing

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"

	apperrors "huntstats/internal/errors"
	"huntstats/pkg/contracts/domain"
)

// column fetches a column and maps an unknown name to a SCHEMA error
func column(t *domain.Table, name string) ([]domain.Value, error) {
	vals, err := t.Column(name)
	if err != nil {
		return nil, apperrors.NewSchemaError(name, err)
	}
	return vals, nil
}

// requireColumns fails with a SCHEMA error on the first absent column
func requireColumns(t *domain.Table, names ...string) error {
	for _, name := range names {
		if _, err := t.ColumnIndex(name); err != nil {
			return apperrors.NewSchemaError(name, err)
		}
	}
	return nil
}

// numericColumn returns the column together with its non-null values as
// float64. A column that is not Int or Float typed is a COMPUTATION error
// naming the first cell that does not read as a number.
func numericColumn(t *domain.Table, name string) ([]domain.Value, []float64, error) {
	s, err := t.Series(name)
	if err != nil {
		return nil, nil, apperrors.NewSchemaError(name, err)
	}
	vals, _ := t.Column(name)

	if typ := s.Type(); typ != series.Int && typ != series.Float {
		row := firstNonNumeric(vals)
		if row < 0 {
			// nothing present, so nothing to reject
			return vals, nil, nil
		}
		return nil, nil, apperrors.NewComputationError(
			fmt.Sprintf("column %q is not numeric: row %d holds %q", name, row, vals[row].String())).
			WithContext("column", name).
			WithContext("row", row)
	}

	xs := make([]float64, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		if e := s.Elem(i); !e.IsNA() {
			xs = append(xs, e.Float())
		}
	}
	return vals, xs, nil
}

// firstNonNumeric returns the row of the first present cell whose text
// is not a number, falling back to the first present cell. It returns -1
// when every cell is missing.
func firstNonNumeric(vals []domain.Value) int {
	first := -1
	for i, v := range vals {
		if v.IsNull() {
			continue
		}
		if first < 0 {
			first = i
		}
		if !ParseValue(v.String()).IsNumeric() {
			return i
		}
	}
	return first
}

// groupKey renders a value as a map key. Nulls share MissingLabel.
func groupKey(v domain.Value) string {
	if v.IsNull() {
		return domain.MissingLabel
	}
	return v.String()
}

func sum(xs []float64) float64 {
	return floats.Sum(xs)
}

// mean returns false for an empty slice
func mean(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	return series.Floats(xs).Mean(), true
}

// stddev returns the standard deviation with ddof delta degrees of freedom.
// ok is false when fewer than ddof+1 values are present.
func stddev(xs []float64, ddof int) (float64, bool) {
	n := len(xs)
	if n <= ddof {
		return 0, false
	}
	if n == 1 {
		return 0, true
	}
	// series.StdDev divides by n-1
	sample := series.Floats(xs).StdDev()
	if ddof == 1 {
		return sample, true
	}
	return math.Sqrt(sample * sample * float64(n-1) / float64(n-ddof)), true
}

// minMax returns false for an empty slice
func minMax(xs []float64) (lo, hi float64, ok bool) {
	if len(xs) == 0 {
		return 0, 0, false
	}
	s := series.Floats(xs)
	return s.Min(), s.Max(), true
}

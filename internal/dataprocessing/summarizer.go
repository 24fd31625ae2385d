package dataprocessing

import (
	"huntstats/pkg/contracts/domain"
)

// Summarize computes the distinct monster count, the total kills and the
// average reward
func Summarize(t *domain.Table) (EDASummary, error) {
	names, err := column(t, domain.ColMonsterName)
	if err != nil {
		return EDASummary{}, err
	}
	_, kills, err := numericColumn(t, domain.ColKills)
	if err != nil {
		return EDASummary{}, err
	}
	avg, err := AverageReward(t)
	if err != nil {
		return EDASummary{}, err
	}

	distinct := make(map[string]struct{})
	for _, n := range names {
		if !n.IsNull() {
			distinct[n.String()] = struct{}{}
		}
	}

	return EDASummary{
		TotalMonsters: len(distinct),
		TotalKills:    sum(kills),
		AvgReward:     avg,
	}, nil
}

// DescribeDataset reports the shape, column types, missing counts and
// numeric statistics of any table. It never fails.
func DescribeDataset(t *domain.Table) DatasetSummary {
	cols := t.Columns()
	s := DatasetSummary{
		Shape:   [2]int{t.Len(), t.Width()},
		Columns: cols,
		DTypes:  make(map[string]string, len(cols)),
		Missing: make(map[string]int, len(cols)),
		Numeric: make(map[string]ColumnStats),
	}

	for _, name := range cols {
		kind, _ := t.ColumnKind(name)
		s.DTypes[name] = kind.String()

		vals, _ := t.Column(name)
		missing := 0
		for _, v := range vals {
			if v.IsNull() {
				missing++
			}
		}
		s.Missing[name] = missing

		if kind != domain.KindInt && kind != domain.KindFloat {
			continue
		}
		_, xs, err := numericColumn(t, name)
		if err != nil {
			continue
		}
		s.Numeric[name] = describe(xs)
	}

	return s
}

func describe(xs []float64) ColumnStats {
	m, _ := mean(xs)
	std, _ := stddev(xs, SampleStd.ddof())
	lo, hi, _ := minMax(xs)
	return ColumnStats{
		Count: len(xs),
		Mean:  m,
		Std:   std,
		Min:   lo,
		Max:   hi,
	}
}

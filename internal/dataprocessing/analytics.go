package dataprocessing

import (
	apperrors "huntstats/internal/errors"
	"huntstats/pkg/contracts/domain"
)

// AverageReward returns the mean of the present reward values
func AverageReward(t *domain.Table) (float64, error) {
	_, xs, err := numericColumn(t, domain.ColReward)
	if err != nil {
		return 0, err
	}
	m, ok := mean(xs)
	if !ok {
		return 0, apperrors.NewComputationError("average reward of an empty dataset is undefined")
	}
	return m, nil
}

// KillsByRegion sums kills per region. Rows without a region are grouped
// under MissingLabel so the group totals always add up to the column total.
// Sums are not rounded: kills filled with a column mean are fractional.
func KillsByRegion(t *domain.Table) (map[string]float64, error) {
	regions, err := column(t, domain.ColRegion)
	if err != nil {
		return nil, err
	}
	kills, _, err := numericColumn(t, domain.ColKills)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]float64)
	for i, r := range regions {
		key := groupKey(r)
		k, _ := kills[i].Float64()
		groups[key] = append(groups[key], k)
	}

	out := make(map[string]float64, len(groups))
	for region, xs := range groups {
		out[region] = sum(xs)
	}
	return out, nil
}

// AvgRewardByRegion averages reward per region. Regions with no present
// reward are omitted.
func AvgRewardByRegion(t *domain.Table) (map[string]float64, error) {
	regions, err := column(t, domain.ColRegion)
	if err != nil {
		return nil, err
	}
	rewards, _, err := numericColumn(t, domain.ColReward)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]float64)
	for i, r := range regions {
		if x, ok := rewards[i].Float64(); ok {
			key := groupKey(r)
			groups[key] = append(groups[key], x)
		}
	}

	out := make(map[string]float64, len(groups))
	for region, xs := range groups {
		out[region], _ = mean(xs)
	}
	return out, nil
}

// MostDangerousMonster returns the name on the row with the most kills.
// Ties go to the first such row.
func MostDangerousMonster(t *domain.Table) (string, error) {
	names, err := column(t, domain.ColMonsterName)
	if err != nil {
		return "", err
	}
	kills, _, err := numericColumn(t, domain.ColKills)
	if err != nil {
		return "", err
	}

	best := -1
	var most float64
	for i, v := range kills {
		k, ok := v.Float64()
		if !ok {
			continue
		}
		if best < 0 || k > most {
			best, most = i, k
		}
	}

	if best < 0 {
		return "", apperrors.NewComputationError("no row has a kill count")
	}
	return names[best].String(), nil
}

// ClassDistribution counts rows per distinct value of column. Nulls are
// counted under MissingLabel, so the counts add up to the row count.
func ClassDistribution(t *domain.Table, name string) (map[string]int, error) {
	vals, err := column(t, name)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, v := range vals {
		counts[groupKey(v)]++
	}
	return counts, nil
}

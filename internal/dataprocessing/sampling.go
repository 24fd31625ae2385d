package dataprocessing

import (
	"math/rand/v2"
	"sort"

	"huntstats/pkg/contracts/domain"
)

// classRows groups row indices by label, keeping row order inside each
// class. keys are sorted so iteration is deterministic.
func classRows(t *domain.Table, label string) (keys []string, rows map[string][]int, err error) {
	vals, err := column(t, label)
	if err != nil {
		return nil, nil, err
	}

	rows = make(map[string][]int)
	for i, v := range vals {
		key := groupKey(v)
		if _, ok := rows[key]; !ok {
			keys = append(keys, key)
		}
		rows[key] = append(rows[key], i)
	}
	sort.Strings(keys)
	return keys, rows, nil
}

func (o SamplingOptions) rng() *rand.Rand {
	if o.Seed == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(o.Seed, o.Seed^0x9e3779b97f4a7c15))
}

// DownSample reduces every class of label to the size of the smallest
// class. Without a seed the first rows of each class are kept; with one a
// seeded random subset is kept. Kept rows stay in their original order.
func DownSample(t *domain.Table, label string, opts SamplingOptions) (*domain.Table, error) {
	keys, rows, err := classRows(t, label)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return t.Clone(), nil
	}

	target := len(rows[keys[0]])
	for _, k := range keys[1:] {
		target = min(target, len(rows[k]))
	}

	r := opts.rng()
	keep := make([]int, 0, target*len(keys))
	for _, k := range keys {
		idx := rows[k]
		if r != nil {
			shuffled := make([]int, len(idx))
			copy(shuffled, idx)
			r.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			idx = shuffled
		}
		keep = append(keep, idx[:target]...)
	}
	sort.Ints(keep)

	return t.SelectRows(keep), nil
}

// UpSample raises every class of label to the size of the largest class.
// The original rows come first in their original order, followed by the
// replicas of each class in label order. Replicas cycle through the class
// rows, or are drawn at random when a seed is set.
func UpSample(t *domain.Table, label string, opts SamplingOptions) (*domain.Table, error) {
	keys, rows, err := classRows(t, label)
	if err != nil {
		return nil, err
	}

	target := 0
	for _, k := range keys {
		target = max(target, len(rows[k]))
	}

	r := opts.rng()
	order := make([]int, t.Len(), t.Len()*2)
	for i := range order {
		order[i] = i
	}
	for _, k := range keys {
		idx := rows[k]
		for j := 0; j < target-len(idx); j++ {
			if r != nil {
				order = append(order, idx[r.IntN(len(idx))])
			} else {
				order = append(order, idx[j%len(idx)])
			}
		}
	}

	return t.SelectRows(order), nil
}

// SplitFeaturesTarget separates the target column from the features. Both
// parts have one entry per row.
func SplitFeaturesTarget(t *domain.Table, target string) (*domain.Table, []domain.Value, error) {
	y, err := column(t, target)
	if err != nil {
		return nil, nil, err
	}

	features := t.Clone()
	if err := features.DropColumn(target); err != nil {
		return nil, nil, err
	}
	return features, y, nil
}

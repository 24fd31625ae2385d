package dataprocessing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "huntstats/internal/errors"
	"huntstats/internal/shared/testutil"
	"huntstats/pkg/contracts/domain"
)

func TestSummarize(t *testing.T) {
	got, err := Summarize(testutil.MonsterTable())
	require.NoError(t, err)

	assert.Equal(t, 3, got.TotalMonsters)
	assert.Equal(t, 17.0, got.TotalKills)
	assert.InDelta(t, 530.0/3, got.AvgReward, 1e-9)
}

func TestSummarize_DistinctNames(t *testing.T) {
	input := domain.MustTable(domain.MonsterColumns,
		[]any{"Griffin", "Velen", 5, "Hard", 300},
		[]any{"Griffin", "Skellige", 1, "Hard", 200},
		[]any{nil, "Velen", 2, "Easy", 100},
	)

	got, err := Summarize(input)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalMonsters)
	assert.Equal(t, 8.0, got.TotalKills)
	assert.InDelta(t, 200.0, got.AvgReward, 1e-9)
}

func TestSummarize_Errors(t *testing.T) {
	_, err := Summarize(domain.MustTable(domain.MonsterColumns))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeComputation))

	_, err = Summarize(testutil.CharacterTable())
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
}

func TestSummarize_JSONKeys(t *testing.T) {
	got, err := Summarize(testutil.MonsterTable())
	require.NoError(t, err)

	data, err := json.Marshal(got)
	require.NoError(t, err)

	var keys map[string]any
	require.NoError(t, json.Unmarshal(data, &keys))
	assert.Contains(t, keys, "total_monsters")
	assert.Contains(t, keys, "total_kills")
	assert.Contains(t, keys, "avg_reward")
}

func TestDescribeDataset(t *testing.T) {
	s := DescribeDataset(testutil.MonsterTable())

	assert.Equal(t, [2]int{3, 5}, s.Shape)
	assert.Equal(t, 3, s.Rows())
	assert.Equal(t, 5, s.Cols())
	assert.Equal(t, domain.MonsterColumns, s.Columns)
	assert.Equal(t, "int64", s.DTypes[domain.ColKills])
	assert.Equal(t, "string", s.DTypes[domain.ColRegion])
	assert.Equal(t, 0, s.Missing[domain.ColReward])

	require.Contains(t, s.Numeric, domain.ColKills)
	kills := s.Numeric[domain.ColKills]
	assert.Equal(t, 3, kills.Count)
	assert.InDelta(t, 17.0/3, kills.Mean, 1e-9)
	assert.InDelta(t, 4.0415, kills.Std, 1e-4)
	assert.Equal(t, 2.0, kills.Min)
	assert.Equal(t, 10.0, kills.Max)
	assert.NotContains(t, s.Numeric, domain.ColMonsterName)
}

func TestDescribeDataset_Edges(t *testing.T) {
	empty := domain.MustTable([]string{"a"})
	s := DescribeDataset(empty)
	assert.Equal(t, [2]int{0, 1}, s.Shape)
	assert.Equal(t, "null", s.DTypes["a"])
	assert.Empty(t, s.Numeric)

	single := domain.MustTable([]string{"kills", "region"}, []any{4, nil})
	s = DescribeDataset(single)
	assert.Equal(t, 1, s.Missing["region"])
	assert.Equal(t, 0.0, s.Numeric["kills"].Std, "std of one value is reported as zero")

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"shape":[1,2]`)
}

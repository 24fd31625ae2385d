package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "huntstats/internal/errors"
	"huntstats/internal/shared/testutil"
)

func TestMemoryDatasetStore(t *testing.T) {
	store := NewMemoryDatasetStore()
	base := time.Now()

	require.NoError(t, store.Create(&Dataset{ID: "b", CreatedAt: base.Add(time.Second), Table: testutil.MonsterTable()}))
	require.NoError(t, store.Create(&Dataset{ID: "a", CreatedAt: base, Table: testutil.CharacterTable()}))
	require.NoError(t, store.Create(&Dataset{ID: "c", ParentID: "a", CreatedAt: base.Add(2 * time.Second), Table: testutil.CharacterTable()}))

	assert.Equal(t, 3, store.Count())

	ds, err := store.Get("a")
	require.NoError(t, err)
	ds.ID = "mutated"
	again, err := store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", again.ID)

	ids := func(list []*Dataset) []string {
		out := make([]string, len(list))
		for i, d := range list {
			out[i] = d.ID
		}
		return out
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids(store.List(DatasetFilter{})))
	assert.Equal(t, []string{"c"}, ids(store.List(DatasetFilter{ParentID: "a"})))
	assert.Equal(t, []string{"b", "c"}, ids(store.List(DatasetFilter{Since: base.Add(time.Second)})))
	assert.Equal(t, []string{"a"}, ids(store.List(DatasetFilter{Limit: 1})))

	assert.Equal(t, map[string]int{"total_datasets": 3, "total_rows": 13, "derived": 1}, store.Stats())

	require.NoError(t, store.Delete("b"))
	_, err = store.Get("b")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
	assert.True(t, apperrors.IsType(store.Delete("b"), apperrors.ErrTypeNotFound))
}

func TestMemoryDatasetStore_CreateErrors(t *testing.T) {
	store := NewMemoryDatasetStore()

	assert.True(t, apperrors.IsType(store.Create(nil), apperrors.ErrTypeValidation))
	assert.True(t, apperrors.IsType(store.Create(&Dataset{ID: "x"}), apperrors.ErrTypeValidation))

	require.NoError(t, store.Create(&Dataset{ID: "x", Table: testutil.MonsterTable()}))
	assert.True(t, apperrors.IsType(store.Create(&Dataset{ID: "x", Table: testutil.MonsterTable()}), apperrors.ErrTypeStorage))
}

func TestMemoryDatasetStore_CleanupOlderThan(t *testing.T) {
	store := NewMemoryDatasetStore()
	require.NoError(t, store.Create(&Dataset{ID: "old", CreatedAt: time.Now().Add(-2 * time.Hour), Table: testutil.MonsterTable()}))
	require.NoError(t, store.Create(&Dataset{ID: "new", CreatedAt: time.Now(), Table: testutil.MonsterTable()}))

	require.NoError(t, store.Create(&Dataset{ID: "preloaded", CreatedAt: time.Now().Add(-3 * time.Hour), Table: testutil.MonsterTable()}))
	require.NoError(t, store.Pin("preloaded"))
	assert.True(t, apperrors.IsType(store.Pin("absent"), apperrors.ErrTypeNotFound))

	assert.Equal(t, 1, store.CleanupOlderThan(time.Hour))
	assert.Equal(t, 2, store.Count())
	_, err := store.Get("new")
	assert.NoError(t, err)
	_, err = store.Get("preloaded")
	assert.NoError(t, err, "pinned datasets never expire")

	require.NoError(t, store.Delete("preloaded"))
	assert.Equal(t, 1, store.CleanupOlderThan(0))
	assert.Equal(t, 0, store.Count(), "zero age removes every unpinned dataset")
}

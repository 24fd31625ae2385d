package services

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huntstats/internal/dataprocessing"
	apperrors "huntstats/internal/errors"
	"huntstats/internal/exporter"
	"huntstats/internal/operations"
	"huntstats/internal/shared/testutil"
	"huntstats/pkg/contracts/domain"
)

func newTestService(t *testing.T) (*DatasetService, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	registry := operations.NewDefaultRegistry(dataprocessing.DefaultOptions())
	pipeline := operations.NewPipeline(registry, operations.WithLogger(logger))
	return NewDatasetService(NewMemoryDatasetStore(), pipeline, nil, logger), handler
}

func loadMonsters(t *testing.T, svc *DatasetService) *Dataset {
	t.Helper()
	ds, err := svc.Load(context.Background(), "monsters.csv", strings.NewReader(testutil.MonsterCSV), dataprocessing.FormatCSV)
	require.NoError(t, err)
	return ds
}

func TestDatasetService_Analyses(t *testing.T) {
	svc, handler := newTestService(t)
	ctx := context.Background()
	ds := loadMonsters(t, svc)

	info := ds.Info()
	assert.Equal(t, 3, info.Rows)
	assert.Equal(t, domain.MonsterColumns, info.Columns)
	assert.Equal(t, "csv", info.Format)
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "dataset stored")

	kills, err := svc.KillsByRegion(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Velen": 5, "Novigrad": 12}, kills)

	rewards, err := svc.AvgRewardByRegion(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Novigrad": 115.0, "Velen": 300.0}, rewards)

	name, err := svc.MostDangerousMonster(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, "Drowner", name)

	eda, err := svc.EDA(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, eda.TotalMonsters)
	assert.Equal(t, 17.0, eda.TotalKills)

	dist, err := svc.ClassDistribution(ctx, ds.ID, domain.ColRegion)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Velen": 1, "Novigrad": 2}, dist)

	summary, err := svc.Describe(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Rows())
	assert.Equal(t, 5, summary.Cols())
}

func TestDatasetService_Errors(t *testing.T) {
	svc, handler := newTestService(t)
	ctx := context.Background()

	_, err := svc.EDA(ctx, "missing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))

	chars, err := svc.Load(ctx, "characters.csv", strings.NewReader(testutil.CharacterCSV), "")
	require.NoError(t, err)

	_, err = svc.KillsByRegion(ctx, chars.ID)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
	assert.True(t, handler.ContainsAttr("error_type", string(apperrors.ErrTypeSchema)))

	_, err = svc.ClassDistribution(ctx, chars.ID, "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	_, err = svc.Load(ctx, "broken.csv", strings.NewReader("a,b\n1\n"), dataprocessing.FormatCSV)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))

	_, err = svc.Load(ctx, "data.json", strings.NewReader("{}"), "json")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestDatasetService_Transform(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ds := loadMonsters(t, svc)

	derived, run, err := svc.Transform(ctx, ds.ID, []operations.StepSpec{
		{ID: operations.StepIDFilterRare, Params: operations.Params{"threshold": 6}},
		{ID: operations.StepIDOneHotEncode, Params: operations.Params{"column": domain.ColRegion}},
	})
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.Equal(t, operations.RunStatusCompleted, run.GetStatus())
	assert.Equal(t, ds.ID, derived.ParentID)
	assert.NotEqual(t, ds.ID, derived.ID)
	assert.Equal(t, 2, derived.Table.Len())
	assert.True(t, derived.Table.HasColumn("region_Velen"))

	original, err := svc.Get(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, original.Table.Len())
	assert.Len(t, svc.List(ctx), 2)

	_, run, err = svc.Transform(ctx, ds.ID, []operations.StepSpec{
		{ID: operations.StepIDLabelEncode, Params: operations.Params{"column": "guild"}},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
	require.NotNil(t, run)
	assert.Equal(t, operations.RunStatusFailed, run.GetStatus())
	assert.Len(t, svc.List(ctx), 2)
}

func TestDatasetService_Export(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ds := loadMonsters(t, svc)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, ds.ID, ExportCSV, &buf))
	assert.Equal(t, testutil.MonsterCSV, buf.String())

	buf.Reset()
	require.NoError(t, svc.Export(ctx, ds.ID, ExportXLSX, &buf))
	loaded, err := dataprocessing.ReadXLSX(bytes.NewReader(buf.Bytes()), exporter.DefaultSheet)
	require.NoError(t, err)
	assert.Equal(t, ds.Table.Records(), loaded.Records())

	assert.True(t, apperrors.IsType(svc.Export(ctx, "missing", ExportCSV, &buf), apperrors.ErrTypeNotFound))
}

func TestParseExportFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ExportFormat
		wantErr bool
	}{
		{in: "", want: ExportCSV},
		{in: "csv", want: ExportCSV},
		{in: "XLSX", want: ExportXLSX},
		{in: "parquet", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseExportFormat(tt.in)
			if tt.wantErr {
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Contains(t, ExportXLSX.ContentType(), "spreadsheetml")
}

func TestDatasetService_LoadFiles(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	monsters := testutil.WriteFile(t, "monsters.csv", testutil.MonsterCSV)
	characters := testutil.WriteFile(t, "characters.csv", testutil.CharacterCSV)

	datasets, err := svc.LoadFiles(ctx, monsters, characters)
	require.NoError(t, err)
	require.Len(t, datasets, 2)
	assert.Equal(t, "monsters.csv", datasets[0].Name)
	assert.Equal(t, 5, datasets[1].Table.Len())

	_, err = svc.LoadFiles(ctx, monsters, filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeLoad))
	assert.Len(t, svc.List(ctx), 2)
}

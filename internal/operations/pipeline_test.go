package operations_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huntstats/internal/dataprocessing"
	apperrors "huntstats/internal/errors"
	"huntstats/internal/infrastructure"
	"huntstats/internal/operations"
	"huntstats/internal/shared/testutil"
	"huntstats/pkg/contracts/domain"
)

func newPipeline(t *testing.T) (*operations.Pipeline, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	registry := operations.NewDefaultRegistry(dataprocessing.DefaultOptions())
	return operations.NewPipeline(registry, operations.WithLogger(logger)), handler
}

func columnAny(t *testing.T, tbl *domain.Table, name string) []any {
	t.Helper()
	vals, err := tbl.Column(name)
	require.NoError(t, err)
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v.Any()
	}
	return out
}

func TestPipeline_DefaultSteps(t *testing.T) {
	pipeline, handler := newPipeline(t)
	input := testutil.MonsterTable()
	before := input.Records()

	result, err := pipeline.Run(context.Background(), input, operations.DefaultSteps(dataprocessing.DefaultOptions()))
	require.NoError(t, err)
	require.NotNil(t, result.Table)

	assert.Equal(t, before, input.Records())
	assert.Equal(t, append(append([]string{}, domain.MonsterColumns...), domain.ColRewardPerKill), result.Table.Columns())
	assert.Equal(t, []any{int64(3), int64(2), int64(1)}, columnAny(t, result.Table, domain.ColDifficulty))
	assert.Equal(t, []any{0.375, 0.0, 1.0}, columnAny(t, result.Table, domain.ColKills))
	assert.Equal(t, []any{60.0, 75.0, 8.0}, columnAny(t, result.Table, domain.ColRewardPerKill))

	state := result.State
	assert.Equal(t, operations.RunStatusCompleted, state.GetStatus())
	require.Len(t, state.Steps, 5)
	assert.Equal(t, 5, state.CountByStatus(operations.StepStatusCompleted))
	assert.False(t, state.HasFailures())
	assert.NotEmpty(t, state.ID)

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "pipeline_complete")
	testutil.AssertLogAttr(t, handler, "run_id", state.ID)
	testutil.AssertLogAttr(t, handler, "component", "pipeline")
	testutil.AssertNoErrors(t, handler)
}

func TestPipeline_FirstFailureAborts(t *testing.T) {
	pipeline, handler := newPipeline(t)

	result, err := pipeline.Run(context.Background(), testutil.MonsterTable(), []operations.StepSpec{
		{ID: operations.StepIDCleanMissing},
		{ID: operations.StepIDLabelEncode, Params: operations.Params{"column": "guild"}},
		{ID: operations.StepIDEncodeDifficulty},
	})
	require.Error(t, err)

	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
	assert.Equal(t, operations.ErrorTypeExecution, operations.GetErrorType(err))
	step, ok := operations.FailedStep(err)
	assert.True(t, ok)
	assert.Equal(t, operations.StepIDLabelEncode, step)

	require.NotNil(t, result)
	assert.Nil(t, result.Table)
	assert.Equal(t, operations.RunStatusFailed, result.State.GetStatus())
	assert.Equal(t, operations.StepStatusCompleted, result.State.Step(0).GetStatus())
	assert.Equal(t, operations.StepStatusFailed, result.State.Step(1).GetStatus())
	assert.Equal(t, operations.StepStatusPending, result.State.Step(2).GetStatus())

	testutil.AssertLogContains(t, handler, slog.LevelError, "step_error")
}

func TestPipeline_ComputationFailure(t *testing.T) {
	pipeline, _ := newPipeline(t)
	input := domain.MustTable(domain.MonsterColumns,
		[]any{"Griffin", "Velen", 0, "Hard", 300},
	)

	_, err := pipeline.Run(context.Background(), input, []operations.StepSpec{
		{ID: operations.StepIDAddRewardPerKill, Params: operations.Params{"policy": "error"}},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeComputation))
}

func TestPipeline_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		specs []operations.StepSpec
	}{
		{name: "unknown step", specs: []operations.StepSpec{{ID: "shuffle"}}},
		{name: "missing column", specs: []operations.StepSpec{{ID: operations.StepIDOneHotEncode}}},
		{name: "column not a string", specs: []operations.StepSpec{{ID: operations.StepIDLabelEncode, Params: operations.Params{"column": 3}}}},
		{name: "bad threshold", specs: []operations.StepSpec{{ID: operations.StepIDFilterRare, Params: operations.Params{"threshold": "many"}}}},
		{name: "bad policy", specs: []operations.StepSpec{{ID: operations.StepIDAddRewardPerKill, Params: operations.Params{"policy": "maybe"}}}},
		{name: "bad convention", specs: []operations.StepSpec{{ID: operations.StepIDStandardizeRewards, Params: operations.Params{"convention": "robust"}}}},
		{name: "negative seed", specs: []operations.StepSpec{{ID: operations.StepIDUpSample, Params: operations.Params{"label": "is_monster", "seed": -1}}}},
		{name: "invalid after valid", specs: []operations.StepSpec{{ID: operations.StepIDCleanMissing}, {ID: operations.StepIDDownSample}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline, handler := newPipeline(t)

			result, err := pipeline.Run(context.Background(), testutil.MonsterTable(), tt.specs)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
			assert.Equal(t, operations.ErrorTypeValidation, operations.GetErrorType(err))
			assert.False(t, handler.ContainsMessage("pipeline_start"))
		})
	}
}

func TestPipeline_NilTable(t *testing.T) {
	pipeline, _ := newPipeline(t)
	_, err := pipeline.Run(context.Background(), nil, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestPipeline_NoSteps(t *testing.T) {
	pipeline, _ := newPipeline(t)
	input := testutil.MonsterTable()

	result, err := pipeline.Run(context.Background(), input, nil)
	require.NoError(t, err)
	assert.Equal(t, input.Records(), result.Table.Records())
	assert.NotSame(t, input, result.Table)
}

func TestPipeline_EncodingMetadata(t *testing.T) {
	pipeline, _ := newPipeline(t)

	result, err := pipeline.Run(context.Background(), testutil.MonsterTable(), []operations.StepSpec{
		{ID: operations.StepIDLabelEncode, Params: operations.Params{"column": domain.ColMonsterName}},
		{ID: operations.StepIDOneHotEncode, Params: operations.Params{"column": domain.ColRegion}},
	})
	require.NoError(t, err)

	mapping := result.State.Step(0).Metadata[operations.MetadataMapping]
	assert.Equal(t, dataprocessing.LabelMapping{"Drowner": 0, "Griffin": 1, "Leshen": 2}, mapping)
	assert.Equal(t, []string{"region_Novigrad", "region_Velen"}, result.State.Step(1).Metadata[operations.MetadataColumns])
	assert.Equal(t, []any{int64(1), int64(2), int64(0)}, columnAny(t, result.Table, domain.ColMonsterName))
	assert.False(t, result.Table.HasColumn(domain.ColRegion))
}

func TestPipeline_Sampling(t *testing.T) {
	pipeline, _ := newPipeline(t)

	result, err := pipeline.Run(context.Background(), testutil.CharacterTable(), []operations.StepSpec{
		{ID: operations.StepIDUpSample, Params: operations.Params{"label": domain.ColIsMonster, "seed": float64(7)}},
	})
	require.NoError(t, err)

	dist, err := dataprocessing.ClassDistribution(result.Table, domain.ColIsMonster)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"0": 4, "1": 4}, dist)

	result, err = pipeline.Run(context.Background(), testutil.CharacterTable(), []operations.StepSpec{
		{ID: operations.StepIDDownSample, Params: operations.Params{"label": domain.ColIsMonster}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Table.Len())
}

func TestPipeline_Cancelled(t *testing.T) {
	pipeline, _ := newPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := pipeline.Run(ctx, testutil.MonsterTable(), []operations.StepSpec{{ID: operations.StepIDCleanMissing}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, operations.ErrorTypeCancellation, operations.GetErrorType(err))
	assert.Equal(t, operations.StepStatusPending, result.State.Step(0).GetStatus())
}

func TestPipeline_TracesAndMetrics(t *testing.T) {
	var spans bytes.Buffer
	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		ServiceName:   "huntstats-test",
		TraceExporter: "stdout",
		EnableMetrics: true,
		EnableTracing: true,
		SampleRatio:   1.0,
		TraceWriter:   &spans,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	tracer, err := operations.NewStepTracerFromProviders(providers)
	require.NoError(t, err)

	registry := operations.NewDefaultRegistry(dataprocessing.DefaultOptions())
	pipeline := operations.NewPipeline(registry, operations.WithTracer(tracer))

	_, err = pipeline.Run(context.Background(), testutil.MonsterTable(), []operations.StepSpec{
		{ID: operations.StepIDEncodeDifficulty},
		{ID: operations.StepIDLabelEncode, Params: operations.Params{"column": "guild"}},
	})
	require.Error(t, err)

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()
	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `step_id="encode_difficulty"`)
	assert.Contains(t, string(body), "pipeline_step_errors_total")

	require.NoError(t, providers.Shutdown(context.Background()))
	assert.Contains(t, spans.String(), "pipeline.run")
	assert.Contains(t, spans.String(), "pipeline.step.encode_difficulty")
	assert.Contains(t, spans.String(), "pipeline.step.label_encode")
}

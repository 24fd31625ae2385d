package operations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huntstats/internal/dataprocessing"
	"huntstats/internal/operations"
	"huntstats/pkg/contracts/domain"
)

type identityStep struct {
	operations.BaseStep
}

func newIdentityStep(id string) *identityStep {
	return &identityStep{BaseStep: operations.NewBaseStep(id, "Identity")}
}

func (s *identityStep) Apply(_ context.Context, t *domain.Table, _ operations.Params, _ *operations.StepState) (*domain.Table, error) {
	return t.Clone(), nil
}

func TestRegistry(t *testing.T) {
	registry := operations.NewRegistry()

	assert.Equal(t, 0, registry.Count())
	assert.NotNil(t, registry.List())
	assert.Empty(t, registry.List())
}

func TestRegistryRegister(t *testing.T) {
	registry := operations.NewRegistry()

	step1 := newIdentityStep("step1")
	require.NoError(t, registry.Register(step1))
	require.NoError(t, registry.Register(newIdentityStep("step2")))
	require.NoError(t, registry.Register(newIdentityStep("step3")))

	assert.Equal(t, 3, registry.Count())
	assert.True(t, registry.Has("step2"))

	got, err := registry.Get("step1")
	require.NoError(t, err)
	assert.Same(t, step1, got)

	assert.Equal(t, []string{"step1", "step2", "step3"}, registry.ListIDs())

	require.NoError(t, registry.Unregister("step2"))
	assert.Equal(t, []string{"step1", "step3"}, registry.ListIDs())
	assert.Error(t, registry.Unregister("step2"))

	_, err = registry.Get("missing")
	assert.ErrorContains(t, err, "not found")
}

func TestRegistryRegisterErrors(t *testing.T) {
	registry := operations.NewRegistry()

	assert.ErrorContains(t, registry.Register(nil), "nil step")
	assert.ErrorContains(t, registry.Register(newIdentityStep("")), "ID cannot be empty")

	require.NoError(t, registry.Register(newIdentityStep("dup")))
	assert.ErrorContains(t, registry.Register(newIdentityStep("dup")), "already registered")
}

func TestNewDefaultRegistry(t *testing.T) {
	registry := operations.NewDefaultRegistry(dataprocessing.DefaultOptions())

	assert.Equal(t, []string{
		operations.StepIDCleanMissing,
		operations.StepIDEncodeDifficulty,
		operations.StepIDAddRewardPerKill,
		operations.StepIDFilterRare,
		operations.StepIDNormalizeKills,
		operations.StepIDStandardizeRewards,
		operations.StepIDLabelEncode,
		operations.StepIDOneHotEncode,
		operations.StepIDDownSample,
		operations.StepIDUpSample,
	}, registry.ListIDs())

	for _, step := range registry.List() {
		assert.NotEmpty(t, step.Name(), step.ID())
	}
}

func TestCustomStepInPipeline(t *testing.T) {
	registry := operations.NewRegistry()
	require.NoError(t, registry.Register(newIdentityStep("identity")))
	pipeline := operations.NewPipeline(registry)

	result, err := pipeline.Run(context.Background(), domain.MustTable([]string{"a"}, []any{1}), []operations.StepSpec{
		{ID: "identity"}, {ID: "identity"},
	})
	require.NoError(t, err)
	require.Len(t, result.State.Steps, 2)
	assert.Equal(t, 1, result.State.Step(1).RowsOut)
}

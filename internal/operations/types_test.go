package operations_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huntstats/internal/dataprocessing"
	"huntstats/internal/operations"
)

func TestParamsInt(t *testing.T) {
	tests := []struct {
		name    string
		params  operations.Params
		want    int64
		wantErr bool
	}{
		{name: "absent uses default", params: operations.Params{}, want: 3},
		{name: "nil uses default", params: operations.Params{"threshold": nil}, want: 3},
		{name: "int", params: operations.Params{"threshold": 5}, want: 5},
		{name: "int64", params: operations.Params{"threshold": int64(6)}, want: 6},
		{name: "json float", params: operations.Params{"threshold": 7.0}, want: 7},
		{name: "json number", params: operations.Params{"threshold": json.Number("8")}, want: 8},
		{name: "numeric string", params: operations.Params{"threshold": "9"}, want: 9},
		{name: "fractional", params: operations.Params{"threshold": 2.5}, wantErr: true},
		{name: "word", params: operations.Params{"threshold": "many"}, wantErr: true},
		{name: "bool", params: operations.Params{"threshold": true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.params.Int("threshold", 3)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParamsString(t *testing.T) {
	p := operations.Params{"column": "region", "seed": 4}

	v, ok, err := p.String("column")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "region", v)

	_, ok, err = p.String("label")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = p.String("seed")
	assert.Error(t, err)
}

func TestStepSpecJSON(t *testing.T) {
	var specs []operations.StepSpec
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"filter_rare","params":{"threshold":4}},{"id":"clean_missing"}]`), &specs))

	require.Len(t, specs, 2)
	threshold, err := specs[0].Params.Int(operations.ParamThreshold, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), threshold)
	assert.Nil(t, specs[1].Params)
}

func TestDefaultSteps(t *testing.T) {
	opts := dataprocessing.DefaultOptions()
	opts.ZeroDivision = dataprocessing.ZeroAsError
	opts.StdConvention = dataprocessing.PopulationStd

	specs := operations.DefaultSteps(opts)
	require.Len(t, specs, 5)
	assert.Equal(t, operations.StepIDCleanMissing, specs[0].ID)
	assert.Equal(t, "error", specs[2].Params[operations.ParamPolicy])
	assert.Equal(t, "population", specs[4].Params[operations.ParamConvention])
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huntstats/internal/config"
	apperrors "huntstats/internal/errors"
	"huntstats/internal/shared/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Data.OutputDir = t.TempDir()
	cfg.Telemetry.EnableMetrics = false
	cfg.Telemetry.EnableTracing = false
	return cfg
}

func TestParseFlags(t *testing.T) {
	cfg := config.Default()
	cfg.Data.MonsterFile = "configured.csv"

	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr string
	}{
		{
			name: "defaults from config",
			want: options{monsters: "configured.csv", outDir: "output", threshold: 3},
		},
		{
			name: "flags override config",
			args: []string{"-monsters", "m.csv", "-characters", "c.csv", "-threshold", "7", "-out", "reports"},
			want: options{monsters: "m.csv", characters: "c.csv", outDir: "reports", threshold: 7},
		},
		{name: "negative threshold", args: []string{"-threshold", "-1"}, wantErr: "threshold"},
		{name: "positional argument", args: []string{"extra"}, wantErr: "unexpected argument"},
		{name: "unknown flag", args: []string{"-bogus"}, wantErr: "bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args, cfg, &bytes.Buffer{})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFlags_MonstersRequired(t *testing.T) {
	_, err := parseFlags(nil, config.Default(), &bytes.Buffer{})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	assert.Contains(t, err.Error(), "-monsters")
}

func TestRun_Help(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	var usage bytes.Buffer

	_, err := run(context.Background(), testConfig(t), logger, []string{"-h"}, &usage)

	assert.ErrorIs(t, err, flag.ErrHelp)
	assert.Contains(t, usage.String(), "-monsters")
}

func TestRun_MonstersOnly(t *testing.T) {
	cfg := testConfig(t)
	logger, handler := testutil.NewTestLogger(t)
	monsters := testutil.WriteFile(t, "monsters.csv", testutil.MonsterCSV)

	report, err := run(context.Background(), cfg, logger, []string{"-monsters", monsters}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "monsters.csv", report.Source)
	assert.Equal(t, [2]int{3, 5}, report.Description.Shape)
	assert.Equal(t, map[string]float64{"Velen": 5, "Novigrad": 12}, report.KillsByRegion)
	assert.InDelta(t, 115.0, report.AvgRewardByRegion["Novigrad"], 1e-9)
	assert.InDelta(t, 300.0, report.AvgRewardByRegion["Velen"], 1e-9)
	assert.Equal(t, "Drowner", report.MostDangerousMonster)
	assert.Equal(t, 1, report.RareMonsters)
	assert.Nil(t, report.Characters)
	require.NotNil(t, report.Pipeline)
	assert.Len(t, report.Pipeline.Steps, 5)
	assert.Equal(t, []string{
		config.CleanedDatasetFile,
		config.EncodedDatasetFile,
		config.RareDatasetFile,
		config.SummaryFile,
	}, report.Files)

	out := cfg.Data.OutputDir
	clean, err := os.ReadFile(filepath.Join(out, config.CleanedDatasetFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(clean)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "monster_name,region,kills,difficulty,reward,reward_per_kill", lines[0])

	rare, err := os.ReadFile(filepath.Join(out, config.RareDatasetFile))
	require.NoError(t, err)
	rareLines := strings.Split(strings.TrimSpace(string(bytes.TrimPrefix(rare, []byte{0xEF, 0xBB, 0xBF}))), "\n")
	require.Len(t, rareLines, 2)
	assert.Equal(t, "monster_name,region,kills,difficulty,reward", rareLines[0])
	assert.Contains(t, string(rare), "Leshen")
	assert.NotContains(t, string(rare), "Drowner")

	encoded, err := os.ReadFile(filepath.Join(out, config.EncodedDatasetFile))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(encoded, []byte("PK")))

	summary, err := os.ReadFile(filepath.Join(out, config.SummaryFile))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(summary, &decoded))
	assert.Equal(t, "Drowner", decoded["most_dangerous_monster"])
	assert.EqualValues(t, 3, decoded["rare_threshold"])

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "aggregations")
}

func TestRun_WithCharacters(t *testing.T) {
	cfg := testConfig(t)
	logger, _ := testutil.NewTestLogger(t)
	monsters := testutil.WriteFile(t, "monsters.csv", testutil.MonsterCSV)
	characters := testutil.WriteFile(t, "characters.csv", testutil.CharacterCSV)

	report, err := run(context.Background(), cfg, logger,
		[]string{"-monsters", monsters, "-characters", characters, "-threshold", "6"}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.RareMonsters)
	require.NotNil(t, report.Characters)
	assert.Equal(t, 5, report.Characters.Rows)
	assert.Equal(t, map[string]int{"0": 4, "1": 1}, report.Characters.ClassDistribution)
	assert.Equal(t, map[string]int{"0": 4, "1": 4}, report.Characters.Balanced)
}

func TestRun_Errors(t *testing.T) {
	ragged := testutil.WriteFile(t, "ragged.csv", "monster_name,region\nGriffin\n")
	noKills := testutil.WriteFile(t, "nokills.csv", "monster_name,region,difficulty,reward\nGriffin,Velen,Hard,300\n")

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing file", args: []string{"-monsters", filepath.Join(t.TempDir(), "absent.csv")}},
		{name: "ragged csv", args: []string{"-monsters", ragged}},
		{name: "missing kills column", args: []string{"-monsters", noKills}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			logger, _ := testutil.NewTestLogger(t)

			report, err := run(context.Background(), cfg, logger, tt.args, &bytes.Buffer{})
			require.Error(t, err)
			assert.Nil(t, report)
			assert.NoFileExists(t, filepath.Join(cfg.Data.OutputDir, config.SummaryFile))
		})
	}
}

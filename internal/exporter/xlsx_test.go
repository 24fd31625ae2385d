package exporter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"huntstats/internal/dataprocessing"
	"huntstats/internal/shared/testutil"
	"huntstats/pkg/contracts/domain"
)

func TestXLSXWriter_WriteTable(t *testing.T) {
	dir := t.TempDir()
	writer := NewXLSXWriter(dir, nil)

	input := domain.MustTable([]string{"monster_name", "difficulty", "reward_per_kill", "region_Velen"},
		[]any{"Griffin", 3, 60.0, true},
		[]any{"Leshen", nil, 75.5, false},
	)
	require.NoError(t, writer.WriteTable("encoded.xlsx", "monsters", input))

	path := filepath.Join(dir, "encoded.xlsx")
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"monsters"}, f.GetSheetList())

	name, err := f.GetCellValue("monsters", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Griffin", name)

	loaded, err := dataprocessing.LoadXLSX(path, "monsters")
	require.NoError(t, err)
	assert.Equal(t, input.Columns(), loaded.Columns())
	assert.Equal(t, input.Records(), loaded.Records())
}

func TestXLSXWriter_DefaultSheet(t *testing.T) {
	dir := t.TempDir()
	writer := NewXLSXWriter(dir, nil)
	require.NoError(t, writer.WriteTable("plain.xlsx", "", testutil.MonsterTable()))

	loaded, err := dataprocessing.LoadXLSX(filepath.Join(dir, "plain.xlsx"), DefaultSheet)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Len())
}

func TestWriteXLSXTo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSXTo(&buf, "", testutil.CharacterTable()))

	loaded, err := dataprocessing.ReadXLSX(bytes.NewReader(buf.Bytes()), "")
	require.NoError(t, err)
	assert.Equal(t, testutil.CharacterTable().Records(), loaded.Records())
}

func TestWriteJSONReport(t *testing.T) {
	dir := t.TempDir()
	summary, err := dataprocessing.Summarize(testutil.MonsterTable())
	require.NoError(t, err)

	require.NoError(t, WriteJSONReport(dir, filepath.Join("reports", "summary.json"), summary))

	data, err := os.ReadFile(filepath.Join(dir, "reports", "summary.json"))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(3), decoded["total_monsters"])
	assert.Equal(t, float64(17), decoded["total_kills"])
}

package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	apperrors "huntstats/internal/errors"
	"huntstats/pkg/contracts/domain"
)

// utf8BOM is stripped from the first header cell
const utf8BOM = "\ufeff"

// naToken is how gota spells a missing element
const naToken = "NaN"

// nullTokens are the cell spellings read as missing values
var nullTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
	"None": true,
}

// Format identifies an input file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the format from the file extension. Unknown
// extensions are read as CSV.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".tsv", ".tab":
		return FormatTSV
	default:
		return FormatCSV
	}
}

// LoadFile reads a delimited text file or an Excel workbook into a table.
// A missing or unreadable file is a LOAD error; a malformed one is a
// PARSING error.
func LoadFile(path string) (*domain.Table, error) {
	format := DetectFormat(path)
	if format == FormatXLSX {
		return LoadXLSX(path, "")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewLoadError(fmt.Sprintf("failed to open %s", path), err).
			WithContext("path", path)
	}
	defer f.Close()

	comma := ','
	if format == FormatTSV {
		comma = '\t'
	}

	t, err := LoadDelimited(f, comma)
	if err != nil {
		return nil, withPath(err, path)
	}

	slog.Debug("dataset loaded",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("rows", t.Len()),
		slog.Int("columns", t.Width()))
	return t, nil
}

// LoadCSV reads comma separated input with a header row
func LoadCSV(r io.Reader) (*domain.Table, error) {
	return LoadDelimited(r, ',')
}

// LoadDelimited reads delimited input with a header row. Every record must
// have as many fields as the header.
func LoadDelimited(r io.Reader, comma rune) (*domain.Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.TrimLeadingSpace = !unicode.IsSpace(comma)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.NewParsingError("input has no header row", err)
	}
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read header row", err)
	}

	records := [][]string{header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("malformed record", err)
		}
		records = append(records, record)
	}

	return buildTable(records)
}

// LoadXLSX reads a sheet of an Excel workbook. An empty sheet name selects
// the first sheet.
func LoadXLSX(path, sheet string) (*domain.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewLoadError(fmt.Sprintf("failed to open %s", path), err).
				WithContext("path", path)
		}
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open workbook %s", path), err).
			WithContext("path", path)
	}
	defer f.Close()

	t, err := readWorkbook(f, sheet)
	if err != nil {
		return nil, withPath(err, path)
	}

	slog.Debug("dataset loaded",
		slog.String("path", path),
		slog.String("format", string(FormatXLSX)),
		slog.Int("rows", t.Len()),
		slog.Int("columns", t.Width()))
	return t, nil
}

// ReadXLSX reads a workbook from r
func ReadXLSX(r io.Reader, sheet string) (*domain.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()
	return readWorkbook(f, sheet)
}

func readWorkbook(f *excelize.File, sheet string) (*domain.Table, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewParsingError("workbook has no sheets", nil)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err).
			WithContext("sheet", sheet)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("sheet %q has no header row", sheet), nil).
			WithContext("sheet", sheet)
	}

	width := len(rows[0])
	records := [][]string{rows[0]}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		// excelize trims trailing empty cells
		for len(row) < width {
			row = append(row, "")
		}
		records = append(records, row)
	}

	return buildTable(records)
}

// buildTable turns raw records, header first, into a table. Each column is
// typed by promoting the kinds ParseValue infers for its cells, then the
// records are loaded as a gota DataFrame with those types. Missing cells
// are written as gota's NA spelling.
func buildTable(records [][]string) (*domain.Table, error) {
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		header[i] = strings.TrimSpace(h)
	}

	t, err := domain.NewTable(header...)
	if err != nil {
		return nil, apperrors.NewParsingError("invalid header row", err)
	}
	for n, record := range records[1:] {
		if len(record) != len(header) {
			err := fmt.Errorf("%w: got %d values, want %d", domain.ErrRowWidth, len(record), len(header))
			return nil, apperrors.NewParsingError(fmt.Sprintf("record %d", n+1), err).
				WithContext("record", n+1)
		}
	}
	if len(records) == 1 || len(header) == 0 {
		return t, nil
	}

	canonical := make([][]string, len(records))
	canonical[0] = header
	for n := range records[1:] {
		canonical[n+1] = make([]string, len(header))
	}

	types := make(map[string]series.Type, len(header))
	vals := make([]domain.Value, len(records)-1)
	for ci, name := range header {
		for n, record := range records[1:] {
			vals[n] = ParseValue(record[ci])
		}
		typ := domain.SeriesType(domain.PromoteKinds(vals))
		types[name] = typ

		for n, v := range vals {
			switch {
			case v.IsNull():
				canonical[n+1][ci] = naToken
			case typ == series.String:
				canonical[n+1][ci] = strings.TrimSpace(records[n+1][ci])
			default:
				canonical[n+1][ci] = v.String()
			}
		}
	}

	df := dataframe.LoadRecords(canonical,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.WithTypes(types),
	)
	t, err = domain.NewTableFromFrame(df)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to build table", err)
	}
	return t, nil
}

// ParseValue infers the type of a cell. Null spellings become Null, then
// integers, finite floats and true/false literals are recognised; anything
// else stays a string.
func ParseValue(cell string) domain.Value {
	s := strings.TrimSpace(cell)
	if nullTokens[s] {
		return domain.Null()
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return domain.Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) {
		return domain.Float(f)
	}
	switch strings.ToLower(s) {
	case "true":
		return domain.Bool(true)
	case "false":
		return domain.Bool(false)
	}
	return domain.String(s)
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func withPath(err error, path string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		appErr.WithContext("path", path)
	}
	return err
}

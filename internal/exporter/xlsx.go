package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "huntstats/internal/errors"
	"huntstats/pkg/contracts/domain"
)

// DefaultSheet is the sheet name used when none is given
const DefaultSheet = "Sheet1"

// XLSXWriter writes tables to Excel workbooks
type XLSXWriter struct {
	outputDir string
	logger    *slog.Logger
}

// NewXLSXWriter creates a workbook writer rooted at outputDir
func NewXLSXWriter(outputDir string, logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{outputDir: outputDir, logger: logger}
}

// WriteTable saves a table as the only sheet of a new workbook
func (w *XLSXWriter) WriteTable(filePath, sheet string, t *domain.Table) error {
	fullPath := resolvePath(w.outputDir, filePath)

	w.logger.Info("Writing XLSX file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", t.Len()))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err)
	}

	f, err := buildWorkbook(sheet, t)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(fullPath); err != nil {
		return apperrors.NewStorageError("failed to save workbook", err)
	}
	return nil
}

// WriteXLSXTo streams a workbook holding the table to out
func WriteXLSXTo(out io.Writer, sheet string, t *domain.Table) error {
	f, err := buildWorkbook(sheet, t)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(out); err != nil {
		return apperrors.NewStorageError("failed to write workbook", err)
	}
	return nil
}

func buildWorkbook(sheet string, t *domain.Table) (*excelize.File, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			f.Close()
			return nil, apperrors.NewStorageError(fmt.Sprintf("invalid sheet name %q", sheet), err)
		}
	}

	header := make([]any, t.Width())
	for i, c := range t.Columns() {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, apperrors.NewStorageError("failed to write header row", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, bold)
	}

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = cellValue(v)
		}

		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, apperrors.NewStorageError("invalid cell reference", err)
		}
		if err := f.SetSheetRow(sheet, ref, &cells); err != nil {
			f.Close()
			return nil, apperrors.NewStorageError(fmt.Sprintf("failed to write row %d", i), err)
		}
	}

	return f, nil
}

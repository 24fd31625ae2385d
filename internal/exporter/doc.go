// Package exporter writes tables and reports to disk or to any io.Writer.
//
// CSVWriter: CSV files with an optional UTF-8 BOM for Excel, append mode
// and a StreamWriter for row-at-a-time output.
//
// XLSXWriter: single-sheet Excel workbooks with a bold header row and
// typed cells.
//
// WriteJSONReport: indented JSON summaries.
//
// Example usage:
//
//	w := exporter.NewCSVWriter("output", logger)
//	err := w.WriteTable("monsters_clean.csv", table, true)
//
//	x := exporter.NewXLSXWriter("output", logger)
//	err = x.WriteTable("monsters_encoded.xlsx", "monsters", table)
package exporter

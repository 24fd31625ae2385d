package exporter

import (
	"huntstats/pkg/contracts/domain"
)

// formatRow renders values the way they are written to CSV: shortest
// exact float form, empty string for missing values
func formatRow(row []domain.Value) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = v.String()
	}
	return out
}

// cellValue converts a value into what excelize stores natively.
// Missing values become nil so the cell stays empty.
func cellValue(v domain.Value) any {
	return v.Any()
}

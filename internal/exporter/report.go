package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"

	apperrors "huntstats/internal/errors"
)

// WriteJSONReport writes v as indented JSON under dir
func WriteJSONReport(dir, filePath string, v any) error {
	fullPath := resolvePath(dir, filePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.NewStorageError("failed to encode report", err)
	}

	if err := os.WriteFile(fullPath, append(data, '\n'), 0644); err != nil {
		return apperrors.NewStorageError("failed to write report", err)
	}
	return nil
}

package services

import (
	"context"
	"log/slog"

	apperrors "huntstats/internal/errors"
)

// logError logs a failed dataset action with its error type
func (s *DatasetService) logError(ctx context.Context, action string, err error, attrs ...slog.Attr) {
	allAttrs := []slog.Attr{
		slog.String("action", action),
		slog.String("error", err.Error()),
		slog.String("error_type", string(apperrors.TypeOf(err))),
	}
	allAttrs = append(allAttrs, attrs...)

	s.logger.LogAttrs(ctx, slog.LevelError, "dataset action failed", allAttrs...)
}

func (s *DatasetService) logDatasetStored(ctx context.Context, ds *Dataset) {
	s.logger.LogAttrs(ctx, slog.LevelInfo, "dataset stored",
		slog.String("dataset_id", ds.ID),
		slog.String("name", ds.Name),
		slog.String("format", string(ds.Format)),
		slog.String("parent_id", ds.ParentID),
		slog.Int("rows", ds.Table.Len()),
		slog.Int("columns", ds.Table.Width()))
}

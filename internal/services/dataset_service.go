package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"huntstats/internal/dataprocessing"
	apperrors "huntstats/internal/errors"
	"huntstats/internal/exporter"
	"huntstats/internal/infrastructure"
	"huntstats/internal/operations"
	"huntstats/pkg/contracts/domain"
)

// ExportFormat selects the encoding used by Export
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// ParseExportFormat accepts "csv" (the default) and "xlsx"
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(s) {
	case "", "csv":
		return ExportCSV, nil
	case "xlsx":
		return ExportXLSX, nil
	default:
		return "", apperrors.NewAppValidationError(fmt.Sprintf("unsupported export format %q", s)).
			WithContext("format", s)
	}
}

// ContentType returns the MIME type of the format
func (f ExportFormat) ContentType() string {
	if f == ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// DatasetService loads, analyses, transforms and exports datasets
type DatasetService struct {
	store    *MemoryDatasetStore
	pipeline *operations.Pipeline
	metrics  *infrastructure.PipelineMetrics
	logger   *slog.Logger
}

// NewDatasetService creates a dataset service. metrics may be nil.
func NewDatasetService(store *MemoryDatasetStore, pipeline *operations.Pipeline, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		store:    store,
		pipeline: pipeline,
		metrics:  metrics,
		logger:   infrastructure.WithComponent(logger, "dataset_service"),
	}
}

// Load parses r in the given format and stores the result
func (s *DatasetService) Load(ctx context.Context, name string, r io.Reader, format dataprocessing.Format) (*Dataset, error) {
	var (
		t   *domain.Table
		err error
	)
	switch format {
	case dataprocessing.FormatXLSX:
		t, err = dataprocessing.ReadXLSX(r, "")
	case dataprocessing.FormatTSV:
		t, err = dataprocessing.LoadDelimited(r, '\t')
	case dataprocessing.FormatCSV, "":
		format = dataprocessing.FormatCSV
		t, err = dataprocessing.LoadCSV(r)
	default:
		err = apperrors.NewAppValidationError(fmt.Sprintf("unsupported input format %q", format))
	}
	if err != nil {
		s.logError(ctx, "load", err, slog.String("name", name))
		return nil, err
	}
	return s.save(ctx, name, format, "", t, nil)
}

// LoadFile reads a dataset from disk and stores it
func (s *DatasetService) LoadFile(ctx context.Context, path string) (*Dataset, error) {
	t, err := dataprocessing.LoadFile(path)
	if err != nil {
		s.logError(ctx, "load_file", err, slog.String("path", path))
		return nil, err
	}
	return s.save(ctx, filepath.Base(path), dataprocessing.DetectFormat(path), "", t, nil)
}

// LoadFiles reads several files concurrently. The first failure cancels
// the remaining loads and nothing is returned.
func (s *DatasetService) LoadFiles(ctx context.Context, paths ...string) ([]*Dataset, error) {
	datasets := make([]*Dataset, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ds, err := s.LoadFile(gctx, path)
			if err != nil {
				return err
			}
			datasets[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, ds := range datasets {
			if ds != nil {
				_ = s.store.Delete(ds.ID)
			}
		}
		return nil, err
	}
	return datasets, nil
}

// Get returns a stored dataset
func (s *DatasetService) Get(_ context.Context, id string) (*Dataset, error) {
	return s.store.Get(id)
}

// List returns every stored dataset, oldest first
func (s *DatasetService) List(_ context.Context) []DatasetInfo {
	datasets := s.store.List(DatasetFilter{})
	infos := make([]DatasetInfo, len(datasets))
	for i, ds := range datasets {
		infos[i] = ds.Info()
	}
	return infos
}

// Delete removes a dataset
func (s *DatasetService) Delete(_ context.Context, id string) error {
	return s.store.Delete(id)
}

// Describe returns shape, types, missing counts and numeric statistics
func (s *DatasetService) Describe(ctx context.Context, id string) (dataprocessing.DatasetSummary, error) {
	ds, err := s.store.Get(id)
	if err != nil {
		return dataprocessing.DatasetSummary{}, err
	}
	return dataprocessing.DescribeDataset(ds.Table), nil
}

// EDA returns the monster count, total kills and average reward
func (s *DatasetService) EDA(ctx context.Context, id string) (dataprocessing.EDASummary, error) {
	var summary dataprocessing.EDASummary
	err := s.withTable(ctx, id, "eda", func(t *domain.Table) (err error) {
		summary, err = dataprocessing.Summarize(t)
		return err
	})
	return summary, err
}

// KillsByRegion returns total kills per region
func (s *DatasetService) KillsByRegion(ctx context.Context, id string) (map[string]float64, error) {
	var out map[string]float64
	err := s.withTable(ctx, id, "kills_by_region", func(t *domain.Table) (err error) {
		out, err = dataprocessing.KillsByRegion(t)
		return err
	})
	return out, err
}

// AvgRewardByRegion returns the mean reward per region
func (s *DatasetService) AvgRewardByRegion(ctx context.Context, id string) (map[string]float64, error) {
	var out map[string]float64
	err := s.withTable(ctx, id, "avg_reward_by_region", func(t *domain.Table) (err error) {
		out, err = dataprocessing.AvgRewardByRegion(t)
		return err
	})
	return out, err
}

// MostDangerousMonster returns the name of the monster with the most kills
func (s *DatasetService) MostDangerousMonster(ctx context.Context, id string) (string, error) {
	var out string
	err := s.withTable(ctx, id, "most_dangerous", func(t *domain.Table) (err error) {
		out, err = dataprocessing.MostDangerousMonster(t)
		return err
	})
	return out, err
}

// ClassDistribution counts rows per value of column
func (s *DatasetService) ClassDistribution(ctx context.Context, id, column string) (map[string]int, error) {
	if column == "" {
		return nil, apperrors.NewAppValidationError("column is required")
	}
	var out map[string]int
	err := s.withTable(ctx, id, "class_distribution", func(t *domain.Table) (err error) {
		out, err = dataprocessing.ClassDistribution(t, column)
		return err
	})
	return out, err
}

// Transform runs the steps over a stored dataset and stores the result as
// a new dataset. The run state is returned even when the run fails.
func (s *DatasetService) Transform(ctx context.Context, id string, specs []operations.StepSpec) (*Dataset, *operations.RunState, error) {
	ds, err := s.store.Get(id)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.pipeline.Run(ctx, ds.Table, specs)
	if err != nil {
		s.logError(ctx, "transform", err, slog.String("dataset_id", id))
		if result != nil {
			return nil, result.State, err
		}
		return nil, nil, err
	}

	derived, err := s.save(ctx, ds.Name, ds.Format, ds.ID, result.Table, result.State)
	if err != nil {
		return nil, result.State, err
	}
	return derived, result.State, nil
}

// Export writes a stored dataset to w
func (s *DatasetService) Export(ctx context.Context, id string, format ExportFormat, w io.Writer) error {
	ds, err := s.store.Get(id)
	if err != nil {
		return err
	}

	switch format {
	case ExportXLSX:
		err = exporter.WriteXLSXTo(w, exporter.DefaultSheet, ds.Table)
	default:
		err = exporter.WriteTableTo(w, ds.Table, false)
	}
	if err != nil {
		s.logError(ctx, "export", err, slog.String("dataset_id", id), slog.String("format", string(format)))
		return err
	}

	s.logger.InfoContext(ctx, "dataset exported",
		slog.String("dataset_id", id),
		slog.String("format", string(format)),
		slog.Int("rows", ds.Table.Len()))
	return nil
}

// Stats returns store totals
func (s *DatasetService) Stats() map[string]int {
	return s.store.Stats()
}

func (s *DatasetService) withTable(ctx context.Context, id, action string, fn func(*domain.Table) error) error {
	ds, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if err := fn(ds.Table); err != nil {
		s.logError(ctx, action, err, slog.String("dataset_id", id))
		return err
	}
	return nil
}

// save stores a freshly built table under a new uuid
func (s *DatasetService) save(ctx context.Context, name string, format dataprocessing.Format, parent string, t *domain.Table, run *operations.RunState) (*Dataset, error) {
	ds := &Dataset{
		ID:        uuid.New().String(),
		Name:      name,
		Format:    format,
		ParentID:  parent,
		CreatedAt: time.Now(),
		Table:     t,
		Run:       run,
	}
	if err := s.store.Create(ds); err != nil {
		return nil, err
	}

	if parent == "" {
		s.metrics.RecordLoad(ctx, string(format), t.Len())
	}
	s.logDatasetStored(ctx, ds)
	return ds, nil
}

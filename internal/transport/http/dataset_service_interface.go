package http

import (
	"context"
	"io"

	"huntstats/internal/dataprocessing"
	"huntstats/internal/operations"
	"huntstats/internal/services"
)

// DatasetServiceInterface is the part of services.DatasetService the
// handlers depend on
type DatasetServiceInterface interface {
	Load(ctx context.Context, name string, r io.Reader, format dataprocessing.Format) (*services.Dataset, error)
	Get(ctx context.Context, id string) (*services.Dataset, error)
	List(ctx context.Context) []services.DatasetInfo
	Delete(ctx context.Context, id string) error
	Describe(ctx context.Context, id string) (dataprocessing.DatasetSummary, error)
	EDA(ctx context.Context, id string) (dataprocessing.EDASummary, error)
	KillsByRegion(ctx context.Context, id string) (map[string]float64, error)
	AvgRewardByRegion(ctx context.Context, id string) (map[string]float64, error)
	MostDangerousMonster(ctx context.Context, id string) (string, error)
	ClassDistribution(ctx context.Context, id, column string) (map[string]int, error)
	Transform(ctx context.Context, id string, specs []operations.StepSpec) (*services.Dataset, *operations.RunState, error)
	Export(ctx context.Context, id string, format services.ExportFormat, w io.Writer) error
}

var _ DatasetServiceInterface = (*services.DatasetService)(nil)

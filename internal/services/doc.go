// Package services implements the business logic between transports and
// the dataprocessing core.
//
// DatasetService keeps uploaded and derived tables in a
// MemoryDatasetStore under uuid ids. It loads CSV, TSV and XLSX input
// (several files concurrently with LoadFiles), answers the analysis
// queries, runs operations pipelines that produce new datasets and
// exports tables as CSV or XLSX.
//
// HealthService reports liveness and dataset store totals.
//
// Example usage:
//
//	store := services.NewMemoryDatasetStore()
//	svc := services.NewDatasetService(store, pipeline, metrics, logger)
//
//	ds, err := svc.LoadFile(ctx, "monsters.csv")
//	kills, err := svc.KillsByRegion(ctx, ds.ID)
package services

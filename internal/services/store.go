package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"huntstats/internal/dataprocessing"
	apperrors "huntstats/internal/errors"
	"huntstats/internal/operations"
	"huntstats/pkg/contracts/domain"
)

// Dataset is a stored table and where it came from. Tables are never
// modified after they are stored; transformations create new datasets.
type Dataset struct {
	ID        string
	Name      string
	Format    dataprocessing.Format
	ParentID  string
	CreatedAt time.Time
	Table     *domain.Table
	Run       *operations.RunState
}

// DatasetInfo is the public description of a Dataset
type DatasetInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Format    string    `json:"format,omitempty"`
	ParentID  string    `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Rows      int       `json:"rows"`
	Columns   []string  `json:"columns"`
}

// Info summarizes the dataset
func (d *Dataset) Info() DatasetInfo {
	return DatasetInfo{
		ID:        d.ID,
		Name:      d.Name,
		Format:    string(d.Format),
		ParentID:  d.ParentID,
		CreatedAt: d.CreatedAt,
		Rows:      d.Table.Len(),
		Columns:   d.Table.Columns(),
	}
}

// DatasetFilter narrows List results
type DatasetFilter struct {
	ParentID string
	Since    time.Time
	Limit    int
}

// MemoryDatasetStore is an in-memory dataset store
type MemoryDatasetStore struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset
	pinned   map[string]bool
}

// NewMemoryDatasetStore creates a new in-memory dataset store
func NewMemoryDatasetStore() *MemoryDatasetStore {
	return &MemoryDatasetStore{
		datasets: make(map[string]*Dataset),
		pinned:   make(map[string]bool),
	}
}

// Pin exempts a dataset from CleanupOlderThan
func (s *MemoryDatasetStore) Pin(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.datasets[id]; !exists {
		return notFound(id)
	}
	s.pinned[id] = true
	return nil
}

// Create stores a new dataset
func (s *MemoryDatasetStore) Create(ds *Dataset) error {
	if ds == nil || ds.ID == "" || ds.Table == nil {
		return apperrors.NewAppValidationError("dataset needs an id and a table")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.datasets[ds.ID]; exists {
		return apperrors.NewStorageError(fmt.Sprintf("dataset %s already exists", ds.ID), nil)
	}

	s.datasets[ds.ID] = ds
	return nil
}

// Get retrieves a dataset by ID
func (s *MemoryDatasetStore) Get(id string) (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, exists := s.datasets[id]
	if !exists {
		return nil, notFound(id)
	}

	// Return a copy so callers cannot swap the stored table
	dsCopy := *ds
	return &dsCopy, nil
}

// List returns datasets matching the filter, oldest first
func (s *MemoryDatasetStore) List(filter DatasetFilter) []*Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Dataset, 0, len(s.datasets))
	for _, ds := range s.datasets {
		if filter.ParentID != "" && ds.ParentID != filter.ParentID {
			continue
		}
		if !filter.Since.IsZero() && ds.CreatedAt.Before(filter.Since) {
			continue
		}
		dsCopy := *ds
		result = append(result, &dsCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result
}

// Delete removes a dataset from the store
func (s *MemoryDatasetStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.datasets[id]; !exists {
		return notFound(id)
	}

	delete(s.datasets, id)
	delete(s.pinned, id)
	return nil
}

// CleanupOlderThan removes unpinned datasets created before now minus
// olderThan and returns how many were removed
func (s *MemoryDatasetStore) CleanupOlderThan(olderThan time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	deleted := 0
	for id, ds := range s.datasets {
		if !s.pinned[id] && ds.CreatedAt.Before(cutoff) {
			delete(s.datasets, id)
			deleted++
		}
	}
	return deleted
}

// Count returns the number of stored datasets
func (s *MemoryDatasetStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.datasets)
}

// Stats returns dataset and row totals
func (s *MemoryDatasetStore) Stats() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]int{
		"total_datasets": len(s.datasets),
		"total_rows":     0,
		"derived":        0,
	}
	for _, ds := range s.datasets {
		stats["total_rows"] += ds.Table.Len()
		if ds.ParentID != "" {
			stats["derived"]++
		}
	}
	return stats
}

func notFound(id string) error {
	return apperrors.NewNotFoundError(fmt.Sprintf("dataset %s", id)).WithContext("dataset_id", id)
}

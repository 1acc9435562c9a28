package memory

import (
	"context"
	"fmt"
	"sort"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	repository "github.com/tigerroll/lineup/pkg/orchestration/core/domain/repository"
)

// SaveBatch persists a new Batch.
func (r *InMemoryOrchestrationRepository) SaveBatch(ctx context.Context, batch *model.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.batches[batch.ID]; exists {
		return fmt.Errorf("Batch with ID %s already exists", batch.ID)
	}
	cloned := *batch
	r.batches[batch.ID] = &cloned
	return nil
}

// UpdateBatch updates an existing Batch.
func (r *InMemoryOrchestrationRepository) UpdateBatch(ctx context.Context, batch *model.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.batches[batch.ID]; !exists {
		return fmt.Errorf("Batch with ID %s not found for update", batch.ID)
	}
	cloned := *batch
	r.batches[batch.ID] = &cloned
	return nil
}

// FindBatchByID finds a Batch by its ID.
func (r *InMemoryOrchestrationRepository) FindBatchByID(ctx context.Context, id string) (*model.Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	batch, ok := r.batches[id]
	if !ok {
		return nil, repository.ErrBatchNotFound
	}
	cloned := *batch
	return &cloned, nil
}

// FindBatchesByConfigurationID returns the Batches owned by a
// Configuration, oldest first.
func (r *InMemoryOrchestrationRepository) FindBatchesByConfigurationID(ctx context.Context, configurationID string) ([]*model.Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Batch
	for _, b := range r.batches {
		if b.ConfigurationID == configurationID {
			cloned := *b
			result = append(result, &cloned)
		}
	}
	sortBatchesByCreateTime(result)
	return result, nil
}

// FindBatchesByStatus returns all Batches in the given status, oldest
// first. The polling loop uses this to find live batches to reconcile.
func (r *InMemoryOrchestrationRepository) FindBatchesByStatus(ctx context.Context, status model.BatchStatus) ([]*model.Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Batch
	for _, b := range r.batches {
		if b.Status == status {
			cloned := *b
			result = append(result, &cloned)
		}
	}
	sortBatchesByCreateTime(result)
	return result, nil
}

// Map iteration order is random; sort for deterministic results.
func sortBatchesByCreateTime(batches []*model.Batch) {
	sort.Slice(batches, func(i, j int) bool {
		if batches[i].CreateTime.Equal(batches[j].CreateTime) {
			return batches[i].ID < batches[j].ID
		}
		return batches[i].CreateTime.Before(batches[j].CreateTime)
	})
}

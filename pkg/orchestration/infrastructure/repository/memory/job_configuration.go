package memory

import (
	"context"
	"fmt"
	"sort"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	repository "github.com/tigerroll/lineup/pkg/orchestration/core/domain/repository"
)

// SaveJobConfiguration persists a new JobConfiguration. JobConfigurations
// are immutable once created, so no update method exists.
func (r *InMemoryOrchestrationRepository) SaveJobConfiguration(ctx context.Context, jobConfiguration *model.JobConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobConfigurations[jobConfiguration.ID]; exists {
		return fmt.Errorf("JobConfiguration with ID %s already exists", jobConfiguration.ID)
	}
	if err := jobConfiguration.ValidateOverride(); err != nil {
		return err
	}
	cloned := *jobConfiguration
	cloned.Data = jobConfiguration.Data.Copy()
	r.jobConfigurations[jobConfiguration.ID] = &cloned
	return nil
}

// FindJobConfigurationByID finds a JobConfiguration by its ID.
func (r *InMemoryOrchestrationRepository) FindJobConfigurationByID(ctx context.Context, id string) (*model.JobConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jc, ok := r.jobConfigurations[id]
	if !ok {
		return nil, repository.ErrJobConfigurationNotFound
	}
	cloned := *jc
	cloned.Data = jc.Data.Copy()
	return &cloned, nil
}

// FindJobConfigurationsByBatchID returns the JobConfigurations of a Batch,
// oldest first.
func (r *InMemoryOrchestrationRepository) FindJobConfigurationsByBatchID(ctx context.Context, batchID string) ([]*model.JobConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.JobConfiguration
	for _, jc := range r.jobConfigurations {
		if jc.BatchID == batchID {
			cloned := *jc
			cloned.Data = jc.Data.Copy()
			result = append(result, &cloned)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreateTime.Equal(result[j].CreateTime) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreateTime.Before(result[j].CreateTime)
	})
	return result, nil
}

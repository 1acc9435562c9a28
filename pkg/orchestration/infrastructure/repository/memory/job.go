package memory

import (
	"context"
	"fmt"
	"sort"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	repository "github.com/tigerroll/lineup/pkg/orchestration/core/domain/repository"
)

// SaveJob persists a new Job.
func (r *InMemoryOrchestrationRepository) SaveJob(ctx context.Context, job *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.ID]; exists {
		return fmt.Errorf("Job with ID %s already exists", job.ID)
	}
	r.jobs[job.ID] = cloneJob(job)
	return nil
}

// UpdateJob updates an existing Job.
func (r *InMemoryOrchestrationRepository) UpdateJob(ctx context.Context, job *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.ID]; !exists {
		return fmt.Errorf("Job with ID %s not found for update", job.ID)
	}
	r.jobs[job.ID] = cloneJob(job)
	return nil
}

// FindJobByID finds a Job by its ID.
func (r *InMemoryOrchestrationRepository) FindJobByID(ctx context.Context, id string) (*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, repository.ErrJobNotFound
	}
	return cloneJob(job), nil
}

// FindJobsByBatchID returns the Jobs of a Batch, oldest first, skipped
// jobs included (callers filter).
func (r *InMemoryOrchestrationRepository) FindJobsByBatchID(ctx context.Context, batchID string) ([]*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Job
	for _, j := range r.jobs {
		if j.BatchID == batchID {
			result = append(result, cloneJob(j))
		}
	}
	sortJobsByCreateTime(result)
	return result, nil
}

// FindJobsByParentJobID returns the direct children of a Job in the
// resubmission lineage, oldest first.
func (r *InMemoryOrchestrationRepository) FindJobsByParentJobID(ctx context.Context, parentJobID string) ([]*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Job
	for _, j := range r.jobs {
		if j.ParentJobID != nil && *j.ParentJobID == parentJobID {
			result = append(result, cloneJob(j))
		}
	}
	sortJobsByCreateTime(result)
	return result, nil
}

// cloneJob copies the job including its pointer fields and documents so the
// caller and the store never share mutable state.
func cloneJob(job *model.Job) *model.Job {
	cloned := *job
	if job.ExternalID != nil {
		id := *job.ExternalID
		cloned.ExternalID = &id
	}
	if job.ParentJobID != nil {
		id := *job.ParentJobID
		cloned.ParentJobID = &id
	}
	if job.SubmittedTime != nil {
		t := *job.SubmittedTime
		cloned.SubmittedTime = &t
	}
	if job.SubmitRequest != nil {
		cloned.SubmitRequest = job.SubmitRequest.Copy()
	}
	if job.SubmitResponse != nil {
		cloned.SubmitResponse = job.SubmitResponse.Copy()
	}
	return &cloned
}

func sortJobsByCreateTime(jobs []*model.Job) {
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreateTime.Equal(jobs[j].CreateTime) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].CreateTime.Before(jobs[j].CreateTime)
	})
}

package memory

import (
	"context"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
)

// AppendJobTrackingLog appends a tracking-log record. The log is
// append-only; records are never updated or deleted.
func (r *InMemoryOrchestrationRepository) AppendJobTrackingLog(ctx context.Context, record *model.JobTrackingLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cloned := *record
	r.trackingLogs = append(r.trackingLogs, &cloned)
	return nil
}

// FindJobTrackingLogsByJobID returns the tracking records of a Job in
// insertion order.
func (r *InMemoryOrchestrationRepository) FindJobTrackingLogsByJobID(ctx context.Context, jobID string) ([]*model.JobTrackingLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.JobTrackingLog
	for _, rec := range r.trackingLogs {
		if rec.JobID == jobID {
			cloned := *rec
			result = append(result, &cloned)
		}
	}
	return result, nil
}

// AppendBatchReconciliationLog appends one reconciliation-run record.
func (r *InMemoryOrchestrationRepository) AppendBatchReconciliationLog(ctx context.Context, record *model.BatchReconciliationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cloned := *record
	if record.JobCounts != nil {
		counts := make(model.StatusCounts, len(record.JobCounts))
		for k, v := range record.JobCounts {
			counts[k] = v
		}
		cloned.JobCounts = counts
	}
	r.reconciliationLogs = append(r.reconciliationLogs, &cloned)
	return nil
}

// FindBatchReconciliationLogsByBatchID returns the reconciliation records
// of a Batch in insertion order.
func (r *InMemoryOrchestrationRepository) FindBatchReconciliationLogsByBatchID(ctx context.Context, batchID string) ([]*model.BatchReconciliationLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.BatchReconciliationLog
	for _, rec := range r.reconciliationLogs {
		if rec.BatchID == batchID {
			cloned := *rec
			result = append(result, &cloned)
		}
	}
	return result, nil
}

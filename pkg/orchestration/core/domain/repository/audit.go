package repository

import (
	"context"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
)

// AuditLogRepository defines the append-only audit trail operations:
// one tracking record per status poll and one reconciliation record per
// reconciliation run. Log rows are never updated or deleted.
type AuditLogRepository interface {
	// AppendJobTrackingLog appends one poll result record.
	AppendJobTrackingLog(ctx context.Context, record *model.JobTrackingLog) error

	// FindJobTrackingLogsByJobID returns the poll history of a Job, ordered
	// by poll time ascending.
	FindJobTrackingLogsByJobID(ctx context.Context, jobID string) ([]*model.JobTrackingLog, error)

	// AppendBatchReconciliationLog appends one reconciliation audit record.
	AppendBatchReconciliationLog(ctx context.Context, record *model.BatchReconciliationLog) error

	// FindBatchReconciliationLogsByBatchID returns the reconciliation
	// history of a Batch, ordered by reconciliation time ascending.
	FindBatchReconciliationLogsByBatchID(ctx context.Context, batchID string) ([]*model.BatchReconciliationLog, error)
}

package usecase

import (
	"context"
	"fmt"
	"time"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	repository "github.com/tigerroll/lineup/pkg/orchestration/core/domain/repository"
	metrics "github.com/tigerroll/lineup/pkg/orchestration/core/metrics"
	tx "github.com/tigerroll/lineup/pkg/orchestration/core/tx"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
	logger "github.com/tigerroll/lineup/pkg/orchestration/support/util/logger"
)

const moduleReconciler = "reconciler"

// DefaultReconciler derives the aggregate batch status from the statuses of
// the batch's non-skipped jobs and records every run in the reconciliation
// log.
type DefaultReconciler struct {
	repo     repository.OrchestrationRepository
	txMgr    tx.TransactionManager
	recorder metrics.MetricRecorder
}

var _ Reconciler = (*DefaultReconciler)(nil)

func NewDefaultReconciler(
	repo repository.OrchestrationRepository,
	txMgr tx.TransactionManager,
	rec metrics.MetricRecorder,
) *DefaultReconciler {
	return &DefaultReconciler{repo: repo, txMgr: txMgr, recorder: rec}
}

// Recon recomputes and writes the batch status. Deterministic: the same job
// statuses always yield the same batch status, and running it twice in a
// row changes nothing except the audit trail.
func (r *DefaultReconciler) Recon(ctx context.Context, batchID string) (model.BatchStatus, error) {
	started := time.Now()
	batch, err := r.repo.FindBatchByID(ctx, batchID)
	if err != nil {
		return "", exception.NewBatchError(moduleReconciler,
			fmt.Sprintf("failed to load batch '%s'", batchID), err, false)
	}
	jobs, err := r.repo.FindJobsByBatchID(ctx, batchID)
	if err != nil {
		return "", exception.NewBatchError(moduleReconciler,
			fmt.Sprintf("failed to load jobs of batch '%s'", batchID), err, false)
	}

	status, counts := deriveBatchStatus(jobs)
	reconLog := model.NewBatchReconciliationLog(batchID, status, counts)
	previous := batch.Status
	batch.ApplyReconciliation(status)

	if err := r.txMgr.WithinTx(ctx, func(txCtx context.Context) error {
		if err := r.repo.UpdateBatch(txCtx, batch); err != nil {
			return err
		}
		return r.repo.AppendBatchReconciliationLog(txCtx, reconLog)
	}); err != nil {
		return "", exception.NewBatchError(moduleReconciler,
			fmt.Sprintf("failed to persist reconciliation of batch '%s'", batchID), err, false)
	}
	r.recorder.RecordReconciliation(ctx, batch.BatchType, status, time.Since(started))
	if previous != status {
		logger.Infof("Batch '%s' reconciled: %s -> %s (%d job(s) considered).",
			batchID, previous, status, counts.Total())
	}
	return status, nil
}

// deriveBatchStatus applies the priority rules over the non-skipped jobs.
// Skipped jobs are invisible; a batch whose jobs are all skipped (or that
// has none) is COMPLETED. Within the live set the precedence is
// ERROR > FAILED, cancellation counts only when unanimous, and COMPLETED
// additionally requires every live job configuration to have at least one
// FINISHED job.
func deriveBatchStatus(jobs []*model.Job) (model.BatchStatus, model.StatusCounts) {
	counts := model.StatusCounts{}
	live := make([]*model.Job, 0, len(jobs))
	for _, j := range jobs {
		if j.Skipped {
			continue
		}
		live = append(live, j)
		counts[j.Status]++
	}
	if len(live) == 0 {
		return model.BatchStatusCompleted, counts
	}
	if counts[model.JobStatusCancelled] == len(live) {
		return model.BatchStatusCancelled, counts
	}
	if counts[model.JobStatusError] > 0 {
		return model.BatchStatusError, counts
	}
	if counts[model.JobStatusFailed] > 0 {
		return model.BatchStatusFailed, counts
	}

	// COMPLETED demands a FINISHED job per live job configuration, not
	// merely all-terminal: a cancelled job whose configuration has no
	// finished sibling leaves the batch ACTIVE for operator attention.
	finishedByCfg := make(map[string]bool, len(live))
	liveCfgs := make(map[string]bool, len(live))
	for _, j := range live {
		liveCfgs[j.JobConfigurationID] = true
		if j.Status == model.JobStatusFinished {
			finishedByCfg[j.JobConfigurationID] = true
		}
	}
	for cfgID := range liveCfgs {
		if !finishedByCfg[cfgID] {
			return model.BatchStatusActive, counts
		}
	}
	return model.BatchStatusCompleted, counts
}

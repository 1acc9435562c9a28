package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	port "github.com/tigerroll/lineup/pkg/orchestration/core/application/port"
	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	repository "github.com/tigerroll/lineup/pkg/orchestration/core/domain/repository"
	transform "github.com/tigerroll/lineup/pkg/orchestration/core/transform"
	tx "github.com/tigerroll/lineup/pkg/orchestration/core/tx"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
	logger "github.com/tigerroll/lineup/pkg/orchestration/support/util/logger"
)

const moduleBatchManager = "batch_manager"

// DefaultBatchManager is the BatchManager implementation. Expansion and
// validation go through the transformer registry; per-job submission is
// delegated to the JobManager.
type DefaultBatchManager struct {
	repo     repository.OrchestrationRepository
	txMgr    tx.TransactionManager
	registry *transform.Registry
	checker  port.EntityExistenceChecker
	jobs     JobManager
}

var _ BatchManager = (*DefaultBatchManager)(nil)

func NewDefaultBatchManager(
	repo repository.OrchestrationRepository,
	txMgr tx.TransactionManager,
	registry *transform.Registry,
	checker port.EntityExistenceChecker,
	jobs JobManager,
) *DefaultBatchManager {
	return &DefaultBatchManager{
		repo:     repo,
		txMgr:    txMgr,
		registry: registry,
		checker:  checker,
		jobs:     jobs,
	}
}

// CreateBatch expands the configuration document through the batch type's
// transformer and creates the batch with its job configurations and jobs in
// one transaction. An expansion yielding zero documents still creates the
// (empty) batch.
func (m *DefaultBatchManager) CreateBatch(ctx context.Context, batchType model.BatchType, configurationID string) (string, error) {
	cfg, err := m.repo.FindConfigurationByID(ctx, configurationID)
	if err != nil {
		return "", exception.NewBatchError(moduleBatchManager,
			fmt.Sprintf("failed to load configuration '%s'", configurationID), err, false)
	}
	if !cfg.Status.CanProduceBatches() {
		return "", exception.NewBatchError(moduleBatchManager,
			fmt.Sprintf("configuration '%s' in status '%s' cannot produce batches", configurationID, cfg.Status),
			ErrConfigurationNotReady, false)
	}

	docs, err := m.registry.Expand(batchType, cfg.Content)
	if err != nil {
		return "", exception.NewBatchError(moduleBatchManager,
			fmt.Sprintf("expansion of configuration '%s' for batch type '%s' failed", configurationID, batchType),
			errors.Join(ErrBatch, err), false)
	}

	batch := model.NewBatch(configurationID, batchType, fmt.Sprintf("%s/%s", batchType, configurationID))
	if err := m.txMgr.WithinTx(ctx, func(txCtx context.Context) error {
		if err := m.repo.SaveBatch(txCtx, batch); err != nil {
			return err
		}
		for _, doc := range docs {
			jobCfg := model.NewJobConfiguration(batch.ID, doc)
			if err := m.repo.SaveJobConfiguration(txCtx, jobCfg); err != nil {
				return err
			}
			job := model.NewJob(batch.ID, jobCfg.ID)
			if err := m.repo.SaveJob(txCtx, job); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return "", exception.NewBatchError(moduleBatchManager,
			fmt.Sprintf("failed to persist batch for configuration '%s'", configurationID), err, false)
	}
	logger.Infof("Batch '%s' (type '%s') created with %d job(s) from configuration '%s'.",
		batch.ID, batchType, len(docs), configurationID)
	return batch.ID, nil
}

// ValidateBatch runs the registered validator over the batch's job
// configuration documents. Read-only.
func (m *DefaultBatchManager) ValidateBatch(ctx context.Context, batchID string) ([]string, error) {
	batch, err := m.repo.FindBatchByID(ctx, batchID)
	if err != nil {
		return nil, exception.NewBatchError(moduleBatchManager,
			fmt.Sprintf("failed to load batch '%s'", batchID), err, false)
	}
	jobCfgs, err := m.repo.FindJobConfigurationsByBatchID(ctx, batchID)
	if err != nil {
		return nil, exception.NewBatchError(moduleBatchManager,
			fmt.Sprintf("failed to load job configurations of batch '%s'", batchID), err, false)
	}
	docs := make([]model.Document, 0, len(jobCfgs))
	for _, jc := range jobCfgs {
		docs = append(docs, jc.Data)
	}
	problems, err := m.registry.Validate(ctx, batch.BatchType, docs, m.checker)
	if err != nil {
		return nil, exception.NewBatchError(moduleBatchManager,
			fmt.Sprintf("validation of batch '%s' failed to run", batchID), errors.Join(ErrBatch, err), true)
	}
	return problems, nil
}

// SubmitBatch drives the idempotent submit-or-resubmit decision over every
// job of the batch. One misbehaving job never aborts its siblings; failures
// are aggregated into the returned summary.
func (m *DefaultBatchManager) SubmitBatch(ctx context.Context, batchID string) (*SubmissionSummary, error) {
	batch, err := m.repo.FindBatchByID(ctx, batchID)
	if err != nil {
		return nil, exception.NewBatchError(moduleBatchManager,
			fmt.Sprintf("failed to load batch '%s'", batchID), err, false)
	}
	cfg, err := m.repo.FindConfigurationByID(ctx, batch.ConfigurationID)
	if err != nil {
		return nil, exception.NewBatchError(moduleBatchManager,
			fmt.Sprintf("failed to load configuration '%s'", batch.ConfigurationID), err, false)
	}
	if !cfg.Status.CanProduceBatches() {
		return nil, exception.NewBatchError(moduleBatchManager,
			fmt.Sprintf("configuration '%s' in status '%s' blocks submission of batch '%s'",
				cfg.ID, cfg.Status, batchID),
			ErrConfigurationNotReady, false)
	}
	cycle, err := m.repo.FindCycleByID(ctx, cfg.CycleID)
	if err != nil {
		return nil, exception.NewBatchError(moduleBatchManager,
			fmt.Sprintf("failed to load cycle '%s'", cfg.CycleID), err, false)
	}
	if cycle.Status != model.CycleStatusActive {
		return nil, exception.NewBatchError(moduleBatchManager,
			fmt.Sprintf("cycle '%s' in status '%s' blocks submission of batch '%s'", cycle.ID, cycle.Status, batchID),
			ErrConfigurationNotReady, false)
	}

	jobs, err := m.repo.FindJobsByBatchID(ctx, batchID)
	if err != nil {
		return nil, exception.NewBatchError(moduleBatchManager,
			fmt.Sprintf("failed to load jobs of batch '%s'", batchID), err, false)
	}

	summary := &SubmissionSummary{BatchID: batchID}
	var failures *multierror.Error
	for _, job := range jobs {
		switch {
		case job.Skipped:
			summary.Skipped++
		case !job.Status.IsSubmittable():
			summary.Skipped++
		case job.ExternalID == nil:
			// Never reached the external service: plain submit.
			if err := m.jobs.SubmitJob(ctx, job.ID); err != nil {
				summary.Errored++
				failures = multierror.Append(failures, err)
			} else {
				summary.Submitted++
			}
		default:
			// Reached the external service before and failed there. Resubmit
			// only when the remote entity is absent; an existing entity means
			// the previous run took effect.
			exists, err := m.remoteEntityExists(ctx, batch.BatchType, job)
			if err != nil {
				summary.Errored++
				failures = multierror.Append(failures, err)
				continue
			}
			if exists {
				logger.Infof("Job '%s' of batch '%s' skipped: remote entity already exists.", job.ID, batchID)
				summary.Skipped++
				continue
			}
			if _, err := m.jobs.ResubmitJob(ctx, job.ID, nil); err != nil {
				summary.Errored++
				failures = multierror.Append(failures, err)
			} else {
				summary.Resubmitted++
			}
		}
	}
	summary.Errors = failures.ErrorOrNil()

	if err := m.txMgr.WithinTx(ctx, func(txCtx context.Context) error {
		if batch.Status == model.BatchStatusInitiated {
			batch.MarkSubmitted()
			if err := m.repo.UpdateBatch(txCtx, batch); err != nil {
				return err
			}
		}
		if cfg.Status != model.ConfigurationStatusActive {
			cfg.MarkActive()
			return m.repo.UpdateConfiguration(txCtx, cfg)
		}
		return nil
	}); err != nil {
		return summary, exception.NewBatchError(moduleBatchManager,
			fmt.Sprintf("failed to persist activation of batch '%s'", batchID), err, false)
	}
	logger.Infof("Batch '%s' submitted: %d submitted, %d resubmitted, %d skipped, %d errored.",
		batchID, summary.Submitted, summary.Resubmitted, summary.Skipped, summary.Errored)
	return summary, nil
}

// ActivateBatch marks the batch ACTIVE without touching its jobs.
// Idempotent: an already-ACTIVE batch is left as is.
func (m *DefaultBatchManager) ActivateBatch(ctx context.Context, batchID string) error {
	batch, err := m.repo.FindBatchByID(ctx, batchID)
	if err != nil {
		return exception.NewBatchError(moduleBatchManager,
			fmt.Sprintf("failed to load batch '%s'", batchID), err, false)
	}
	if batch.Status == model.BatchStatusActive {
		return nil
	}
	if err := batch.TransitionTo(model.BatchStatusActive); err != nil {
		return exception.NewBatchError(moduleBatchManager,
			fmt.Sprintf("batch '%s' cannot be activated", batchID), errors.Join(ErrBatch, err), false)
	}
	if err := m.txMgr.WithinTx(ctx, func(txCtx context.Context) error {
		return m.repo.UpdateBatch(txCtx, batch)
	}); err != nil {
		return exception.NewBatchError(moduleBatchManager,
			fmt.Sprintf("failed to persist activation of batch '%s'", batchID), err, false)
	}
	return nil
}

func (m *DefaultBatchManager) remoteEntityExists(ctx context.Context, batchType model.BatchType, job *model.Job) (bool, error) {
	jobCfg, err := m.repo.FindJobConfigurationByID(ctx, job.JobConfigurationID)
	if err != nil {
		return false, exception.NewBatchError(moduleBatchManager,
			fmt.Sprintf("failed to load job configuration '%s'", job.JobConfigurationID), err, false)
	}
	exists, err := m.checker.Exists(ctx, jobCfg.Data, batchType)
	if err != nil {
		return false, exception.NewBatchError(moduleBatchManager,
			fmt.Sprintf("existence check for job '%s' failed", job.ID), errors.Join(ErrJob, err), true)
	}
	return exists, nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"

	port "github.com/tigerroll/lineup/pkg/orchestration/core/application/port"
	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	repository "github.com/tigerroll/lineup/pkg/orchestration/core/domain/repository"
	metrics "github.com/tigerroll/lineup/pkg/orchestration/core/metrics"
	tx "github.com/tigerroll/lineup/pkg/orchestration/core/tx"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
	logger "github.com/tigerroll/lineup/pkg/orchestration/support/util/logger"
)

const moduleJobManager = "job_manager"

// DefaultJobManager is the JobManager implementation backed by the
// orchestration repository and the external processing service port.
type DefaultJobManager struct {
	repo     repository.OrchestrationRepository
	txMgr    tx.TransactionManager
	service  port.ProcessingService
	recorder metrics.MetricRecorder
}

var _ JobManager = (*DefaultJobManager)(nil)

func NewDefaultJobManager(
	repo repository.OrchestrationRepository,
	txMgr tx.TransactionManager,
	service port.ProcessingService,
	rec metrics.MetricRecorder,
) *DefaultJobManager {
	return &DefaultJobManager{
		repo:     repo,
		txMgr:    txMgr,
		service:  service,
		recorder: rec,
	}
}

// SubmitJob submits a single job to the external processing service.
// Submission is attempted outside the write transaction: the external call
// can be slow, and the outcome (success or failure) is persisted afterwards
// in one transaction either way.
func (m *DefaultJobManager) SubmitJob(ctx context.Context, jobID string) error {
	job, err := m.repo.FindJobByID(ctx, jobID)
	if err != nil {
		return exception.NewBatchError(moduleJobManager, fmt.Sprintf("failed to load job '%s'", jobID), err, false)
	}

	if job.ExternalID != nil {
		return exception.NewBatchError(moduleJobManager,
			fmt.Sprintf("job '%s' already submitted (external id '%s')", jobID, *job.ExternalID),
			ErrJob, false)
	}
	if job.Skipped {
		return exception.NewBatchError(moduleJobManager,
			fmt.Sprintf("job '%s' is skipped and cannot be submitted", jobID), ErrJob, false)
	}
	if !job.Status.IsSubmittable() {
		return exception.NewBatchError(moduleJobManager,
			fmt.Sprintf("job '%s' in status '%s' cannot be submitted", jobID, job.Status), ErrJob, false)
	}

	jobCfg, err := m.repo.FindJobConfigurationByID(ctx, job.JobConfigurationID)
	if err != nil {
		return exception.NewBatchError(moduleJobManager,
			fmt.Sprintf("failed to load job configuration '%s' for job '%s'", job.JobConfigurationID, jobID), err, false)
	}
	batch, err := m.repo.FindBatchByID(ctx, job.BatchID)
	if err != nil {
		return exception.NewBatchError(moduleJobManager,
			fmt.Sprintf("failed to load batch '%s' for job '%s'", job.BatchID, jobID), err, false)
	}

	result, submitErr := m.service.Submit(ctx, batch.BatchType, jobCfg.Data)
	if submitErr != nil {
		logger.Warnf("Submission of job '%s' (batch type '%s') failed: %v", jobID, batch.BatchType, submitErr)
		var req, resp model.Document
		if result != nil {
			req, resp = result.Request, result.Response
		}
		job.MarkSubmissionFailed(submitErr, req, resp)
		if updateErr := m.txMgr.WithinTx(ctx, func(txCtx context.Context) error {
			return m.repo.UpdateJob(txCtx, job)
		}); updateErr != nil {
			return exception.NewBatchError(moduleJobManager,
				fmt.Sprintf("failed to persist submission failure of job '%s'", jobID), updateErr, false)
		}
		m.recorder.RecordJobSubmission(ctx, batch.BatchType, metrics.OutcomeError)
		return exception.NewBatchError(moduleJobManager,
			fmt.Sprintf("submission of job '%s' failed", jobID),
			errors.Join(ErrJob, submitErr), exception.IsRetryable(submitErr))
	}

	if err := job.MarkSubmitted(result.ExternalID, result.Request, result.Response); err != nil {
		return exception.NewBatchError(moduleJobManager,
			fmt.Sprintf("submission result for job '%s' is unusable", jobID), errors.Join(ErrJob, err), false)
	}
	if err := m.txMgr.WithinTx(ctx, func(txCtx context.Context) error {
		return m.repo.UpdateJob(txCtx, job)
	}); err != nil {
		return exception.NewBatchError(moduleJobManager,
			fmt.Sprintf("failed to persist submission of job '%s'", jobID), err, false)
	}
	m.recorder.RecordJobSubmission(ctx, batch.BatchType, metrics.OutcomeSubmitted)
	logger.Infof("Job '%s' submitted (external id '%s').", jobID, result.ExternalID)
	return nil
}

// TrackJobStatus polls the external service for one job and persists the
// status change together with an append-only tracking-log record.
func (m *DefaultJobManager) TrackJobStatus(ctx context.Context, jobID string) (model.JobStatus, error) {
	job, err := m.repo.FindJobByID(ctx, jobID)
	if err != nil {
		return "", exception.NewBatchError(moduleJobManager, fmt.Sprintf("failed to load job '%s'", jobID), err, false)
	}
	if job.ExternalID == nil {
		return "", exception.NewBatchError(moduleJobManager,
			fmt.Sprintf("job '%s' has no external id and cannot be tracked", jobID), ErrJob, false)
	}

	poll, err := m.service.Poll(ctx, *job.ExternalID)
	if err != nil {
		return "", exception.NewBatchError(moduleJobManager,
			fmt.Sprintf("polling external id '%s' of job '%s' failed", *job.ExternalID, jobID),
			errors.Join(ErrJob, err), true)
	}

	changed := job.ApplyTrackedStatus(poll.Status)
	trackingLog := model.NewJobTrackingLog(job.ID, *job.ExternalID, poll.ReportedStatus, poll.Status)
	if err := m.txMgr.WithinTx(ctx, func(txCtx context.Context) error {
		if err := m.repo.AppendJobTrackingLog(txCtx, trackingLog); err != nil {
			return err
		}
		if changed {
			return m.repo.UpdateJob(txCtx, job)
		}
		return nil
	}); err != nil {
		return "", exception.NewBatchError(moduleJobManager,
			fmt.Sprintf("failed to persist tracked status of job '%s'", jobID), err, false)
	}
	m.recorder.RecordJobPoll(ctx, job.Status)
	if changed {
		logger.Debugf("Job '%s' moved to status '%s' (reported '%s').", jobID, job.Status, poll.ReportedStatus)
	}
	return job.Status, nil
}

// ResubmitJob retires a terminal job behind a replacement and submits the
// replacement. The replacement, original and optional override
// configuration are persisted in one transaction before the external call;
// a failed submission therefore leaves the replacement as the
// retry-eligible head of the lineage while the original stays skipped.
func (m *DefaultJobManager) ResubmitJob(ctx context.Context, jobID string, opts *ResubmitOptions) (string, error) {
	original, err := m.repo.FindJobByID(ctx, jobID)
	if err != nil {
		return "", exception.NewBatchError(moduleJobManager, fmt.Sprintf("failed to load job '%s'", jobID), err, false)
	}
	if !original.Status.IsTerminal() && original.Status != model.JobStatusError {
		return "", exception.NewBatchError(moduleJobManager,
			fmt.Sprintf("job '%s' in status '%s' is not eligible for resubmission", jobID, original.Status),
			ErrJob, false)
	}

	jobCfgID := original.JobConfigurationID
	var overrideCfg *model.JobConfiguration
	if opts != nil && opts.JobConfigurationData != nil {
		originalCfg, err := m.repo.FindJobConfigurationByID(ctx, original.JobConfigurationID)
		if err != nil {
			return "", exception.NewBatchError(moduleJobManager,
				fmt.Sprintf("failed to load job configuration '%s'", original.JobConfigurationID), err, false)
		}
		overrideCfg, err = model.NewOverrideJobConfiguration(originalCfg, opts.JobConfigurationData, opts.OverrideReason)
		if err != nil {
			return "", exception.NewBatchError(moduleJobManager,
				fmt.Sprintf("override of job configuration '%s' rejected", originalCfg.ID),
				errors.Join(ErrJob, err), false)
		}
		jobCfgID = overrideCfg.ID
	}

	replacement := model.NewResubmissionJob(original, jobCfgID)
	original.MarkSkipped()

	if err := m.txMgr.WithinTx(ctx, func(txCtx context.Context) error {
		if overrideCfg != nil {
			if err := m.repo.SaveJobConfiguration(txCtx, overrideCfg); err != nil {
				return err
			}
		}
		if err := m.repo.SaveJob(txCtx, replacement); err != nil {
			return err
		}
		return m.repo.UpdateJob(txCtx, original)
	}); err != nil {
		return "", exception.NewBatchError(moduleJobManager,
			fmt.Sprintf("failed to persist resubmission of job '%s'", jobID), err, false)
	}
	m.recorder.RecordJobSubmission(ctx, "", metrics.OutcomeResubmitted)
	logger.Infof("Job '%s' retired behind replacement '%s'.", jobID, replacement.ID)

	if err := m.SubmitJob(ctx, replacement.ID); err != nil {
		// The replacement is persisted in ERROR with a null external id and
		// stays eligible for the next submission pass.
		return replacement.ID, err
	}
	return replacement.ID, nil
}

// SkipJob excludes a job from reconciliation and submission. No other state
// changes.
func (m *DefaultJobManager) SkipJob(ctx context.Context, jobID string) error {
	job, err := m.repo.FindJobByID(ctx, jobID)
	if err != nil {
		return exception.NewBatchError(moduleJobManager, fmt.Sprintf("failed to load job '%s'", jobID), err, false)
	}
	if job.Skipped {
		return nil
	}
	job.MarkSkipped()
	if err := m.txMgr.WithinTx(ctx, func(txCtx context.Context) error {
		return m.repo.UpdateJob(txCtx, job)
	}); err != nil {
		return exception.NewBatchError(moduleJobManager,
			fmt.Sprintf("failed to persist skip of job '%s'", jobID), err, false)
	}
	m.recorder.RecordJobSubmission(ctx, "", metrics.OutcomeSkipped)
	return nil
}


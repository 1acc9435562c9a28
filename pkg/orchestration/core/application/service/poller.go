// Package service hosts the polling loop that drives the orchestration
// lifecycle: re-driving eligible jobs, tracking submitted ones, reconciling
// batch status and firing completion side effects.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	port "github.com/tigerroll/lineup/pkg/orchestration/core/application/port"
	usecase "github.com/tigerroll/lineup/pkg/orchestration/core/application/usecase"
	config "github.com/tigerroll/lineup/pkg/orchestration/core/config"
	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	repository "github.com/tigerroll/lineup/pkg/orchestration/core/domain/repository"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/logger"
)

const modulePoller = "poller"

// Poller advances every ACTIVE batch once per tick. It is the single writer
// of the orchestration state: re-drives eligible jobs, polls submitted ones,
// reconciles the batch and, on a terminal result, notifies, exports the
// audit trail and asks the step chain whether a successor should run.
type Poller struct {
	repo       repository.OrchestrationRepository
	batches    usecase.BatchManager
	jobs       usecase.JobManager
	reconciler usecase.Reconciler
	chain      usecase.StepChainController
	notifier   port.Notifier
	executor   port.WorkflowExecutor
	exporter   port.AuditTrailExporter
	interval   time.Duration
}

func NewPoller(
	repo repository.OrchestrationRepository,
	batches usecase.BatchManager,
	jobs usecase.JobManager,
	reconciler usecase.Reconciler,
	chain usecase.StepChainController,
	notifier port.Notifier,
	executor port.WorkflowExecutor,
	exporter port.AuditTrailExporter,
	cfg *config.Config,
) *Poller {
	interval := time.Duration(cfg.Lineup.Orchestrator.PollingIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Poller{
		repo:       repo,
		batches:    batches,
		jobs:       jobs,
		reconciler: reconciler,
		chain:      chain,
		notifier:   notifier,
		executor:   executor,
		exporter:   exporter,
		interval:   interval,
	}
}

// Run ticks until the context is cancelled. Tick failures are logged and do
// not stop the loop; the next tick retries from persisted state.
func (p *Poller) Run(ctx context.Context) {
	logger.Infof("Poller: starting with interval %v.", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Infof("Poller: context cancelled, stopping.")
			return
		case <-ticker.C:
			if err := p.Tick(ctx); err != nil {
				logger.Errorf("Poller: tick finished with errors: %v", err)
			}
		}
	}
}

// Tick processes every ACTIVE and ERROR batch once. ERROR batches stay in
// the polling set because their re-drivable jobs (ERROR, null external id)
// are only picked up by the next SubmitBatch pass; a successful re-drive
// reconciles the batch back to ACTIVE. Per-batch failures are aggregated so
// one broken batch never starves the others.
func (p *Poller) Tick(ctx context.Context) error {
	var pending []*model.Batch
	for _, status := range []model.BatchStatus{model.BatchStatusActive, model.BatchStatusError} {
		batches, err := p.repo.FindBatchesByStatus(ctx, status)
		if err != nil {
			return exception.NewBatchError(modulePoller,
				fmt.Sprintf("failed to list %s batches", status), err, true)
		}
		pending = append(pending, batches...)
	}
	logger.Debugf("Poller: processing %d batch(es).", len(pending))

	var failures *multierror.Error
	for _, batch := range pending {
		if err := p.processBatch(ctx, batch.ID, batch.Status); err != nil {
			failures = multierror.Append(failures, fmt.Errorf("batch '%s': %w", batch.ID, err))
		}
	}
	return failures.ErrorOrNil()
}

func (p *Poller) processBatch(ctx context.Context, batchID string, previous model.BatchStatus) error {
	var failures *multierror.Error

	// Re-drive: SubmitBatch is idempotent, already-submitted live jobs are
	// skipped and only INITIATED or re-drivable ERROR jobs produce calls.
	if summary, err := p.batches.SubmitBatch(ctx, batchID); err != nil {
		if errors.Is(err, usecase.ErrConfigurationNotReady) {
			// Cycle paused or configuration withdrawn: keep tracking what is
			// already in flight, just stop re-driving.
			logger.Debugf("Poller: batch '%s' not eligible for re-drive: %v", batchID, err)
		} else {
			failures = multierror.Append(failures, err)
		}
	} else if summary.Errors != nil {
		logger.Warnf("Poller: batch '%s' re-drive had failures (submitted=%d, resubmitted=%d, errored=%d): %v",
			batchID, summary.Submitted, summary.Resubmitted, summary.Errored, summary.Errors)
	}

	jobs, err := p.repo.FindJobsByBatchID(ctx, batchID)
	if err != nil {
		failures = multierror.Append(failures, err)
		return failures.ErrorOrNil()
	}
	for _, job := range jobs {
		if job.Skipped || job.ExternalID == nil || job.Status.IsTerminal() {
			continue
		}
		if _, err := p.jobs.TrackJobStatus(ctx, job.ID); err != nil {
			failures = multierror.Append(failures, err)
		}
	}

	status, err := p.reconciler.Recon(ctx, batchID)
	if err != nil {
		failures = multierror.Append(failures, err)
		return failures.ErrorOrNil()
	}
	// Side effects fire only on the tick that made the batch terminal; a
	// batch that entered the tick already terminal (an ERROR batch awaiting
	// re-drive) already had them.
	if status.IsTerminal() && status != previous {
		if err := p.onBatchTerminal(ctx, batchID); err != nil {
			failures = multierror.Append(failures, err)
		}
	}
	return failures.ErrorOrNil()
}

// onBatchTerminal fires the completion side effects. Notification and audit
// export failures are logged but never block chain advancement.
func (p *Poller) onBatchTerminal(ctx context.Context, batchID string) error {
	batch, err := p.repo.FindBatchByID(ctx, batchID)
	if err != nil {
		return exception.NewBatchError(modulePoller,
			fmt.Sprintf("failed to reload terminal batch '%s'", batchID), err, false)
	}

	p.notifier.NotifyBatchCompletion(ctx, batch)

	if err := p.exporter.ExportBatchAuditTrail(ctx, batchID); err != nil {
		logger.Errorf("Poller: audit export for batch '%s' failed: %v", batchID, err)
	}

	advance, err := p.chain.ShouldAdvance(ctx, batchID)
	if err != nil {
		return err
	}
	if !advance {
		return nil
	}
	next, err := p.chain.NextUnitOfWork(ctx, batchID)
	if err != nil {
		return err
	}
	logger.Infof("Poller: batch '%s' (%s, %s) advances chain to unit '%s'.", batchID, batch.BatchType, batch.Status, next)
	return p.executor.Execute(ctx, next)
}

// Package usecase implements the orchestration engine's application
// services: batch lifecycle management, job submission/tracking/
// resubmission, batch reconciliation and step-chain advancement decisions.
package usecase

import (
	"context"
	"errors"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
)

// Sentinel errors of the engine's error taxonomy. All are recoverable by
// the caller, never process-fatal. They are wrapped into
// exception.BatchError instances so errors.Is works across the call chain.
var (
	// ErrConfigurationNotReady indicates a precondition on Configuration or
	// Cycle state was not met.
	ErrConfigurationNotReady = errors.New("configuration not ready")
	// ErrBatch indicates a batch-level precondition or validation failure.
	ErrBatch = errors.New("batch error")
	// ErrJob indicates a submission failure, an invalid job state
	// transition, or an external API fault.
	ErrJob = errors.New("job error")
)

func init() {
	exception.RegisterErrorType("ErrConfigurationNotReady", ErrConfigurationNotReady)
	exception.RegisterErrorType("ErrBatch", ErrBatch)
	exception.RegisterErrorType("ErrJob", ErrJob)
}

// SubmissionSummary aggregates the outcome of one SubmitBatch call. Per-job
// failures never abort sibling processing; they are collected here for
// caller inspection instead of being raised.
type SubmissionSummary struct {
	BatchID     string
	Submitted   int
	Resubmitted int
	Skipped     int
	Errored     int
	// Errors aggregates the per-job failures (hashicorp multierror); nil
	// when every job went through cleanly.
	Errors error
}

// ResubmitOptions carries the optional override of a resubmission. When
// JobConfigurationData is set, OverrideReason is mandatory and a new
// overridden JobConfiguration is created; otherwise the original
// JobConfiguration is reused.
type ResubmitOptions struct {
	JobConfigurationData model.Document
	OverrideReason       string
}

// BatchManager owns the Batch entity lifecycle.
type BatchManager interface {
	// CreateBatch expands the configuration through the registered
	// transformer and atomically creates the Batch with one
	// JobConfiguration+Job pair per expanded document. Returns the batch
	// identity. An empty expansion is valid and produces a batch with zero
	// jobs.
	CreateBatch(ctx context.Context, batchType model.BatchType, configurationID string) (string, error)

	// ValidateBatch runs the batch-type-specific pre-flight check against
	// the external system. Returns human-readable error strings (empty
	// means valid) and mutates nothing.
	ValidateBatch(ctx context.Context, batchID string) ([]string, error)

	// SubmitBatch drives the submit-or-resubmit decision for every eligible
	// job of the batch, then marks the batch ACTIVE and its configuration
	// ACTIVE. Per-job failures are recorded in the summary, never raised.
	SubmitBatch(ctx context.Context, batchID string) (*SubmissionSummary, error)

	// ActivateBatch sets the batch ACTIVE without driving submission — the
	// escape hatch for interactive flows where a human already decided
	// which jobs to submit, skip or resubmit.
	ActivateBatch(ctx context.Context, batchID string) error
}

// JobManager owns the Job entity lifecycle.
type JobManager interface {
	// SubmitJob submits one job to the external processing service. A job
	// that already carries an external identifier is not resubmitted. On
	// failure the job goes to ERROR with a null external identifier and a
	// JobError is returned.
	SubmitJob(ctx context.Context, jobID string) error

	// TrackJobStatus polls the external service for the job's current
	// status, appends a tracking-log record and applies the status if it
	// changed. A job without an external identifier cannot be tracked.
	TrackJobStatus(ctx context.Context, jobID string) (model.JobStatus, error)

	// ResubmitJob creates a replacement job (and optionally an overridden
	// JobConfiguration) for a terminal job, retires the original via
	// skipped=true and submits the replacement. Returns the replacement's
	// identity; a submission failure is returned alongside it and the
	// replacement stays the retry-eligible head of the lineage.
	ResubmitJob(ctx context.Context, jobID string, opts *ResubmitOptions) (string, error)

	// SkipJob sets skipped=true without any other state change.
	SkipJob(ctx context.Context, jobID string) error
}

// Reconciler derives the aggregate batch status from the statuses of its
// non-skipped jobs.
type Reconciler interface {
	// Recon computes and writes the batch status and appends an audit
	// record regardless of whether the status changed. Pure
	// read-aggregate-write; it never submits, retries or mutates jobs.
	Recon(ctx context.Context, batchID string) (model.BatchStatus, error)
}

// StepChainController decides whether and which successor unit of work
// starts when a batch reaches a terminal status. Pure lookup/decision
// logic; execution belongs to the WorkflowExecutor port.
type StepChainController interface {
	// ShouldAdvance evaluates the static chain table against the batch's
	// current status.
	ShouldAdvance(ctx context.Context, batchID string) (bool, error)

	// NextUnitOfWork resolves the successor unit for the batch's workflow
	// stage.
	NextUnitOfWork(ctx context.Context, batchID string) (string, error)
}

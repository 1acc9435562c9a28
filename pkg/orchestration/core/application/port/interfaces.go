// Package port defines the boundary interfaces between the orchestration
// core and its external collaborators: the asynchronous processing service,
// the read-only existence checker, completion notification and the
// workflow executor that runs successor units of work.
package port

import (
	"context"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
)

// SubmissionResult carries the outcome of one submission call. On success
// ExternalID is the workflow identifier assigned by the external service.
// On failure implementations should still populate the request snapshot
// (and the error response payload when one exists) so the attempt can be
// persisted for audit; ExternalID must stay empty.
type SubmissionResult struct {
	ExternalID string
	Request    model.Document
	Response   model.Document
}

// PollResult carries the outcome of one status poll: the raw vendor status
// string and its mapping onto the job status domain.
type PollResult struct {
	ReportedStatus string
	Status         model.JobStatus
}

// ProcessingService models the external asynchronous processing service as
// an opaque submit/poll pair. The concrete endpoint, authentication and
// payload schema live in the infrastructure implementation.
type ProcessingService interface {
	// Submit submits one job configuration for the given batch type. A
	// transport or validation failure returns an error and no external
	// identifier is produced.
	Submit(ctx context.Context, batchType model.BatchType, jobConfiguration model.Document) (*SubmissionResult, error)

	// Poll fetches the current status of a previously submitted workflow.
	Poll(ctx context.Context, externalID string) (*PollResult, error)
}

// EntityExistenceChecker answers whether the remote resource corresponding
// to a job configuration already exists. It performs no writes. Used for
// pre-flight validation and for the idempotent submit-vs-resubmit decision.
type EntityExistenceChecker interface {
	Exists(ctx context.Context, jobConfiguration model.Document, batchType model.BatchType) (bool, error)
}

// Notifier is an abstract interface for notifying external systems about a
// batch reaching a terminal status. Delivery is a collaborator's concern.
type Notifier interface {
	NotifyBatchCompletion(ctx context.Context, batch *model.Batch)
}

// WorkflowExecutor runs a successor unit of work decided by the step-chain
// controller. The controller decides whether and what; the executor owns
// how.
type WorkflowExecutor interface {
	Execute(ctx context.Context, unitOfWork string) error
}

// AuditTrailExporter writes the tracking and reconciliation logs of one
// batch to external storage for operational reporting. Implementations
// must be safe to call repeatedly for the same batch.
type AuditTrailExporter interface {
	ExportBatchAuditTrail(ctx context.Context, batchID string) error
}

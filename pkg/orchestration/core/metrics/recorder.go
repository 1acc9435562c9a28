// Package metrics defines the metric recording port of the orchestration
// engine. Implementations live under infrastructure/metrics; the noop
// recorder keeps the engine runnable without a metrics backend.
package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
)

// Submission outcomes recorded per job submission attempt.
const (
	OutcomeSubmitted   = "submitted"
	OutcomeResubmitted = "resubmitted"
	OutcomeSkipped     = "skipped"
	OutcomeError       = "error"
)

// MetricRecorder records operational metrics of the orchestration engine.
type MetricRecorder interface {
	// RecordJobSubmission records one submission attempt and its outcome.
	RecordJobSubmission(ctx context.Context, batchType model.BatchType, outcome string)

	// RecordJobPoll records one status poll and the job status it produced.
	RecordJobPoll(ctx context.Context, status model.JobStatus)

	// RecordReconciliation records one reconciliation run: the resulting
	// batch status and how long the computation took.
	RecordReconciliation(ctx context.Context, batchType model.BatchType, status model.BatchStatus, duration time.Duration)
}

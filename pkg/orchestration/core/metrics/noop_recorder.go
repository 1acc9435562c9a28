package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
)

// NoopRecorder is a MetricRecorder that discards everything.
type NoopRecorder struct{}

// NewNoopRecorder creates a new NoopRecorder.
func NewNoopRecorder() *NoopRecorder {
	return &NoopRecorder{}
}

func (r *NoopRecorder) RecordJobSubmission(ctx context.Context, batchType model.BatchType, outcome string) {
}

func (r *NoopRecorder) RecordJobPoll(ctx context.Context, status model.JobStatus) {}

func (r *NoopRecorder) RecordReconciliation(ctx context.Context, batchType model.BatchType, status model.BatchStatus, duration time.Duration) {
}

var _ MetricRecorder = (*NoopRecorder)(nil)

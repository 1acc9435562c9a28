package repository

import (
	"context"
	"errors"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
)

// ErrJobNotFound is returned when a Job is not found.
var ErrJobNotFound = errors.New("job not found")

func init() {
	exception.RegisterErrorType("ErrJobNotFound", ErrJobNotFound)
}

// JobRepository defines persistence operations for Job entities. Jobs are
// never deleted; superseded jobs are marked skipped and retained for audit.
type JobRepository interface {
	// SaveJob persists a new Job.
	SaveJob(ctx context.Context, job *model.Job) error

	// UpdateJob updates the state of an existing Job.
	UpdateJob(ctx context.Context, job *model.Job) error

	// FindJobByID finds a Job by its ID.
	FindJobByID(ctx context.Context, id string) (*model.Job, error)

	// FindJobsByBatchID finds all Jobs of a Batch, skipped ones included,
	// ordered by creation time ascending.
	FindJobsByBatchID(ctx context.Context, batchID string) ([]*model.Job, error)

	// FindJobsByParentJobID finds the direct children of a Job in its
	// resubmission lineage.
	FindJobsByParentJobID(ctx context.Context, parentJobID string) ([]*model.Job, error)
}

package repository

import (
	"context"
	"errors"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
)

// ErrBatchNotFound is returned when a Batch is not found.
var ErrBatchNotFound = errors.New("batch not found")

func init() {
	exception.RegisterErrorType("ErrBatchNotFound", ErrBatchNotFound)
}

// BatchRepository defines persistence operations for Batch entities.
type BatchRepository interface {
	// SaveBatch persists a new Batch.
	SaveBatch(ctx context.Context, batch *model.Batch) error

	// UpdateBatch updates the state of an existing Batch.
	UpdateBatch(ctx context.Context, batch *model.Batch) error

	// FindBatchByID finds a Batch by its ID.
	FindBatchByID(ctx context.Context, id string) (*model.Batch, error)

	// FindBatchesByConfigurationID finds all Batches created from the
	// specified Configuration, ordered by creation time descending.
	FindBatchesByConfigurationID(ctx context.Context, configurationID string) ([]*model.Batch, error)

	// FindBatchesByStatus finds all Batches in the given status, ordered by
	// creation time ascending. Used by the polling loop to pick up ACTIVE
	// batches.
	FindBatchesByStatus(ctx context.Context, status model.BatchStatus) ([]*model.Batch, error)
}

package repository

import (
	"context"
	"errors"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
)

// ErrJobConfigurationNotFound is returned when a JobConfiguration is not
// found.
var ErrJobConfigurationNotFound = errors.New("job configuration not found")

func init() {
	exception.RegisterErrorType("ErrJobConfigurationNotFound", ErrJobConfigurationNotFound)
}

// JobConfigurationRepository defines persistence operations for
// JobConfiguration entities. JobConfigurations are immutable once created;
// there is no update operation.
type JobConfigurationRepository interface {
	// SaveJobConfiguration persists a new JobConfiguration.
	SaveJobConfiguration(ctx context.Context, jobConfiguration *model.JobConfiguration) error

	// FindJobConfigurationByID finds a JobConfiguration by its ID.
	FindJobConfigurationByID(ctx context.Context, id string) (*model.JobConfiguration, error)

	// FindJobConfigurationsByBatchID finds all JobConfigurations of a Batch,
	// ordered by creation time ascending.
	FindJobConfigurationsByBatchID(ctx context.Context, batchID string) ([]*model.JobConfiguration, error)
}

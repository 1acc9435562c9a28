package repository

import (
	"context"
	"errors"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
)

// ErrConfigurationNotFound is returned when a Configuration is not found.
var ErrConfigurationNotFound = errors.New("configuration not found")

func init() {
	exception.RegisterErrorType("ErrConfigurationNotFound", ErrConfigurationNotFound)
}

// ConfigurationRepository defines persistence operations for Configuration
// entities.
type ConfigurationRepository interface {
	// SaveConfiguration persists a new Configuration.
	SaveConfiguration(ctx context.Context, configuration *model.Configuration) error

	// UpdateConfiguration updates the status of an existing Configuration.
	// Content is frozen once a batch references the configuration; only the
	// engine-managed fields move.
	UpdateConfiguration(ctx context.Context, configuration *model.Configuration) error

	// FindConfigurationByID finds a Configuration by its ID.
	FindConfigurationByID(ctx context.Context, id string) (*model.Configuration, error)

	// FindConfigurationByCycleID finds the one Configuration of a Cycle.
	FindConfigurationByCycleID(ctx context.Context, cycleID string) (*model.Configuration, error)
}

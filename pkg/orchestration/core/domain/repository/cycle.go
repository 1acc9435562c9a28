package repository

import (
	"context"
	"errors"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
)

// ErrCycleNotFound is returned when a Cycle is not found.
var ErrCycleNotFound = errors.New("cycle not found")

func init() {
	exception.RegisterErrorType("ErrCycleNotFound", ErrCycleNotFound)
}

// CycleRepository defines persistence operations for Cycle entities.
type CycleRepository interface {
	// SaveCycle persists a new Cycle.
	SaveCycle(ctx context.Context, cycle *model.Cycle) error

	// UpdateCycle updates the state of an existing Cycle.
	UpdateCycle(ctx context.Context, cycle *model.Cycle) error

	// FindCycleByID finds a Cycle by its ID.
	FindCycleByID(ctx context.Context, id string) (*model.Cycle, error)
}

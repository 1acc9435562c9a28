package memory

import (
	"context"
	"fmt"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	repository "github.com/tigerroll/lineup/pkg/orchestration/core/domain/repository"
)

// SaveCycle persists a new Cycle. It returns an error if a Cycle with the
// same ID already exists.
func (r *InMemoryOrchestrationRepository) SaveCycle(ctx context.Context, cycle *model.Cycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cycles[cycle.ID]; exists {
		return fmt.Errorf("Cycle with ID %s already exists", cycle.ID)
	}
	cloned := *cycle
	r.cycles[cycle.ID] = &cloned
	return nil
}

// UpdateCycle updates an existing Cycle.
func (r *InMemoryOrchestrationRepository) UpdateCycle(ctx context.Context, cycle *model.Cycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cycles[cycle.ID]; !exists {
		return fmt.Errorf("Cycle with ID %s not found for update", cycle.ID)
	}
	cloned := *cycle
	r.cycles[cycle.ID] = &cloned
	return nil
}

// FindCycleByID finds a Cycle by its ID.
func (r *InMemoryOrchestrationRepository) FindCycleByID(ctx context.Context, id string) (*model.Cycle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cycle, ok := r.cycles[id]
	if !ok {
		return nil, repository.ErrCycleNotFound
	}
	// Clone to prevent external modification of internal state.
	cloned := *cycle
	return &cloned, nil
}

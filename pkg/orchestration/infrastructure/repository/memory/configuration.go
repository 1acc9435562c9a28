package memory

import (
	"context"
	"fmt"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	repository "github.com/tigerroll/lineup/pkg/orchestration/core/domain/repository"
)

// SaveConfiguration persists a new Configuration.
func (r *InMemoryOrchestrationRepository) SaveConfiguration(ctx context.Context, configuration *model.Configuration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configurations[configuration.ID]; exists {
		return fmt.Errorf("Configuration with ID %s already exists", configuration.ID)
	}
	cloned := *configuration
	cloned.Content = configuration.Content.Copy()
	r.configurations[configuration.ID] = &cloned
	return nil
}

// UpdateConfiguration updates an existing Configuration.
func (r *InMemoryOrchestrationRepository) UpdateConfiguration(ctx context.Context, configuration *model.Configuration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configurations[configuration.ID]; !exists {
		return fmt.Errorf("Configuration with ID %s not found for update", configuration.ID)
	}
	cloned := *configuration
	cloned.Content = configuration.Content.Copy()
	r.configurations[configuration.ID] = &cloned
	return nil
}

// FindConfigurationByID finds a Configuration by its ID.
func (r *InMemoryOrchestrationRepository) FindConfigurationByID(ctx context.Context, id string) (*model.Configuration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configurations[id]
	if !ok {
		return nil, repository.ErrConfigurationNotFound
	}
	cloned := *cfg
	cloned.Content = cfg.Content.Copy()
	return &cloned, nil
}

// FindConfigurationByCycleID finds the Configuration owned by a Cycle.
// Cycle and Configuration are one-to-one.
func (r *InMemoryOrchestrationRepository) FindConfigurationByCycleID(ctx context.Context, cycleID string) (*model.Configuration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, cfg := range r.configurations {
		if cfg.CycleID == cycleID {
			cloned := *cfg
			cloned.Content = cfg.Content.Copy()
			return &cloned, nil
		}
	}
	return nil, repository.ErrConfigurationNotFound
}

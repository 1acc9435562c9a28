// Package memory provides an in-memory OrchestrationRepository for tests
// and store-less operation. All entities are held in maps guarded by a
// single RWMutex; reads return clones so callers can never mutate internal
// state in place.
package memory

import (
	"sync"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	repository "github.com/tigerroll/lineup/pkg/orchestration/core/domain/repository"
	logger "github.com/tigerroll/lineup/pkg/orchestration/support/util/logger"
)

// InMemoryOrchestrationRepository implements
// repository.OrchestrationRepository over plain maps.
type InMemoryOrchestrationRepository struct {
	mu sync.RWMutex

	cycles             map[string]*model.Cycle
	configurations     map[string]*model.Configuration
	batches            map[string]*model.Batch
	jobConfigurations  map[string]*model.JobConfiguration
	jobs               map[string]*model.Job
	trackingLogs       []*model.JobTrackingLog
	reconciliationLogs []*model.BatchReconciliationLog
}

var _ repository.OrchestrationRepository = (*InMemoryOrchestrationRepository)(nil)

func NewInMemoryOrchestrationRepository() *InMemoryOrchestrationRepository {
	return &InMemoryOrchestrationRepository{
		cycles:            make(map[string]*model.Cycle),
		configurations:    make(map[string]*model.Configuration),
		batches:           make(map[string]*model.Batch),
		jobConfigurations: make(map[string]*model.JobConfiguration),
		jobs:              make(map[string]*model.Job),
	}
}

// Close discards all stored entities.
func (r *InMemoryOrchestrationRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cycles = make(map[string]*model.Cycle)
	r.configurations = make(map[string]*model.Configuration)
	r.batches = make(map[string]*model.Batch)
	r.jobConfigurations = make(map[string]*model.JobConfiguration)
	r.jobs = make(map[string]*model.Job)
	r.trackingLogs = nil
	r.reconciliationLogs = nil
	logger.Debugf("In-memory orchestration repository closed.")
	return nil
}

// Package repository defines the persistence interfaces of the
// orchestration engine. The transactional store is the single source of
// truth; implementations live under infrastructure/repository.
package repository

// OrchestrationRepository is the aggregate persistence interface for batch
// orchestration metadata. It embeds the per-entity repository interfaces to
// separate concerns.
type OrchestrationRepository interface {
	CycleRepository
	ConfigurationRepository
	BatchRepository
	JobConfigurationRepository
	JobRepository
	AuditLogRepository

	// Close releases resources (such as database connections) used by the
	// repository.
	Close() error
}

// Package sql implements the OrchestrationRepository over a relational
// store through GORM. Updates use optimistic version checks; repositories
// join an ambient transaction when the context carries one.
package sql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	repository "github.com/tigerroll/lineup/pkg/orchestration/core/domain/repository"
	tx "github.com/tigerroll/lineup/pkg/orchestration/core/tx"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
	logger "github.com/tigerroll/lineup/pkg/orchestration/support/util/logger"
)

const moduleSQLRepository = "sql_repository"

// ErrOptimisticLock indicates a version-checked update matched no row:
// another writer got there first (or the row is gone).
var ErrOptimisticLock = errors.New("optimistic lock failure")

func init() {
	exception.RegisterErrorType("ErrOptimisticLock", ErrOptimisticLock)
}

// SQLOrchestrationRepository implements repository.OrchestrationRepository.
type SQLOrchestrationRepository struct {
	db *gorm.DB
}

var _ repository.OrchestrationRepository = (*SQLOrchestrationRepository)(nil)

func NewSQLOrchestrationRepository(db *gorm.DB) *SQLOrchestrationRepository {
	return &SQLOrchestrationRepository{db: db}
}

// session returns the handle every query must run on: the transaction from
// the context when one is active, the bare connection otherwise.
func (r *SQLOrchestrationRepository) session(ctx context.Context) *gorm.DB {
	if handle, ok := tx.TxFromContext(ctx); ok {
		if gdb, ok := handle.(*gorm.DB); ok {
			return gdb.WithContext(ctx)
		}
		logger.Warnf("Context carries a non-GORM transaction handle (%T); falling back to the bare connection.", handle)
	}
	return r.db.WithContext(ctx)
}

// Close closes the underlying connection pool.
func (r *SQLOrchestrationRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return exception.NewBatchError(moduleSQLRepository, "failed to access underlying sql.DB", err, false)
	}
	return sqlDB.Close()
}

// create inserts one entity, wrapping the driver error.
func (r *SQLOrchestrationRepository) create(ctx context.Context, entity interface{}, desc string) error {
	if err := r.session(ctx).Create(entity).Error; err != nil {
		return exception.NewBatchError(moduleSQLRepository, fmt.Sprintf("failed to save %s", desc), err, true)
	}
	return nil
}

// updateVersioned performs an optimistic-locked full-row update: the WHERE
// clause pins the version read by the caller, and the stored version is
// bumped. versionPtr is rolled back on failure so the caller's domain
// object stays consistent with the store.
func (r *SQLOrchestrationRepository) updateVersioned(ctx context.Context, entity interface{}, id string, versionPtr *int, desc string) error {
	originalVersion := *versionPtr
	*versionPtr = originalVersion + 1

	result := r.session(ctx).Model(entity).
		Where("id = ? AND version = ?", id, originalVersion).
		Select("*").
		Updates(entity)
	if result.Error != nil {
		*versionPtr = originalVersion
		return exception.NewBatchError(moduleSQLRepository, fmt.Sprintf("failed to update %s", desc), result.Error, true)
	}
	if result.RowsAffected == 0 {
		*versionPtr = originalVersion
		return exception.NewBatchError(moduleSQLRepository,
			fmt.Sprintf("%s with version %d not found for update", desc, originalVersion), ErrOptimisticLock, false)
	}
	return nil
}

// --- Cycle ---

func (r *SQLOrchestrationRepository) SaveCycle(ctx context.Context, cycle *model.Cycle) error {
	return r.create(ctx, fromDomainCycle(cycle), fmt.Sprintf("Cycle (ID: %s)", cycle.ID))
}

func (r *SQLOrchestrationRepository) UpdateCycle(ctx context.Context, cycle *model.Cycle) error {
	entity := fromDomainCycle(cycle)
	entity.Version++
	if err := r.updateVersioned(ctx, entity, cycle.ID, &cycle.Version, fmt.Sprintf("Cycle (ID: %s)", cycle.ID)); err != nil {
		return err
	}
	return nil
}

func (r *SQLOrchestrationRepository) FindCycleByID(ctx context.Context, id string) (*model.Cycle, error) {
	var entity CycleEntity
	err := r.session(ctx).Where("id = ?", id).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrCycleNotFound
	}
	if err != nil {
		return nil, exception.NewBatchError(moduleSQLRepository, fmt.Sprintf("failed to find Cycle (ID: %s)", id), err, true)
	}
	return toDomainCycle(&entity), nil
}

// --- Configuration ---

func (r *SQLOrchestrationRepository) SaveConfiguration(ctx context.Context, configuration *model.Configuration) error {
	return r.create(ctx, fromDomainConfiguration(configuration), fmt.Sprintf("Configuration (ID: %s)", configuration.ID))
}

func (r *SQLOrchestrationRepository) UpdateConfiguration(ctx context.Context, configuration *model.Configuration) error {
	entity := fromDomainConfiguration(configuration)
	entity.Version++
	return r.updateVersioned(ctx, entity, configuration.ID, &configuration.Version, fmt.Sprintf("Configuration (ID: %s)", configuration.ID))
}

func (r *SQLOrchestrationRepository) FindConfigurationByID(ctx context.Context, id string) (*model.Configuration, error) {
	var entity ConfigurationEntity
	err := r.session(ctx).Where("id = ?", id).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrConfigurationNotFound
	}
	if err != nil {
		return nil, exception.NewBatchError(moduleSQLRepository, fmt.Sprintf("failed to find Configuration (ID: %s)", id), err, true)
	}
	return toDomainConfiguration(&entity), nil
}

func (r *SQLOrchestrationRepository) FindConfigurationByCycleID(ctx context.Context, cycleID string) (*model.Configuration, error) {
	var entity ConfigurationEntity
	err := r.session(ctx).Where("cycle_id = ?", cycleID).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrConfigurationNotFound
	}
	if err != nil {
		return nil, exception.NewBatchError(moduleSQLRepository, fmt.Sprintf("failed to find Configuration for Cycle (ID: %s)", cycleID), err, true)
	}
	return toDomainConfiguration(&entity), nil
}

// --- Batch ---

func (r *SQLOrchestrationRepository) SaveBatch(ctx context.Context, batch *model.Batch) error {
	return r.create(ctx, fromDomainBatch(batch), fmt.Sprintf("Batch (ID: %s)", batch.ID))
}

func (r *SQLOrchestrationRepository) UpdateBatch(ctx context.Context, batch *model.Batch) error {
	entity := fromDomainBatch(batch)
	entity.Version++
	return r.updateVersioned(ctx, entity, batch.ID, &batch.Version, fmt.Sprintf("Batch (ID: %s)", batch.ID))
}

func (r *SQLOrchestrationRepository) FindBatchByID(ctx context.Context, id string) (*model.Batch, error) {
	var entity BatchEntity
	err := r.session(ctx).Where("id = ?", id).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrBatchNotFound
	}
	if err != nil {
		return nil, exception.NewBatchError(moduleSQLRepository, fmt.Sprintf("failed to find Batch (ID: %s)", id), err, true)
	}
	return toDomainBatch(&entity), nil
}

func (r *SQLOrchestrationRepository) FindBatchesByConfigurationID(ctx context.Context, configurationID string) ([]*model.Batch, error) {
	var entities []BatchEntity
	err := r.session(ctx).Where("configuration_id = ?", configurationID).Order("create_time ASC, id ASC").Find(&entities).Error
	if err != nil {
		return nil, exception.NewBatchError(moduleSQLRepository,
			fmt.Sprintf("failed to find Batches for Configuration (ID: %s)", configurationID), err, true)
	}
	batches := make([]*model.Batch, 0, len(entities))
	for i := range entities {
		batches = append(batches, toDomainBatch(&entities[i]))
	}
	return batches, nil
}

func (r *SQLOrchestrationRepository) FindBatchesByStatus(ctx context.Context, status model.BatchStatus) ([]*model.Batch, error) {
	var entities []BatchEntity
	err := r.session(ctx).Where("status = ?", status).Order("create_time ASC, id ASC").Find(&entities).Error
	if err != nil {
		return nil, exception.NewBatchError(moduleSQLRepository,
			fmt.Sprintf("failed to find Batches in status '%s'", status), err, true)
	}
	batches := make([]*model.Batch, 0, len(entities))
	for i := range entities {
		batches = append(batches, toDomainBatch(&entities[i]))
	}
	return batches, nil
}

// --- JobConfiguration ---

func (r *SQLOrchestrationRepository) SaveJobConfiguration(ctx context.Context, jobConfiguration *model.JobConfiguration) error {
	if err := jobConfiguration.ValidateOverride(); err != nil {
		return exception.NewBatchError(moduleSQLRepository,
			fmt.Sprintf("JobConfiguration (ID: %s) violates the override invariant", jobConfiguration.ID), err, false)
	}
	return r.create(ctx, fromDomainJobConfiguration(jobConfiguration), fmt.Sprintf("JobConfiguration (ID: %s)", jobConfiguration.ID))
}

func (r *SQLOrchestrationRepository) FindJobConfigurationByID(ctx context.Context, id string) (*model.JobConfiguration, error) {
	var entity JobConfigurationEntity
	err := r.session(ctx).Where("id = ?", id).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrJobConfigurationNotFound
	}
	if err != nil {
		return nil, exception.NewBatchError(moduleSQLRepository, fmt.Sprintf("failed to find JobConfiguration (ID: %s)", id), err, true)
	}
	return toDomainJobConfiguration(&entity), nil
}

func (r *SQLOrchestrationRepository) FindJobConfigurationsByBatchID(ctx context.Context, batchID string) ([]*model.JobConfiguration, error) {
	var entities []JobConfigurationEntity
	err := r.session(ctx).Where("batch_id = ?", batchID).Order("create_time ASC, id ASC").Find(&entities).Error
	if err != nil {
		return nil, exception.NewBatchError(moduleSQLRepository,
			fmt.Sprintf("failed to find JobConfigurations for Batch (ID: %s)", batchID), err, true)
	}
	configs := make([]*model.JobConfiguration, 0, len(entities))
	for i := range entities {
		configs = append(configs, toDomainJobConfiguration(&entities[i]))
	}
	return configs, nil
}

// --- Job ---

func (r *SQLOrchestrationRepository) SaveJob(ctx context.Context, job *model.Job) error {
	return r.create(ctx, fromDomainJob(job), fmt.Sprintf("Job (ID: %s)", job.ID))
}

func (r *SQLOrchestrationRepository) UpdateJob(ctx context.Context, job *model.Job) error {
	entity := fromDomainJob(job)
	entity.Version++
	return r.updateVersioned(ctx, entity, job.ID, &job.Version, fmt.Sprintf("Job (ID: %s)", job.ID))
}

func (r *SQLOrchestrationRepository) FindJobByID(ctx context.Context, id string) (*model.Job, error) {
	var entity JobEntity
	err := r.session(ctx).Where("id = ?", id).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrJobNotFound
	}
	if err != nil {
		return nil, exception.NewBatchError(moduleSQLRepository, fmt.Sprintf("failed to find Job (ID: %s)", id), err, true)
	}
	return toDomainJob(&entity), nil
}

func (r *SQLOrchestrationRepository) FindJobsByBatchID(ctx context.Context, batchID string) ([]*model.Job, error) {
	var entities []JobEntity
	err := r.session(ctx).Where("batch_id = ?", batchID).Order("create_time ASC, id ASC").Find(&entities).Error
	if err != nil {
		return nil, exception.NewBatchError(moduleSQLRepository,
			fmt.Sprintf("failed to find Jobs for Batch (ID: %s)", batchID), err, true)
	}
	jobs := make([]*model.Job, 0, len(entities))
	for i := range entities {
		jobs = append(jobs, toDomainJob(&entities[i]))
	}
	return jobs, nil
}

func (r *SQLOrchestrationRepository) FindJobsByParentJobID(ctx context.Context, parentJobID string) ([]*model.Job, error) {
	var entities []JobEntity
	err := r.session(ctx).Where("parent_job_id = ?", parentJobID).Order("create_time ASC, id ASC").Find(&entities).Error
	if err != nil {
		return nil, exception.NewBatchError(moduleSQLRepository,
			fmt.Sprintf("failed to find Jobs for parent Job (ID: %s)", parentJobID), err, true)
	}
	jobs := make([]*model.Job, 0, len(entities))
	for i := range entities {
		jobs = append(jobs, toDomainJob(&entities[i]))
	}
	return jobs, nil
}

// --- Audit logs ---

func (r *SQLOrchestrationRepository) AppendJobTrackingLog(ctx context.Context, record *model.JobTrackingLog) error {
	return r.create(ctx, fromDomainJobTrackingLog(record), fmt.Sprintf("JobTrackingLog (ID: %s)", record.ID))
}

func (r *SQLOrchestrationRepository) FindJobTrackingLogsByJobID(ctx context.Context, jobID string) ([]*model.JobTrackingLog, error) {
	var entities []JobTrackingLogEntity
	err := r.session(ctx).Where("job_id = ?", jobID).Order("polled_at ASC, id ASC").Find(&entities).Error
	if err != nil {
		return nil, exception.NewBatchError(moduleSQLRepository,
			fmt.Sprintf("failed to find JobTrackingLogs for Job (ID: %s)", jobID), err, true)
	}
	records := make([]*model.JobTrackingLog, 0, len(entities))
	for i := range entities {
		records = append(records, toDomainJobTrackingLog(&entities[i]))
	}
	return records, nil
}

func (r *SQLOrchestrationRepository) AppendBatchReconciliationLog(ctx context.Context, record *model.BatchReconciliationLog) error {
	return r.create(ctx, fromDomainBatchReconciliationLog(record), fmt.Sprintf("BatchReconciliationLog (ID: %s)", record.ID))
}

func (r *SQLOrchestrationRepository) FindBatchReconciliationLogsByBatchID(ctx context.Context, batchID string) ([]*model.BatchReconciliationLog, error) {
	var entities []BatchReconciliationLogEntity
	err := r.session(ctx).Where("batch_id = ?", batchID).Order("reconciled_at ASC, id ASC").Find(&entities).Error
	if err != nil {
		return nil, exception.NewBatchError(moduleSQLRepository,
			fmt.Sprintf("failed to find BatchReconciliationLogs for Batch (ID: %s)", batchID), err, true)
	}
	records := make([]*model.BatchReconciliationLog, 0, len(entities))
	for i := range entities {
		records = append(records, toDomainBatchReconciliationLog(&entities[i]))
	}
	return records, nil
}

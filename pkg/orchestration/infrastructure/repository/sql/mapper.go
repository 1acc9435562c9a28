package sql

import (
	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
)

// --- Mapper functions ---

func fromDomainCycle(c *model.Cycle) *CycleEntity {
	if c == nil {
		return nil
	}
	return &CycleEntity{
		ID:          c.ID,
		Name:        c.Name,
		Status:      c.Status,
		CreateTime:  c.CreateTime,
		LastUpdated: c.LastUpdated,
		Version:     c.Version,
	}
}

func toDomainCycle(entity *CycleEntity) *model.Cycle {
	if entity == nil {
		return nil
	}
	return &model.Cycle{
		ID:          entity.ID,
		Name:        entity.Name,
		Status:      entity.Status,
		CreateTime:  entity.CreateTime,
		LastUpdated: entity.LastUpdated,
		Version:     entity.Version,
	}
}

func fromDomainConfiguration(c *model.Configuration) *ConfigurationEntity {
	if c == nil {
		return nil
	}
	return &ConfigurationEntity{
		ID:          c.ID,
		CycleID:     c.CycleID,
		Content:     c.Content,
		Status:      c.Status,
		CreateTime:  c.CreateTime,
		LastUpdated: c.LastUpdated,
		Version:     c.Version,
	}
}

func toDomainConfiguration(entity *ConfigurationEntity) *model.Configuration {
	if entity == nil {
		return nil
	}
	return &model.Configuration{
		ID:          entity.ID,
		CycleID:     entity.CycleID,
		Content:     entity.Content,
		Status:      entity.Status,
		CreateTime:  entity.CreateTime,
		LastUpdated: entity.LastUpdated,
		Version:     entity.Version,
	}
}

func fromDomainBatch(b *model.Batch) *BatchEntity {
	if b == nil {
		return nil
	}
	return &BatchEntity{
		ID:              b.ID,
		ConfigurationID: b.ConfigurationID,
		Name:            b.Name,
		BatchType:       b.BatchType,
		Status:          b.Status,
		SubmittedTime:   b.SubmittedTime,
		CompletedTime:   b.CompletedTime,
		CreateTime:      b.CreateTime,
		LastUpdated:     b.LastUpdated,
		Version:         b.Version,
	}
}

func toDomainBatch(entity *BatchEntity) *model.Batch {
	if entity == nil {
		return nil
	}
	return &model.Batch{
		ID:              entity.ID,
		ConfigurationID: entity.ConfigurationID,
		Name:            entity.Name,
		BatchType:       entity.BatchType,
		Status:          entity.Status,
		SubmittedTime:   entity.SubmittedTime,
		CompletedTime:   entity.CompletedTime,
		CreateTime:      entity.CreateTime,
		LastUpdated:     entity.LastUpdated,
		Version:         entity.Version,
	}
}

func fromDomainJobConfiguration(jc *model.JobConfiguration) *JobConfigurationEntity {
	if jc == nil {
		return nil
	}
	return &JobConfigurationEntity{
		ID:                       jc.ID,
		BatchID:                  jc.BatchID,
		Data:                     jc.Data,
		Overridden:               jc.Overridden,
		OverrideReason:           jc.OverrideReason,
		ParentJobConfigurationID: jc.ParentJobConfigurationID,
		CreateTime:               jc.CreateTime,
		Version:                  jc.Version,
	}
}

func toDomainJobConfiguration(entity *JobConfigurationEntity) *model.JobConfiguration {
	if entity == nil {
		return nil
	}
	return &model.JobConfiguration{
		ID:                       entity.ID,
		BatchID:                  entity.BatchID,
		Data:                     entity.Data,
		Overridden:               entity.Overridden,
		OverrideReason:           entity.OverrideReason,
		ParentJobConfigurationID: entity.ParentJobConfigurationID,
		CreateTime:               entity.CreateTime,
		Version:                  entity.Version,
	}
}

func fromDomainJob(j *model.Job) *JobEntity {
	if j == nil {
		return nil
	}
	return &JobEntity{
		ID:                 j.ID,
		BatchID:            j.BatchID,
		JobConfigurationID: j.JobConfigurationID,
		ExternalID:         j.ExternalID,
		Status:             j.Status,
		Skipped:            j.Skipped,
		LastError:          j.LastError,
		ParentJobID:        j.ParentJobID,
		SubmitRequest:      j.SubmitRequest,
		SubmitResponse:     j.SubmitResponse,
		SubmittedTime:      j.SubmittedTime,
		CreateTime:         j.CreateTime,
		LastUpdated:        j.LastUpdated,
		Version:            j.Version,
	}
}

func toDomainJob(entity *JobEntity) *model.Job {
	if entity == nil {
		return nil
	}
	return &model.Job{
		ID:                 entity.ID,
		BatchID:            entity.BatchID,
		JobConfigurationID: entity.JobConfigurationID,
		ExternalID:         entity.ExternalID,
		Status:             entity.Status,
		Skipped:            entity.Skipped,
		LastError:          entity.LastError,
		ParentJobID:        entity.ParentJobID,
		SubmitRequest:      entity.SubmitRequest,
		SubmitResponse:     entity.SubmitResponse,
		SubmittedTime:      entity.SubmittedTime,
		CreateTime:         entity.CreateTime,
		LastUpdated:        entity.LastUpdated,
		Version:            entity.Version,
	}
}

func fromDomainJobTrackingLog(rec *model.JobTrackingLog) *JobTrackingLogEntity {
	if rec == nil {
		return nil
	}
	return &JobTrackingLogEntity{
		ID:             rec.ID,
		JobID:          rec.JobID,
		ExternalID:     rec.ExternalID,
		ReportedStatus: rec.ReportedStatus,
		MappedStatus:   rec.MappedStatus,
		PolledAt:       rec.PolledAt,
	}
}

func toDomainJobTrackingLog(entity *JobTrackingLogEntity) *model.JobTrackingLog {
	if entity == nil {
		return nil
	}
	return &model.JobTrackingLog{
		ID:             entity.ID,
		JobID:          entity.JobID,
		ExternalID:     entity.ExternalID,
		ReportedStatus: entity.ReportedStatus,
		MappedStatus:   entity.MappedStatus,
		PolledAt:       entity.PolledAt,
	}
}

func fromDomainBatchReconciliationLog(rec *model.BatchReconciliationLog) *BatchReconciliationLogEntity {
	if rec == nil {
		return nil
	}
	return &BatchReconciliationLogEntity{
		ID:           rec.ID,
		BatchID:      rec.BatchID,
		Status:       rec.Status,
		JobCounts:    rec.JobCounts,
		ReconciledAt: rec.ReconciledAt,
	}
}

func toDomainBatchReconciliationLog(entity *BatchReconciliationLogEntity) *model.BatchReconciliationLog {
	if entity == nil {
		return nil
	}
	return &model.BatchReconciliationLog{
		ID:           entity.ID,
		BatchID:      entity.BatchID,
		Status:       entity.Status,
		JobCounts:    entity.JobCounts,
		ReconciledAt: entity.ReconciledAt,
	}
}

package sql

import (
	"time"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
)

// CycleEntity is a schema model used for persistence.
type CycleEntity struct {
	ID          string
	Name        string
	Status      model.CycleStatus
	CreateTime  time.Time
	LastUpdated time.Time
	Version     int
}

func (CycleEntity) TableName() string {
	return "lineup_cycle"
}

// ConfigurationEntity is a schema model used for persistence.
type ConfigurationEntity struct {
	ID          string
	CycleID     string
	Content     model.Document
	Status      model.ConfigurationStatus
	CreateTime  time.Time
	LastUpdated time.Time
	Version     int
}

func (ConfigurationEntity) TableName() string {
	return "lineup_configuration"
}

// BatchEntity is a schema model used for persistence.
type BatchEntity struct {
	ID              string
	ConfigurationID string
	Name            string
	BatchType       model.BatchType
	Status          model.BatchStatus
	SubmittedTime   *time.Time
	CompletedTime   *time.Time
	CreateTime      time.Time
	LastUpdated     time.Time
	Version         int
}

func (BatchEntity) TableName() string {
	return "lineup_batch"
}

// JobConfigurationEntity is a schema model used for persistence.
type JobConfigurationEntity struct {
	ID                       string
	BatchID                  string
	Data                     model.Document
	Overridden               bool
	OverrideReason           string
	ParentJobConfigurationID *string
	CreateTime               time.Time
	Version                  int
}

func (JobConfigurationEntity) TableName() string {
	return "lineup_job_configuration"
}

// JobEntity is a schema model used for persistence.
type JobEntity struct {
	ID                 string
	BatchID            string
	JobConfigurationID string
	ExternalID         *string
	Status             model.JobStatus
	Skipped            bool
	LastError          string
	ParentJobID        *string
	SubmitRequest      model.Document
	SubmitResponse     model.Document
	SubmittedTime      *time.Time
	CreateTime         time.Time
	LastUpdated        time.Time
	Version            int
}

func (JobEntity) TableName() string {
	return "lineup_job"
}

// JobTrackingLogEntity is a schema model used for persistence.
type JobTrackingLogEntity struct {
	ID             string
	JobID          string
	ExternalID     string
	ReportedStatus string
	MappedStatus   model.JobStatus
	PolledAt       time.Time
}

func (JobTrackingLogEntity) TableName() string {
	return "lineup_job_tracking_log"
}

// BatchReconciliationLogEntity is a schema model used for persistence.
type BatchReconciliationLogEntity struct {
	ID           string
	BatchID      string
	Status       model.BatchStatus
	JobCounts    model.StatusCounts
	ReconciledAt time.Time
}

func (BatchReconciliationLogEntity) TableName() string {
	return "lineup_batch_reconciliation_log"
}

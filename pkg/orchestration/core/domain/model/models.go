// Package model defines the domain entities of the Lineup orchestration
// engine: Cycle, Configuration, Batch, JobConfiguration, Job and the
// append-only tracking/reconciliation log records, together with their
// status state machines.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
	logger "github.com/tigerroll/lineup/pkg/orchestration/support/util/logger"
)

// NewID generates a new UUID string.
func NewID() string {
	return uuid.New().String()
}

// Cycle is one top-level workflow run. Exactly one Configuration belongs to
// a Cycle.
type Cycle struct {
	ID          string
	Name        string
	Status      CycleStatus
	CreateTime  time.Time
	LastUpdated time.Time
	Version     int
}

// NewCycle creates a new Cycle in PLANNED state.
func NewCycle(name string) *Cycle {
	now := time.Now()
	return &Cycle{
		ID:          NewID(),
		Name:        name,
		Status:      CycleStatusPlanned,
		CreateTime:  now,
		LastUpdated: now,
		Version:     0,
	}
}

// Activate moves the cycle to ACTIVE.
func (c *Cycle) Activate() {
	c.Status = CycleStatusActive
	c.LastUpdated = time.Now()
}

// Close moves the cycle to CLOSED.
func (c *Cycle) Close() {
	c.Status = CycleStatusClosed
	c.LastUpdated = time.Now()
}

// Configuration is the immutable, validated input document of one Cycle.
// Once a Batch references it, its content is frozen; the engine only ever
// moves its status.
type Configuration struct {
	ID          string
	CycleID     string
	Content     Document
	Status      ConfigurationStatus
	CreateTime  time.Time
	LastUpdated time.Time
	Version     int
}

// NewConfiguration creates a new Configuration in NEW state.
func NewConfiguration(cycleID string, content Document) *Configuration {
	now := time.Now()
	return &Configuration{
		ID:          NewID(),
		CycleID:     cycleID,
		Content:     content,
		Status:      ConfigurationStatusNew,
		CreateTime:  now,
		LastUpdated: now,
		Version:     0,
	}
}

// MarkValid moves the configuration to VALID.
func (c *Configuration) MarkValid() {
	c.Status = ConfigurationStatusValid
	c.LastUpdated = time.Now()
}

// MarkActive moves the configuration to ACTIVE. Set when a batch built from
// this configuration is submitted.
func (c *Configuration) MarkActive() {
	c.Status = ConfigurationStatusActive
	c.LastUpdated = time.Now()
}

// MarkError moves the configuration to ERROR.
func (c *Configuration) MarkError() {
	c.Status = ConfigurationStatusError
	c.LastUpdated = time.Now()
}

// Batch is a named collection of jobs sharing one batch type, submitted and
// reconciled together.
type Batch struct {
	ID              string
	ConfigurationID string
	Name            string
	BatchType       BatchType
	Status          BatchStatus
	SubmittedTime   *time.Time
	CompletedTime   *time.Time
	CreateTime      time.Time
	LastUpdated     time.Time
	Version         int
}

// NewBatch creates a new Batch in INITIATED state.
func NewBatch(configurationID string, batchType BatchType, name string) *Batch {
	now := time.Now()
	return &Batch{
		ID:              NewID(),
		ConfigurationID: configurationID,
		Name:            name,
		BatchType:       batchType,
		Status:          BatchStatusInitiated,
		CreateTime:      now,
		LastUpdated:     now,
		Version:         0,
	}
}

// TransitionTo moves the batch through its non-reconciliation state
// machine. Only INITIATED→ACTIVE is legal here; terminal statuses are the
// reconciliation engine's alone.
func (b *Batch) TransitionTo(next BatchStatus) error {
	if !isValidBatchTransition(b.Status, next) {
		return fmt.Errorf("Batch (ID: %s): invalid state transition: %s -> %s", b.ID, b.Status, next)
	}
	b.Status = next
	b.LastUpdated = time.Now()
	return nil
}

// MarkSubmitted moves the batch to ACTIVE and stamps the submission time.
func (b *Batch) MarkSubmitted() {
	if err := b.TransitionTo(BatchStatusActive); err != nil {
		logger.Warnf("Could not update Batch (ID: %s) status to ACTIVE: %v", b.ID, err)
		b.Status = BatchStatusActive
	}
	now := time.Now()
	b.SubmittedTime = &now
	b.LastUpdated = now
}

// ApplyReconciliation overwrites the batch status with a reconciliation
// result. The overwrite is idempotent; a terminal result stamps the
// completion time, a non-terminal result clears it (a resubmission can
// legitimately re-activate a batch that had gone ERROR).
func (b *Batch) ApplyReconciliation(status BatchStatus) {
	now := time.Now()
	if status.IsTerminal() {
		if b.CompletedTime == nil || b.Status != status {
			b.CompletedTime = &now
		}
	} else {
		b.CompletedTime = nil
	}
	b.Status = status
	b.LastUpdated = now
}

// JobConfiguration is the immutable-once-created parameter document of one
// job. An override supersedes a prior JobConfiguration and records why.
type JobConfiguration struct {
	ID                       string
	BatchID                  string
	Data                     Document
	Overridden               bool
	OverrideReason           string
	ParentJobConfigurationID *string
	CreateTime               time.Time
	Version                  int
}

// NewJobConfiguration creates a new JobConfiguration.
func NewJobConfiguration(batchID string, data Document) *JobConfiguration {
	return &JobConfiguration{
		ID:         NewID(),
		BatchID:    batchID,
		Data:       data,
		CreateTime: time.Now(),
		Version:    0,
	}
}

// NewOverrideJobConfiguration creates a JobConfiguration that supersedes
// parent. The override reason is mandatory.
func NewOverrideJobConfiguration(parent *JobConfiguration, data Document, reason string) (*JobConfiguration, error) {
	if reason == "" {
		return nil, exception.NewBatchErrorf("job_configuration", "override of JobConfiguration (ID: %s) requires a non-empty override reason", parent.ID)
	}
	parentID := parent.ID
	jc := NewJobConfiguration(parent.BatchID, data)
	jc.Overridden = true
	jc.OverrideReason = reason
	jc.ParentJobConfigurationID = &parentID
	return jc, nil
}

// ValidateOverride checks the override provenance invariant: an overridden
// JobConfiguration carries a non-empty reason and a parent pointer.
func (jc *JobConfiguration) ValidateOverride() error {
	if !jc.Overridden {
		return nil
	}
	if jc.OverrideReason == "" {
		return fmt.Errorf("JobConfiguration (ID: %s): overridden without an override reason", jc.ID)
	}
	if jc.ParentJobConfigurationID == nil {
		return fmt.Errorf("JobConfiguration (ID: %s): overridden without a parent job configuration", jc.ID)
	}
	return nil
}

// Job is the unit of work submitted to the external processing service and
// the unit of retry. Jobs are never deleted; superseded jobs are marked
// skipped and retained for audit.
type Job struct {
	ID                 string
	BatchID            string
	JobConfigurationID string
	// ExternalID is the workflow identifier assigned by the external
	// service. nil means the job never successfully reached the service,
	// which is exactly what keeps it eligible for automatic re-drive.
	ExternalID     *string
	Status         JobStatus
	Skipped        bool
	LastError      string
	ParentJobID    *string
	SubmitRequest  Document
	SubmitResponse Document
	SubmittedTime  *time.Time
	CreateTime     time.Time
	LastUpdated    time.Time
	Version        int
}

// NewJob creates a new Job in INITIATED state.
func NewJob(batchID, jobConfigurationID string) *Job {
	now := time.Now()
	return &Job{
		ID:                 NewID(),
		BatchID:            batchID,
		JobConfigurationID: jobConfigurationID,
		Status:             JobStatusInitiated,
		CreateTime:         now,
		LastUpdated:        now,
		Version:            0,
	}
}

// NewResubmissionJob creates the replacement job of a resubmission: a fresh
// INITIATED job pointing back at the original through ParentJobID.
func NewResubmissionJob(original *Job, jobConfigurationID string) *Job {
	parentID := original.ID
	job := NewJob(original.BatchID, jobConfigurationID)
	job.ParentJobID = &parentID
	return job
}

// TransitionTo safely transitions the job status.
func (j *Job) TransitionTo(next JobStatus) error {
	if !isValidJobTransition(j.Status, next) {
		return fmt.Errorf("Job (ID: %s): invalid state transition: %s -> %s", j.ID, j.Status, next)
	}
	j.Status = next
	j.LastUpdated = time.Now()
	return nil
}

// MarkSubmitted records a successful submission: the external identifier,
// the raw request/response snapshots and the SUBMITTED status.
func (j *Job) MarkSubmitted(externalID string, request, response Document) error {
	if externalID == "" {
		return fmt.Errorf("Job (ID: %s): successful submission must carry an external identifier", j.ID)
	}
	if err := j.TransitionTo(JobStatusSubmitted); err != nil {
		return err
	}
	now := time.Now()
	j.ExternalID = &externalID
	j.SubmitRequest = request
	j.SubmitResponse = response
	j.SubmittedTime = &now
	j.LastError = ""
	j.LastUpdated = now
	return nil
}

// MarkSubmissionFailed records a failed submission. The job goes to ERROR
// and the external identifier stays nil: a job that never reached the
// external service must remain visible to the retry logic.
func (j *Job) MarkSubmissionFailed(cause error, request, response Document) {
	if err := j.TransitionTo(JobStatusError); err != nil {
		logger.Warnf("Could not update Job (ID: %s) status to ERROR: %v", j.ID, err)
		j.Status = JobStatusError
	}
	j.SubmitRequest = request
	j.SubmitResponse = response
	j.LastError = exception.ExtractErrorMessage(cause)
	j.LastUpdated = time.Now()
}

// ApplyTrackedStatus applies a status reported by the external service.
// It returns true if the job changed. A backwards or otherwise invalid
// report is ignored (the poll is recorded in the tracking log regardless).
func (j *Job) ApplyTrackedStatus(reported JobStatus) bool {
	if reported == j.Status {
		return false
	}
	if err := j.TransitionTo(reported); err != nil {
		logger.Warnf("Ignoring reported status for Job (ID: %s): %v", j.ID, err)
		return false
	}
	return true
}

// MarkSkipped removes the job from reconciliation consideration without
// deleting it.
func (j *Job) MarkSkipped() {
	j.Skipped = true
	j.LastUpdated = time.Now()
}

// IsSubmittable reports whether this job row is eligible for (re)submission:
// a submittable status, not skipped, and no external identifier (work that
// actually reached the service is never re-driven in place).
func (j *Job) IsSubmittable() bool {
	return !j.Skipped && j.Status.IsSubmittable() && j.ExternalID == nil
}

// JobTrackingLog is one append-only record per status poll.
type JobTrackingLog struct {
	ID             string
	JobID          string
	ExternalID     string
	ReportedStatus string
	MappedStatus   JobStatus
	PolledAt       time.Time
}

// NewJobTrackingLog creates a tracking log record for one poll result.
func NewJobTrackingLog(jobID, externalID, reportedStatus string, mapped JobStatus) *JobTrackingLog {
	return &JobTrackingLog{
		ID:             NewID(),
		JobID:          jobID,
		ExternalID:     externalID,
		ReportedStatus: reportedStatus,
		MappedStatus:   mapped,
		PolledAt:       time.Now(),
	}
}

// BatchReconciliationLog is one append-only record per reconciliation run.
// Reconciliation is intentionally not deduplicated in its audit trail.
type BatchReconciliationLog struct {
	ID           string
	BatchID      string
	Status       BatchStatus
	JobCounts    StatusCounts
	ReconciledAt time.Time
}

// NewBatchReconciliationLog creates a reconciliation audit record.
func NewBatchReconciliationLog(batchID string, status BatchStatus, counts StatusCounts) *BatchReconciliationLog {
	return &BatchReconciliationLog{
		ID:           NewID(),
		BatchID:      batchID,
		Status:       status,
		JobCounts:    counts,
		ReconciledAt: time.Now(),
	}
}

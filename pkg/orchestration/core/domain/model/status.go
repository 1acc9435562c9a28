package model

// CycleStatus represents the state of a workflow cycle.
type CycleStatus string

const (
	CycleStatusPlanned CycleStatus = "PLANNED"
	CycleStatusActive  CycleStatus = "ACTIVE"
	CycleStatusClosed  CycleStatus = "CLOSED"
)

// String returns the string representation of the CycleStatus.
func (s CycleStatus) String() string {
	return string(s)
}

// ConfigurationStatus represents the state of a configuration document.
type ConfigurationStatus string

const (
	ConfigurationStatusNew    ConfigurationStatus = "NEW"
	ConfigurationStatusValid  ConfigurationStatus = "VALID"
	ConfigurationStatusActive ConfigurationStatus = "ACTIVE"
	ConfigurationStatusError  ConfigurationStatus = "ERROR"
)

// String returns the string representation of the ConfigurationStatus.
func (s ConfigurationStatus) String() string {
	return string(s)
}

// CanProduceBatches reports whether batches may be created from a
// configuration in this state. Only validated configurations produce
// batches.
func (s ConfigurationStatus) CanProduceBatches() bool {
	return s == ConfigurationStatusValid || s == ConfigurationStatusActive
}

// BatchType identifies the transformer/validator pair used to expand a
// configuration into per-job configurations.
type BatchType string

// String returns the string representation of the BatchType.
func (t BatchType) String() string {
	return string(t)
}

// BatchStatus represents the aggregate state of a batch.
type BatchStatus string

const (
	BatchStatusInitiated BatchStatus = "INITIATED"
	BatchStatusActive    BatchStatus = "ACTIVE"
	BatchStatusCompleted BatchStatus = "COMPLETED"
	BatchStatusFailed    BatchStatus = "FAILED"
	BatchStatusCancelled BatchStatus = "CANCELLED"
	BatchStatusError     BatchStatus = "ERROR"
)

// String returns the string representation of the BatchStatus.
func (s BatchStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the batch status is terminal. Terminal batch
// statuses are written exclusively by the reconciliation engine.
func (s BatchStatus) IsTerminal() bool {
	switch s {
	case BatchStatusCompleted, BatchStatusFailed, BatchStatusCancelled, BatchStatusError:
		return true
	default:
		return false
	}
}

// JobStatus represents the state of a single job.
type JobStatus string

const (
	JobStatusInitiated       JobStatus = "INITIATED"
	JobStatusSubmitted       JobStatus = "SUBMITTED"
	JobStatusQueued          JobStatus = "QUEUED"
	JobStatusPending         JobStatus = "PENDING"
	JobStatusRunning         JobStatus = "RUNNING"
	JobStatusFinished        JobStatus = "FINISHED"
	JobStatusFailed          JobStatus = "FAILED"
	JobStatusCancelRequested JobStatus = "CANCEL_REQUESTED"
	JobStatusCancelling      JobStatus = "CANCELLING"
	JobStatusCancelled       JobStatus = "CANCELLED"
	JobStatusError           JobStatus = "ERROR"
)

// String returns the string representation of the JobStatus.
func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the job status is terminal. No automatic
// transition leaves a terminal status; ERROR is the one exception, which
// re-enters SUBMITTED when the never-delivered submission is re-driven.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusFinished, JobStatusFailed, JobStatusCancelled, JobStatusError:
		return true
	default:
		return false
	}
}

// IsSubmittable reports whether a job in this status is eligible for
// (re)submission: never submitted, or submitted and failed for any reason.
func (s JobStatus) IsSubmittable() bool {
	switch s {
	case JobStatusInitiated, JobStatusFailed, JobStatusError:
		return true
	default:
		return false
	}
}

// jobStatusRank orders the forward progression of job statuses. Transitions
// observed through polling may pass intermediate states quickly but may
// never move backwards.
var jobStatusRank = map[JobStatus]int{
	JobStatusInitiated:       0,
	JobStatusSubmitted:       1,
	JobStatusQueued:          2,
	JobStatusPending:         3,
	JobStatusRunning:         4,
	JobStatusCancelRequested: 5,
	JobStatusCancelling:      6,
}

// isValidJobTransition checks whether a job status transition is legal.
func isValidJobTransition(current, next JobStatus) bool {
	if current == next {
		return false
	}
	switch current {
	case JobStatusInitiated:
		// Only submission moves a job out of INITIATED: success or failure.
		return next == JobStatusSubmitted || next == JobStatusError
	case JobStatusSubmitted, JobStatusQueued, JobStatusPending, JobStatusRunning:
		if next == JobStatusFinished || next == JobStatusFailed || next == JobStatusCancelled {
			return true
		}
		currentRank, ok := jobStatusRank[current]
		nextRank, nextOK := jobStatusRank[next]
		return ok && nextOK && nextRank > currentRank
	case JobStatusCancelRequested:
		// Cancellation may race completion on the external side.
		return next == JobStatusCancelling || next == JobStatusCancelled ||
			next == JobStatusFinished || next == JobStatusFailed
	case JobStatusCancelling:
		return next == JobStatusCancelled || next == JobStatusFailed
	case JobStatusError:
		// A submission that never reached the external service may be re-driven.
		return next == JobStatusSubmitted
	default:
		// FINISHED, FAILED, CANCELLED: no way out.
		return false
	}
}

// isValidBatchTransition checks whether a batch status transition is legal
// outside of reconciliation. Reconciliation overwrites the batch status
// idempotently and does not go through this check.
func isValidBatchTransition(current, next BatchStatus) bool {
	switch current {
	case BatchStatusInitiated:
		return next == BatchStatusActive
	default:
		return false
	}
}

package usecase_test

import (
	"context"
	"errors"
	"testing"

	usecase "github.com/tigerroll/lineup/pkg/orchestration/core/application/usecase"
	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	transform "github.com/tigerroll/lineup/pkg/orchestration/core/transform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedSubmittedJob creates a one-job batch and submits it, returning the
// submitted job.
func seedSubmittedJob(t *testing.T, f *fixture) (string, *model.Job) {
	t.Helper()
	ctx := context.Background()
	cfg := f.seedConfiguration(t, multiJobContent("unit-a"))
	batchID, err := f.batches.CreateBatch(ctx, transform.BatchTypeMultiJob, cfg.ID)
	require.NoError(t, err)
	job := f.jobByName(t, batchID, "unit-a")
	require.NoError(t, f.jobs.SubmitJob(ctx, job.ID))
	job, err = f.repo.FindJobByID(ctx, job.ID)
	require.NoError(t, err)
	return batchID, job
}

func TestSubmitJob_Guards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Already submitted.
	_, job := seedSubmittedJob(t, f)
	err := f.jobs.SubmitJob(ctx, job.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrJob))

	// Skipped.
	cfg := f.seedConfiguration(t, multiJobContent("unit-b"))
	batchID, err := f.batches.CreateBatch(ctx, transform.BatchTypeMultiJob, cfg.ID)
	require.NoError(t, err)
	skipped := f.jobByName(t, batchID, "unit-b")
	require.NoError(t, f.jobs.SkipJob(ctx, skipped.ID))
	err = f.jobs.SubmitJob(ctx, skipped.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrJob))

	// Unknown job.
	err = f.jobs.SubmitJob(ctx, "missing")
	assert.Error(t, err)
}

func TestSubmitJob_PersistsFailureSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cfg := f.seedConfiguration(t, multiJobContent("unit-a"))
	batchID, err := f.batches.CreateBatch(ctx, transform.BatchTypeMultiJob, cfg.ID)
	require.NoError(t, err)
	job := f.jobByName(t, batchID, "unit-a")

	f.service.failSubmitOf["unit-a"] = errors.New("boom")
	err = f.jobs.SubmitJob(ctx, job.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrJob))

	stored, err := f.repo.FindJobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusError, stored.Status)
	assert.Nil(t, stored.ExternalID)
	assert.NotNil(t, stored.SubmitRequest)
	assert.NotNil(t, stored.SubmitResponse)
	assert.Contains(t, stored.LastError, "boom")
}

func TestTrackJobStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, job := seedSubmittedJob(t, f)
	externalID := *job.ExternalID

	f.service.setPollStatus(externalID, model.JobStatusRunning)
	status, err := f.jobs.TrackJobStatus(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusRunning, status)

	// A backwards report is ignored for the job but still logged.
	f.service.setPollStatus(externalID, model.JobStatusQueued)
	status, err = f.jobs.TrackJobStatus(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusRunning, status)

	f.service.setPollStatus(externalID, model.JobStatusFinished)
	status, err = f.jobs.TrackJobStatus(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFinished, status)

	// One tracking record per poll, regardless of whether the job moved.
	logs, err := f.repo.FindJobTrackingLogsByJobID(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, model.JobStatusRunning, logs[0].MappedStatus)
	assert.Equal(t, model.JobStatusQueued, logs[1].MappedStatus)
	assert.Equal(t, model.JobStatusFinished, logs[2].MappedStatus)
	for _, l := range logs {
		assert.Equal(t, externalID, l.ExternalID)
	}
}

func TestTrackJobStatus_RequiresExternalID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cfg := f.seedConfiguration(t, multiJobContent("unit-a"))
	batchID, err := f.batches.CreateBatch(ctx, transform.BatchTypeMultiJob, cfg.ID)
	require.NoError(t, err)
	job := f.jobByName(t, batchID, "unit-a")

	_, err = f.jobs.TrackJobStatus(ctx, job.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrJob))
}

func TestResubmitJob_Eligibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, job := seedSubmittedJob(t, f)

	// A live job is not resubmittable.
	_, err := f.jobs.ResubmitJob(ctx, job.ID, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrJob))
}

func TestResubmitJob_Lineage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, job := seedSubmittedJob(t, f)

	f.service.setPollStatus(*job.ExternalID, model.JobStatusFailed)
	_, err := f.jobs.TrackJobStatus(ctx, job.ID)
	require.NoError(t, err)

	replacementID, err := f.jobs.ResubmitJob(ctx, job.ID, nil)
	require.NoError(t, err)

	original, err := f.repo.FindJobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, original.Skipped)
	assert.Equal(t, model.JobStatusFailed, original.Status)

	replacement, err := f.repo.FindJobByID(ctx, replacementID)
	require.NoError(t, err)
	require.NotNil(t, replacement.ParentJobID)
	assert.Equal(t, job.ID, *replacement.ParentJobID)
	assert.Equal(t, job.JobConfigurationID, replacement.JobConfigurationID)
	assert.Equal(t, model.JobStatusSubmitted, replacement.Status)
	require.NotNil(t, replacement.ExternalID)
	assert.NotEqual(t, *job.ExternalID, *replacement.ExternalID)

	children, err := f.repo.FindJobsByParentJobID(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, replacementID, children[0].ID)
}

func TestResubmitJob_WithOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, job := seedSubmittedJob(t, f)

	f.service.setPollStatus(*job.ExternalID, model.JobStatusFailed)
	_, err := f.jobs.TrackJobStatus(ctx, job.ID)
	require.NoError(t, err)

	// An override without a reason is rejected before anything persists.
	_, err = f.jobs.ResubmitJob(ctx, job.ID, &usecase.ResubmitOptions{
		JobConfigurationData: model.Document{"name": "unit-a", "retries": 3},
	})
	require.Error(t, err)

	replacementID, err := f.jobs.ResubmitJob(ctx, job.ID, &usecase.ResubmitOptions{
		JobConfigurationData: model.Document{"name": "unit-a", "retries": 3},
		OverrideReason:       "bump retry budget",
	})
	require.NoError(t, err)

	replacement, err := f.repo.FindJobByID(ctx, replacementID)
	require.NoError(t, err)
	assert.NotEqual(t, job.JobConfigurationID, replacement.JobConfigurationID)

	overrideCfg, err := f.repo.FindJobConfigurationByID(ctx, replacement.JobConfigurationID)
	require.NoError(t, err)
	assert.True(t, overrideCfg.Overridden)
	assert.Equal(t, "bump retry budget", overrideCfg.OverrideReason)
	require.NotNil(t, overrideCfg.ParentJobConfigurationID)
	assert.Equal(t, job.JobConfigurationID, *overrideCfg.ParentJobConfigurationID)
}

func TestResubmitJob_SubmissionFailureKeepsReplacement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, job := seedSubmittedJob(t, f)

	f.service.setPollStatus(*job.ExternalID, model.JobStatusFailed)
	_, err := f.jobs.TrackJobStatus(ctx, job.ID)
	require.NoError(t, err)

	// The resubmission itself fails at the external service: the
	// replacement must survive as the retry-eligible head of the lineage.
	f.service.failSubmitOf["unit-a"] = errors.New("still down")
	replacementID, err := f.jobs.ResubmitJob(ctx, job.ID, nil)
	require.Error(t, err)
	require.NotEmpty(t, replacementID)

	replacement, err := f.repo.FindJobByID(ctx, replacementID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusError, replacement.Status)
	assert.Nil(t, replacement.ExternalID)
	assert.True(t, replacement.IsSubmittable())

	original, err := f.repo.FindJobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, original.Skipped)
}

func TestSkipJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cfg := f.seedConfiguration(t, multiJobContent("unit-a"))
	batchID, err := f.batches.CreateBatch(ctx, transform.BatchTypeMultiJob, cfg.ID)
	require.NoError(t, err)
	job := f.jobByName(t, batchID, "unit-a")

	require.NoError(t, f.jobs.SkipJob(ctx, job.ID))
	stored, err := f.repo.FindJobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, stored.Skipped)

	// Idempotent.
	require.NoError(t, f.jobs.SkipJob(ctx, job.ID))
}

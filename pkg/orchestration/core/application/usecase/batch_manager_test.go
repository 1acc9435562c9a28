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

func TestCreateBatch_ExpandsConfiguration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cfg := f.seedConfiguration(t, multiJobContent("unit-a", "unit-b"))

	batchID, err := f.batches.CreateBatch(ctx, transform.BatchTypeMultiJob, cfg.ID)
	require.NoError(t, err)

	batch, err := f.repo.FindBatchByID(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusInitiated, batch.Status)
	assert.Equal(t, transform.BatchTypeMultiJob, batch.BatchType)
	assert.Equal(t, cfg.ID, batch.ConfigurationID)

	jobCfgs, err := f.repo.FindJobConfigurationsByBatchID(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, jobCfgs, 2)

	jobs, err := f.repo.FindJobsByBatchID(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	for _, job := range jobs {
		assert.Equal(t, model.JobStatusInitiated, job.Status)
		assert.Nil(t, job.ExternalID)
		assert.False(t, job.Skipped)
	}
}

func TestCreateBatch_ConfigurationNotReady(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cycle := model.NewCycle("cycle-under-test")
	cycle.Activate()
	require.NoError(t, f.repo.SaveCycle(ctx, cycle))
	cfg := model.NewConfiguration(cycle.ID, multiJobContent("unit-a"))
	require.NoError(t, f.repo.SaveConfiguration(ctx, cfg)) // still NEW

	_, err := f.batches.CreateBatch(ctx, transform.BatchTypeMultiJob, cfg.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrConfigurationNotReady))
}

func TestCreateBatch_UnknownBatchType(t *testing.T) {
	f := newFixture(t)
	cfg := f.seedConfiguration(t, multiJobContent("unit-a"))

	_, err := f.batches.CreateBatch(context.Background(), "nope", cfg.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, transform.ErrUnknownBatchType))
}

func TestCreateBatch_EmptyExpansion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cfg := f.seedConfiguration(t, multiJobContent())

	batchID, err := f.batches.CreateBatch(ctx, transform.BatchTypeMultiJob, cfg.ID)
	require.NoError(t, err)

	jobs, err := f.repo.FindJobsByBatchID(ctx, batchID)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	// An empty batch reconciles straight to COMPLETED.
	status, err := f.reconciler.Recon(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, status)
}

func TestValidateBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registry.Register(transform.Definition{
		Type:        "guarded",
		Transformer: transform.MultiJobTransformer(),
		Validator:   transform.RequireEntityAbsent(),
	})
	cfg := f.seedConfiguration(t, multiJobContent("unit-a", "unit-b"))

	batchID, err := f.batches.CreateBatch(ctx, "guarded", cfg.ID)
	require.NoError(t, err)

	f.checker.exists["unit-b"] = true
	problems, err := f.batches.ValidateBatch(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "unit-b")

	// Validation is read-only: the jobs are untouched.
	job := f.jobByName(t, batchID, "unit-b")
	assert.Equal(t, model.JobStatusInitiated, job.Status)
}

func TestSubmitBatch_HappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cfg := f.seedConfiguration(t, multiJobContent("unit-a", "unit-b"))
	batchID, err := f.batches.CreateBatch(ctx, transform.BatchTypeMultiJob, cfg.ID)
	require.NoError(t, err)

	summary, err := f.batches.SubmitBatch(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Submitted)
	assert.Zero(t, summary.Errored)
	assert.NoError(t, summary.Errors)

	batch, err := f.repo.FindBatchByID(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusActive, batch.Status)
	assert.NotNil(t, batch.SubmittedTime)

	stored, err := f.repo.FindConfigurationByID(ctx, cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ConfigurationStatusActive, stored.Status)

	jobs, err := f.repo.FindJobsByBatchID(ctx, batchID)
	require.NoError(t, err)
	for _, job := range jobs {
		assert.Equal(t, model.JobStatusSubmitted, job.Status)
		require.NotNil(t, job.ExternalID)
	}

	// Drive both workflows to FINISHED and reconcile.
	for _, job := range jobs {
		f.service.setPollStatus(*job.ExternalID, model.JobStatusFinished)
		_, err := f.jobs.TrackJobStatus(ctx, job.ID)
		require.NoError(t, err)
	}
	status, err := f.reconciler.Recon(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, status)
}

func TestSubmitBatch_MixedFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cfg := f.seedConfiguration(t, multiJobContent("unit-a", "unit-b"))
	batchID, err := f.batches.CreateBatch(ctx, transform.BatchTypeMultiJob, cfg.ID)
	require.NoError(t, err)

	f.service.failSubmitOf["unit-b"] = errors.New("remote validation rejected input")

	summary, err := f.batches.SubmitBatch(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Submitted)
	assert.Equal(t, 1, summary.Errored)
	assert.Error(t, summary.Errors)

	// The failed job carries ERROR with no external id: never lost, still
	// re-drivable.
	failed := f.jobByName(t, batchID, "unit-b")
	assert.Equal(t, model.JobStatusError, failed.Status)
	assert.Nil(t, failed.ExternalID)
	assert.Contains(t, failed.LastError, "remote validation rejected input")
	assert.NotNil(t, failed.SubmitRequest)

	ok := f.jobByName(t, batchID, "unit-a")
	assert.Equal(t, model.JobStatusSubmitted, ok.Status)

	// The batch activates regardless of partial failure, and reconciles to
	// ERROR while the failed submission is outstanding.
	status, err := f.reconciler.Recon(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusError, status)
}

func TestSubmitBatch_RetryCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cfg := f.seedConfiguration(t, multiJobContent("unit-a"))
	batchID, err := f.batches.CreateBatch(ctx, transform.BatchTypeMultiJob, cfg.ID)
	require.NoError(t, err)

	f.service.failSubmitOf["unit-a"] = errors.New("connection refused")
	summary, err := f.batches.SubmitBatch(ctx, batchID)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Errored)

	// The outage clears; the next submission pass re-drives the same job
	// row instead of creating a replacement.
	delete(f.service.failSubmitOf, "unit-a")
	summary, err = f.batches.SubmitBatch(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Submitted)

	jobs, err := f.repo.FindJobsByBatchID(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, model.JobStatusSubmitted, jobs[0].Status)
	require.NotNil(t, jobs[0].ExternalID)
}

func TestSubmitBatch_ResubmitDecision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cfg := f.seedConfiguration(t, multiJobContent("unit-a", "unit-b"))
	batchID, err := f.batches.CreateBatch(ctx, transform.BatchTypeMultiJob, cfg.ID)
	require.NoError(t, err)

	summary, err := f.batches.SubmitBatch(ctx, batchID)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Submitted)

	// Both workflows fail remotely.
	for _, name := range []string{"unit-a", "unit-b"} {
		job := f.jobByName(t, batchID, name)
		f.service.setPollStatus(*job.ExternalID, model.JobStatusFailed)
		_, err := f.jobs.TrackJobStatus(ctx, job.ID)
		require.NoError(t, err)
	}

	// unit-a's entity exists remotely (the failed run took effect), so it
	// is skipped; unit-b is resubmitted behind a replacement.
	f.checker.exists["unit-a"] = true
	summary, err = f.batches.SubmitBatch(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Resubmitted)
	assert.GreaterOrEqual(t, summary.Skipped, 1)

	jobs, err := f.repo.FindJobsByBatchID(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, jobs, 3) // two originals plus one replacement

	var replacement *model.Job
	for _, job := range jobs {
		if job.ParentJobID != nil {
			replacement = job
		}
	}
	require.NotNil(t, replacement)
	assert.Equal(t, model.JobStatusSubmitted, replacement.Status)

	original, err := f.repo.FindJobByID(ctx, *replacement.ParentJobID)
	require.NoError(t, err)
	assert.True(t, original.Skipped)
}

func TestSubmitBatch_BlockedByCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cycle := model.NewCycle("cycle-under-test") // PLANNED, never activated
	require.NoError(t, f.repo.SaveCycle(ctx, cycle))
	cfg := model.NewConfiguration(cycle.ID, multiJobContent("unit-a"))
	cfg.MarkValid()
	require.NoError(t, f.repo.SaveConfiguration(ctx, cfg))

	batchID, err := f.batches.CreateBatch(ctx, transform.BatchTypeMultiJob, cfg.ID)
	require.NoError(t, err)

	_, err = f.batches.SubmitBatch(ctx, batchID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrConfigurationNotReady))
	// Nothing reached the external service.
	assert.Zero(t, f.service.submitCalls)
}

func TestActivateBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cfg := f.seedConfiguration(t, multiJobContent("unit-a"))
	batchID, err := f.batches.CreateBatch(ctx, transform.BatchTypeMultiJob, cfg.ID)
	require.NoError(t, err)

	require.NoError(t, f.batches.ActivateBatch(ctx, batchID))
	batch, err := f.repo.FindBatchByID(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusActive, batch.Status)

	// Idempotent.
	require.NoError(t, f.batches.ActivateBatch(ctx, batchID))

	// A terminal batch cannot be re-activated manually.
	batch.ApplyReconciliation(model.BatchStatusCompleted)
	require.NoError(t, f.repo.UpdateBatch(ctx, batch))
	err = f.batches.ActivateBatch(ctx, batchID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrBatch))
}

package usecase_test

import (
	"context"
	"testing"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedBatch stores an ACTIVE batch with one job per given status, each
// with its own job configuration, and returns it with its jobs.
func seedBatch(t *testing.T, f *fixture, statuses ...model.JobStatus) (*model.Batch, []*model.Job) {
	t.Helper()
	ctx := context.Background()

	batch := model.NewBatch(model.NewID(), "default", "default/recon-test")
	batch.MarkSubmitted()
	require.NoError(t, f.repo.SaveBatch(ctx, batch))

	jobs := make([]*model.Job, 0, len(statuses))
	for _, status := range statuses {
		jc := model.NewJobConfiguration(batch.ID, model.Document{"name": model.NewID()})
		require.NoError(t, f.repo.SaveJobConfiguration(ctx, jc))
		job := model.NewJob(batch.ID, jc.ID)
		job.Status = status
		require.NoError(t, f.repo.SaveJob(ctx, job))
		jobs = append(jobs, job)
	}
	return batch, jobs
}

func reconcile(t *testing.T, f *fixture, batchID string) model.BatchStatus {
	t.Helper()
	status, err := f.reconciler.Recon(context.Background(), batchID)
	require.NoError(t, err)
	return status
}

func TestRecon_AllFinished(t *testing.T) {
	f := newFixture(t)
	batch, _ := seedBatch(t, f, model.JobStatusFinished, model.JobStatusFinished)
	assert.Equal(t, model.BatchStatusCompleted, reconcile(t, f, batch.ID))

	stored, err := f.repo.FindBatchByID(context.Background(), batch.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, stored.Status)
	assert.NotNil(t, stored.CompletedTime)
}

func TestRecon_EmptyBatch(t *testing.T) {
	f := newFixture(t)
	batch, _ := seedBatch(t, f)
	assert.Equal(t, model.BatchStatusCompleted, reconcile(t, f, batch.ID))
}

func TestRecon_AllSkipped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	batch, jobs := seedBatch(t, f, model.JobStatusRunning, model.JobStatusError)
	for _, job := range jobs {
		job.MarkSkipped()
		require.NoError(t, f.repo.UpdateJob(ctx, job))
	}
	assert.Equal(t, model.BatchStatusCompleted, reconcile(t, f, batch.ID))
}

func TestRecon_AllCancelled(t *testing.T) {
	f := newFixture(t)
	batch, _ := seedBatch(t, f, model.JobStatusCancelled, model.JobStatusCancelled)
	assert.Equal(t, model.BatchStatusCancelled, reconcile(t, f, batch.ID))
}

func TestRecon_ErrorBeatsFailed(t *testing.T) {
	f := newFixture(t)
	batch, _ := seedBatch(t, f, model.JobStatusFailed, model.JobStatusError, model.JobStatusFinished)
	assert.Equal(t, model.BatchStatusError, reconcile(t, f, batch.ID))
}

func TestRecon_AnyFailed(t *testing.T) {
	f := newFixture(t)
	batch, _ := seedBatch(t, f, model.JobStatusFailed, model.JobStatusFinished)
	assert.Equal(t, model.BatchStatusFailed, reconcile(t, f, batch.ID))
}

func TestRecon_LiveWorkStaysActive(t *testing.T) {
	f := newFixture(t)
	batch, _ := seedBatch(t, f, model.JobStatusRunning, model.JobStatusFinished)
	assert.Equal(t, model.BatchStatusActive, reconcile(t, f, batch.ID))
}

func TestRecon_CancelledWithoutFinishedSiblingStaysActive(t *testing.T) {
	f := newFixture(t)
	// One configuration finished, the other only cancelled: not unanimous
	// cancellation, no error, no failure - but COMPLETED would claim work
	// that never finished. The batch stays ACTIVE for operator attention.
	batch, _ := seedBatch(t, f, model.JobStatusFinished, model.JobStatusCancelled)
	assert.Equal(t, model.BatchStatusActive, reconcile(t, f, batch.ID))
}

func TestRecon_FinishedReplacementCompletesConfiguration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// One configuration, two jobs: a cancelled original and a finished
	// replacement. The finished sibling satisfies the configuration.
	batch := model.NewBatch(model.NewID(), "default", "default/recon-test")
	batch.MarkSubmitted()
	require.NoError(t, f.repo.SaveBatch(ctx, batch))

	jc := model.NewJobConfiguration(batch.ID, model.Document{"name": "unit-a"})
	require.NoError(t, f.repo.SaveJobConfiguration(ctx, jc))

	original := model.NewJob(batch.ID, jc.ID)
	original.Status = model.JobStatusCancelled
	require.NoError(t, f.repo.SaveJob(ctx, original))

	replacement := model.NewResubmissionJob(original, jc.ID)
	replacement.Status = model.JobStatusFinished
	require.NoError(t, f.repo.SaveJob(ctx, replacement))

	assert.Equal(t, model.BatchStatusCompleted, reconcile(t, f, batch.ID))
}

func TestRecon_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	batch, _ := seedBatch(t, f, model.JobStatusFinished)

	first := reconcile(t, f, batch.ID)
	second := reconcile(t, f, batch.ID)
	assert.Equal(t, first, second)

	// Every run leaves an audit record, deduplication is intentionally
	// absent.
	logs, err := f.repo.FindBatchReconciliationLogsByBatchID(ctx, batch.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, model.BatchStatusCompleted, logs[0].Status)
	assert.Equal(t, logs[0].Status, logs[1].Status)
	assert.Equal(t, 1, logs[0].JobCounts[model.JobStatusFinished])
}

func TestRecon_ReactivatesAfterResubmission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	batch, jobs := seedBatch(t, f, model.JobStatusError)

	assert.Equal(t, model.BatchStatusError, reconcile(t, f, batch.ID))

	// The errored job is re-driven; the batch legitimately returns to
	// ACTIVE and its completion stamp is cleared.
	require.NoError(t, jobs[0].TransitionTo(model.JobStatusSubmitted))
	require.NoError(t, f.repo.UpdateJob(ctx, jobs[0]))

	assert.Equal(t, model.BatchStatusActive, reconcile(t, f, batch.ID))
	stored, err := f.repo.FindBatchByID(ctx, batch.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.CompletedTime)
}

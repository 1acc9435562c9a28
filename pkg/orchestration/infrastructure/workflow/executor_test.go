package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	usecase "github.com/tigerroll/lineup/pkg/orchestration/core/application/usecase"
	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	workflow "github.com/tigerroll/lineup/pkg/orchestration/infrastructure/workflow"
)

type fakeBatchManager struct {
	createdType   model.BatchType
	createdConfig string
	createErr     error
	submittedID   string
	submitErr     error
	summary       usecase.SubmissionSummary
}

func (f *fakeBatchManager) CreateBatch(ctx context.Context, batchType model.BatchType, configurationID string) (string, error) {
	f.createdType = batchType
	f.createdConfig = configurationID
	if f.createErr != nil {
		return "", f.createErr
	}
	return "batch-next", nil
}

func (f *fakeBatchManager) ValidateBatch(ctx context.Context, batchID string) ([]string, error) {
	return nil, nil
}

func (f *fakeBatchManager) SubmitBatch(ctx context.Context, batchID string) (*usecase.SubmissionSummary, error) {
	f.submittedID = batchID
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	summary := f.summary
	summary.BatchID = batchID
	return &summary, nil
}

func (f *fakeBatchManager) ActivateBatch(ctx context.Context, batchID string) error { return nil }

func TestExecute_CreatesAndSubmitsSuccessor(t *testing.T) {
	batches := &fakeBatchManager{}
	executor := workflow.NewChainWorkflowExecutor(batches)

	unit := usecase.EncodeUnitOfWork("publish", "cfg-1")
	require.NoError(t, executor.Execute(context.Background(), unit))

	assert.Equal(t, model.BatchType("publish"), batches.createdType)
	assert.Equal(t, "cfg-1", batches.createdConfig)
	assert.Equal(t, "batch-next", batches.submittedID)
}

func TestExecute_MalformedUnitOfWork(t *testing.T) {
	executor := workflow.NewChainWorkflowExecutor(&fakeBatchManager{})

	err := executor.Execute(context.Background(), "no-separator")
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrBatch))
}

func TestExecute_CreateFailure(t *testing.T) {
	batches := &fakeBatchManager{createErr: errors.New("configuration gone")}
	executor := workflow.NewChainWorkflowExecutor(batches)

	err := executor.Execute(context.Background(), usecase.EncodeUnitOfWork("publish", "cfg-1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create successor batch")
	assert.Empty(t, batches.submittedID)
}

func TestExecute_PartialSubmissionIsNotFatal(t *testing.T) {
	batches := &fakeBatchManager{summary: usecase.SubmissionSummary{
		Submitted: 1,
		Errored:   1,
		Errors:    errors.New("one job failed"),
	}}
	executor := workflow.NewChainWorkflowExecutor(batches)

	// Failed jobs stay retry-eligible; later poller ticks re-drive them.
	require.NoError(t, executor.Execute(context.Background(), usecase.EncodeUnitOfWork("publish", "cfg-1")))
}

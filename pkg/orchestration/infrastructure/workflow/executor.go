package workflow

import (
	"context"
	"fmt"

	port "github.com/tigerroll/lineup/pkg/orchestration/core/application/port"
	usecase "github.com/tigerroll/lineup/pkg/orchestration/core/application/usecase"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/logger"
)

const moduleWorkflow = "workflow_executor"

// ChainWorkflowExecutor runs a successor unit of work by creating and
// submitting a new batch of the successor stage against the same
// configuration that produced the finished one.
type ChainWorkflowExecutor struct {
	batches usecase.BatchManager
}

var _ port.WorkflowExecutor = (*ChainWorkflowExecutor)(nil)

func NewChainWorkflowExecutor(batches usecase.BatchManager) *ChainWorkflowExecutor {
	return &ChainWorkflowExecutor{batches: batches}
}

// Execute creates the successor batch and submits its jobs. A submission
// summary with partial errors is not fatal here: the submitted batch is
// ACTIVE and the poller re-drives the failed jobs on later ticks.
func (e *ChainWorkflowExecutor) Execute(ctx context.Context, unitOfWork string) error {
	batchType, configurationID, err := usecase.DecodeUnitOfWork(unitOfWork)
	if err != nil {
		return err
	}

	batchID, err := e.batches.CreateBatch(ctx, batchType, configurationID)
	if err != nil {
		return exception.NewBatchError(moduleWorkflow,
			fmt.Sprintf("failed to create successor batch for unit '%s'", unitOfWork), err, false)
	}
	logger.Infof("Workflow: created successor batch '%s' for unit '%s'.", batchID, unitOfWork)

	summary, err := e.batches.SubmitBatch(ctx, batchID)
	if err != nil {
		return exception.NewBatchError(moduleWorkflow,
			fmt.Sprintf("failed to submit successor batch '%s'", batchID), err, false)
	}
	if summary.Errors != nil {
		logger.Warnf("Workflow: successor batch '%s' submitted with failures (submitted=%d, errored=%d): %v",
			batchID, summary.Submitted, summary.Errored, summary.Errors)
	}
	return nil
}

package workflow

import (
	"go.uber.org/fx"

	port "github.com/tigerroll/lineup/pkg/orchestration/core/application/port"
)

// Module provides the chain-driven WorkflowExecutor implementation.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewChainWorkflowExecutor,
		fx.As(new(port.WorkflowExecutor)),
	)),
)

package memory

import (
	"go.uber.org/fx"

	repository "github.com/tigerroll/lineup/pkg/orchestration/core/domain/repository"
	tx "github.com/tigerroll/lineup/pkg/orchestration/core/tx"
)

// Module provides the in-memory repository together with a no-op
// transaction manager, for store-less operation and tests.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewInMemoryOrchestrationRepository,
		fx.As(new(repository.OrchestrationRepository)),
	)),
	fx.Provide(fx.Annotate(
		tx.NewNoopTransactionManager,
		fx.As(new(tx.TransactionManager)),
	)),
)

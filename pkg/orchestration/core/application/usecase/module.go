package usecase

import (
	"go.uber.org/fx"

	config "github.com/tigerroll/lineup/pkg/orchestration/core/config"
)

// NewChainRules builds the step-chain table from the loaded configuration.
func NewChainRules(cfg *config.Config) ([]ChainRule, error) {
	return NewChainRulesFromConfig(cfg.Lineup.Chain)
}

// Module provides the application services.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewDefaultJobManager,
		fx.As(new(JobManager)),
	)),
	fx.Provide(fx.Annotate(
		NewDefaultBatchManager,
		fx.As(new(BatchManager)),
	)),
	fx.Provide(fx.Annotate(
		NewDefaultReconciler,
		fx.As(new(Reconciler)),
	)),
	fx.Provide(NewChainRules),
	fx.Provide(fx.Annotate(
		NewStaticStepChainController,
		fx.As(new(StepChainController)),
	)),
)

package usecase

import (
	"context"
	"fmt"
	"strings"

	config "github.com/tigerroll/lineup/pkg/orchestration/core/config"
	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	repository "github.com/tigerroll/lineup/pkg/orchestration/core/domain/repository"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
)

const moduleStepChain = "step_chain"

// EncodeUnitOfWork builds a runnable unit-of-work identifier from the
// successor stage and the configuration the unit operates on.
func EncodeUnitOfWork(stage string, configurationID string) string {
	return stage + "/" + configurationID
}

// DecodeUnitOfWork splits a unit-of-work identifier back into its stage and
// configuration ID.
func DecodeUnitOfWork(unitOfWork string) (model.BatchType, string, error) {
	stage, configurationID, ok := strings.Cut(unitOfWork, "/")
	if !ok || stage == "" || configurationID == "" {
		return "", "", exception.NewBatchError(moduleStepChain,
			fmt.Sprintf("malformed unit of work '%s' (want 'stage/configurationID')", unitOfWork), ErrBatch, false)
	}
	return model.BatchType(stage), configurationID, nil
}

// ChainRule maps one workflow stage (a batch type) to the terminal batch
// statuses that allow advancement and the successor unit of work.
type ChainRule struct {
	Stage     model.BatchType
	AdvanceOn []model.BatchStatus
	Next      string
}

// StaticStepChainController resolves advancement from a static, configured
// chain table keyed by batch type. It decides; it never executes — starting
// the successor is the WorkflowExecutor port's business.
type StaticStepChainController struct {
	repo  repository.OrchestrationRepository
	rules map[model.BatchType]ChainRule
}

var _ StepChainController = (*StaticStepChainController)(nil)

func NewStaticStepChainController(repo repository.OrchestrationRepository, rules []ChainRule) *StaticStepChainController {
	table := make(map[model.BatchType]ChainRule, len(rules))
	for _, r := range rules {
		table[r.Stage] = r
	}
	return &StaticStepChainController{repo: repo, rules: table}
}

// NewChainRulesFromConfig converts the YAML chain section into validated
// rules. Advancement triggers must be terminal batch statuses; a rule that
// fires on a non-terminal status would advance a workflow past live work.
func NewChainRulesFromConfig(cfgs []config.ChainRuleConfig) ([]ChainRule, error) {
	rules := make([]ChainRule, 0, len(cfgs))
	for _, c := range cfgs {
		if c.Stage == "" || c.Next == "" {
			return nil, exception.NewBatchError(moduleStepChain,
				fmt.Sprintf("chain rule must name both stage and next unit (got stage '%s', next '%s')", c.Stage, c.Next),
				nil, false)
		}
		rule := ChainRule{Stage: model.BatchType(c.Stage), Next: c.Next}
		for _, s := range c.AdvanceOn {
			status := model.BatchStatus(s)
			if !status.IsTerminal() {
				return nil, exception.NewBatchError(moduleStepChain,
					fmt.Sprintf("chain rule for stage '%s' advances on non-terminal batch status '%s'", c.Stage, s),
					nil, false)
			}
			rule.AdvanceOn = append(rule.AdvanceOn, status)
		}
		if len(rule.AdvanceOn) == 0 {
			rule.AdvanceOn = []model.BatchStatus{model.BatchStatusCompleted}
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// ShouldAdvance reports whether the batch's current status triggers the
// chain rule of its stage. A stage without a rule never advances.
func (s *StaticStepChainController) ShouldAdvance(ctx context.Context, batchID string) (bool, error) {
	batch, err := s.repo.FindBatchByID(ctx, batchID)
	if err != nil {
		return false, exception.NewBatchError(moduleStepChain,
			fmt.Sprintf("failed to load batch '%s'", batchID), err, false)
	}
	rule, ok := s.rules[batch.BatchType]
	if !ok {
		return false, nil
	}
	for _, trigger := range rule.AdvanceOn {
		if batch.Status == trigger {
			return true, nil
		}
	}
	return false, nil
}

// NextUnitOfWork resolves the successor unit for the batch's stage. The
// returned identifier carries both the successor stage and the finished
// batch's configuration, so the executor can run it without re-deriving
// context.
func (s *StaticStepChainController) NextUnitOfWork(ctx context.Context, batchID string) (string, error) {
	batch, err := s.repo.FindBatchByID(ctx, batchID)
	if err != nil {
		return "", exception.NewBatchError(moduleStepChain,
			fmt.Sprintf("failed to load batch '%s'", batchID), err, false)
	}
	rule, ok := s.rules[batch.BatchType]
	if !ok {
		return "", exception.NewBatchError(moduleStepChain,
			fmt.Sprintf("no chain rule registered for stage '%s'", batch.BatchType), ErrBatch, false)
	}
	return EncodeUnitOfWork(rule.Next, batch.ConfigurationID), nil
}

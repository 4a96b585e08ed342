package agents

import (
	"checkmate-agent/internal/domain/entity"
)

// Phase constrains which tools the next model call may pick from.
type Phase int

const (
	// PhaseFirst allows intent inference only.
	PhaseFirst Phase = iota
	// PhasePlan allows the planning tool only. Skipped when planning is
	// disabled.
	PhasePlan
	// PhaseAct allows every tool with budget remaining, minus the
	// phase-only tools.
	PhaseAct
)

// StepSelector computes the allowed tool subset for the next turn from the
// current phase and the session's remaining budgets.
type StepSelector struct {
	planningEnabled bool
}

func NewStepSelector(planningEnabled bool) *StepSelector {
	return &StepSelector{planningEnabled: planningEnabled}
}

func (s *StepSelector) PlanningEnabled() bool { return s.planningEnabled }

// Next returns the phase for the upcoming turn. think alternates every turn;
// the first turn is always intent inference.
func (s *StepSelector) Next(firstStep, think bool) Phase {
	if firstStep {
		return PhaseFirst
	}
	if think && s.planningEnabled {
		return PhasePlan
	}
	return PhaseAct
}

// AllowedTools prunes the fixed tool set down to what the given phase and
// budget permit.
func (s *StepSelector) AllowedTools(phase Phase, budget *entity.ResourceBudget) []entity.ToolName {
	switch phase {
	case PhaseFirst:
		return []entity.ToolName{entity.ToolInferIntent}
	case PhasePlan:
		return []entity.ToolName{entity.ToolPlanNextStep}
	default:
		allowed := []entity.ToolName{}
		if budget.Remaining(entity.ResourceSearches) > 0 {
			allowed = append(allowed, entity.ToolSearchGoogle)
		}
		if budget.Remaining(entity.ResourceScreenshots) > 0 {
			allowed = append(allowed, entity.ToolGetScreenshot)
		}
		allowed = append(allowed, entity.ToolCheckMaliciousURL, entity.ToolSubmitReport)
		return allowed
	}
}

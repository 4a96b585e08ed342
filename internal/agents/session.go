package agents

import (
	"checkmate-agent/internal/domain/entity"
)

// AgentSession owns the mutable state of one report generation: the
// conversation history, the resource budget, the turn counter and the cost
// trace. It is created per invocation and mutated only by the agent loop.
// History is append-only; turns are never rewritten once recorded.
type AgentSession struct {
	History   []entity.Message
	Budget    *entity.ResourceBudget
	Turns     int
	Completed bool
	CostTrace []entity.CostEntry
	TotalCost float64
}

func NewAgentSession(budget *entity.ResourceBudget) *AgentSession {
	return &AgentSession{Budget: budget}
}

func (s *AgentSession) Append(messages ...entity.Message) {
	s.History = append(s.History, messages...)
}

func (s *AgentSession) AddCost(source string, cost float64) {
	if cost == 0 {
		return
	}
	s.CostTrace = append(s.CostTrace, entity.CostEntry{Source: source, Cost: cost})
	s.TotalCost += cost
}

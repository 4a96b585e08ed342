package agents

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"checkmate-agent/internal/application/port/output"
	"checkmate-agent/internal/domain/entity"

	"golang.org/x/sync/errgroup"
)

const (
	maxTurns = 50

	correctiveInstruction = "You should only be using the provided tools / functions"
)

// ReportOutcome is the uniform result shape of one agent session. Err is a
// human-readable failure description; Trace always carries the full history
// for audit, whatever the outcome.
type ReportOutcome struct {
	Success   bool
	Report    *entity.SubmittedReport
	Review    *entity.ReviewResult
	Trace     []entity.Message
	Err       string
	CostTrace []entity.CostEntry
	TotalCost float64
	Turns     int
}

// AgentLoop drives alternating model-proposes / tools-execute turns until a
// submitted report passes review, the turn ceiling is hit, or an
// unrecoverable error occurs.
type AgentLoop struct {
	llm          output.LLMPort
	registry     output.ToolRegistry
	invoker      *ToolInvoker
	logger       output.LoggerPort
	systemPrompt string
	temperature  float32
}

func NewAgentLoop(
	llm output.LLMPort,
	registry output.ToolRegistry,
	logger output.LoggerPort,
	systemPrompt string,
	temperature float32,
) *AgentLoop {
	return &AgentLoop{
		llm:          llm,
		registry:     registry,
		invoker:      NewToolInvoker(registry, logger),
		logger:       logger,
		systemPrompt: systemPrompt,
		temperature:  temperature,
	}
}

// GenerateReport runs a full session for the given starting content. It
// never returns an error: every failure mode is folded into the outcome so
// the caller always receives the trace.
func (l *AgentLoop) GenerateReport(ctx context.Context, content entity.Message, planningEnabled bool) (outcome *ReportOutcome) {
	session := NewAgentSession(entity.DefaultResourceBudget())
	selector := NewStepSelector(planningEnabled)

	session.Append(
		entity.Message{Role: entity.RoleSystem, Content: l.renderSystemPrompt(session.Budget)},
		content,
	)

	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Panic during report generation", "panic", fmt.Sprintf("%v", r))
			outcome = l.failure(session, fmt.Sprintf("%v", r))
		}
	}()

	firstStep := true
	think := true

	for session.Turns < maxTurns && !session.Completed {
		phase := selector.Next(firstStep, think)
		allowed := selector.AllowedTools(phase, session.Budget)

		// The model sees current remaining-budget figures, but the trace
		// keeps every turn exactly as first appended, so the rendered
		// system prompt travels on a copy rather than on History[0].
		messages := make([]entity.Message, len(session.History))
		copy(messages, session.History)
		messages[0].Content = l.renderSystemPrompt(session.Budget)

		resp, err := l.llm.Chat(ctx, output.ChatRequest{
			Messages:    messages,
			Tools:       l.registry.Definitions(allowed...),
			ToolChoice:  output.ToolChoiceRequired,
			Temperature: l.temperature,
		})
		if err != nil {
			l.logger.Error("Model call failed", "error", err.Error(), "turn", session.Turns)
			return l.failure(session, err.Error())
		}

		session.Append(resp.Message)
		session.AddCost("model_call", resp.Cost)

		if len(resp.Message.ToolCalls) == 0 {
			// Protocol violation: the model must always pick a tool.
			// Recover with a corrective turn; it still counts toward
			// the ceiling.
			l.logger.Error("No tool calls returned", "turn", session.Turns)
			session.Append(entity.Message{Role: entity.RoleSystem, Content: correctiveInstruction})
			think = !think
			firstStep = false
			session.Turns++
			continue
		}

		outcomes := l.dispatchAll(ctx, session, resp.Message.ToolCalls)

		// First terminal call whose review passed wins; the rest of the
		// batch is discarded.
		for _, o := range outcomes {
			if o.Completed {
				session.Completed = true
				return &ReportOutcome{
					Success:   true,
					Report:    o.Report,
					Review:    o.Review,
					Trace:     session.History,
					CostTrace: session.CostTrace,
					TotalCost: session.TotalCost,
					Turns:     session.Turns,
				}
			}
		}

		session.Append(flattenAndOrganise(outcomes)...)
		for _, o := range outcomes {
			session.AddCost("tool_call", o.Cost)
		}

		think = !think
		firstStep = false
		session.Turns++
	}

	l.logger.Error("Report couldn't be generated", "turns", session.Turns)
	return l.failure(session, fmt.Sprintf("Couldn't generate after %d turns", maxTurns))
}

// dispatchAll fans the turn's tool calls out concurrently and waits for all
// of them; partial results are never acted upon early.
func (l *AgentLoop) dispatchAll(ctx context.Context, session *AgentSession, calls []entity.ToolCall) []InvokeOutcome {
	outcomes := make([]InvokeOutcome, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	for idx, tc := range calls {
		g.Go(func() error {
			outcomes[idx] = l.invoker.Invoke(gctx, tc, session.Budget)
			return nil
		})
	}
	// Invoke never errors; Wait is purely a barrier.
	_ = g.Wait()

	return outcomes
}

func (l *AgentLoop) renderSystemPrompt(budget *entity.ResourceBudget) string {
	prompt := strings.ReplaceAll(l.systemPrompt,
		"{remaining_searches}", strconv.Itoa(budget.Remaining(entity.ResourceSearches)))
	return strings.ReplaceAll(prompt,
		"{remaining_screenshots}", strconv.Itoa(budget.Remaining(entity.ResourceScreenshots)))
}

func (l *AgentLoop) failure(session *AgentSession, errMsg string) *ReportOutcome {
	return &ReportOutcome{
		Success:   false,
		Err:       errMsg,
		Trace:     session.History,
		CostTrace: session.CostTrace,
		TotalCost: session.TotalCost,
		Turns:     session.Turns,
	}
}

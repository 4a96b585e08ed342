package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"checkmate-agent/internal/application/port/output"
	"checkmate-agent/internal/domain/entity"
)

const searchUnitCost = 1.0 / 1000 // serper.dev per-query pricing

// InvokeOutcome is the normalized result of one tool call. Messages holds
// the tool-result turn first, followed by any media-bearing user turn
// (screenshots). Completed marks a terminal submit call that passed review.
type InvokeOutcome struct {
	Messages  []entity.Message
	Completed bool
	Report    *entity.SubmittedReport
	Review    *entity.ReviewResult
	Cost      float64
}

// ToolInvoker executes a single tool call and converts every failure mode
// into a structured result. It never returns an error to the loop: tool
// exceptions become conversation content the model can react to.
type ToolInvoker struct {
	registry output.ToolRegistry
	logger   output.LoggerPort
}

func NewToolInvoker(registry output.ToolRegistry, logger output.LoggerPort) *ToolInvoker {
	return &ToolInvoker{registry: registry, logger: logger}
}

// Invoke runs one tool call against the session budget. Search and
// screenshot attempts consume budget before the outcome is examined, since
// the attempt itself has cost.
func (i *ToolInvoker) Invoke(ctx context.Context, tc entity.ToolCall, budget *entity.ResourceBudget) InvokeOutcome {
	name := entity.ToolName(tc.Name)
	log := i.logger.WithFields(map[string]any{"tool": tc.Name, "toolCallId": tc.ID})

	tool, ok := i.registry.Get(name)
	if !ok {
		log.Error("Unknown tool called")
		return failureOutcome(tc, fmt.Sprintf("Error calling function %s: unknown tool", tc.Name))
	}

	switch name {
	case entity.ToolSearchGoogle:
		budget.Consume(entity.ResourceSearches)
	case entity.ToolGetScreenshot:
		budget.Consume(entity.ResourceScreenshots)
	}

	log.Info("Executing tool", "args", tc.Arguments)

	result, err := tool.Execute(ctx, tc.Arguments)
	if err != nil {
		log.Warn("Tool call failed", "error", err.Error())
		return failureOutcome(tc, fmt.Sprintf("Tool %s generated an exception: %v", tc.Name, err))
	}

	switch name {
	case entity.ToolGetScreenshot:
		return i.screenshotOutcome(tc, result)
	case entity.ToolSubmitReport:
		return i.submitOutcome(tc, result, log)
	case entity.ToolSearchGoogle:
		return InvokeOutcome{
			Messages: []entity.Message{toolResult(tc, result)},
			Cost:     searchUnitCost,
		}
	default:
		return InvokeOutcome{Messages: []entity.Message{toolResult(tc, result)}}
	}
}

// screenshotOutcome splits a successful screenshot into two fragments: an
// acknowledgement tool result (providers require exactly one result per
// call) and a user turn carrying the rendered image as ordinary content.
func (i *ToolInvoker) screenshotOutcome(tc entity.ToolCall, imageRef string) InvokeOutcome {
	var args struct {
		URL string `json:"url"`
	}
	_ = json.Unmarshal([]byte(tc.Arguments), &args)
	url := args.URL
	if url == "" {
		url = "unknown URL"
	}

	return InvokeOutcome{
		Messages: []entity.Message{
			toolResult(tc, "Screenshot successfully taken and will be subsequently appended."),
			{
				Role:     entity.RoleUser,
				Content:  fmt.Sprintf("Here is the screenshot for %s returned by %s", url, tc.Name),
				ImageURL: imageRef,
			},
		},
	}
}

// submitOutcome parses the review gate's grading. Only a passing review makes
// the call terminal; a failed review stays in history and the loop continues.
func (i *ToolInvoker) submitOutcome(tc entity.ToolCall, result string, log output.LoggerPort) InvokeOutcome {
	var review entity.ReviewResult
	if err := json.Unmarshal([]byte(result), &review); err != nil {
		log.Error("Cannot parse review result", "error", err.Error())
		return failureOutcome(tc, fmt.Sprintf("Tool %s generated an exception: %v", tc.Name, err))
	}

	outcome := InvokeOutcome{
		Messages: []entity.Message{toolResult(tc, result)},
		Review:   &review,
	}
	if !review.PassedReview {
		log.Warn("Report did not pass review", "feedback", review.Feedback)
		return outcome
	}

	var report entity.SubmittedReport
	if err := json.Unmarshal([]byte(tc.Arguments), &report); err != nil {
		log.Error("Cannot parse submitted report arguments", "error", err.Error())
		return failureOutcome(tc, fmt.Sprintf("Tool %s generated an exception: %v", tc.Name, err))
	}

	outcome.Completed = true
	outcome.Report = &report
	return outcome
}

func toolResult(tc entity.ToolCall, content string) entity.Message {
	return entity.Message{
		Role:       entity.RoleTool,
		ToolCallID: tc.ID,
		Name:       tc.Name,
		Content:    content,
	}
}

func failureOutcome(tc entity.ToolCall, description string) InvokeOutcome {
	payload, _ := json.Marshal(map[string]string{"result": description})
	return InvokeOutcome{Messages: []entity.Message{toolResult(tc, string(payload))}}
}

// flattenAndOrganise merges per-call fragments into one batch with every
// tool-result turn before any media-bearing user turn, so the model always
// sees results before narrative.
func flattenAndOrganise(outcomes []InvokeOutcome) []entity.Message {
	var toolMessages, otherMessages []entity.Message
	for _, outcome := range outcomes {
		for _, msg := range outcome.Messages {
			if msg.Role == entity.RoleTool {
				toolMessages = append(toolMessages, msg)
			} else {
				otherMessages = append(otherMessages, msg)
			}
		}
	}
	return append(toolMessages, otherMessages...)
}

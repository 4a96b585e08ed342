package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkmate-agent/internal/application/port/output"
	"checkmate-agent/internal/domain/entity"
)

const testSystemPrompt = "You are a fact checker. Searches left: {remaining_searches}. Screenshots left: {remaining_screenshots}."

// scriptedLLM replays a fixed sequence of responses and records every request
// so tests can assert on the tool subsets and rendered prompts offered per
// turn. Once the script runs out, the last response repeats.
type scriptedLLM struct {
	responses []*output.ChatResponse
	requests  []output.ChatRequest
}

func (s *scriptedLLM) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	s.requests = append(s.requests, req)
	idx := len(s.requests) - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

func assistantCall(id string, name entity.ToolName, args string) *output.ChatResponse {
	return &output.ChatResponse{
		Message: entity.Message{
			Role:      entity.RoleAssistant,
			ToolCalls: []entity.ToolCall{{ID: id, Name: string(name), Arguments: args}},
		},
	}
}

func noToolCalls() *output.ChatResponse {
	return &output.ChatResponse{
		Message: entity.Message{Role: entity.RoleAssistant, Content: "I think the answer is..."},
	}
}

func toolNames(defs []entity.ToolDefinition) []entity.ToolName {
	names := make([]entity.ToolName, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
	}
	return names
}

func fullRegistry(submitResult string) output.ToolRegistry {
	return registryWith(
		&stubTool{name: entity.ToolInferIntent, result: `{"reasoning":"r","intent":"check if this is a scam"}`},
		&stubTool{name: entity.ToolPlanNextStep, result: `{"reasoning":"r","next_step":"search_google"}`},
		&stubTool{name: entity.ToolSearchGoogle, result: `[{"title":"t","link":"https://example.com","snippet":"s"}]`},
		&stubTool{name: entity.ToolGetScreenshot, result: "data:image/jpeg;base64,abc"},
		&stubTool{name: entity.ToolCheckMaliciousURL, result: `{"classification":"BENIGN","score":0.01}`},
		&stubTool{name: entity.ToolSubmitReport, result: submitResult},
	)
}

func userContent(text string) entity.Message {
	return entity.Message{Role: entity.RoleUser, Content: text}
}

func TestLoopTerminatesAtExactlyFiftyTurns(t *testing.T) {
	llm := &scriptedLLM{responses: []*output.ChatResponse{noToolCalls()}}
	loop := NewAgentLoop(llm, fullRegistry(`{}`), nopLogger{}, testSystemPrompt, 0)

	outcome := loop.GenerateReport(context.Background(), userContent("check this"), true)

	assert.False(t, outcome.Success)
	assert.Equal(t, 50, outcome.Turns)
	assert.Equal(t, "Couldn't generate after 50 turns", outcome.Err)
	assert.Len(t, llm.requests, 50)
}

func TestLoopRecoversFromMissingToolCalls(t *testing.T) {
	submitArgs := `{"report":"Verified scam.","sources":["https://example.com/advisory"],"isControversial":false,"isVideo":false,"isAccessBlocked":false}`
	llm := &scriptedLLM{responses: []*output.ChatResponse{
		noToolCalls(),
		noToolCalls(),
		assistantCall("call_3", entity.ToolSubmitReport, submitArgs),
	}}
	registry := fullRegistry(`{"feedback":"ok","passedReview":true}`)
	loop := NewAgentLoop(llm, registry, nopLogger{}, testSystemPrompt, 0)

	outcome := loop.GenerateReport(context.Background(), userContent("check this"), false)

	require.True(t, outcome.Success)
	assert.Equal(t, 2, outcome.Turns)

	// Each protocol violation leaves a corrective system turn in history.
	corrective := 0
	for _, msg := range outcome.Trace {
		if msg.Role == entity.RoleSystem && msg.Content == correctiveInstruction {
			corrective++
		}
	}
	assert.Equal(t, 2, corrective)
}

func TestLoopFirstTurnOffersIntentToolOnly(t *testing.T) {
	submitArgs := `{"report":"r","sources":[],"isControversial":false,"isVideo":false,"isAccessBlocked":false}`
	llm := &scriptedLLM{responses: []*output.ChatResponse{
		assistantCall("call_1", entity.ToolInferIntent, `{"reasoning":"r","intent":"i"}`),
		assistantCall("call_2", entity.ToolSubmitReport, submitArgs),
	}}
	registry := fullRegistry(`{"feedback":"ok","passedReview":true}`)
	loop := NewAgentLoop(llm, registry, nopLogger{}, testSystemPrompt, 0)

	outcome := loop.GenerateReport(context.Background(), userContent("check this"), false)

	require.True(t, outcome.Success)
	require.NotEmpty(t, llm.requests)
	assert.Equal(t, []entity.ToolName{entity.ToolInferIntent}, toolNames(llm.requests[0].Tools))
	assert.Equal(t, output.ToolChoiceRequired, llm.requests[0].ToolChoice)
}

func TestLoopRendersRemainingBudgetsEachTurn(t *testing.T) {
	submitArgs := `{"report":"r","sources":[],"isControversial":false,"isVideo":false,"isAccessBlocked":false}`
	llm := &scriptedLLM{responses: []*output.ChatResponse{
		assistantCall("call_1", entity.ToolInferIntent, `{"reasoning":"r","intent":"i"}`),
		assistantCall("call_2", entity.ToolSearchGoogle, `{"q":"example query"}`),
		assistantCall("call_3", entity.ToolSubmitReport, submitArgs),
	}}
	registry := fullRegistry(`{"feedback":"ok","passedReview":true}`)
	loop := NewAgentLoop(llm, registry, nopLogger{}, testSystemPrompt, 0)

	outcome := loop.GenerateReport(context.Background(), userContent("check this"), false)

	require.True(t, outcome.Success)
	require.Len(t, llm.requests, 3)
	assert.Contains(t, llm.requests[0].Messages[0].Content, "Searches left: 5")
	assert.Contains(t, llm.requests[1].Messages[0].Content, "Searches left: 5")
	assert.Contains(t, llm.requests[2].Messages[0].Content, "Searches left: 4")
	assert.Contains(t, llm.requests[2].Messages[0].Content, "Screenshots left: 5")

	// The search cost is accounted against the session.
	assert.InDelta(t, 1.0/1000, outcome.TotalCost, 1e-9)
}

func TestLoopTraceKeepsInitialSystemTurn(t *testing.T) {
	submitArgs := `{"report":"r","sources":[],"isControversial":false,"isVideo":false,"isAccessBlocked":false}`
	llm := &scriptedLLM{responses: []*output.ChatResponse{
		assistantCall("call_1", entity.ToolInferIntent, `{"reasoning":"r","intent":"i"}`),
		assistantCall("call_2", entity.ToolSearchGoogle, `{"q":"example query"}`),
		assistantCall("call_3", entity.ToolSubmitReport, submitArgs),
	}}
	registry := fullRegistry(`{"feedback":"ok","passedReview":true}`)
	loop := NewAgentLoop(llm, registry, nopLogger{}, testSystemPrompt, 0)

	outcome := loop.GenerateReport(context.Background(), userContent("check this"), false)
	require.True(t, outcome.Success)

	// Later turns render fewer searches into the request, but the trace's
	// system turn stays exactly as first appended.
	require.Len(t, llm.requests, 3)
	assert.Contains(t, llm.requests[2].Messages[0].Content, "Searches left: 4")
	require.NotEmpty(t, outcome.Trace)
	assert.Equal(t, entity.RoleSystem, outcome.Trace[0].Role)
	assert.Contains(t, outcome.Trace[0].Content, "Searches left: 5")
	assert.Contains(t, outcome.Trace[0].Content, "Screenshots left: 5")
}

func TestLoopConcurrentSearchesShareOneBudget(t *testing.T) {
	submitArgs := `{"report":"r","sources":[],"isControversial":false,"isVideo":false,"isAccessBlocked":false}`
	llm := &scriptedLLM{responses: []*output.ChatResponse{
		assistantCall("call_1", entity.ToolInferIntent, `{"reasoning":"r","intent":"i"}`),
		{
			Message: entity.Message{
				Role: entity.RoleAssistant,
				ToolCalls: []entity.ToolCall{
					{ID: "call_2", Name: string(entity.ToolSearchGoogle), Arguments: `{"q":"claim one"}`},
					{ID: "call_3", Name: string(entity.ToolSearchGoogle), Arguments: `{"q":"claim two"}`},
					{ID: "call_4", Name: string(entity.ToolSearchGoogle), Arguments: `{"q":"claim three"}`},
				},
			},
		},
		assistantCall("call_5", entity.ToolSubmitReport, submitArgs),
	}}
	registry := fullRegistry(`{"feedback":"ok","passedReview":true}`)
	loop := NewAgentLoop(llm, registry, nopLogger{}, testSystemPrompt, 0)

	outcome := loop.GenerateReport(context.Background(), userContent("check this"), false)
	require.True(t, outcome.Success)

	// All three parallel searches count against the same session budget.
	require.Len(t, llm.requests, 3)
	assert.Contains(t, llm.requests[2].Messages[0].Content, "Searches left: 2")
	assert.InDelta(t, 3.0/1000, outcome.TotalCost, 1e-9)
}

func TestLoopControversialClaimPassesOnSecondTurn(t *testing.T) {
	submitArgs := `{"report":"This is an expression of political opinion, not a verifiable factual claim.","sources":[],"isControversial":true,"isVideo":false,"isAccessBlocked":false}`
	llm := &scriptedLLM{responses: []*output.ChatResponse{
		assistantCall("call_1", entity.ToolInferIntent, `{"reasoning":"The user wants this statement checked.","intent":"to check a political opinion"}`),
		assistantCall("call_2", entity.ToolSubmitReport, submitArgs),
	}}
	registry := fullRegistry(`{"feedback":"Appropriately flags opinion content.","passedReview":true}`)
	loop := NewAgentLoop(llm, registry, nopLogger{}, testSystemPrompt, 0)

	outcome := loop.GenerateReport(context.Background(), userContent("WP is so much better than PAP"), false)

	require.True(t, outcome.Success)
	require.NotNil(t, outcome.Report)
	assert.True(t, outcome.Report.IsControversial)
	assert.False(t, outcome.Report.IsVideo)
	assert.Equal(t, 1, outcome.Turns)
	require.NotNil(t, outcome.Review)
	assert.True(t, outcome.Review.PassedReview)
}

func TestLoopFailedReviewContinuesSession(t *testing.T) {
	submitArgs := `{"report":"vague","sources":[],"isControversial":false,"isVideo":false,"isAccessBlocked":false}`
	failing := &stubTool{name: entity.ToolSubmitReport, result: `{"feedback":"Too vague.","passedReview":false}`}
	registry := registryWith(
		&stubTool{name: entity.ToolInferIntent, result: `{"reasoning":"r","intent":"i"}`},
		failing,
	)
	llm := &scriptedLLM{responses: []*output.ChatResponse{
		assistantCall("call_1", entity.ToolInferIntent, `{"reasoning":"r","intent":"i"}`),
		assistantCall("call_2", entity.ToolSubmitReport, submitArgs),
	}}
	loop := NewAgentLoop(llm, registry, nopLogger{}, testSystemPrompt, 0)

	outcome := loop.GenerateReport(context.Background(), userContent("check this"), false)

	// The scripted model never improves the report, so the session exhausts
	// the ceiling rather than completing on the failed submission.
	assert.False(t, outcome.Success)
	assert.Equal(t, 50, outcome.Turns)
	assert.GreaterOrEqual(t, failing.calls, 2)
}

func TestLoopScreenshotOrderingInHistory(t *testing.T) {
	submitArgs := `{"report":"r","sources":[],"isControversial":false,"isVideo":false,"isAccessBlocked":false}`
	llm := &scriptedLLM{responses: []*output.ChatResponse{
		assistantCall("call_1", entity.ToolInferIntent, `{"reasoning":"r","intent":"i"}`),
		{
			Message: entity.Message{
				Role: entity.RoleAssistant,
				ToolCalls: []entity.ToolCall{
					{ID: "call_2", Name: string(entity.ToolGetScreenshot), Arguments: `{"url":"https://a.example.com"}`},
					{ID: "call_3", Name: string(entity.ToolCheckMaliciousURL), Arguments: `{"url":"https://a.example.com"}`},
				},
			},
		},
		assistantCall("call_4", entity.ToolSubmitReport, submitArgs),
	}}
	registry := fullRegistry(`{"feedback":"ok","passedReview":true}`)
	loop := NewAgentLoop(llm, registry, nopLogger{}, testSystemPrompt, 0)

	outcome := loop.GenerateReport(context.Background(), userContent("https://a.example.com"), false)
	require.True(t, outcome.Success)

	// Both tool results must precede the appended screenshot media turn.
	var batch []entity.Message
	for _, msg := range outcome.Trace {
		if msg.ToolCallID == "call_2" || msg.ToolCallID == "call_3" || msg.ImageURL != "" {
			batch = append(batch, msg)
		}
	}
	require.Len(t, batch, 3)
	assert.Equal(t, entity.RoleTool, batch[0].Role)
	assert.Equal(t, entity.RoleTool, batch[1].Role)
	assert.Equal(t, entity.RoleUser, batch[2].Role)
	assert.NotEmpty(t, batch[2].ImageURL)
}

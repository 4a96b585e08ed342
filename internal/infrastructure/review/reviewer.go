package review

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"checkmate-agent/internal/application/port/output"
	"checkmate-agent/internal/domain/entity"
)

var _ output.ReviewerPort = (*Reviewer)(nil)

const reviewTemperature = 0.5

// Reviewer grades drafted reports with a single JSON-mode model call. It
// checks clarity, internal consistency and source credibility, and takes the
// report's factual claims at face value rather than re-verifying them.
type Reviewer struct {
	llm    output.LLMPort
	prompt string
	logger output.LoggerPort
}

func NewReviewer(llm output.LLMPort, prompt string, logger output.LoggerPort) *Reviewer {
	return &Reviewer{llm: llm, prompt: prompt, logger: logger}
}

func (r *Reviewer) Review(ctx context.Context, report string, sources []string) (*entity.ReviewResult, error) {
	var submission strings.Builder
	submission.WriteString("Report:\n")
	submission.WriteString(report)
	submission.WriteString("\n\nSources:\n")
	if len(sources) == 0 {
		submission.WriteString("(none provided)")
	}
	for _, source := range sources {
		submission.WriteString("- ")
		submission.WriteString(source)
		submission.WriteString("\n")
	}

	resp, err := r.llm.Chat(ctx, output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: r.prompt},
			{Role: entity.RoleUser, Content: submission.String()},
		},
		Temperature:  reviewTemperature,
		JSONResponse: true,
	})
	if err != nil {
		return nil, fmt.Errorf("review call failed: %w", err)
	}

	var result entity.ReviewResult
	if err := json.Unmarshal([]byte(resp.Message.Content), &result); err != nil {
		r.logger.Error("Malformed review response", "content", resp.Message.Content)
		return nil, fmt.Errorf("parse review response: %w", err)
	}

	r.logger.Info("Report reviewed", "passed", result.PassedReview)
	return &result, nil
}

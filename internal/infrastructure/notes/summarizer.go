package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"checkmate-agent/internal/application/port/output"
	"checkmate-agent/internal/domain/entity"
)

var _ output.SummarizerPort = (*Summarizer)(nil)

// Summarizer condenses the agent's long-form report into the short note that
// is actually shown to users. The prompt fixes the emoji conventions and the
// 50-100 word target.
type Summarizer struct {
	llm    output.LLMPort
	prompt string
	logger output.LoggerPort
}

func NewSummarizer(llm output.LLMPort, prompt string, logger output.LoggerPort) *Summarizer {
	return &Summarizer{llm: llm, prompt: prompt, logger: logger}
}

func (s *Summarizer) Summarize(ctx context.Context, report, inputText, inputImageURL, inputCaption string) (string, error) {
	var user strings.Builder
	user.WriteString("Full report:\n")
	user.WriteString(report)
	if inputText != "" {
		user.WriteString("\n\nOriginal message sent in for checking:\n")
		user.WriteString(inputText)
	}
	if inputCaption != "" {
		user.WriteString("\n\nCaption accompanying the image sent in for checking:\n")
		user.WriteString(inputCaption)
	}

	message := entity.Message{Role: entity.RoleUser, Content: user.String()}
	if inputImageURL != "" {
		message.ImageURL = inputImageURL
	}

	resp, err := s.llm.Chat(ctx, output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: s.prompt},
			message,
		},
		JSONResponse: true,
	})
	if err != nil {
		return "", fmt.Errorf("summary call failed: %w", err)
	}

	var parsed struct {
		Note string `json:"community_note"`
	}
	if err := json.Unmarshal([]byte(resp.Message.Content), &parsed); err != nil {
		s.logger.Error("Malformed summary response", "content", resp.Message.Content)
		return "", fmt.Errorf("parse summary response: %w", err)
	}
	if parsed.Note == "" {
		return "", fmt.Errorf("empty community note in response")
	}
	return parsed.Note, nil
}

package notes

import (
	"context"
	"encoding/json"
	"fmt"

	"checkmate-agent/internal/application/port/output"
	"checkmate-agent/internal/domain/entity"
)

var _ output.TranslatorPort = (*Translator)(nil)

// Translator converts a finished note into the target language while keeping
// emojis, links and formatting intact.
type Translator struct {
	llm    output.LLMPort
	prompt string
	logger output.LoggerPort
}

func NewTranslator(llm output.LLMPort, prompt string, logger output.LoggerPort) *Translator {
	return &Translator{llm: llm, prompt: prompt, logger: logger}
}

func (t *Translator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	resp, err := t.llm.Chat(ctx, output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: t.prompt},
			{Role: entity.RoleUser, Content: fmt.Sprintf("Target language: %s\n\nText:\n%s", targetLanguage, text)},
		},
		JSONResponse: true,
	})
	if err != nil {
		return "", fmt.Errorf("translation call failed: %w", err)
	}

	var parsed struct {
		TranslatedText string `json:"translated_text"`
	}
	if err := json.Unmarshal([]byte(resp.Message.Content), &parsed); err != nil {
		t.logger.Error("Malformed translation response", "content", resp.Message.Content)
		return "", fmt.Errorf("parse translation response: %w", err)
	}
	if parsed.TranslatedText == "" {
		return "", fmt.Errorf("empty translation in response")
	}
	return parsed.TranslatedText, nil
}

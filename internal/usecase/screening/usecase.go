package screening

import (
	"context"
	"encoding/json"
	"fmt"

	"checkmate-agent/internal/application/port/input"
	"checkmate-agent/internal/application/port/output"
	"checkmate-agent/internal/domain/entity"
)

// UseCase implements the pre-agent filters as single-shot JSON-mode model
// calls. Each filter has its own system prompt and a strict response shape.
type UseCase struct {
	llm    output.LLMPort
	logger output.LoggerPort

	checkPrompt       string
	sensitivityPrompt string
	redactPrompt      string
}

var _ input.Screener = (*UseCase)(nil)

func NewUseCase(llm output.LLMPort, logger output.LoggerPort, checkPrompt, sensitivityPrompt, redactPrompt string) *UseCase {
	return &UseCase{
		llm:               llm,
		logger:            logger,
		checkPrompt:       checkPrompt,
		sensitivityPrompt: sensitivityPrompt,
		redactPrompt:      redactPrompt,
	}
}

func (u *UseCase) NeedsChecking(ctx context.Context, text string) (*input.CheckResult, error) {
	var result input.CheckResult
	if err := u.ask(ctx, u.checkPrompt, text, &result); err != nil {
		return nil, fmt.Errorf("needs-checking filter: %w", err)
	}
	return &result, nil
}

func (u *UseCase) IsSensitive(ctx context.Context, text string) (*input.SensitivityResult, error) {
	var result input.SensitivityResult
	if err := u.ask(ctx, u.sensitivityPrompt, text, &result); err != nil {
		return nil, fmt.Errorf("sensitivity filter: %w", err)
	}
	return &result, nil
}

func (u *UseCase) Redact(ctx context.Context, text string) (*input.RedactionResult, error) {
	var result input.RedactionResult
	if err := u.ask(ctx, u.redactPrompt, text, &result); err != nil {
		return nil, fmt.Errorf("redaction: %w", err)
	}
	result.Original = text
	return &result, nil
}

func (u *UseCase) ask(ctx context.Context, systemPrompt, text string, into any) error {
	resp, err := u.llm.Chat(ctx, output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: systemPrompt},
			{Role: entity.RoleUser, Content: text},
		},
		JSONResponse: true,
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(resp.Message.Content), into); err != nil {
		u.logger.Error("Malformed filter response", "content", resp.Message.Content, "error", err.Error())
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

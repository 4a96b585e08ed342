package output

import (
	"context"

	"checkmate-agent/internal/domain/entity"
)

// ToolChoice controls whether the model may, must, or must not call a tool.
type ToolChoice string

const (
	ToolChoiceAuto     ToolChoice = "auto"
	ToolChoiceRequired ToolChoice = "required"
	ToolChoiceNone     ToolChoice = "none"
)

// LLMPort is the narrow capability the agent loop needs from a model
// provider. Adapters translate to and from each provider's native message
// and tool schema.
type LLMPort interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type ChatRequest struct {
	// Model overrides the adapter's default model when set. Used by the
	// retry policy to fall through an ordered model list.
	Model        string
	Messages     []entity.Message
	Tools        []entity.ToolDefinition
	ToolChoice   ToolChoice
	Temperature  float32
	JSONResponse bool
}

type ChatResponse struct {
	Message entity.Message
	// Cost is the estimated cost of the call in USD, zero when unknown.
	Cost float64
}

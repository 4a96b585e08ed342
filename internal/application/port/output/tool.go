package output

import (
	"context"

	"checkmate-agent/internal/domain/entity"
)

type ToolPort interface {
	Name() entity.ToolName
	Description() string
	Parameters() map[string]interface{}
	Execute(ctx context.Context, arguments string) (string, error)
}

type ToolRegistry interface {
	Register(tool ToolPort)
	Get(name entity.ToolName) (ToolPort, bool)
	All() []ToolPort
	// Definitions returns schemas filtered to the allowed names, preserving
	// registration order.
	Definitions(allowed ...entity.ToolName) []entity.ToolDefinition
}

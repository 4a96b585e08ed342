package service

import (
	"checkmate-agent/internal/application/port/output"
	"checkmate-agent/internal/domain/entity"
)

var _ output.ToolRegistry = (*ToolRegistryImpl)(nil)

// ToolRegistryImpl keeps tools in registration order so the schema list
// presented to the model is stable across turns.
type ToolRegistryImpl struct {
	tools map[entity.ToolName]output.ToolPort
	order []entity.ToolName
}

func NewToolRegistry() *ToolRegistryImpl {
	return &ToolRegistryImpl{
		tools: make(map[entity.ToolName]output.ToolPort),
	}
}

func (r *ToolRegistryImpl) Register(tool output.ToolPort) {
	if _, exists := r.tools[tool.Name()]; !exists {
		r.order = append(r.order, tool.Name())
	}
	r.tools[tool.Name()] = tool
}

func (r *ToolRegistryImpl) Get(name entity.ToolName) (output.ToolPort, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

func (r *ToolRegistryImpl) All() []output.ToolPort {
	result := make([]output.ToolPort, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.tools[name])
	}
	return result
}

// Definitions returns the schemas for the allowed subset, in registration
// order. With no arguments it returns every registered schema.
func (r *ToolRegistryImpl) Definitions(allowed ...entity.ToolName) []entity.ToolDefinition {
	allowedSet := make(map[entity.ToolName]bool, len(allowed))
	for _, name := range allowed {
		allowedSet[name] = true
	}

	result := make([]entity.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		if len(allowed) > 0 && !allowedSet[name] {
			continue
		}
		tool := r.tools[name]
		result = append(result, entity.ToolDefinition{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  tool.Parameters(),
		})
	}
	return result
}

package entity

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// Message is a single turn in the conversation history. ImageURL, when set on a
// user turn, is presented to the model as inline image content alongside
// Content (screenshots, user-submitted images).
type Message struct {
	Role       MessageRole
	Content    string
	ImageURL   string
	ToolCalls  []ToolCall
	ToolCallID string
	Name       string
}

// ToolCall is a structured request from the model to invoke a named tool.
// ID correlates the call with its result when several calls share a turn.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

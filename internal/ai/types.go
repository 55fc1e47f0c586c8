package ai

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// Message is one entry of the conversation history.
type Message struct {
	Role       MessageRole `json:"role"`
	Content    string      `json:"content"`
	Name       string      `json:"name,omitempty"`         // For tool messages
	ToolCallID string      `json:"tool_call_id,omitempty"` // For tool response messages
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`   // For assistant call records
}

// ToolCall is a model's request to invoke one tool.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// IsCallRecord reports whether m is an assistant message carrying tool calls.
func (m Message) IsCallRecord() bool {
	return m.Role == RoleAssistant && len(m.ToolCalls) > 0
}

package ai

import (
	"context"

	"mcpchat/internal/ai/tools"
)

// CompletionRequest is one chat-completion call. A nil Tools slice means the
// model is not offered any tools.
type CompletionRequest struct {
	Model     string
	MaxTokens int
	Messages  []Message
	Tools     []tools.Descriptor
}

type Completion struct {
	Content   string
	ToolCalls []ToolCall
}

// DescribeRequest is a single-turn multimodal request.
type DescribeRequest struct {
	Model     string
	MaxTokens int
	Prompt    string
	ImageURL  string
}

// Backend is the model endpoint.
type Backend interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
	Describe(ctx context.Context, req DescribeRequest) (string, error)
}

// Transport is a connected tool provider.
type Transport interface {
	ListTools(ctx context.Context) ([]tools.Descriptor, error)
	CallTool(ctx context.Context, name string, args tools.Arguments) (string, error)
	Close() error
}

// Dialer launches and connects to the tool provider named by target.
// When it returns an error together with a non-nil Transport, the caller
// closes that transport.
type Dialer func(ctx context.Context, target string) (Transport, error)

package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"mcpchat/internal/logger"
)

const abortedToolResult = "[no result: tool call aborted]"

// OpenAIBackend talks to any OpenAI-compatible chat-completions endpoint.
type OpenAIBackend struct {
	client *openai.Client
}

func NewOpenAIBackend(apiKey, baseURL string, timeout time.Duration) (*OpenAIBackend, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = createHTTPClient(timeout)

	logger.Successf("Model client initialized for %s", cfg.BaseURL)
	return &OpenAIBackend{client: openai.NewClientWithConfig(cfg)}, nil
}

func createHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

func (b *OpenAIBackend) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	request := openai.ChatCompletionRequest{
		Model:     req.Model,
		Messages:  toChatMessages(req.Messages),
		MaxTokens: req.MaxTokens,
	}
	for _, tool := range req.Tools {
		request.Tools = append(request.Tools, tool.ToOpenAITool())
	}

	logger.AIDebugf("Chat completion: model=%s messages=%d tools=%d", req.Model, len(request.Messages), len(request.Tools))

	resp, err := b.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return Completion{}, describeAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, ErrEmptyChoices
	}

	msg := resp.Choices[0].Message
	out := Completion{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	logger.AIDebugf("Chat completion done: content=%d chars tool_calls=%d", len(out.Content), len(out.ToolCalls))
	return out, nil
}

func (b *OpenAIBackend) Describe(ctx context.Context, req DescribeRequest) (string, error) {
	request := openai.ChatCompletionRequest{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: req.Prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: req.ImageURL,
						},
					},
				},
			},
		},
	}

	logger.AIDebugf("Image request: model=%s image=%d bytes", req.Model, len(req.ImageURL))

	resp, err := b.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", describeAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyChoices
	}

	return resp.Choices[0].Message.Content, nil
}

func describeAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("API error (status %d): %s: %w", apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	return err
}

// toChatMessages converts history to the wire format. A call record whose
// result never arrived gets a placeholder tool message so strict endpoints
// accept the conversation.
func toChatMessages(msgs []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	var pending []ToolCall

	flush := func() {
		for _, call := range pending {
			out = append(out, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    abortedToolResult,
				Name:       call.Name,
				ToolCallID: call.ID,
			})
		}
		pending = nil
	}

	for _, msg := range msgs {
		if msg.Role == RoleTool {
			pending = removeCall(pending, msg.ToolCallID)
		} else {
			flush()
		}

		wire := openai.ChatCompletionMessage{
			Role:       string(msg.Role),
			Content:    msg.Content,
			Name:       msg.Name,
			ToolCallID: msg.ToolCallID,
		}
		for _, call := range msg.ToolCalls {
			wire.ToolCalls = append(wire.ToolCalls, openai.ToolCall{
				ID:   call.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
		out = append(out, wire)

		if msg.IsCallRecord() {
			pending = append(pending, msg.ToolCalls...)
		}
	}
	flush()

	return out
}

func removeCall(calls []ToolCall, id string) []ToolCall {
	for i, call := range calls {
		if call.ID == id {
			return append(calls[:i:i], calls[i+1:]...)
		}
	}
	return calls
}

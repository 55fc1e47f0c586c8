package ai

import (
	"context"
	"fmt"

	"mcpchat/internal"
	"mcpchat/internal/ai/tools"
	"mcpchat/internal/logger"
)

// ProcessQuery runs one user turn through the tool-calling protocol and
// returns the final answer. Failures are returned as an error marker that is
// also recorded in history; nothing already appended is rolled back.
func (e *Engine) ProcessQuery(ctx context.Context, query string) string {
	e.history.Append(Message{Role: RoleUser, Content: query})

	answer, err := e.runQuery(ctx)
	if err != nil {
		logger.Errorf("Query failed (%s): %v", KindOf(err), err)
		answer = Display(err)
	}

	e.history.Append(Message{Role: RoleAssistant, Content: answer})
	return answer
}

func (e *Engine) runQuery(ctx context.Context) (string, error) {
	transport := e.currentTransport()
	if transport == nil {
		return "", newError(KindConnection, "query", ErrNotConnected)
	}

	descs, err := transport.ListTools(ctx)
	if err != nil {
		return "", newError(KindProtocol, "list tools", err)
	}
	catalog := tools.NewToolRegistry(descs...)

	first, err := e.backend.Complete(ctx, CompletionRequest{
		Model:     e.cfg.PrimaryModel,
		MaxTokens: e.cfg.PrimaryMaxTokens,
		Messages:  e.history.Snapshot(),
		Tools:     catalog.GetAllTools(),
	})
	if err != nil {
		return "", newError(KindBackend, "primary model", err)
	}

	if len(first.ToolCalls) == 0 {
		return orPlaceholder(first.Content), nil
	}

	logger.AIDebugf("Model requested %d tool calls", len(first.ToolCalls))
	for i, call := range first.ToolCalls {
		if call.ID == "" {
			call.ID = fmt.Sprintf("call_%d", i)
		}
		if err := e.invokeTool(ctx, transport, catalog, call); err != nil {
			return "", err
		}
	}

	final, err := e.backend.Complete(ctx, CompletionRequest{
		Model:     e.cfg.WrapUpModel,
		MaxTokens: e.cfg.WrapUpMaxTokens,
		Messages:  e.history.Snapshot(),
	})
	if err != nil {
		return "", newError(KindBackend, "wrap-up model", err)
	}

	return orPlaceholder(final.Content), nil
}

// invokeTool records the call, runs it and records its result.
func (e *Engine) invokeTool(ctx context.Context, transport Transport, catalog *tools.ToolRegistry, call ToolCall) error {
	e.history.Append(Message{Role: RoleAssistant, ToolCalls: []ToolCall{call}})

	op := "tool " + call.Name
	args, err := catalog.PrepareCall(call.Name, call.Arguments)
	if err != nil {
		return newError(KindProtocol, op, err)
	}

	logger.AIDebugf("Calling tool %s with %s", call.Name, args)
	output, err := transport.CallTool(ctx, call.Name, args)
	if err != nil {
		return newError(KindProtocol, op, err)
	}
	logger.AIDebugf("Tool %s executed, response length: %d chars", call.Name, len(output))

	e.history.Append(Message{
		Role:       RoleTool,
		Content:    output,
		Name:       call.Name,
		ToolCallID: call.ID,
	})
	return nil
}

// ProcessImageQuery describes an image in a single stateless request.
// History is neither read nor written.
func (e *Engine) ProcessImageQuery(ctx context.Context, image ImagePayload, prompt string) string {
	url, err := image.Resolve()
	if err != nil {
		err = newError(KindInputValidation, "image", err)
		logger.Warnf("Image query rejected: %v", err)
		return Display(err)
	}

	if prompt == "" {
		prompt = e.cfg.ImagePrompt
	}

	text, err := e.backend.Describe(ctx, DescribeRequest{
		Model:     e.cfg.PrimaryModel,
		MaxTokens: e.cfg.ImageMaxTokens,
		Prompt:    prompt,
		ImageURL:  url,
	})
	if err != nil {
		err = newError(KindBackend, "image model", err)
		logger.Errorf("Image query failed: %v", err)
		return Display(err)
	}

	return orPlaceholder(text)
}

func orPlaceholder(s string) string {
	if s == "" {
		return internal.EMPTY_RESPONSE
	}
	return s
}

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"mcpchat/internal/ai/tools"
)

type capturedRequest struct {
	Model     string           `json:"model"`
	MaxTokens int              `json:"max_tokens"`
	Messages  []map[string]any `json:"messages"`
	Tools     []map[string]any `json:"tools"`
}

func newTestBackend(t *testing.T, reply string) (*OpenAIBackend, *[]capturedRequest) {
	t.Helper()

	var mu sync.Mutex
	var captured []capturedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header = %q", got)
		}

		body, _ := io.ReadAll(r.Body)
		var req capturedRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		mu.Lock()
		captured = append(captured, req)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)

	backend, err := NewOpenAIBackend("test-key", srv.URL+"/v1", 5*time.Second)
	if err != nil {
		t.Fatalf("NewOpenAIBackend: %v", err)
	}
	return backend, &captured
}

func TestNewOpenAIBackendRequiresKey(t *testing.T) {
	if _, err := NewOpenAIBackend("", "http://localhost", time.Second); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v", err)
	}
}

func TestOpenAIBackendCompleteWithToolCalls(t *testing.T) {
	reply := `{
		"id": "cmpl-1",
		"object": "chat.completion",
		"choices": [{
			"index": 0,
			"finish_reason": "tool_calls",
			"message": {
				"role": "assistant",
				"content": "",
				"tool_calls": [{
					"id": "call_1",
					"type": "function",
					"function": {"name": "search_videos", "arguments": "{\"query\":\"lofi\"}"}
				}]
			}
		}]
	}`
	backend, captured := newTestBackend(t, reply)

	desc := tools.NewDescriptor("search_videos", "Search", []byte(`{"type":"object","properties":{"query":{"type":"string"}}}`))
	got, err := backend.Complete(context.Background(), CompletionRequest{
		Model:     "primary",
		MaxTokens: 5000,
		Messages: []Message{
			{Role: RoleSystem, Content: "sys"},
			{Role: RoleUser, Content: "find lofi"},
		},
		Tools: []tools.Descriptor{desc},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if len(got.ToolCalls) != 1 {
		t.Fatalf("tool calls = %+v", got.ToolCalls)
	}
	call := got.ToolCalls[0]
	if call.ID != "call_1" || call.Name != "search_videos" || call.Arguments != `{"query":"lofi"}` {
		t.Fatalf("call = %+v", call)
	}

	req := (*captured)[0]
	if req.Model != "primary" || req.MaxTokens != 5000 {
		t.Fatalf("request = %+v", req)
	}
	if len(req.Tools) != 1 || len(req.Messages) != 2 {
		t.Fatalf("request carried %d tools and %d messages", len(req.Tools), len(req.Messages))
	}
}

func TestOpenAIBackendCompleteWithoutTools(t *testing.T) {
	reply := `{"choices":[{"index":0,"message":{"role":"assistant","content":"final"}}]}`
	backend, captured := newTestBackend(t, reply)

	got, err := backend.Complete(context.Background(), CompletionRequest{
		Model:    "wrap-up",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Content != "final" {
		t.Fatalf("content = %q", got.Content)
	}
	if tools := (*captured)[0].Tools; len(tools) != 0 {
		t.Fatalf("tools sent on a tool-less request: %v", tools)
	}
}

func TestOpenAIBackendEmptyChoices(t *testing.T) {
	backend, _ := newTestBackend(t, `{"choices":[]}`)
	_, err := backend.Complete(context.Background(), CompletionRequest{Model: "m"})
	if !errors.Is(err, ErrEmptyChoices) {
		t.Fatalf("err = %v", err)
	}
}

func TestOpenAIBackendDescribe(t *testing.T) {
	reply := `{"choices":[{"index":0,"message":{"role":"assistant","content":"a red square"}}]}`
	backend, captured := newTestBackend(t, reply)

	got, err := backend.Describe(context.Background(), DescribeRequest{
		Model:    "vision",
		Prompt:   "Describe this image.",
		ImageURL: "data:image/png;base64,AAAA",
	})
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if got != "a red square" {
		t.Fatalf("got %q", got)
	}

	msgs := (*captured)[0].Messages
	if len(msgs) != 1 {
		t.Fatalf("describe sent %d messages", len(msgs))
	}
	parts, ok := msgs[0]["content"].([]any)
	if !ok || len(parts) != 2 {
		t.Fatalf("content parts = %#v", msgs[0]["content"])
	}
	image := parts[1].(map[string]any)["image_url"].(map[string]any)
	if image["url"] != "data:image/png;base64,AAAA" {
		t.Fatalf("image part = %#v", image)
	}
}

func TestOpenAIBackendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"invalid api key","type":"auth"}}`)
	}))
	defer srv.Close()

	backend, err := NewOpenAIBackend("bad", srv.URL, time.Second)
	if err != nil {
		t.Fatalf("NewOpenAIBackend: %v", err)
	}
	_, err = backend.Complete(context.Background(), CompletionRequest{Model: "m"})
	if err == nil || !strings.Contains(err.Error(), "status 401") || !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("err = %v", err)
	}
}

func TestToChatMessagesFillsAbortedCalls(t *testing.T) {
	msgs := []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "q1"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "a", Name: "t"}}},
		{Role: RoleTool, ToolCallID: "a", Name: "t", Content: "ok"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "b", Name: "t"}}},
		{Role: RoleAssistant, Content: "[Error: tool t: boom]"},
		{Role: RoleUser, Content: "q2"},
	}

	wire := toChatMessages(msgs)
	if len(wire) != len(msgs)+1 {
		t.Fatalf("got %d wire messages, want %d", len(wire), len(msgs)+1)
	}
	filler := wire[5]
	if filler.Role != "tool" || filler.ToolCallID != "b" || filler.Content != abortedToolResult {
		t.Fatalf("filler = %+v", filler)
	}
	if wire[6].Content != "[Error: tool t: boom]" {
		t.Fatalf("error marker moved: %+v", wire[6])
	}
	if wire[2].ToolCalls[0].Function.Name != "t" || wire[2].ToolCalls[0].Type != "function" {
		t.Fatalf("call record = %+v", wire[2])
	}
}

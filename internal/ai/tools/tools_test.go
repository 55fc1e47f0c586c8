package tools

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
)

const searchSchema = `{
	"type": "object",
	"properties": {
		"query": {"type": "string", "description": "search terms"},
		"limit": {"type": "integer"},
		"order": {"type": "string", "enum": ["date", "views"]},
		"filters": {
			"type": "object",
			"properties": {"safe": {"type": "boolean"}},
			"required": ["safe"]
		},
		"tags": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["query"]
}`

func searchDescriptor() Descriptor {
	return NewDescriptor("search_videos", "Search videos", json.RawMessage(searchSchema))
}

func TestParseArgumentsValidation(t *testing.T) {
	schema := searchDescriptor().Schema()
	if schema == nil {
		t.Fatalf("schema was not parsed")
	}

	tests := []struct {
		name    string
		args    string
		wantErr string
	}{
		{"minimal", `{"query":"go"}`, ""},
		{"all fields", `{"query":"go","limit":5,"order":"views","filters":{"safe":true},"tags":["a","b"]}`, ""},
		{"integral float accepted as integer", `{"query":"go","limit":5.0}`, ""},
		{"extra fields allowed", `{"query":"go","lang":"en"}`, ""},
		{"missing required", `{"limit":5}`, "missing required field: query"},
		{"wrong type", `{"query":7}`, "field query: expected string but got number"},
		{"fractional integer", `{"query":"go","limit":2.5}`, "field limit"},
		{"enum mismatch", `{"query":"go","order":"random"}`, "field order"},
		{"nested required", `{"query":"go","filters":{}}`, "missing required field: filters.safe"},
		{"array item type", `{"query":"go","tags":["a",1]}`, "field tags[1]"},
		{"not an object", `["go"]`, "JSON object"},
		{"malformed", `{"query":`, "malformed tool arguments"},
		{"trailing data", `{"query":"go"} {}`, "trailing data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArguments(tt.args, schema)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseArgumentsEmptyString(t *testing.T) {
	args, err := ParseArguments("  ", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(args) != 0 {
		t.Fatalf("expected no arguments, got %v", args)
	}

	// empty input still has to satisfy required fields
	if _, err := ParseArguments("", searchDescriptor().Schema()); err == nil {
		t.Fatalf("expected missing required field error")
	}
}

func TestArgumentsPreserveNumbers(t *testing.T) {
	args, err := ParseArguments(`{"query":"go","limit":12345678901234,"nested":{"x":[1,null,true]}}`, nil)
	if err != nil {
		t.Fatalf("ParseArguments: %v", err)
	}

	if got := args["limit"]; got.Kind != KindNumber || got.Num.String() != "12345678901234" {
		t.Fatalf("limit = %+v", got)
	}
	nested := args["nested"]
	if nested.Kind != KindObject || len(nested.Fields["x"].Items) != 3 {
		t.Fatalf("nested = %+v", nested)
	}
	if nested.Fields["x"].Items[1].Kind != KindNull {
		t.Fatalf("expected null item, got %v", nested.Fields["x"].Items[1].Kind)
	}

	out, err := json.Marshal(args.Map())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"limit":12345678901234`) {
		t.Fatalf("number changed on encode: %s", out)
	}

	if s := args.String(); !strings.HasPrefix(s, `{"limit":12345678901234,"nested":`) {
		t.Fatalf("String() = %s", s)
	}
}

func TestClosedObjectRejectsUnknownFields(t *testing.T) {
	d := NewDescriptor("strict", "", json.RawMessage(`{"type":"object","properties":{"a":{"type":"string"}},"additionalProperties":false}`))
	if _, err := ParseArguments(`{"a":"x","b":1}`, d.Schema()); err == nil || !strings.Contains(err.Error(), "unexpected field: b") {
		t.Fatalf("expected unexpected field error, got %v", err)
	}
}

func TestUnparseableSchemaSkipsValidation(t *testing.T) {
	d := NewDescriptor("loose", "", json.RawMessage(`{"type":["object","null"]}`))
	if d.Schema() != nil {
		t.Fatalf("expected schema to be skipped")
	}
	if _, err := ParseArguments(`{"anything":1}`, d.Schema()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegistryKeepsCatalogOrder(t *testing.T) {
	r := NewToolRegistry(
		NewDescriptor("zeta", "last letter", nil),
		searchDescriptor(),
		NewDescriptor("alpha", "first letter", nil),
	)

	var names []string
	for _, d := range r.GetAllTools() {
		names = append(names, d.Name)
	}
	if strings.Join(names, ",") != "zeta,search_videos,alpha" {
		t.Fatalf("order = %v", names)
	}

	r.RegisterTool(NewDescriptor("zeta", "replaced", nil))
	if r.Len() != 3 {
		t.Fatalf("len = %d after replace", r.Len())
	}
	if d, _ := r.GetTool("zeta"); d.Description != "replaced" {
		t.Fatalf("tool not replaced: %+v", d)
	}
}

func TestDescriptorOpenAITool(t *testing.T) {
	tools := []openai.Tool{
		searchDescriptor().ToOpenAITool(),
		NewDescriptor("ping", "no params", nil).ToOpenAITool(),
	}
	if tools[0].Type != openai.ToolTypeFunction || tools[0].Function.Name != "search_videos" {
		t.Fatalf("unexpected tool: %+v", tools[0])
	}

	params, err := json.Marshal(tools[0].Function.Parameters)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	if !strings.Contains(string(params), `"required":["query"]`) {
		t.Fatalf("schema not forwarded verbatim: %s", params)
	}

	empty, err := json.Marshal(tools[1].Function.Parameters)
	if err != nil {
		t.Fatalf("marshal empty params: %v", err)
	}
	if !strings.Contains(string(empty), `"type":"object"`) {
		t.Fatalf("missing default object schema: %s", empty)
	}
}

func TestPrepareCall(t *testing.T) {
	r := NewToolRegistry(searchDescriptor())

	args, err := r.PrepareCall("search_videos", `{"query":"lofi"}`)
	if err != nil {
		t.Fatalf("PrepareCall: %v", err)
	}
	if args["query"].Str != "lofi" {
		t.Fatalf("query = %+v", args["query"])
	}

	if _, err := r.PrepareCall("missing", `{}`); err == nil {
		t.Fatalf("expected unknown tool error")
	}
	if _, err := r.PrepareCall("search_videos", `{}`); err == nil || !strings.Contains(err.Error(), "invalid arguments for search_videos") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("héllo wörld", 8); got != "héllo..." {
		t.Fatalf("got %q", got)
	}
	if got := TruncateString("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
}

package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// toolErrorText prefixes output of results the provider flagged as failed.
const toolErrorText = "Error: "

// NormalizeResult joins the text parts of a tool result with newlines.
// Non-text parts are rendered as short placeholders, and structured content
// is used only when there is nothing else.
func NormalizeResult(result *mcpsdk.CallToolResult) string {
	if result == nil {
		return ""
	}

	parts := make([]string, 0, len(result.Content))
	for _, content := range result.Content {
		switch c := content.(type) {
		case *mcpsdk.TextContent:
			parts = append(parts, c.Text)
		case *mcpsdk.ImageContent:
			parts = append(parts, fmt.Sprintf("[image: %s]", c.MIMEType))
		default:
			raw, err := json.Marshal(content)
			if err != nil {
				parts = append(parts, fmt.Sprintf("[%T]", content))
				continue
			}
			parts = append(parts, string(raw))
		}
	}

	if len(parts) == 0 && result.StructuredContent != nil {
		if raw, err := json.Marshal(result.StructuredContent); err == nil {
			return string(raw)
		}
	}

	return strings.Join(parts, "\n")
}

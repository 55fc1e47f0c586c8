package tools

import (
	"encoding/json"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"mcpchat/internal/logger"
)

// Descriptor is one entry of a tool provider's catalog.
type Descriptor struct {
	Name        string
	Description string
	// InputSchema is the JSON schema exactly as the provider published it.
	InputSchema json.RawMessage

	schema *jsonschema.Definition
}

// NewDescriptor builds a descriptor and parses its schema for argument validation.
// Schemas the parser cannot represent are still forwarded to the model but
// arguments for them are only checked for being a JSON object.
func NewDescriptor(name, description string, inputSchema json.RawMessage) Descriptor {
	d := Descriptor{
		Name:        name,
		Description: description,
		InputSchema: inputSchema,
	}

	if len(inputSchema) > 0 {
		var def jsonschema.Definition
		if err := json.Unmarshal(inputSchema, &def); err != nil {
			logger.AIDebugf("Schema for tool %s not validated: %v", name, err)
		} else {
			d.schema = &def
		}
	}

	return d
}

// Schema returns the parsed input schema, or nil when there is none.
func (d Descriptor) Schema() *jsonschema.Definition {
	return d.schema
}

func (d Descriptor) ToOpenAITool() openai.Tool {
	var params any = d.InputSchema
	if len(d.InputSchema) == 0 {
		params = jsonschema.Definition{
			Type:       jsonschema.Object,
			Properties: map[string]jsonschema.Definition{},
		}
	}

	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  params,
		},
	}
}

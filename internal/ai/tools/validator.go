package tools

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// validateObject checks required fields, declared property types, enums and
// closed objects. Nested objects and array items are checked recursively.
func validateObject(path string, params map[string]any, schema *jsonschema.Definition) error {
	if schema.Type != "" && schema.Type != jsonschema.Object {
		return fmt.Errorf("%sschema type %q cannot describe an argument object", prefix(path), schema.Type)
	}

	for _, field := range schema.Required {
		if _, exists := params[field]; !exists {
			return fmt.Errorf("missing required field: %s%s", prefix(path), field)
		}
	}

	closed := false
	if b, ok := schema.AdditionalProperties.(bool); ok && !b {
		closed = true
	}

	for key, value := range params {
		def, ok := schema.Properties[key]
		if !ok {
			if closed {
				return fmt.Errorf("unexpected field: %s%s", prefix(path), key)
			}
			continue
		}
		if err := validateValue(join(path, key), value, &def); err != nil {
			return err
		}
	}

	return nil
}

func validateValue(path string, value any, def *jsonschema.Definition) error {
	if def.Type != "" {
		if err := validateType(value, def.Type); err != nil {
			return fmt.Errorf("field %s: %w", path, err)
		}
	}

	if len(def.Enum) > 0 {
		s, ok := value.(string)
		if !ok || !contains(def.Enum, s) {
			return fmt.Errorf("field %s: value %v not in %v", path, value, def.Enum)
		}
	}

	switch v := value.(type) {
	case map[string]any:
		if def.Type == jsonschema.Object || len(def.Properties) > 0 || len(def.Required) > 0 {
			return validateObject(path, v, def)
		}
	case []any:
		if def.Items != nil {
			for i, item := range v {
				if err := validateValue(fmt.Sprintf("%s[%d]", path, i), item, def.Items); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func validateType(value any, expected jsonschema.DataType) error {
	switch expected {
	case jsonschema.String:
		if _, ok := value.(string); ok {
			return nil
		}
	case jsonschema.Number:
		if n, ok := value.(json.Number); ok {
			if _, err := n.Float64(); err == nil {
				return nil
			}
		}
	case jsonschema.Integer:
		if n, ok := value.(json.Number); ok && isInteger(n) {
			return nil
		}
	case jsonschema.Boolean:
		if _, ok := value.(bool); ok {
			return nil
		}
	case jsonschema.Object:
		if _, ok := value.(map[string]any); ok {
			return nil
		}
	case jsonschema.Array:
		if _, ok := value.([]any); ok {
			return nil
		}
	case jsonschema.Null:
		if value == nil {
			return nil
		}
	default:
		return fmt.Errorf("unsupported schema type %q", expected)
	}
	return fmt.Errorf("expected %s but got %s", expected, describe(value))
}

func isInteger(n json.Number) bool {
	if _, err := n.Int64(); err == nil {
		return true
	}
	f, err := n.Float64()
	return err == nil && math.Trunc(f) == f
}

func describe(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", value)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func prefix(path string) string {
	if path == "" {
		return ""
	}
	return path + "."
}

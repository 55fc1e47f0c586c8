package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"
)

type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is one JSON value of a tool argument.
type Value struct {
	Kind   Kind
	Str    string
	Num    json.Number
	Bool   bool
	Items  []Value
	Fields map[string]Value
}

// Arguments are the named, validated inputs of one tool invocation.
type Arguments map[string]Value

var ErrNotObject = errors.New("tool arguments must be a JSON object")

// ParseArguments decodes the model's argument string and validates it against
// schema. An empty string is an empty argument set. A nil schema only requires
// a JSON object.
func ParseArguments(raw string, schema *jsonschema.Definition) (Arguments, error) {
	decoded := map[string]any{}

	if strings.TrimSpace(raw) != "" {
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.UseNumber()

		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("malformed tool arguments: %w", err)
		}
		if _, err := dec.Token(); err != io.EOF {
			return nil, fmt.Errorf("malformed tool arguments: trailing data")
		}

		obj, ok := v.(map[string]any)
		if !ok {
			return nil, ErrNotObject
		}
		decoded = obj
	}

	if schema != nil {
		if err := validateObject("", decoded, schema); err != nil {
			return nil, err
		}
	}

	args := make(Arguments, len(decoded))
	for key, item := range decoded {
		val, err := FromAny(item)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		args[key] = val
	}

	return args, nil
}

// FromAny converts a value produced by encoding/json (with UseNumber) into a Value.
func FromAny(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Value{Kind: KindNull}, nil
	case string:
		return Value{Kind: KindString, Str: t}, nil
	case json.Number:
		return Value{Kind: KindNumber, Num: t}, nil
	case float64:
		return Value{Kind: KindNumber, Num: json.Number(fmt.Sprint(t))}, nil
	case bool:
		return Value{Kind: KindBool, Bool: t}, nil
	case []any:
		items := make([]Value, 0, len(t))
		for i, item := range t {
			val, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items = append(items, val)
		}
		return Value{Kind: KindArray, Items: items}, nil
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for key, item := range t {
			val, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("field %s: %w", key, err)
			}
			fields[key] = val
		}
		return Value{Kind: KindObject, Fields: fields}, nil
	}
	return Value{}, fmt.Errorf("unsupported value type %T", v)
}

// Any converts the value back to plain Go values for encoding.
func (v Value) Any() any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	case KindArray:
		items := make([]any, 0, len(v.Items))
		for _, item := range v.Items {
			items = append(items, item.Any())
		}
		return items
	case KindObject:
		fields := make(map[string]any, len(v.Fields))
		for key, item := range v.Fields {
			fields[key] = item.Any()
		}
		return fields
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

// Map returns the arguments as a plain map suitable for a transport call.
func (a Arguments) Map() map[string]any {
	out := make(map[string]any, len(a))
	for key, val := range a {
		out[key] = val.Any()
	}
	return out
}

// String renders the arguments as compact JSON with sorted keys, for logs.
func (a Arguments) String() string {
	keys := make([]string, 0, len(a))
	for key := range a {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b bytes.Buffer
	b.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		v, _ := json.Marshal(a[key])
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.String()
}

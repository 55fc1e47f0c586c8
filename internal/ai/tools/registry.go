// Package tools holds the catalog a tool provider publishes and turns
// model-produced argument strings into validated, typed arguments.
package tools

import (
	"fmt"
	"sync"

	"mcpchat/internal/logger"
)

// ToolRegistry is the catalog fetched for one query.
// Tools keep the order in which the provider listed them.
type ToolRegistry struct {
	tools map[string]Descriptor
	order []string
	mu    sync.RWMutex
}

// NewToolRegistry creates a registry holding descs.
func NewToolRegistry(descs ...Descriptor) *ToolRegistry {
	r := &ToolRegistry{
		tools: make(map[string]Descriptor, len(descs)),
	}
	for _, d := range descs {
		r.RegisterTool(d)
	}
	return r
}

// RegisterTool adds a tool to the registry.
// If a tool with the same name already exists, it will be replaced in place.
func (r *ToolRegistry) RegisterTool(tool Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		logger.Warnf("Replacing existing tool: %s", tool.Name)
	} else {
		r.order = append(r.order, tool.Name)
	}

	r.tools[tool.Name] = tool
	logger.AIDebugf("Registered tool: %s", tool.Name)
}

// GetTool returns a tool by name.
func (r *ToolRegistry) GetTool(name string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	if !exists {
		return Descriptor{}, fmt.Errorf("tool '%s' not found", name)
	}

	return tool, nil
}

// GetAllTools returns every tool in catalog order.
func (r *ToolRegistry) GetAllTools() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name])
	}

	return tools
}

func (r *ToolRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// PrepareCall looks up name and parses args against its schema.
// Arguments should be the JSON object string produced by the model.
func (r *ToolRegistry) PrepareCall(name string, args string) (Arguments, error) {
	tool, err := r.GetTool(name)
	if err != nil {
		return nil, err
	}

	logger.AIDebugf("Preparing tool: %s with args: %s", name, TruncateString(args, 500))
	parsed, err := ParseArguments(args, tool.Schema())
	if err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %w", name, err)
	}

	return parsed, nil
}

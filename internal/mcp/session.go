// Package mcp launches a tool-provider script as a subprocess and talks to it
// over the Model Context Protocol on stdio.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"mcpchat/internal"
	"mcpchat/internal/ai"
	"mcpchat/internal/ai/tools"
	"mcpchat/internal/config"
	"mcpchat/internal/logger"
)

// transportBuilder is overridden in tests to stub the transport factory.
var transportBuilder = buildTransport

var (
	ErrEmptyTarget       = errors.New("server script path is empty")
	ErrUnsupportedScript = errors.New("server script must be a .py or .js file")
)

// Target is a resolved launch command for a tool-provider script.
type Target struct {
	Script  string
	Command string
	Args    []string
}

// ResolveTarget picks the interpreter for script from its extension.
func ResolveTarget(script string, cfg config.ServerConfig) (Target, error) {
	script = strings.TrimSpace(script)
	if script == "" {
		return Target{}, ErrEmptyTarget
	}

	var command string
	switch filepath.Ext(script) {
	case ".py":
		command = cfg.Python
		if command == "" {
			command = internal.DEFAULT_PYTHON_COMMAND
		}
	case ".js":
		command = cfg.Node
		if command == "" {
			command = internal.DEFAULT_NODE_COMMAND
		}
	default:
		return Target{}, fmt.Errorf("%w: %s", ErrUnsupportedScript, script)
	}

	return Target{Script: script, Command: command, Args: []string{script}}, nil
}

func buildTransport(target Target) (mcpsdk.Transport, error) {
	if target.Command == "" {
		return nil, ErrEmptyTarget
	}
	// The process outlives the handshake context, so it is not bound to one.
	cmd := exec.Command(target.Command, target.Args...)
	cmd.Stderr = logger.Writer(filepath.Base(target.Script))
	return &mcpsdk.CommandTransport{Command: cmd}, nil
}

// Session is a connected tool provider.
type Session struct {
	target  Target
	session *mcpsdk.ClientSession

	mu     sync.Mutex
	closed bool
}

// Connect starts the provider and performs the initialize handshake.
func Connect(ctx context.Context, target Target) (*Session, error) {
	transport, err := transportBuilder(target)
	if err != nil {
		return nil, fmt.Errorf("build transport: %w", err)
	}

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: internal.APP_NAME, Version: internal.APP_VERSION}, nil)
	cs, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("handshake with %s: %w", target.Script, err)
	}

	logger.Debugf("MCP session established with %s (%s)", target.Script, target.Command)
	return &Session{target: target, session: cs}, nil
}

// NewDialer returns an engine dialer that launches scripts per cfg.
func NewDialer(cfg config.ServerConfig) ai.Dialer {
	return func(ctx context.Context, script string) (ai.Transport, error) {
		target, err := ResolveTarget(script, cfg)
		if err != nil {
			return nil, err
		}
		s, err := Connect(ctx, target)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// ListTools fetches the provider's full catalog.
func (s *Session) ListTools(ctx context.Context) ([]tools.Descriptor, error) {
	cs, err := s.live()
	if err != nil {
		return nil, err
	}

	var descs []tools.Descriptor
	for tool, err := range cs.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("list tools: %w", err)
		}
		descs = append(descs, toDescriptor(tool))
	}
	return descs, nil
}

// CallTool invokes name and returns its normalized text output. A result the
// provider flags as an error is still output for the model, prefixed with
// "Error: "; only transport failures return an error.
func (s *Session) CallTool(ctx context.Context, name string, args tools.Arguments) (string, error) {
	cs, err := s.live()
	if err != nil {
		return "", err
	}

	result, err := cs.CallTool(ctx, &mcpsdk.CallToolParams{Name: name, Arguments: args.Map()})
	if err != nil {
		return "", fmt.Errorf("call %s: %w", name, err)
	}

	text := NormalizeResult(result)
	if result.IsError {
		logger.Warnf("Tool %s reported an error: %s", name, text)
		return toolErrorText + text, nil
	}
	return text, nil
}

// Close ends the session and stops the subprocess. Later calls are no-ops.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.session == nil {
		return nil
	}
	if err := s.session.Close(); err != nil {
		return fmt.Errorf("close session with %s: %w", s.target.Script, err)
	}
	return nil
}

func (s *Session) live() (*mcpsdk.ClientSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.session == nil {
		return nil, ai.ErrNotConnected
	}
	return s.session, nil
}

func toDescriptor(tool *mcpsdk.Tool) tools.Descriptor {
	if tool == nil {
		return tools.Descriptor{}
	}

	var schema json.RawMessage
	if tool.InputSchema != nil {
		raw, err := json.Marshal(tool.InputSchema)
		if err != nil {
			logger.Warnf("Dropping unencodable schema for tool %s: %v", tool.Name, err)
		} else {
			schema = raw
		}
	}

	return tools.NewDescriptor(tool.Name, tool.Description, schema)
}

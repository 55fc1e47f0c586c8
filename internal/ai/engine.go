package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"mcpchat/internal"
	"mcpchat/internal/logger"
)

// Engine runs the tool-calling conversation against one connected tool provider.
type Engine struct {
	cfg     Config
	backend Backend
	dial    Dialer
	history *History

	mu        sync.Mutex
	transport Transport
	target    string
}

func NewEngine(backend Backend, dial Dialer, cfg Config) *Engine {
	return &Engine{
		cfg:     cfg,
		backend: backend,
		dial:    dial,
		history: NewHistory(cfg.SystemPrompt),
	}
}

// Connect launches the tool provider at target and performs the handshake.
// On failure everything acquired so far is released and a connection error
// wrapping the cause is returned.
func (e *Engine) Connect(ctx context.Context, target string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.transport != nil {
		return newError(KindConnection, "connect "+target, ErrAlreadyConnected)
	}

	if e.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.ConnectTimeout)
		defer cancel()
	}

	logger.Infof("Connecting to tool provider: %s", target)
	t, err := e.dial(ctx, target)
	if err != nil {
		if t != nil {
			closeQuietly(t)
		}
		return newError(KindConnection, "connect "+target, err)
	}

	descs, err := t.ListTools(ctx)
	if err != nil {
		closeQuietly(t)
		return newError(KindConnection, "connect "+target, fmt.Errorf("list tools: %w", err))
	}

	names := make([]string, 0, len(descs))
	for _, d := range descs {
		names = append(names, d.Name)
	}
	logger.Successf("Connected to %s with tools: %s", target, strings.Join(names, ", "))

	e.transport = t
	e.target = target
	return nil
}

func closeQuietly(t Transport) {
	if err := t.Close(); err != nil {
		logger.Warnf("Error releasing tool provider: %v", err)
	}
}

// ResetConversation drops everything but the system message.
func (e *Engine) ResetConversation() string {
	e.history.Reset()
	logger.Infof("Conversation reset")
	return internal.RESET_MESSAGE
}

// Cleanup releases the tool provider. It is safe to call more than once and
// never fails; errors are logged.
func (e *Engine) Cleanup() {
	e.mu.Lock()
	t := e.transport
	e.transport = nil
	e.mu.Unlock()

	if t == nil {
		return
	}

	if err := t.Close(); err != nil {
		logger.Warnf("Error during cleanup: %v", newError(KindResourceCleanup, "cleanup", err))
		return
	}
	logger.Infof("Tool provider released")
}

// History returns a copy of the conversation.
func (e *Engine) History() []Message {
	return e.history.Snapshot()
}

func (e *Engine) currentTransport() Transport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transport
}

// Status reports the engine's configuration and connection state.
func (e *Engine) Status() map[string]interface{} {
	e.mu.Lock()
	connected := e.transport != nil
	target := e.target
	e.mu.Unlock()

	return map[string]interface{}{
		"connected":    connected,
		"target":       target,
		"primaryModel": e.cfg.PrimaryModel,
		"wrapUpModel":  e.cfg.WrapUpModel,
		"historyLen":   e.history.Len(),
	}
}

package ai

import (
	"errors"
	"fmt"
)

// Kind classifies engine failures.
type Kind int

const (
	KindConnection Kind = iota + 1
	KindProtocol
	KindBackend
	KindInputValidation
	KindResourceCleanup
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection error"
	case KindProtocol:
		return "protocol error"
	case KindBackend:
		return "backend error"
	case KindInputValidation:
		return "invalid input"
	case KindResourceCleanup:
		return "cleanup error"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

var (
	ErrMissingAPIKey    = errors.New("API key not found")
	ErrNotConnected     = errors.New("not connected to a tool provider")
	ErrAlreadyConnected = errors.New("already connected to a tool provider")
	ErrEmptyChoices     = errors.New("model returned no choices")
	ErrInvalidImage     = errors.New("invalid image data or file path")
)

// Error is the structured failure carried inside the engine. It becomes a
// string only when handed to the presentation layer via Display.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Display formats err as the bracketed marker shown in transcripts.
func Display(err error) string {
	return "[Error: " + err.Error() + "]"
}

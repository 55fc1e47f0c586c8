package ai

import (
	"sync"
)

// History is the ordered conversation. The first message is always the
// single system message.
type History struct {
	mu           sync.Mutex
	messages     []Message
	systemPrompt string
}

func NewHistory(systemPrompt string) *History {
	return &History{
		messages:     []Message{{Role: RoleSystem, Content: systemPrompt}},
		systemPrompt: systemPrompt,
	}
}

func (h *History) Append(msgs ...Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msgs...)
}

// Snapshot returns a copy of the messages.
func (h *History) Snapshot() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// Reset keeps only the first system message, synthesising one from the
// configured prompt when none is present.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, msg := range h.messages {
		if msg.Role == RoleSystem {
			h.messages = []Message{msg}
			return
		}
	}
	h.messages = []Message{{Role: RoleSystem, Content: h.systemPrompt}}
}

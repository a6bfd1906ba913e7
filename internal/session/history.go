package session

import (
	"sync"

	"github.com/firebase/genkit/go/ai"
)

// History encapsulates conversation history with thread-safe access.
// It is append-only during normal operation: entries are only removed by
// Clear, which the owning session calls on reset.
//
// Note: The zero value is NOT useful - use NewHistory() to create instances.
type History struct {
	mu       sync.RWMutex
	messages []*ai.Message
}

// NewHistory creates a new History instance.
func NewHistory() *History {
	return &History{
		messages: make([]*ai.Message, 0),
	}
}

// Messages returns a copy of all messages for thread-safe access.
func (h *History) Messages() []*ai.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	result := make([]*ai.Message, len(h.messages))
	copy(result, h.messages)
	return result
}

// Add appends a user message and the assistant response as one unit.
// A turn lands in history complete or not at all; the caller only invokes
// Add after the assistant response is known.
func (h *History) Add(userInput, assistantResponse string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages,
		ai.NewUserMessage(ai.NewTextPart(userInput)),
		ai.NewModelMessage(ai.NewTextPart(assistantResponse)),
	)
}

// Count returns the number of messages.
func (h *History) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}

// Clear removes all messages.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = make([]*ai.Message, 0)
}

// Role constants define valid message roles for transcript rendering.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Entry is one rendered transcript message for API responses.
type Entry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Entries renders the history as role/content pairs.
func (h *History) Entries() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	entries := make([]Entry, 0, len(h.messages))
	for _, msg := range h.messages {
		role := RoleAssistant
		if msg.Role == ai.RoleUser {
			role = RoleUser
		}
		entries = append(entries, Entry{Role: role, Content: msg.Text()})
	}
	return entries
}

package agent

import "github.com/songwd/calassist/internal/llm"

// History caps, in messages. One exchange adds two messages, so the CLI
// remembers the last five exchanges and the web UI the last ten.
const (
	CLIHistoryLimit = 10
	WebHistoryLimit = 20
)

// Turn is one user or assistant message kept across exchanges. Tool
// traffic within an exchange is not retained.
type Turn struct {
	Role    string
	Content string
}

// History holds the rolling conversation window. Not safe for concurrent
// use; callers serialize access per conversation.
type History struct {
	turns []Turn
	limit int
}

// NewHistory creates a history that keeps at most limit messages. A limit
// of zero or less means unbounded.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// AddExchange records one user input and the assistant's reply, then
// trims to the limit.
func (h *History) AddExchange(userInput, assistantReply string) {
	h.turns = append(h.turns,
		Turn{Role: llm.RoleUser, Content: userInput},
		Turn{Role: llm.RoleAssistant, Content: assistantReply},
	)
	if h.limit > 0 && len(h.turns) > h.limit {
		h.turns = h.turns[len(h.turns)-h.limit:]
	}
}

// Turns returns the retained messages, oldest first.
func (h *History) Turns() []Turn {
	return h.turns
}

// Len returns the number of retained messages.
func (h *History) Len() int {
	return len(h.turns)
}

// Clear drops all retained messages.
func (h *History) Clear() {
	h.turns = nil
}

// messages converts the retained turns to chat messages.
func (h *History) messages() []llm.Message {
	msgs := make([]llm.Message, 0, len(h.turns))
	for _, t := range h.turns {
		msgs = append(msgs, llm.Message{Role: t.Role, Content: t.Content})
	}
	return msgs
}

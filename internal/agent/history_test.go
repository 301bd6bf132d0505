package agent

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/songwd/calassist/internal/llm"
)

func TestHistoryAddExchange(t *testing.T) {
	h := NewHistory(CLIHistoryLimit)
	h.AddExchange("hi", "hello")

	assert.Equal(t, 2, h.Len())
	turns := h.Turns()
	assert.Equal(t, llm.RoleUser, turns[0].Role)
	assert.Equal(t, "hi", turns[0].Content)
	assert.Equal(t, llm.RoleAssistant, turns[1].Role)
	assert.Equal(t, "hello", turns[1].Content)
}

func TestHistoryTrimsToLimit(t *testing.T) {
	h := NewHistory(CLIHistoryLimit)
	for i := 0; i < 8; i++ {
		h.AddExchange(fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
	}

	assert.Equal(t, CLIHistoryLimit, h.Len())
	// The oldest surviving message is the user turn of exchange 3.
	assert.Equal(t, "question 3", h.Turns()[0].Content)
	assert.Equal(t, "answer 7", h.Turns()[9].Content)
}

func TestHistoryUnbounded(t *testing.T) {
	h := NewHistory(0)
	for i := 0; i < 50; i++ {
		h.AddExchange("q", "a")
	}
	assert.Equal(t, 100, h.Len())
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(WebHistoryLimit)
	h.AddExchange("q", "a")
	h.Clear()
	assert.Zero(t, h.Len())
}

package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songwd/calassist/internal/llm"
	"github.com/songwd/calassist/internal/tools"
)

// scriptedLLM returns canned replies in order and records the message
// lists it was called with.
type scriptedLLM struct {
	replies []llm.Message
	err     error
	calls   [][]llm.Message
}

func (s *scriptedLLM) CreateChatCompletion(ctx context.Context, messages []llm.Message, toolDefs []llm.Tool) (*llm.Message, error) {
	s.calls = append(s.calls, messages)
	if s.err != nil {
		return nil, s.err
	}
	reply := s.replies[len(s.calls)-1]
	return &reply, nil
}

func toolCallReply(id, name, args string) llm.Message {
	return llm.Message{
		Role: llm.RoleAssistant,
		ToolCalls: []llm.ToolCall{{
			ID:   id,
			Type: "function",
			Function: llm.FunctionCall{
				Name:      name,
				Arguments: args,
			},
		}},
	}
}

func newAgentWithEcho(completer ChatCompleter) *Agent {
	r := tools.NewRegistry()
	r.Register(tools.Tool{
		Name:        "echo",
		Description: "echoes the message",
		Parameters:  map[string]any{"type": "object"},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			msg, _ := args["message"].(string)
			return "echoed " + msg, nil
		},
	})
	return New(completer, r, nil)
}

func TestRespondPlainAnswer(t *testing.T) {
	mock := &scriptedLLM{replies: []llm.Message{
		llm.AssistantMessage("You have no meetings today."),
	}}
	a := newAgentWithEcho(mock)

	reply := a.Respond(context.Background(), NewHistory(CLIHistoryLimit), "what meetings do I have?")
	assert.Equal(t, "You have no meetings today.", reply)
	require.Len(t, mock.calls, 1)

	// System prompt first, user input last.
	msgs := mock.calls[0]
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Equal(t, "what meetings do I have?", msgs[len(msgs)-1].Content)
}

func TestRespondExecutesToolThenAnswers(t *testing.T) {
	mock := &scriptedLLM{replies: []llm.Message{
		toolCallReply("call_1", "echo", `{"message":"hi"}`),
		llm.AssistantMessage("done"),
	}}
	a := newAgentWithEcho(mock)

	reply := a.Respond(context.Background(), NewHistory(CLIHistoryLimit), "run echo")
	assert.Equal(t, "done", reply)
	require.Len(t, mock.calls, 2)

	// Second call carries the assistant tool call and the tool result.
	second := mock.calls[1]
	toolMsg := second[len(second)-1]
	assert.Equal(t, llm.RoleTool, toolMsg.Role)
	assert.Equal(t, "call_1", toolMsg.ToolCallID)
	assert.Equal(t, "echoed hi", toolMsg.Content)
}

func TestRespondIncludesHistory(t *testing.T) {
	mock := &scriptedLLM{replies: []llm.Message{
		llm.AssistantMessage("ok"),
	}}
	a := newAgentWithEcho(mock)

	h := NewHistory(CLIHistoryLimit)
	h.AddExchange("earlier question", "earlier answer")

	a.Respond(context.Background(), h, "followup")
	msgs := mock.calls[0]
	require.Len(t, msgs, 4)
	assert.Equal(t, "earlier question", msgs[1].Content)
	assert.Equal(t, "earlier answer", msgs[2].Content)
}

func TestRespondIterationBudget(t *testing.T) {
	// The model keeps requesting tools; the loop must stop after three
	// completions and degrade to the apology.
	mock := &scriptedLLM{replies: []llm.Message{
		toolCallReply("c1", "echo", `{"message":"1"}`),
		toolCallReply("c2", "echo", `{"message":"2"}`),
		toolCallReply("c3", "echo", `{"message":"3"}`),
	}}
	a := newAgentWithEcho(mock)

	reply := a.Respond(context.Background(), NewHistory(CLIHistoryLimit), "loop forever")
	assert.Len(t, mock.calls, 3)
	assert.Equal(t, apologyMessage, reply)
}

func TestRespondIterationBudgetKeepsPartialAnswer(t *testing.T) {
	withContent := toolCallReply("c1", "echo", `{"message":"1"}`)
	withContent.Content = "Let me check your calendar."

	mock := &scriptedLLM{replies: []llm.Message{
		withContent,
		toolCallReply("c2", "echo", `{"message":"2"}`),
		toolCallReply("c3", "echo", `{"message":"3"}`),
	}}
	a := newAgentWithEcho(mock)

	reply := a.Respond(context.Background(), NewHistory(CLIHistoryLimit), "loop")
	assert.Equal(t, "Let me check your calendar.", reply)
}

func TestRespondLLMError(t *testing.T) {
	mock := &scriptedLLM{err: errors.New("rate limited")}
	a := newAgentWithEcho(mock)

	reply := a.Respond(context.Background(), NewHistory(CLIHistoryLimit), "hello")
	assert.Equal(t, apologyMessage, reply)
}

func TestRespondUnknownToolSurfacedToModel(t *testing.T) {
	mock := &scriptedLLM{replies: []llm.Message{
		toolCallReply("c1", "does_not_exist", `{}`),
		llm.AssistantMessage("sorry about that"),
	}}
	a := newAgentWithEcho(mock)

	reply := a.Respond(context.Background(), NewHistory(CLIHistoryLimit), "hello")
	assert.Equal(t, "sorry about that", reply)

	second := mock.calls[1]
	toolMsg := second[len(second)-1]
	assert.Contains(t, toolMsg.Content, "Error:")
	assert.Contains(t, toolMsg.Content, "unknown tool")
}

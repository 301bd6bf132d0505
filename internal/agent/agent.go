package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/songwd/calassist/internal/llm"
	"github.com/songwd/calassist/internal/logging"
	"github.com/songwd/calassist/internal/tools"
)

// maxIterations bounds the number of model round trips per user input.
// Each iteration is one chat completion plus the tool calls it requests.
const maxIterations = 3

// apologyMessage is returned when a model call fails or the iteration
// budget runs out without a final answer. The user sees this instead of
// internal error detail.
const apologyMessage = "I apologize, but I encountered an error processing your request. Please try again."

// ChatCompleter is the LLM surface the agent needs. *llm.Client
// satisfies it.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, messages []llm.Message, toolDefs []llm.Tool) (*llm.Message, error)
}

// Agent runs the tool-calling loop: it sends the conversation to the
// model, executes any tool calls the model makes, and repeats until the
// model answers in plain text or the iteration budget is spent.
type Agent struct {
	llm      ChatCompleter
	registry *tools.Registry
	logger   *slog.Logger
}

// New creates an Agent. If logger is nil, slog.Default() is used.
func New(completer ChatCompleter, registry *tools.Registry, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		llm:      completer,
		registry: registry,
		logger:   logger,
	}
}

// Respond processes one user input against the conversation history and
// returns the assistant's reply. It never returns an error; failures
// degrade to an apology so the conversation can continue. The caller is
// responsible for appending the exchange to the history afterwards.
func (a *Agent) Respond(ctx context.Context, history *History, input string) string {
	start := time.Now()

	messages := make([]llm.Message, 0, history.Len()+2)
	messages = append(messages, llm.SystemMessage(systemPrompt))
	messages = append(messages, history.messages()...)
	messages = append(messages, llm.UserMessage(input))

	toolDefs := a.registry.Definitions()

	// lastContent keeps any partial answer the model produced alongside
	// tool calls, as a fallback if the budget runs out.
	var lastContent string

	for iteration := 1; iteration <= maxIterations; iteration++ {
		reply, err := a.llm.CreateChatCompletion(ctx, messages, toolDefs)
		if err != nil {
			a.logger.Error("chat completion failed",
				slog.Int("iteration", iteration),
				logging.Err(err))
			return apologyMessage
		}

		if len(reply.ToolCalls) == 0 {
			a.logger.Debug("agent answered",
				slog.Int("iterations", iteration),
				logging.Duration(time.Since(start)))
			return reply.Content
		}

		if reply.Content != "" {
			lastContent = reply.Content
		}

		messages = append(messages, *reply)
		for _, call := range reply.ToolCalls {
			messages = append(messages, a.executeToolCall(ctx, call))
		}
	}

	a.logger.Warn("iteration budget exhausted",
		slog.Int("iterations", maxIterations),
		logging.Duration(time.Since(start)))
	if lastContent != "" {
		return lastContent
	}
	return apologyMessage
}

// executeToolCall runs one tool call and wraps the outcome in a tool
// message. Execution errors are surfaced to the model as text so it can
// explain the failure or retry with different arguments.
func (a *Agent) executeToolCall(ctx context.Context, call llm.ToolCall) llm.Message {
	name := call.Function.Name
	result, err := a.registry.Execute(ctx, name, call.Function.Arguments)
	if err != nil {
		a.logger.Error("tool execution failed",
			logging.Tool(name),
			logging.Err(err))
		result = fmt.Sprintf("Error: %v", err)
	}
	return llm.ToolMessage(call.ID, name, result)
}

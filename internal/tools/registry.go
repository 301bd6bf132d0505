package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/songwd/calassist/internal/instrumentation"
	"github.com/songwd/calassist/internal/llm"
)

// Handler executes a tool with parsed arguments and returns a textual
// result for the model. Errors are reserved for dispatch failures; domain
// failures (booking rejected, slot taken) come back as result text so the
// model can relay them to the user.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Tool describes one callable tool: its schema as advertised to the model
// and the handler that runs it.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Handler     Handler
}

// Registry holds the tools available to the agent. Registration order is
// preserved so the definitions sent to the model are stable.
type Registry struct {
	tools   []Tool
	byName  map[string]int
	metrics *instrumentation.Metrics
	audit   *instrumentation.AuditLogger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]int),
	}
}

// WithInstrumentation attaches metrics and audit logging to tool execution.
// Either argument may be nil.
func (r *Registry) WithInstrumentation(metrics *instrumentation.Metrics, audit *instrumentation.AuditLogger) *Registry {
	r.metrics = metrics
	r.audit = audit
	return r
}

// Register adds a tool. Registering the same name twice replaces the
// earlier definition in place.
func (r *Registry) Register(t Tool) {
	if idx, ok := r.byName[t.Name]; ok {
		r.tools[idx] = t
		return
	}
	r.byName[t.Name] = len(r.tools)
	r.tools = append(r.tools, t)
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.tools))
	for i, t := range r.tools {
		names[i] = t.Name
	}
	return names
}

// Definitions returns the tool schemas in the shape the chat completions
// API expects.
func (r *Registry) Definitions() []llm.Tool {
	defs := make([]llm.Tool, len(r.tools))
	for i, t := range r.tools {
		defs[i] = llm.Tool{
			Type: "function",
			Function: llm.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return defs
}

// Execute parses the model's JSON arguments and dispatches to the named
// tool. An unknown tool or malformed arguments is a dispatch error; the
// caller decides how to surface it to the model.
func (r *Registry) Execute(ctx context.Context, name, rawArgs string) (string, error) {
	idx, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	tool := r.tools[idx]

	args := make(map[string]any)
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return "", fmt.Errorf("failed to parse arguments for tool %s: %w", name, err)
		}
	}

	if r.metrics == nil && r.audit == nil {
		return tool.Handler(ctx, args)
	}

	start := time.Now()
	invocation := instrumentation.NewToolInvocation(name)
	if session := SessionFromContext(ctx); session != "" {
		invocation.WithSession(session)
	}

	result, err := tool.Handler(ctx, args)
	duration := time.Since(start)

	if err != nil {
		invocation.CompleteWithError(err)
	} else {
		invocation.Complete(true)
	}

	r.metrics.RecordToolInvocation(ctx, name, invocation.Status(), duration)
	r.audit.LogInvocation(ctx, invocation)

	return result, err
}

type sessionKey struct{}

// WithSession returns a context carrying the conversation session id, so
// instrumented tool executions can be attributed to a session.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionFromContext returns the session id from ctx, or "".
func SessionFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

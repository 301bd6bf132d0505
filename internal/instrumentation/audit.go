package instrumentation

import (
	"context"
	"log/slog"
	"time"
)

// ToolInvocation captures one tool call for audit logging, giving every
// calendar mutation a traceable record.
type ToolInvocation struct {
	// Tool name
	Tool string

	// SessionID identifies the conversation session, when known.
	SessionID string

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string
}

// NewToolInvocation creates a ToolInvocation with timing started.
// Call Complete or CompleteWithError when the tool finishes.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithSession attaches the conversation session id.
func (ti *ToolInvocation) WithSession(id string) *ToolInvocation {
	ti.SessionID = id
	return ti
}

// Complete marks the invocation finished with the given outcome.
func (ti *ToolInvocation) Complete(success bool) {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
}

// CompleteWithError marks the invocation failed and records the error.
func (ti *ToolInvocation) CompleteWithError(err error) {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = false
	if err != nil {
		ti.Error = err.Error()
	}
}

// Status returns "success" or "error" based on the outcome.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for structured audit logging.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}
	if ti.SessionID != "" {
		attrs = append(attrs, slog.String("session", ti.SessionID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	return attrs
}

// AuditLogger writes tool invocation audit records through slog.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates an AuditLogger. If logger is nil, slog.Default()
// is used.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger}
}

// LogInvocation emits one audit record. Nil receivers are safe so callers
// can leave auditing unconfigured.
func (a *AuditLogger) LogInvocation(ctx context.Context, ti *ToolInvocation) {
	if a == nil || ti == nil {
		return
	}
	a.logger.LogAttrs(ctx, slog.LevelInfo, "tool invocation", ti.LogAttrs()...)
}

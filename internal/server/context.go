package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/songwd/calassist/internal/agent"
	"github.com/songwd/calassist/internal/config"
	"github.com/songwd/calassist/internal/instrumentation"
	"github.com/songwd/calassist/internal/tools"
)

// Responder is the agent surface the server needs. *agent.Agent
// satisfies it.
type Responder interface {
	Respond(ctx context.Context, history *agent.History, input string) string
}

// AppContext wires the application's dependencies together. It is
// constructed once in cmd and passed explicitly to every surface that
// needs it.
type AppContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg      *config.Config
	agent    Responder
	registry *tools.Registry
	metrics  *instrumentation.Metrics
	audit    *instrumentation.AuditLogger
	logger   *slog.Logger

	mu       sync.RWMutex
	shutdown bool
}

// NewAppContext creates an AppContext. metrics and audit may be nil when
// instrumentation is disabled; logger nil falls back to slog.Default().
func NewAppContext(ctx context.Context, cfg *config.Config, responder Responder, registry *tools.Registry,
	metrics *instrumentation.Metrics, audit *instrumentation.AuditLogger, logger *slog.Logger) *AppContext {
	if logger == nil {
		logger = slog.Default()
	}
	shutdownCtx, cancel := context.WithCancel(ctx)
	return &AppContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		cfg:      cfg,
		agent:    responder,
		registry: registry,
		metrics:  metrics,
		audit:    audit,
		logger:   logger,
	}
}

// Context returns the application context, cancelled on Shutdown.
func (ac *AppContext) Context() context.Context {
	return ac.ctx
}

// Config returns the application configuration.
func (ac *AppContext) Config() *config.Config {
	return ac.cfg
}

// Agent returns the conversation agent.
func (ac *AppContext) Agent() Responder {
	return ac.agent
}

// Registry returns the tool registry.
func (ac *AppContext) Registry() *tools.Registry {
	return ac.registry
}

// Metrics returns the metrics recorder, or nil when disabled.
func (ac *AppContext) Metrics() *instrumentation.Metrics {
	return ac.metrics
}

// AuditLogger returns the audit logger, or nil when disabled.
func (ac *AppContext) AuditLogger() *instrumentation.AuditLogger {
	return ac.audit
}

// Logger returns the application logger.
func (ac *AppContext) Logger() *slog.Logger {
	return ac.logger
}

// IsShutdown reports whether Shutdown has been called.
func (ac *AppContext) IsShutdown() bool {
	ac.mu.RLock()
	defer ac.mu.RUnlock()
	return ac.shutdown
}

// Shutdown cancels the application context. Idempotent.
func (ac *AppContext) Shutdown() error {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	if ac.shutdown {
		return nil
	}
	ac.shutdown = true
	ac.cancel()
	return nil
}

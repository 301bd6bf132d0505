package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/songwd/calassist/internal/agent"
	"github.com/songwd/calassist/internal/calcom"
	"github.com/songwd/calassist/internal/config"
	"github.com/songwd/calassist/internal/instrumentation"
	"github.com/songwd/calassist/internal/llm"
	"github.com/songwd/calassist/internal/logging"
	"github.com/songwd/calassist/internal/tools"
	"github.com/songwd/calassist/internal/tools/calendar_tools"
)

// application holds the wired dependencies shared by the chat, serve,
// and mcp commands.
type application struct {
	cfg      *config.Config
	logger   *slog.Logger
	provider *instrumentation.Provider
	registry *tools.Registry
	toolset  *calendar_tools.Toolset
	agent    *agent.Agent
	audit    *instrumentation.AuditLogger
}

// buildApplication loads config, sets up logging and instrumentation,
// and wires the Cal.com client, LLM client, tools, and agent.
func buildApplication(ctx context.Context, debug, jsonLogs bool) (*application, error) {
	logger := logging.Setup(debug, jsonLogs)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	calClient := calcom.NewClient(cfg.CalBaseURL, cfg.CalAPIKey, cfg.CalEventTypeID, logger)
	llmClient := llm.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.Model, cfg.Temperature, logger)

	registry := tools.NewRegistry()
	var audit *instrumentation.AuditLogger
	if provider.Enabled() {
		audit = instrumentation.NewAuditLogger(logger)
		registry.WithInstrumentation(provider.Metrics(), audit)
		calClient.SetMetrics(provider.Metrics())
		llmClient.SetMetrics(provider.Metrics())
	}

	toolset := calendar_tools.NewToolset(calClient, cfg.DefaultOwnerEmail, logger)
	toolset.Register(registry)

	return &application{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
		registry: registry,
		toolset:  toolset,
		agent:    agent.New(llmClient, registry, logger),
		audit:    audit,
	}, nil
}

// shutdown flushes instrumentation.
func (a *application) shutdown(ctx context.Context) {
	if err := a.provider.Shutdown(ctx); err != nil {
		a.logger.Error("instrumentation shutdown failed", logging.Err(err))
	}
}

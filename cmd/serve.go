package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/songwd/calassist/internal/logging"
	"github.com/songwd/calassist/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		debugMode   bool
		httpAddr    string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP chat API server",
		Long: `Start the scheduling assistant as an HTTP server.

Endpoints:
  POST /api/chat    One chat turn. Body: {"session_id": "...", "message": "..."}.
                    Omit session_id to start a new conversation; the response
                    returns the id to send on the next turn.
  GET  /healthz     Liveness probe
  GET  /readyz      Readiness probe

When instrumentation is enabled (INSTRUMENTATION_ENABLED=true), Prometheus
metrics are served on a dedicated port.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(debugMode, httpAddr, metricsAddr)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&httpAddr, "http-addr", "", "HTTP server address (default from HTTP_ADDR or :8080)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Metrics server address (default from METRICS_ADDR or :9090)")

	return cmd
}

func runServe(debugMode bool, httpAddr, metricsAddr string) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := buildApplication(shutdownCtx, debugMode, true)
	if err != nil {
		return err
	}
	defer app.shutdown(context.Background())

	if httpAddr != "" {
		app.cfg.HTTPAddr = httpAddr
	}
	if metricsAddr != "" {
		app.cfg.MetricsAddr = metricsAddr
	}

	appCtx := server.NewAppContext(shutdownCtx, app.cfg, app.agent, app.registry,
		app.provider.Metrics(), app.audit, app.logger)
	defer func() {
		if err := appCtx.Shutdown(); err != nil {
			app.logger.Error("app context shutdown failed", logging.Err(err))
		}
	}()

	// Start metrics server when instrumentation is enabled
	var metricsServer *server.MetricsServer
	if app.cfg.MetricsEnabled && app.provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    app.cfg.MetricsAddr,
			InstrumentationProvider: app.provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				app.logger.Error("metrics server failed", logging.Err(err))
			}
		}()
	}

	webServer := server.NewWebServer(appCtx)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := webServer.Start(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-shutdownCtx.Done():
		app.logger.Info("shutdown signal received")
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("web server stopped with error: %w", err)
		}
		return nil
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer drainCancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(drainCtx); err != nil {
			app.logger.Error("metrics server shutdown failed", logging.Err(err))
		}
	}
	if err := webServer.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("error shutting down web server: %w", err)
	}

	app.logger.Info("server stopped")
	return nil
}

package cmd

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/songwd/calassist/internal/tools/calendar_tools"
)

func newMCPCmd() *cobra.Command {
	var debugMode bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server over stdio",
		Long: `Start a Model Context Protocol (MCP) server exposing the calendar
tools over stdio. This lets external AI assistants list, book, and
cancel meetings on the configured Cal.com calendar.

Tools exposed:
  list_user_events          List scheduled events
  create_calendar_booking   Book a 30-minute meeting
  cancel_calendar_booking   Cancel a booking by ID
  get_current_datetime      Current UTC time for future-date reasoning`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(cmd, debugMode)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	return cmd
}

func runMCP(cmd *cobra.Command, debugMode bool) error {
	app, err := buildApplication(cmd.Context(), debugMode, true)
	if err != nil {
		return err
	}
	defer app.shutdown(cmd.Context())

	mcpSrv := mcpserver.NewMCPServer("calassist", version,
		mcpserver.WithToolCapabilities(true),
	)

	calendar_tools.RegisterMCPTools(mcpSrv, app.toolset)

	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

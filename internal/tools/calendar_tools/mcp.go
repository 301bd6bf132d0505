package calendar_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/songwd/calassist/internal/tools"
)

// serverTool pairs an MCP tool definition with its handler.
type serverTool struct {
	tool    mcp.Tool
	handler mcpserver.ToolHandlerFunc
}

// RegisterMCPTools exposes the calendar tools over MCP so external AI
// assistants can drive the same four operations the built-in agent uses.
func RegisterMCPTools(s *mcpserver.MCPServer, ts *Toolset) {
	for _, st := range serverTools(ts) {
		s.AddTool(st.tool, st.handler)
	}
}

// serverTools builds the MCP definitions for the toolset, in the same
// order the registry exposes them.
func serverTools(ts *Toolset) []serverTool {
	listTool := mcp.NewTool(ToolListEvents,
		mcp.WithDescription(listEventsDescription),
	)

	createTool := mcp.NewTool(ToolCreateBooking,
		mcp.WithDescription(createBookingDescription),
		mcp.WithString("start_time",
			mcp.Required(),
			mcp.Description("Meeting start in ISO 8601 format, e.g. '2025-07-11T14:00:00Z'. Must be in the future."),
		),
		mcp.WithString("attendee_email",
			mcp.Required(),
			mcp.Description("Email address of the person the user wants to meet with. This is the OTHER party's email, not the user's own."),
		),
		mcp.WithString("meeting_title",
			mcp.Required(),
			mcp.Description("A descriptive title for the meeting, e.g. 'Project Discussion' or 'Client Call'."),
		),
	)

	cancelTool := mcp.NewTool(ToolCancelBooking,
		mcp.WithDescription(cancelBookingDescription),
		mcp.WithString("booking_identifier",
			mcp.Required(),
			mcp.Description("The exact numeric booking ID from the calendar, e.g. '12345'. Obtain it from list_user_events first."),
		),
		mcp.WithString("cancellation_reason",
			mcp.Description("Optional reason for cancellation, e.g. 'Schedule conflict' or 'No longer needed'."),
		),
	)

	datetimeTool := mcp.NewTool(ToolCurrentDatetime,
		mcp.WithDescription(currentDatetimeDescription),
	)

	return []serverTool{
		{tool: listTool, handler: mcpHandler(ts.handleListEvents)},
		{tool: createTool, handler: mcpHandler(ts.handleCreateBooking)},
		{tool: cancelTool, handler: mcpHandler(ts.handleCancelBooking)},
		{tool: datetimeTool, handler: mcpHandler(ts.handleCurrentDatetime)},
	}
}

// mcpHandler adapts a registry tool handler to the MCP handler signature.
// Handler errors become tool result errors so the calling assistant sees
// the failure text instead of a protocol error.
func mcpHandler(h tools.Handler) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := h(ctx, request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result), nil
	}
}

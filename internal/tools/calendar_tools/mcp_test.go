package calendar_tools

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerToolsExposesFourTools(t *testing.T) {
	st := serverTools(newToolset(&fakeCalendar{}))

	names := make([]string, 0, len(st))
	for _, s := range st {
		names = append(names, s.tool.Name)
	}
	assert.Equal(t, []string{
		ToolListEvents,
		ToolCreateBooking,
		ToolCancelBooking,
		ToolCurrentDatetime,
	}, names)

	for _, s := range st {
		assert.NotNil(t, s.handler, "tool %s has no handler", s.tool.Name)
		assert.NotEmpty(t, s.tool.Description, "tool %s has no description", s.tool.Name)
	}
}

func TestRegisterMCPTools(t *testing.T) {
	mcpSrv := mcpserver.NewMCPServer("test-server", "0.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	RegisterMCPTools(mcpSrv, newToolset(&fakeCalendar{}))
}

func TestMCPHandlerSuccess(t *testing.T) {
	fake := &fakeCalendar{bookResult: "Booking created successfully!"}
	st := serverTools(newToolset(fake))

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{
		"start_time":     "2025-07-11T14:00:00Z",
		"attendee_email": "alice@example.com",
		"meeting_title":  "Project Discussion",
	}

	result, err := st[1].handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	require.Len(t, result.Content, 1)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "Booking created successfully!", tc.Text)
	assert.Equal(t, 1, fake.bookCalls)
}

func TestMCPHandlerError(t *testing.T) {
	fake := &fakeCalendar{listErr: errors.New("connection refused")}
	st := serverTools(newToolset(fake))

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{}

	result, err := st[0].handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)

	require.Len(t, result.Content, 1)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, tc.Text, "failed to retrieve scheduled events")
}

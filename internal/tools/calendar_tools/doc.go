// Package calendar_tools implements the calendar tools the assistant
// exposes to the model: listing scheduled events, booking 30-minute
// meetings, cancelling bookings, and reporting the current time for
// future-date reasoning.
//
// The same toolset registers into the agent's registry for chat
// completions and onto an MCP server for external assistants.
package calendar_tools

// Package agent drives the conversation loop between the user, the chat
// model, and the calendar tools. It owns the system prompt, the bounded
// tool-calling iteration, and the rolling conversation history.
package agent

// Package tools implements the registry the agent dispatches tool calls
// through. Tools register a name, a JSON schema for the model, and a
// handler; the registry turns the set into chat completion tool
// definitions and executes calls the model makes, with optional metrics
// and audit logging.
package tools

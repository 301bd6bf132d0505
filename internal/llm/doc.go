// Package llm provides a client for OpenAI-compatible chat completion
// services, including the function-calling (tool use) protocol the
// conversation loop depends on.
package llm

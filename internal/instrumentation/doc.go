// Package instrumentation provides OpenTelemetry metrics and audit logging
// for the assistant.
//
// Metrics cover HTTP traffic, active chat sessions, Cal.com API operations,
// LLM requests, and tool invocations. Two exporters are supported: a
// Prometheus pull endpoint served on a dedicated port, and a periodic
// stdout exporter for development. When instrumentation is disabled every
// recording method is a no-op, so callers never need nil checks.
//
// The audit logger emits one structured record per tool invocation, which
// is the trail for every calendar mutation the model performs.
package instrumentation

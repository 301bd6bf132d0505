// Package logging provides structured logging helpers built on log/slog.
//
// It defines canonical attribute keys used across the codebase, helpers for
// building attributes (Operation, Tool, Session, Err), and PII-safe helpers
// for logging user emails and API credentials.
package logging

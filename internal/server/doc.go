// Package server hosts the web chat surface: the gin HTTP API, session
// management with capped per-session history, health endpoints for
// Kubernetes probes, and a dedicated-port Prometheus metrics server.
//
// AppContext is the explicit dependency container; everything the
// handlers need arrives through it rather than through globals.
package server

// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for human readability
//
// Every engine component takes a *Logger and derives a named child with
// Component, so log lines carry "component":"cache", "transport", etc.
// A nil *Logger is accepted everywhere and treated as Nop.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	tlog := logger.Component("transport")
//	tlog.Warn("retrying with relaxed TLS policy", zap.String("host", host))
package logging

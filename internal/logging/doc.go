// Package logging assembles structured slog loggers and formatting helpers used
// across cinerate.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so request handling code can tag
// log lines with correlation IDs and the raw title being resolved. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging

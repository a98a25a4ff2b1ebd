// Package logging assembles the structured slog loggers used across unveil.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and provides a no-op logger for tests and wiring code that
// cannot fail. Prefer these constructors over hand-rolled slog setup so new
// components emit data with the same shape as the rest of the system.
package logging

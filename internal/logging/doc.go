// Package logging assembles structured slog loggers and formatting helpers used
// across lecturedl.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code automatically
// tags log lines with run IDs, course IDs, and stages. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging

// Package logging constructs the slog loggers used across discern.
//
// It wraps log/slog with the small set of helpers the rest of the code uses:
// option-driven construction (console or JSON handlers, multiple output
// paths), attribute aliases, a no-op logger for tests, and component loggers
// that tag every record with the owning subsystem.
package logging

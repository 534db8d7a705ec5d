// Package logging configures structured slog output for docforge.
//
// Two handler formats are supported: a compact single-line console format
// that promotes the component attribute to a message prefix, and plain JSON
// for machine consumption. Components obtain scoped loggers through
// NewComponentLogger so every record carries its origin.
package logging

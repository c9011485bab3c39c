// Package logging constructs the slog loggers used across trajconv.
//
// Two output formats are supported: a compact single-line console format
// for interactive use and standard JSON for log collection. Components tag
// their loggers with WithComponent so console lines read as
// "<component>: message k=v ...".
//
// The attr helpers re-export slog constructors so callers do not import
// log/slog directly for the common cases.
package logging

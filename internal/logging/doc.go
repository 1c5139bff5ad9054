// Package logging assembles structured slog loggers and formatting helpers used
// across stereomax components.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing (including rotating log files), and exposes context-aware helpers
// so stage code automatically tags log lines with run IDs, stage names, and
// input paths. The package also provides a no-op logger for tests and wiring
// code that cannot fail.
//
// Components receive a *slog.Logger through their constructors; nothing in
// the module logs through a process-wide default.
package logging

// Package tempfiles owns the intermediate files a run creates.
//
// Manager hands out unique, exclusively created paths in the configured temp
// directory and remembers them until they are cleaned up. Cleanup is best
// effort: files that are already gone or cannot be removed are reported as
// CleanupWarning values and logged, never returned as errors, so a cleanup
// problem can not mask the run's real outcome.
package tempfiles

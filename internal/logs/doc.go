// Package logs reads the stereomax log file for the `stereomax logs` command.
//
// Tail returns the last N matching lines with bounded memory, and Follow
// streams lines appended afterwards using fsnotify write events. A Matcher
// narrows output, typically to one run id.
package logs

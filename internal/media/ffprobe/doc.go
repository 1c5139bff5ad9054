// Package ffprobe wraps the ffprobe binary.
//
// Inspect decodes the full JSON stream/format report and is used to verify
// merged outputs. AudioLayouts runs the compact CSV query that lists every
// audio stream's channel layout and language tag in container order. Both go
// through a procexec.Runner so tests can substitute canned output.
package ffprobe

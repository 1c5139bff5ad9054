// Package mkvmerge builds mkvmerge invocations that append audio tracks to a
// Matroska container and classifies its exit codes. mkvmerge exits 1 when it
// finished with warnings; the output is complete in that case.
package mkvmerge

// Package ffmpeg builds ffmpeg argument lists for the two jobs stereomax hands
// to it: extracting one audio stream through a filter chain into a standalone
// stereo container, and remuxing an input together with normalized tracks when
// mkvmerge is unavailable or fails.
package ffmpeg

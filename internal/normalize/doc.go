// Package normalize discovers the audio streams of an input and renders each
// one as a normalized stereo artifact.
//
// Prober lists audio streams through ffprobe. Normalizer runs one ffmpeg
// transcode per stream through the filter chain of the configured profile,
// bounded by a worker limit, and returns artifacts in descriptor order. A
// failure on any stream cancels the rest and is reported as *TranscodeError.
package normalize

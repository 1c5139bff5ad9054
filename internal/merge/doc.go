// Package merge writes the output container: every original stream of the
// input plus one normalized stereo track per artifact.
//
// Strategies are tried strictly in order and the first success wins. The
// default order is mkvmerge, which appends tracks without touching the
// originals, then an ffmpeg remux. Each attempt writes to a hidden staging
// file beside the output which is renamed into place only on success, so a
// failed attempt never leaves a partial output behind.
package merge

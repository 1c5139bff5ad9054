// Package filtergraph derives the ffmpeg audio filter expression applied to a
// single audio stream.
//
// A Chain is a pure function of a channel layout and a tuning Profile: the
// layout selects a downmix pan stage (5.1 or 7.1 sources only) and the profile
// supplies the fixed dynamics post-chain of compressor, dynamic normalizer,
// speech equalizer, high-pass and limiter. Profiles are named and versioned so
// a retune can ship next to the original constants instead of replacing them.
package filtergraph

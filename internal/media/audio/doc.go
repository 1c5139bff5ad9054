// Package audio defines the audio stream model shared by the probe,
// normalize and merge stages.
//
// A Descriptor identifies one audio stream of the input by its position among
// audio streams only, together with its language tag and channel layout. An
// Artifact is the normalized stereo rendition of exactly one Descriptor,
// stored in a temporary container until it is merged.
package audio

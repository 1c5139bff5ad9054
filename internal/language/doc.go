// Package language normalizes language codes found in stream tags.
//
// It maps between ISO 639-1, ISO 639-2 and display names for the languages
// commonly found on film releases, and renders the upper-cased track titles
// attached to normalized streams.
package language

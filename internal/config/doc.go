// Package config loads, normalizes, and validates stereomax configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// STEREOMAX_FFMPEG, optionally sourced from a .env file. The Config type
// centralizes every knob the CLI and pipeline need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical strategy names, and clear validation errors.
package config

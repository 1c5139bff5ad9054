// Package pipeline sequences one normalization run.
//
// Orchestrator drives the state machine start, probed, normalized, merged,
// cleaned, done, with failed as the terminal state for any error. An input
// without audio goes straight from probed to done and touches nothing else.
// Temporary artifacts are always cleaned: after a normalize failure every
// tracked temp file is removed, and once normalization succeeded the artifact
// set is cleaned exactly once whether or not the merge worked. Optional
// collaborators verify the output with ffprobe and record the run in history;
// a recorder failure is logged and never changes the outcome.
//
// Build wires production collaborators from configuration; tests construct an
// Orchestrator directly with fakes.
package pipeline

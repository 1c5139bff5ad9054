package normalize

import (
	"fmt"

	"stereomax/internal/services"
)

// ProbeError reports that stream discovery failed or produced unparseable output.
type ProbeError struct {
	Input  string
	Stderr string
	Err    error
}

func (e *ProbeError) Error() string {
	msg := fmt.Sprintf("probe %s: %v", e.Input, e.Err)
	if e.Stderr != "" {
		msg += " (stderr: " + e.Stderr + ")"
	}
	return msg
}

func (e *ProbeError) Unwrap() []error {
	return []error{services.ErrExternalTool, e.Err}
}

// TranscodeError reports a failed normalization of one stream.
type TranscodeError struct {
	Position int
	Language string
	Layout   string
	Stderr   string
	Err      error
}

func (e *TranscodeError) Error() string {
	msg := fmt.Sprintf("normalize audio stream %d (%s, %s): %v", e.Position, e.Language, e.Layout, e.Err)
	if e.Stderr != "" {
		msg += " (stderr: " + e.Stderr + ")"
	}
	return msg
}

func (e *TranscodeError) Unwrap() error { return e.Err }

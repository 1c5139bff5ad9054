package mkvmerge

import (
	"errors"
	"strings"

	"stereomax/internal/procexec"
)

// DefaultBinary is used when no binary is configured.
const DefaultBinary = "mkvmerge"

// ExitWarnings is the exit status mkvmerge uses for success with warnings.
const ExitWarnings = 1

// Track is an audio file appended to the output container.
type Track struct {
	Path     string
	Language string
	Title    string
}

// AppendArgs returns arguments that write output from input plus every track.
// Each appended track gets its language and name and is not a default track.
func AppendArgs(input, output string, tracks []Track) ([]string, error) {
	if strings.TrimSpace(input) == "" || strings.TrimSpace(output) == "" {
		return nil, errors.New("mkvmerge: input and output paths are required")
	}
	if len(tracks) == 0 {
		return nil, errors.New("mkvmerge: at least one track is required")
	}
	args := []string{"-o", output, input}
	for _, track := range tracks {
		args = append(args,
			"--language", "0:"+track.Language,
			"--track-name", "0:"+track.Title,
			"--default-track", "0:no",
			track.Path,
		)
	}
	return args, nil
}

// Succeeded reports whether a run finished with a usable output, treating the
// warnings exit status as success.
func Succeeded(err error) bool {
	if err == nil {
		return true
	}
	var exitErr *procexec.ExitError
	if errors.As(err, &exitErr) {
		return !exitErr.TimedOut && exitErr.ExitCode == ExitWarnings
	}
	return false
}

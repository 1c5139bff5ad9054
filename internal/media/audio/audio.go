package audio

import (
	"fmt"
	"strings"
)

// Sentinels applied when ffprobe reports an empty field.
const (
	DefaultLayout        = "stereo"
	UndeterminedLanguage = "und"
)

// Descriptor identifies a single audio stream of the input container.
type Descriptor struct {
	// Position is the 0-based index among audio streams, used for -map 0:a:N.
	Position int
	Language string
	Layout   string
}

// NewDescriptor builds a descriptor, substituting sentinels for empty fields.
func NewDescriptor(position int, language, layout string) Descriptor {
	language = strings.TrimSpace(language)
	if language == "" {
		language = UndeterminedLanguage
	}
	layout = strings.TrimSpace(layout)
	if layout == "" {
		layout = DefaultLayout
	}
	return Descriptor{Position: position, Language: language, Layout: layout}
}

// String renders a compact label for logs.
func (d Descriptor) String() string {
	return fmt.Sprintf("a:%d %s %s", d.Position, d.Language, d.Layout)
}

// Artifact is a temporary container holding one normalized stereo stream.
type Artifact struct {
	Path     string
	Language string
	Layout   string
	Position int
}

// ArtifactFor pairs a descriptor with the file holding its normalized stream.
func ArtifactFor(d Descriptor, path string) Artifact {
	return Artifact{Path: path, Language: d.Language, Layout: d.Layout, Position: d.Position}
}

// Paths returns the artifact file paths in order.
func Paths(artifacts []Artifact) []string {
	out := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		if a.Path != "" {
			out = append(out, a.Path)
		}
	}
	return out
}

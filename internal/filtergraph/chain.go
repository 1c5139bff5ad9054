package filtergraph

import (
	"fmt"
	"strings"

	"stereomax/internal/services"
)

// Stage is a single ffmpeg audio filter with its option string.
type Stage struct {
	Name    string
	Options string
}

// String renders the stage as name=options.
func (s Stage) String() string {
	if s.Options == "" {
		return s.Name
	}
	return s.Name + "=" + s.Options
}

// Chain is an ordered list of filter stages.
type Chain struct {
	stages []Stage
}

// Stages returns a copy of the ordered stages.
func (c Chain) Stages() []Stage {
	out := make([]Stage, len(c.stages))
	copy(out, c.stages)
	return out
}

// Len reports the number of stages.
func (c Chain) Len() int { return len(c.stages) }

// String renders the comma-joined -af expression.
func (c Chain) String() string {
	parts := make([]string, len(c.stages))
	for i, s := range c.stages {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

// UnsupportedLayoutError reports a channel layout with no downmix rule.
type UnsupportedLayoutError struct {
	Layout string
}

func (e *UnsupportedLayoutError) Error() string {
	return fmt.Sprintf("unsupported channel layout %q", e.Layout)
}

// Is lets callers match the error against services.ErrValidation.
func (e *UnsupportedLayoutError) Is(target error) bool {
	return target == services.ErrValidation
}

// Build derives the chain for a layout under the given profile. Only layouts
// starting with "5.1" or "7.1" are supported; anything else yields
// *UnsupportedLayoutError and no chain.
func Build(layout string, profile Profile) (Chain, error) {
	var pan Stage
	switch {
	case strings.HasPrefix(layout, "5.1"):
		pan = profile.Downmix51.stage()
	case strings.HasPrefix(layout, "7.1"):
		pan = profile.Downmix71.stage()
	default:
		return Chain{}, &UnsupportedLayoutError{Layout: layout}
	}

	comp := profile.Compressor
	norm := profile.Normalizer
	eq := profile.Equalizer
	stages := []Stage{
		pan,
		{Name: "acompressor", Options: fmt.Sprintf("threshold=%sdB:ratio=%s:attack=%s:release=%s:makeup=%s:mix=%s",
			formatNumber(comp.ThresholdDB), formatNumber(comp.Ratio), formatNumber(comp.AttackMS),
			formatNumber(comp.ReleaseMS), formatNumber(comp.Makeup), formatNumber(comp.Mix))},
		{Name: "dynaudnorm", Options: fmt.Sprintf("f=%d:g=%s:p=%s",
			norm.FrameMS, formatNumber(norm.MaxGainDB), formatNumber(norm.PeakTarget))},
		{Name: "equalizer", Options: fmt.Sprintf("f=%s:t=q:w=%s:g=%s",
			formatNumber(eq.FrequencyHz), formatNumber(eq.Width), formatNumber(eq.GainDB))},
		{Name: "highpass", Options: "f=" + formatNumber(profile.HighpassHz)},
		{Name: "alimiter", Options: "limit=" + formatNumber(profile.LimiterCeil)},
	}
	return Chain{stages: stages}, nil
}

// BuildDefault derives the chain for a layout under the default profile.
func BuildDefault(layout string) (Chain, error) {
	return Build(layout, Default())
}

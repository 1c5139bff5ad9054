package filtergraph

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Coefficient is one weighted source channel in a pan expression.
type Coefficient struct {
	Channel string
	Gain    float64
}

// PanMix describes how source channels fold into the left and right outputs.
type PanMix struct {
	Left  []Coefficient
	Right []Coefficient
}

// CompressorParams configures the acompressor stage.
type CompressorParams struct {
	ThresholdDB float64
	Ratio       float64
	AttackMS    float64
	ReleaseMS   float64
	Makeup      float64
	Mix         float64
}

// DynamicNormalizerParams configures the dynaudnorm stage.
type DynamicNormalizerParams struct {
	FrameMS    int
	MaxGainDB  float64
	PeakTarget float64
}

// EqualizerParams configures the peaking equalizer stage.
type EqualizerParams struct {
	FrequencyHz float64
	Width       float64
	GainDB      float64
}

// EncodeParams describes how normalized streams are encoded.
type EncodeParams struct {
	Codec    string
	Bitrate  string
	VBR      bool
	Channels int
}

// Profile bundles every tuning constant that shapes a normalized stream.
type Profile struct {
	Name        string
	Description string
	Downmix51   PanMix
	Downmix71   PanMix
	Compressor  CompressorParams
	Normalizer  DynamicNormalizerParams
	Equalizer   EqualizerParams
	HighpassHz  float64
	LimiterCeil float64
	Encode      EncodeParams
}

// VBRFlag renders the encoder's -vbr argument.
func (e EncodeParams) VBRFlag() string {
	if e.VBR {
		return "on"
	}
	return "off"
}

// Validate reports the first tuning value ffmpeg would reject or that breaks the
// stereo contract.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("profile name is required")
	}
	if len(p.Downmix51.Left) == 0 || len(p.Downmix51.Right) == 0 {
		return fmt.Errorf("profile %s: 5.1 downmix is incomplete", p.Name)
	}
	if len(p.Downmix71.Left) == 0 || len(p.Downmix71.Right) == 0 {
		return fmt.Errorf("profile %s: 7.1 downmix is incomplete", p.Name)
	}
	if p.Compressor.Ratio < 1 {
		return fmt.Errorf("profile %s: compressor ratio %v must be at least 1", p.Name, p.Compressor.Ratio)
	}
	if p.Compressor.Mix < 0 || p.Compressor.Mix > 1 {
		return fmt.Errorf("profile %s: compressor mix %v must be within [0,1]", p.Name, p.Compressor.Mix)
	}
	frame := p.Normalizer.FrameMS
	if frame < 10 || frame > 8000 || frame%2 == 0 {
		return fmt.Errorf("profile %s: dynaudnorm frame %d must be odd and within 10..8000 ms", p.Name, frame)
	}
	if p.LimiterCeil <= 0 || p.LimiterCeil >= 1 {
		return fmt.Errorf("profile %s: limiter ceiling %v must be within (0,1)", p.Name, p.LimiterCeil)
	}
	if p.Encode.Channels != 2 {
		return fmt.Errorf("profile %s: encode must produce 2 channels, got %d", p.Name, p.Encode.Channels)
	}
	if strings.TrimSpace(p.Encode.Codec) == "" || strings.TrimSpace(p.Encode.Bitrate) == "" {
		return fmt.Errorf("profile %s: encode codec and bitrate are required", p.Name)
	}
	return nil
}

func (m PanMix) clone() PanMix {
	return PanMix{Left: slices.Clone(m.Left), Right: slices.Clone(m.Right)}
}

// clone returns a copy that shares no slices with p.
func (p Profile) clone() Profile {
	p.Downmix51 = p.Downmix51.clone()
	p.Downmix71 = p.Downmix71.clone()
	return p
}

func (m PanMix) stage() Stage {
	return Stage{
		Name:    "pan",
		Options: "stereo|FL=" + joinCoefficients(m.Left) + "|FR=" + joinCoefficients(m.Right),
	}
}

func joinCoefficients(coefficients []Coefficient) string {
	parts := make([]string, len(coefficients))
	for i, c := range coefficients {
		parts[i] = formatNumber(c.Gain) + "*" + c.Channel
	}
	return strings.Join(parts, "+")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

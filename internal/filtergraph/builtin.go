package filtergraph

// DefaultProfileName names the profile used when none is configured.
const DefaultProfileName = "stereo-max/v1"

// StereoMaxV1 is the original dialogue-forward tuning: center and LFE lifted
// over the rears, parallel compression, gentle leveling and a 2 kHz presence bump.
var StereoMaxV1 = Profile{
	Name:        DefaultProfileName,
	Description: "Dialogue-forward stereo downmix with parallel compression and leveling",
	Downmix51: PanMix{
		Left:  []Coefficient{{"FL", 0.9}, {"FC", 1.1}, {"LFE", 0.75}, {"BL", 0.25}, {"SL", 0.25}},
		Right: []Coefficient{{"FR", 0.9}, {"FC", 1.1}, {"LFE", 0.75}, {"BR", 0.25}, {"SR", 0.25}},
	},
	Downmix71: PanMix{
		Left:  []Coefficient{{"FL", 0.85}, {"FC", 1}, {"LFE", 0.75}, {"BL", 0.2}, {"SL", 0.2}, {"BL2", 0.15}, {"BR2", 0.15}},
		Right: []Coefficient{{"FR", 0.85}, {"FC", 1}, {"LFE", 0.75}, {"BR", 0.2}, {"SR", 0.2}, {"BL2", 0.15}, {"BR2", 0.15}},
	},
	Compressor: CompressorParams{
		ThresholdDB: -22,
		Ratio:       4,
		AttackMS:    5,
		ReleaseMS:   250,
		Makeup:      4,
		Mix:         0.9,
	},
	Normalizer: DynamicNormalizerParams{
		FrameMS:    125,
		MaxGainDB:  13,
		PeakTarget: 0.85,
	},
	Equalizer: EqualizerParams{
		FrequencyHz: 2000,
		Width:       1,
		GainDB:      2,
	},
	HighpassHz:  40,
	LimiterCeil: 0.98,
	Encode: EncodeParams{
		Codec:    "libopus",
		Bitrate:  "192k",
		VBR:      true,
		Channels: 2,
	},
}

func init() {
	if err := Register(StereoMaxV1); err != nil {
		panic(err)
	}
}

package merge

import (
	"context"
	"log/slog"
	"time"

	"stereomax/internal/filtergraph"
	"stereomax/internal/language"
	"stereomax/internal/logging"
	"stereomax/internal/media/audio"
	"stereomax/internal/media/ffmpeg"
	"stereomax/internal/media/mkvmerge"
	"stereomax/internal/procexec"
)

// Strategy writes input plus artifacts into output.
type Strategy interface {
	Name() string
	Merge(ctx context.Context, inputPath, outputPath string, artifacts []audio.Artifact) error
}

// Mkvmerge appends artifacts with mkvmerge.
type Mkvmerge struct {
	runner  procexec.Runner
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewMkvmerge constructs the mkvmerge strategy.
func NewMkvmerge(runner procexec.Runner, binary string, timeout time.Duration, logger *slog.Logger) *Mkvmerge {
	if binary == "" {
		binary = mkvmerge.DefaultBinary
	}
	return &Mkvmerge{runner: runner, binary: binary, timeout: timeout, logger: logging.NewComponentLogger(logger, "merge.mkvmerge")}
}

// Name implements Strategy.
func (m *Mkvmerge) Name() string { return "mkvmerge" }

// Merge implements Strategy. An exit status signalling warnings counts as success.
func (m *Mkvmerge) Merge(ctx context.Context, inputPath, outputPath string, artifacts []audio.Artifact) error {
	tracks := make([]mkvmerge.Track, len(artifacts))
	for i, a := range artifacts {
		tracks[i] = mkvmerge.Track{Path: a.Path, Language: a.Language, Title: language.TrackTitle(a.Language)}
	}
	args, err := mkvmerge.AppendArgs(inputPath, outputPath, tracks)
	if err != nil {
		return err
	}
	res, err := m.runner.Run(ctx, procexec.Command{Name: m.binary, Args: args, Timeout: m.timeout})
	if err != nil {
		if !mkvmerge.Succeeded(err) {
			return err
		}
		logging.WarnWithContext(logging.WithContext(ctx, m.logger), "mkvmerge finished with warnings", "mkvmerge_warnings",
			logging.String("output", outputPath),
			logging.String("stdout", string(res.Stdout)),
			logging.String(logging.FieldImpact, "output written; review warnings"),
		)
	}
	return nil
}

// FFmpeg remuxes input and artifacts with ffmpeg.
type FFmpeg struct {
	runner  procexec.Runner
	binary  string
	timeout time.Duration
	encode  filtergraph.EncodeParams
}

// NewFFmpeg constructs the ffmpeg strategy. encode selects the codec used for
// the appended tracks.
func NewFFmpeg(runner procexec.Runner, binary string, timeout time.Duration, encode filtergraph.EncodeParams) *FFmpeg {
	if binary == "" {
		binary = ffmpeg.DefaultBinary
	}
	return &FFmpeg{runner: runner, binary: binary, timeout: timeout, encode: encode}
}

// Name implements Strategy.
func (f *FFmpeg) Name() string { return "ffmpeg" }

// Merge implements Strategy.
func (f *FFmpeg) Merge(ctx context.Context, inputPath, outputPath string, artifacts []audio.Artifact) error {
	tracks := make([]ffmpeg.Track, len(artifacts))
	for i, a := range artifacts {
		tracks[i] = ffmpeg.Track{Path: a.Path, Language: a.Language, Title: language.TrackTitle(a.Language)}
	}
	args, err := ffmpeg.RemuxArgs(ffmpeg.RemuxRequest{
		Input:  inputPath,
		Tracks: tracks,
		Encode: f.encode,
		Output: outputPath,
	})
	if err != nil {
		return err
	}
	_, err = f.runner.Run(ctx, procexec.Command{Name: f.binary, Args: args, Timeout: f.timeout})
	return err
}

package normalize

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"stereomax/internal/logging"
	"stereomax/internal/media/audio"
	"stereomax/internal/media/ffprobe"
)

// Prober lists the audio streams of an input container.
type Prober struct {
	client *ffprobe.Client
	logger *slog.Logger
}

// NewProber constructs a prober backed by the given ffprobe client.
func NewProber(client *ffprobe.Client, logger *slog.Logger) *Prober {
	return &Prober{client: client, logger: logging.NewComponentLogger(logger, "prober")}
}

// Probe returns one descriptor per audio stream in container order. An input
// without audio yields an empty slice and no error.
func (p *Prober) Probe(ctx context.Context, inputPath string) ([]audio.Descriptor, error) {
	logger := logging.WithContext(ctx, p.logger)
	if strings.TrimSpace(inputPath) == "" {
		return nil, &ProbeError{Input: inputPath, Err: errors.New("input path is required")}
	}

	entries, res, err := p.client.AudioLayouts(ctx, inputPath)
	if err != nil {
		return nil, &ProbeError{Input: inputPath, Stderr: res.StderrText(), Err: err}
	}

	descriptors := make([]audio.Descriptor, 0, len(entries))
	for i, entry := range entries {
		descriptors = append(descriptors, audio.NewDescriptor(i, entry.Language, entry.Layout))
	}

	logger.Info("audio streams probed",
		logging.String(logging.FieldEventType, "probe_complete"),
		logging.Int("stream_count", len(descriptors)),
		logging.Duration("elapsed", res.Duration),
	)
	for _, d := range descriptors {
		logger.Debug("audio stream",
			logging.Int("position", d.Position),
			logging.String("language", d.Language),
			logging.String("layout", d.Layout),
		)
	}
	return descriptors, nil
}

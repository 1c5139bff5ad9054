package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"stereomax/internal/language"
	"stereomax/internal/logging"
	"stereomax/internal/media/audio"
	"stereomax/internal/media/ffprobe"
	"stereomax/internal/services"
)

// VerifyError reports a merged output that does not contain the expected tracks.
type VerifyError struct {
	Output string
	Reason string
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("verify %s: %s", e.Output, e.Reason)
}

// Is lets callers match the error against services.ErrValidation.
func (e *VerifyError) Is(target error) bool {
	return target == services.ErrValidation
}

// OutputVerifier inspects merged outputs with ffprobe.
type OutputVerifier struct {
	client *ffprobe.Client
	logger *slog.Logger
}

// NewOutputVerifier constructs a verifier.
func NewOutputVerifier(client *ffprobe.Client, logger *slog.Logger) *OutputVerifier {
	return &OutputVerifier{client: client, logger: logging.NewComponentLogger(logger, "verifier")}
}

// Verify requires at least one audio stream per original descriptor plus one
// per artifact. The trailing audio streams must carry the normalized track
// titles and must not be flagged default.
func (v *OutputVerifier) Verify(ctx context.Context, outputPath string, descriptors []audio.Descriptor, artifacts []audio.Artifact) error {
	result, err := v.client.Inspect(ctx, outputPath)
	if err != nil {
		return &VerifyError{Output: outputPath, Reason: err.Error()}
	}
	streams := result.AudioStreams()
	want := len(descriptors) + len(artifacts)
	if len(streams) < want {
		return &VerifyError{Output: outputPath, Reason: fmt.Sprintf("found %d audio streams, expected at least %d", len(streams), want)}
	}

	added := streams[len(streams)-len(artifacts):]
	for i, stream := range added {
		artifact := artifacts[i]
		wantTitle := language.TrackTitle(artifact.Language)
		if title := stream.Title(); title != wantTitle {
			return &VerifyError{Output: outputPath, Reason: fmt.Sprintf("audio stream %d has title %q, expected %q", stream.Index, title, wantTitle)}
		}
		if stream.IsDefault() {
			return &VerifyError{Output: outputPath, Reason: fmt.Sprintf("audio stream %d is flagged default", stream.Index)}
		}
		tagged := language.ExtractFromTags(stream.Tags)
		if tagged != "" && tagged != artifact.Language && !language.Same(tagged, artifact.Language) &&
			language.ToISO3(artifact.Language) != "und" {
			return &VerifyError{Output: outputPath, Reason: fmt.Sprintf("audio stream %d has language %q, expected %q", stream.Index, tagged, artifact.Language)}
		}
	}

	logging.WithContext(ctx, v.logger).Info("output verified",
		logging.String(logging.FieldEventType, "verify_complete"),
		logging.Int("audio_streams", len(streams)),
		logging.Int("added_streams", len(artifacts)),
	)
	return nil
}

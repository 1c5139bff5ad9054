package normalize

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"stereomax/internal/filtergraph"
	"stereomax/internal/logging"
	"stereomax/internal/media/audio"
	"stereomax/internal/media/ffmpeg"
	"stereomax/internal/procexec"
)

const artifactExt = ".mka"

// Allocator hands out unique temporary paths. tempfiles.Manager satisfies it.
type Allocator interface {
	Allocate(ext string) (string, error)
}

// Options configures a Normalizer.
type Options struct {
	Binary  string
	Timeout time.Duration
	Profile filtergraph.Profile
	// Workers bounds concurrent transcodes; <= 0 selects min(GOMAXPROCS, 4).
	Workers int
}

// Normalizer renders audio streams into normalized stereo artifacts.
type Normalizer struct {
	runner  procexec.Runner
	alloc   Allocator
	binary  string
	timeout time.Duration
	profile filtergraph.Profile
	workers int
	logger  *slog.Logger
}

// NewNormalizer constructs a normalizer.
func NewNormalizer(runner procexec.Runner, alloc Allocator, opts Options, logger *slog.Logger) *Normalizer {
	binary := opts.Binary
	if binary == "" {
		binary = ffmpeg.DefaultBinary
	}
	profile := opts.Profile
	if profile.Name == "" {
		profile = filtergraph.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = min(runtime.GOMAXPROCS(0), 4)
	}
	return &Normalizer{
		runner:  runner,
		alloc:   alloc,
		binary:  binary,
		timeout: opts.Timeout,
		profile: profile,
		workers: workers,
		logger:  logging.NewComponentLogger(logger, "normalizer"),
	}
}

// Workers reports the concurrency limit.
func (n *Normalizer) Workers() int { return n.workers }

// Profile reports the tuning profile in use.
func (n *Normalizer) Profile() filtergraph.Profile { return n.profile }

// Normalize produces exactly one artifact per descriptor, in the same order.
// On any failure it returns nil and a *TranscodeError; temp files allocated so
// far remain with the allocator for cleanup.
func (n *Normalizer) Normalize(ctx context.Context, inputPath string, descriptors []audio.Descriptor) ([]audio.Artifact, error) {
	if len(descriptors) == 0 {
		return nil, nil
	}
	logger := logging.WithContext(ctx, n.logger)
	logger.Info("normalizing audio streams",
		logging.String(logging.FieldEventType, "normalize_start"),
		logging.Int("stream_count", len(descriptors)),
		logging.Int("workers", n.workers),
		logging.String("profile", n.profile.Name),
	)

	artifacts := make([]audio.Artifact, len(descriptors))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.workers)
	for i, d := range descriptors {
		g.Go(func() error {
			artifact, err := n.normalizeOne(gctx, logger, inputPath, d)
			if err != nil {
				return err
			}
			artifacts[i] = artifact
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func (n *Normalizer) normalizeOne(ctx context.Context, logger *slog.Logger, inputPath string, d audio.Descriptor) (audio.Artifact, error) {
	fail := func(stderr string, err error) (audio.Artifact, error) {
		return audio.Artifact{}, &TranscodeError{
			Position: d.Position,
			Language: d.Language,
			Layout:   d.Layout,
			Stderr:   stderr,
			Err:      err,
		}
	}
	if err := ctx.Err(); err != nil {
		return fail("", err)
	}

	chain, err := filtergraph.Build(d.Layout, n.profile)
	if err != nil {
		return fail("", err)
	}
	path, err := n.alloc.Allocate(artifactExt)
	if err != nil {
		return fail("", err)
	}
	args, err := ffmpeg.ExtractArgs(ffmpeg.ExtractRequest{
		Input:    inputPath,
		Position: d.Position,
		Filter:   chain.String(),
		Encode:   n.profile.Encode,
		Output:   path,
	})
	if err != nil {
		return fail("", err)
	}

	logger.Debug("transcoding audio stream",
		logging.Int("position", d.Position),
		logging.String("language", d.Language),
		logging.String("layout", d.Layout),
		logging.String("filter", chain.String()),
		logging.String("output", path),
	)
	res, err := n.runner.Run(ctx, procexec.Command{Name: n.binary, Args: args, Timeout: n.timeout})
	if err != nil {
		return fail(res.StderrText(), err)
	}
	logger.Info("audio stream normalized",
		logging.String(logging.FieldEventType, "stream_normalized"),
		logging.Int("position", d.Position),
		logging.String("language", d.Language),
		logging.String("layout", d.Layout),
		logging.Duration("elapsed", res.Duration),
	)
	return audio.ArtifactFor(d, path), nil
}

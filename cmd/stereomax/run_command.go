package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stereomax/internal/config"
	"stereomax/internal/pipeline"
	"stereomax/internal/preflight"
	"stereomax/internal/services"
)

// runFlags carries per-run overrides of the loaded configuration. Zero
// values, and -1 for workers, leave the configured value in place.
type runFlags struct {
	profile       string
	workers       int
	mergeStrategy string
	keepArtifacts string
	noVerify      bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&f.profile, "profile", "", "Tuning profile (see `stereomax profiles`)")
	flags.IntVar(&f.workers, "workers", -1, "Concurrent normalization jobs (0 = automatic)")
	flags.StringVar(&f.mergeStrategy, "merge-strategy", "", "Merge strategy: auto, mkvmerge or ffmpeg")
	flags.StringVar(&f.keepArtifacts, "keep-artifacts", "", "Copy normalized tracks to this directory before cleanup")
	flags.BoolVar(&f.noVerify, "no-verify", false, "Skip probing the output after merge")
}

// apply returns a copy of cfg with the flag overrides applied and validated.
func (f *runFlags) apply(cfg *config.Config) (*config.Config, error) {
	out := *cfg
	if profile := strings.TrimSpace(f.profile); profile != "" {
		out.Normalize.Profile = profile
	}
	if f.workers >= 0 {
		out.Normalize.Workers = f.workers
	}
	if strategy := strings.TrimSpace(f.mergeStrategy); strategy != "" {
		out.Merge.Strategy = strings.ToLower(strategy)
	}
	if keep := strings.TrimSpace(f.keepArtifacts); keep != "" {
		dir, err := config.ExpandPath(keep)
		if err != nil {
			return nil, fmt.Errorf("resolve --keep-artifacts: %w", err)
		}
		out.Normalize.KeepArtifactsDir = dir
	}
	if f.noVerify {
		out.Normalize.VerifyOutput = false
	}
	if err := out.Validate(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "config", "", "invalid override", err)
	}
	if err := out.EnsureDirectories(); err != nil {
		return nil, err
	}
	return &out, nil
}

func runNormalize(cmd *cobra.Command, ctx *commandContext, flags *runFlags, inputPath, outputPath string) error {
	base, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	cfg, err := flags.apply(base)
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger(cmd)
	if err != nil {
		return err
	}
	if err := preflight.Ready(cmd.Context(), cfg); err != nil {
		return err
	}
	recorder, closeRecorder, err := ctx.openRecorder(cfg)
	if err != nil {
		return err
	}
	defer closeRecorder()

	inputPath, err = filepath.Abs(inputPath)
	if err != nil {
		return fmt.Errorf("resolve input: %w", err)
	}
	outputPath, err = filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve output: %w", err)
	}
	if inputPath == outputPath {
		return newUsageError("output must differ from input")
	}

	orch, err := pipeline.Build(cfg, pipeline.BuildOptions{
		Runner:   ctx.runner(cfg, logger),
		Recorder: recorder,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	res, err := orch.Run(cmd.Context(), inputPath, outputPath)
	printRunSummary(cmd, res, inputPath)
	return err
}

func printRunSummary(cmd *cobra.Command, res pipeline.Result, inputPath string) {
	errOut := cmd.ErrOrStderr()
	for _, w := range res.Warnings {
		fmt.Fprintf(errOut, "warning: %s\n", w.String())
	}
	if res.State != pipeline.StateDone {
		return
	}
	out := cmd.OutOrStdout()
	if len(res.Descriptors) == 0 {
		fmt.Fprintf(out, "No audio streams in %s; nothing to do\n", inputPath)
		return
	}
	fmt.Fprintf(out, "Added %d stereo track(s) to %s via %s in %s\n",
		len(res.Artifacts), res.OutputPath, res.Strategy, res.Duration.Round(10*time.Millisecond))
}

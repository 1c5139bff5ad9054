package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stereomax/internal/config"
	"stereomax/internal/logging"
	"stereomax/internal/pipeline"
	"stereomax/internal/preflight"
	"stereomax/internal/watch"
)

func newWatchCommand(ctx *commandContext, flags *runFlags) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Normalize media files as they appear in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			target := strings.TrimSpace(outDir)
			if target == "" {
				target = cfg.Watch.OutputDir
			} else if target, err = config.ExpandPath(target); err != nil {
				return fmt.Errorf("resolve --out: %w", err)
			}
			if target == "" {
				return newUsageError("an output directory is required (--out or [watch] output_dir)")
			}

			if err := preflight.Ready(cmd.Context(), cfg); err != nil {
				return err
			}
			recorder, closeRecorder, err := ctx.openRecorder(cfg)
			if err != nil {
				return err
			}
			defer closeRecorder()

			runner := ctx.runner(cfg, logger)
			handler := func(runCtx context.Context, inputPath, outputPath string) error {
				orch, err := pipeline.Build(cfg, pipeline.BuildOptions{
					Runner:   runner,
					Recorder: recorder,
					Logger:   logger,
				})
				if err != nil {
					return err
				}
				_, err = orch.Run(runCtx, inputPath, outputPath)
				return err
			}

			w, err := watch.New(watch.Options{
				Dir:        args[0],
				OutputDir:  target,
				Extensions: cfg.Watch.Extensions,
				Settle:     cfg.SettleDelay(),
			}, handler, logger)
			if err != nil {
				return newUsageError("%v", err)
			}
			logger.Info("stereomax watch running; press Ctrl+C to stop",
				logging.String(logging.FieldEventType, "watch_ready"),
			)
			return w.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory for normalized outputs")
	return cmd
}

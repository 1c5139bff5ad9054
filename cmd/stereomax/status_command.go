package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stereomax/internal/history"
	"stereomax/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check external tools and working directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			var lines []string
			lines = append(lines, renderSectionHeader("Configuration", colorize)...)
			configDetail := ctx.configPath
			if !ctx.configExists {
				configDetail += " (not found; defaults in use)"
			}
			lines = append(lines,
				renderStatusLine("Config", statusInfo, configDetail, colorize),
				renderStatusLine("Profile", statusInfo, cfg.Normalize.Profile, colorize),
				renderStatusLine("Merge strategy", statusInfo, cfg.Merge.Strategy, colorize),
				renderStatusLine("Workers", statusInfo, strconv.Itoa(cfg.NormalizeWorkers()), colorize),
				renderStatusLine("Verify output", statusInfo, yesNo(cfg.Normalize.VerifyOutput), colorize),
			)

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			lines = append(lines, dependencyLines(preflight.CheckSystemDeps(cmd.Context(), cfg), colorize)...)

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Filesystem", colorize)...)
			lines = append(lines, filesystemLine(preflight.CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir), statusError, colorize))
			lines = append(lines, filesystemLine(preflight.CheckFreeSpace("Temp free space", cfg.Paths.TempDir, preflight.MinTempFreeBytes), statusWarn, colorize))
			if cfg.Normalize.KeepArtifactsDir != "" {
				lines = append(lines, filesystemLine(preflight.CheckDirectoryAccess("Artifact directory", cfg.Normalize.KeepArtifactsDir), statusError, colorize))
			}
			lines = append(lines, historyLine(cmd, cfg.History.Enabled, cfg.Paths.HistoryDB, colorize))

			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func filesystemLine(r preflight.Result, failKind statusKind, colorize bool) string {
	if r.Passed {
		return renderStatusLine(r.Name, statusOK, r.Detail, colorize)
	}
	return renderStatusLine(r.Name, failKind, r.Detail, colorize)
}

func historyLine(cmd *cobra.Command, enabled bool, path string, colorize bool) string {
	if !enabled {
		return renderStatusLine("History", statusInfo, "Disabled", colorize)
	}
	store, err := history.OpenPath(path)
	if err != nil {
		return renderStatusLine("History", statusError, err.Error(), colorize)
	}
	defer store.Close()
	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return renderStatusLine("History", statusError, err.Error(), colorize)
	}
	return renderStatusLine("History", statusOK, fmt.Sprintf("%s (done %d, noop %d, failed %d)",
		path, stats[history.StatusDone], stats[history.StatusNoop], stats[history.StatusFailed]), colorize)
}

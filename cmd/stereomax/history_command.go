package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"stereomax/internal/history"
	"stereomax/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, ctx, func(store *history.Store) error {
				runs, err := store.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						run.StartedAt.Local().Format("2006-01-02 15:04"),
						statusText(run),
						strconv.Itoa(run.StreamCount),
						dashIfEmpty(run.Strategy),
						run.Duration().Round(time.Second).String(),
						filepath.Base(run.Input),
						run.ID,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Started", "Status", "Streams", "Strategy", "Took", "Input", "Run"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, ctx, func(store *history.Store) error {
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return services.Wrap(services.ErrNotFound, "history", "show", fmt.Sprintf("run %s not found", args[0]), nil)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run:       %s\n", run.ID)
				fmt.Fprintf(out, "Status:    %s\n", statusText(run))
				fmt.Fprintf(out, "Input:     %s\n", run.Input)
				fmt.Fprintf(out, "Output:    %s\n", run.Output)
				fmt.Fprintf(out, "Profile:   %s\n", run.Profile)
				fmt.Fprintf(out, "Streams:   %d\n", run.StreamCount)
				fmt.Fprintf(out, "Strategy:  %s\n", dashIfEmpty(run.Strategy))
				fmt.Fprintf(out, "Started:   %s\n", run.StartedAt.Local().Format(time.RFC3339))
				fmt.Fprintf(out, "Duration:  %s\n", run.Duration().Round(time.Millisecond))
				if run.Error != "" {
					fmt.Fprintf(out, "Error:     %s\n", run.Error)
				}
				return nil
			})
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than the given age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return newUsageError("--days must be at least 1")
			}
			return withHistory(cmd, ctx, func(store *history.Store) error {
				cutoff := time.Now().AddDate(0, 0, -days)
				removed, err := store.Prune(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s) older than %d day(s)\n", removed, days)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 90, "Age threshold in days")
	return cmd
}

func withHistory(cmd *cobra.Command, ctx *commandContext, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		fmt.Fprintln(cmd.OutOrStdout(), "History is disabled ([history] enabled = false)")
		return nil
	}
	store, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func statusText(run *history.Run) string {
	if run.Status == history.StatusFailed && run.FailedStage != "" {
		return fmt.Sprintf("failed (%s)", run.FailedStage)
	}
	return string(run.Status)
}

func dashIfEmpty(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

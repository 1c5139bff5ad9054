package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var flags runFlags

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:   "stereomax <input> <output>",
		Short: "Append loudness-normalized stereo tracks to a media file",
		Long: "stereomax downmixes every audio stream of the input to stereo, applies a dynamics\n" +
			"chain tuned for quiet listening, and writes the input plus the new tracks to the output.",
		// Positional arguments are the run's input and output; subcommand
		// names still take precedence.
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch len(args) {
			case 0:
				return cmd.Help()
			case 2:
				return runNormalize(cmd, ctx, &flags, args[0], args[1])
			default:
				return newUsageError("expected <input> <output>, got %d argument(s)", len(args))
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	flags.register(rootCmd)

	rootCmd.AddCommand(newProbeCommand(ctx, &flags))
	rootCmd.AddCommand(newFilterCommand(ctx, &flags))
	rootCmd.AddCommand(newProfilesCommand())
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx, &flags))
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"stereomax/internal/filtergraph"
	"stereomax/internal/language"
	"stereomax/internal/media/ffprobe"
	"stereomax/internal/normalize"
	"stereomax/internal/services"
)

func newProbeCommand(ctx *commandContext, flags *runFlags) *cobra.Command {
	var showChain bool

	cmd := &cobra.Command{
		Use:   "probe <input>",
		Short: "List audio streams and the filter chain each would receive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd)
			if err != nil {
				return err
			}
			profile, err := resolveProfile(flags.profile, cfg.Normalize.Profile)
			if err != nil {
				return err
			}

			client := ffprobe.New(ctx.runner(cfg, logger), cfg.Tools.FFprobe, cfg.ProcessTimeout())
			descriptors, err := normalize.NewProber(client, logger).Probe(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(descriptors) == 0 {
				fmt.Fprintf(out, "No audio streams in %s\n", args[0])
				return nil
			}

			rows := make([][]string, 0, len(descriptors))
			chains := make([]string, 0, len(descriptors))
			for _, d := range descriptors {
				var support string
				chain, err := filtergraph.Build(d.Layout, profile)
				if err != nil {
					support = "no"
					chains = append(chains, err.Error())
				} else {
					support = fmt.Sprintf("yes (%d filters)", chain.Len())
					chains = append(chains, chain.String())
				}
				rows = append(rows, []string{
					strconv.Itoa(d.Position),
					d.Language,
					language.DisplayName(d.Language),
					d.Layout,
					language.TrackTitle(d.Language),
					support,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Lang", "Language", "Layout", "New Track", "Supported"},
				rows,
				[]columnAlignment{alignRight},
			))
			if showChain {
				fmt.Fprintf(out, "\nProfile %s\n", profile.Name)
				for i, chain := range chains {
					fmt.Fprintf(out, "  a:%d  %s\n", descriptors[i].Position, chain)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showChain, "chain", true, "Print the filter expression for each stream")
	return cmd
}

func newFilterCommand(ctx *commandContext, flags *runFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter <layout>",
		Short: "Print the filter expression for a channel layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			profile, err := resolveProfile(flags.profile, cfg.Normalize.Profile)
			if err != nil {
				return err
			}
			chain, err := filtergraph.Build(args[0], profile)
			if err != nil {
				return services.Wrap(services.ErrValidation, "filter", "build", "", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), chain.String())
			return nil
		},
	}
	return cmd
}

func newProfilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "profiles",
		Short:       "List registered tuning profiles",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			for _, p := range filtergraph.Profiles() {
				name := p.Name
				if name == filtergraph.DefaultProfileName {
					name += " (default)"
				}
				rows = append(rows, []string{
					name,
					fmt.Sprintf("%s %s, %d ch", p.Encode.Codec, p.Encode.Bitrate, p.Encode.Channels),
					p.Description,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Profile", "Encode", "Description"}, rows, nil))
			return nil
		},
	}
}

// resolveProfile prefers an explicit flag value over the configured profile.
func resolveProfile(flagValue, configured string) (filtergraph.Profile, error) {
	name := strings.TrimSpace(flagValue)
	if name == "" {
		name = configured
	}
	profile, ok := filtergraph.Lookup(name)
	if !ok {
		return filtergraph.Profile{}, newUsageError("unknown profile %q (available: %s)",
			name, strings.Join(filtergraph.ProfileNames(), ", "))
	}
	return profile, nil
}

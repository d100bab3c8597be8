package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"discern/internal/identity"
	"discern/internal/merge"
)

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "identify <file>",
		Short: "Resolve the identity of a single disc image",
		Long: `Identify resolves one file against the cache, the filename grammar, the
disc header, and the metadata catalog, in that order, and prints every field
it derived. When the serial number cannot be resolved the closest catalog
matches are listed for manual disambiguation.

Examples:
  discern identify "Gran Turismo (USA) [SCUS-94194].cue"
  discern identify --no-cache dump_0042.bin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}
			idx, err := ctx.loadCatalogIndex()
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			store, err := ctx.openCache(noCache)
			if err != nil {
				return fmt.Errorf("open identity cache: %w", err)
			}
			var cache identity.Cache
			if store != nil {
				cache = store
				defer store.Close()
			}

			resolver := identity.NewResolver(idx, cache, cfg.Catalog.MaxCandidates, logger)
			record := resolver.Resolve(context.Background(), args[0])

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintln(out, renderStatusLine("Title", statusInfo, record.Title, colorize))
			fmt.Fprintln(out, renderStatusLine("Region", statusInfo, record.Region, colorize))
			if record.Serial != "" {
				fmt.Fprintln(out, renderStatusLine("Serial", statusOK, record.Serial, colorize))
			}
			if record.Version != "" {
				fmt.Fprintln(out, renderStatusLine("Version", statusInfo, record.Version, colorize))
			}
			if disc := formatDisc(record); disc != "" {
				fmt.Fprintln(out, renderStatusLine("Disc", statusInfo, disc, colorize))
			}
			if record.IsTrackMember() {
				fmt.Fprintln(out, renderStatusLine("Track", statusInfo, fmt.Sprintf("%d", record.TrackNumber), colorize))
			}
			if class := formatContent(record.Content); class != "" {
				fmt.Fprintln(out, renderStatusLine("Class", statusInfo, class, colorize))
			}
			if record.Warning != "" {
				fmt.Fprintln(out, renderStatusLine("Warning", statusWarn, record.Warning, colorize))
			}

			if len(record.SerialCandidates) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderSectionHeader("Catalog candidates", colorize))
				fmt.Fprintln(out, renderTable(candidateHeaders, candidateRows(record.SerialCandidates)))
			}

			// Multi-track cue sheets also report the merged layout they
			// describe, so the operator can see what a merge would produce.
			if sheet, err := readSheet(args[0]); err == nil && sheet.IsMultiFile() {
				planner := merge.NewPlanner(logger)
				if plan, ok := planner.Plan(args[0], sheet, &record, merge.Options{}); ok {
					fmt.Fprintln(out)
					fmt.Fprintln(out, renderStatusLine("Tracks", statusInfo, fmt.Sprintf("%d", len(plan.Tracks)), colorize))
					fmt.Fprintln(out, renderStatusLine("Merge", statusInfo, string(plan.State()), colorize))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the identity cache")
	return cmd
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"discern/internal/identity"
	"discern/internal/merge"
	"discern/internal/services"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var deleteSources bool
	var flatten bool
	var outputDir string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "merge [directory|cue-sheet]",
		Short: "Merge multi-track dumps into single binaries",
		Long: `Merge concatenates the track binaries of a multi-track dump into one file
and rewrites the cue sheet against it, preserving track boundaries as INDEX
timestamps. Given a directory it plans and executes every eligible cue sheet
under it; given a single cue sheet it merges just that one.

Examples:
  discern merge                         # Merge everything under the library
  discern merge "Game (USA).cue"        # Merge one dump
  discern merge --dry-run ~/roms        # Show plans without touching files
  discern merge --delete-sources ~/roms # Remove track files as they are copied`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if cmd.Flags().Changed("delete-sources") {
				cfg.Merge.DeleteSources = deleteSources
			}
			if cmd.Flags().Changed("flatten") {
				cfg.Merge.Flatten = flatten
			}

			pipeline, closeCache, err := ctx.newPipeline(noCache)
			if err != nil {
				return err
			}
			defer closeCache()

			mergeCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			target := trimArg(args)
			if target == "" {
				target = cfg.Paths.LibraryDir
			}

			opts := pipeline.MergeOptions()
			opts.DestinationDir = strings.TrimSpace(outputDir)

			var plans []*merge.Plan
			if strings.EqualFold(filepath.Ext(target), ".cue") {
				plan, err := planSingle(ctx, mergeCtx, target, opts)
				if err != nil {
					return err
				}
				plans = []*merge.Plan{plan}
			} else {
				report, err := pipeline.Scan(mergeCtx, target)
				if err != nil {
					return fmt.Errorf("scan %s: %w", target, err)
				}
				plans = report.Plans
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			if len(plans) == 0 {
				fmt.Fprintln(out, "Nothing to merge.")
				return nil
			}

			for _, plan := range plans {
				note := plan.BlockReason
				if plan.AlreadyMerged {
					note = "already merged"
				}
				kind := statusOK
				if plan.Blocked {
					kind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine(filepath.Base(plan.CuePath), kind, strings.TrimSpace(string(plan.State())+" "+note), colorize))
				for _, track := range plan.Tracks {
					fmt.Fprintf(out, "    %2d  %s\n", track.TrackNumber, filepath.Base(track.Path))
				}
			}

			if dryRun {
				fmt.Fprintln(out, "\nDry run; no files were modified.")
				return nil
			}

			results, failures := pipeline.ExecutePlans(mergeCtx, plans)
			fmt.Fprintln(out)
			for _, result := range results {
				fmt.Fprintln(out, renderStatusLine(filepath.Base(result.DestinationBin), statusOK,
					fmt.Sprintf("%d bytes from %s", result.BytesWritten, pluralize(result.TracksCopied, "track", "tracks")), colorize))
			}
			for _, failure := range failures {
				fmt.Fprintln(out, renderStatusLine(filepath.Base(failure.Path), statusError, failure.Err.Error(), colorize))
			}
			if len(failures) > 0 {
				return fmt.Errorf("%s failed", pluralize(len(failures), "merge", "merges"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan without executing")
	cmd.Flags().BoolVar(&deleteSources, "delete-sources", false, "Delete track files after they are copied")
	cmd.Flags().BoolVar(&flatten, "flatten", false, "Name output from the resolved identity")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Destination directory (single cue sheet only)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the identity cache")
	return cmd
}

func planSingle(ctx *commandContext, runCtx context.Context, cuePath string, opts merge.Options) (*merge.Plan, error) {
	sheet, err := readSheet(cuePath)
	if err != nil {
		return nil, err
	}

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}
	idx, err := ctx.loadCatalogIndex()
	if err != nil {
		return nil, err
	}

	resolver := identity.NewResolver(idx, nil, cfg.Catalog.MaxCandidates, logger)
	record := resolver.Resolve(runCtx, cuePath)

	planner := merge.NewPlanner(logger)
	plan, ok := planner.Plan(cuePath, sheet, &record, opts)
	if !ok {
		return nil, services.Wrap(services.ErrUnsupported, "merge", "plan",
			fmt.Sprintf("%s is not a mergeable cue sheet", cuePath), nil)
	}
	return plan, nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "scan [directory]",
		Short: "Scan a library and report resolved disc identities",
		Long: `Scan walks a directory tree, resolves the identity of every disc image it
finds, assigns disc numbers within multi-disc sets, and reports merge plans
for multi-track dumps without executing them. Resolved identities are written
to the cache unless --no-cache is given.

Examples:
  discern scan                  # Scan the configured library directory
  discern scan ~/roms/psx       # Scan a specific directory
  discern scan --no-cache       # Skip cache reads and writes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			root := trimArg(args)
			if root == "" {
				root = cfg.Paths.LibraryDir
			}

			pipeline, closeCache, err := ctx.newPipeline(noCache)
			if err != nil {
				return err
			}
			defer closeCache()

			scanCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			report, err := pipeline.Scan(scanCtx, root)
			if err != nil {
				return fmt.Errorf("scan %s: %w", root, err)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			if len(report.Records) > 0 {
				rows := make([][]string, 0, len(report.Records))
				for _, record := range report.Records {
					rows = append(rows, recordRow(record))
				}
				fmt.Fprintln(out, renderTable(recordHeaders, rows))
			}

			if len(report.Plans) > 0 {
				fmt.Fprintln(out, renderSectionHeader("Merge plans", colorize))
				rows := make([][]string, 0, len(report.Plans))
				for _, plan := range report.Plans {
					note := plan.BlockReason
					if plan.AlreadyMerged {
						note = "already merged"
					}
					rows = append(rows, []string{
						filepath.Base(plan.CuePath),
						pluralize(len(plan.Tracks), "track", "tracks"),
						string(plan.State()),
						note,
					})
				}
				fmt.Fprintln(out, renderTable([]string{"Cue Sheet", "Tracks", "State", "Note"}, rows))
				fmt.Fprintln(out, "Run `discern merge` to execute ready plans.")
			}

			for _, failure := range report.Failures {
				fmt.Fprintln(out, renderStatusLine(filepath.Base(failure.Path), statusError, failure.Err.Error(), colorize))
			}

			fmt.Fprintf(out, "\nScanned %s: %s, %s, %s\n",
				root,
				pluralize(len(report.Records), "identity", "identities"),
				pluralize(len(report.Plans), "merge plan", "merge plans"),
				pluralize(len(report.Failures), "failure", "failures"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the identity cache")
	return cmd
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"discern/internal/catalog"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Metadata catalog lookups",
	}

	catalogCmd.AddCommand(newCatalogLookupCommand(ctx))
	catalogCmd.AddCommand(newCatalogSearchCommand(ctx))
	catalogCmd.AddCommand(newCatalogSerialCommand(ctx))

	return catalogCmd
}

func newCatalogLookupCommand(ctx *commandContext) *cobra.Command {
	var region string

	cmd := &cobra.Command{
		Use:   "lookup <title>",
		Short: "Exact catalog lookup by title and region",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := ctx.requireCatalogIndex()
			if err != nil {
				return err
			}
			entry, ok := idx.Lookup(args[0], region)
			if !ok {
				return fmt.Errorf("no catalog entry for %q (%s)", args[0], region)
			}
			printEntry(cmd, entry)
			return nil
		},
	}

	cmd.Flags().StringVarP(&region, "region", "r", "USA", "Region qualifier")
	return cmd
}

func newCatalogSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <title>",
		Short: "Fuzzy catalog search by title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := ctx.requireCatalogIndex()
			if err != nil {
				return err
			}
			entries := idx.FindSimilar(args[0], limit)
			if len(entries) == 0 {
				return fmt.Errorf("no catalog entries resemble %q", args[0])
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, entryRow(entry))
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(entryHeaders, rows))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of matches")
	return cmd
}

func newCatalogSerialCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serial <serial>",
		Short: "Reverse catalog lookup by serial number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := ctx.requireCatalogIndex()
			if err != nil {
				return err
			}
			entry, ok := idx.ReverseLookupBySerial(args[0])
			if !ok {
				return fmt.Errorf("no catalog entry carries serial %q", args[0])
			}
			printEntry(cmd, entry)
			return nil
		},
	}
}

var entryHeaders = []string{"Title", "Region", "Serials", "Discs"}

func entryRow(entry *catalog.Entry) []string {
	discs := ""
	if entry.DiscCount > 0 {
		discs = fmt.Sprintf("%d", entry.DiscCount)
	}
	return []string{entry.Title, entry.Region, strings.Join(entry.Serials, ", "), discs}
}

func printEntry(cmd *cobra.Command, entry *catalog.Entry) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	fmt.Fprintln(out, renderStatusLine("Title", statusInfo, entry.Title, colorize))
	fmt.Fprintln(out, renderStatusLine("Region", statusInfo, entry.Region, colorize))
	fmt.Fprintln(out, renderStatusLine("Serials", statusInfo, strings.Join(entry.Serials, ", "), colorize))
	if entry.DiscCount > 0 {
		fmt.Fprintln(out, renderStatusLine("Discs", statusInfo, fmt.Sprintf("%d", entry.DiscCount), colorize))
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Identity cache maintenance",
	}

	cacheCmd.AddCommand(newCacheShowCommand(ctx))
	cacheCmd.AddCommand(newCacheForgetCommand(ctx))

	return cacheCmd
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Show the cached identity for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCache(false)
			if err != nil {
				return fmt.Errorf("open identity cache: %w", err)
			}
			defer store.Close()

			cached, ok, err := store.Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("read identity cache: %w", err)
			}
			if !ok {
				return fmt.Errorf("no cached identity for %s", args[0])
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderStatusLine("Title", statusInfo, cached.Title, colorize))
			fmt.Fprintln(out, renderStatusLine("Region", statusInfo, cached.Region, colorize))
			fmt.Fprintln(out, renderStatusLine("Serial", statusInfo, cached.Serial, colorize))
			if cached.Version != "" {
				fmt.Fprintln(out, renderStatusLine("Version", statusInfo, cached.Version, colorize))
			}
			if cached.DiscNumber > 0 {
				disc := fmt.Sprintf("%d", cached.DiscNumber)
				if cached.DiscCount > 0 {
					disc = fmt.Sprintf("%d/%d", cached.DiscNumber, cached.DiscCount)
				}
				fmt.Fprintln(out, renderStatusLine("Disc", statusInfo, disc, colorize))
			}
			return nil
		},
	}
}

func newCacheForgetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <file>",
		Short: "Drop the cached identity for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCache(false)
			if err != nil {
				return fmt.Errorf("open identity cache: %w", err)
			}
			defer store.Close()

			if err := store.Forget(context.Background(), args[0]); err != nil {
				return fmt.Errorf("forget cached identity: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Forgot cached identity for %s\n", args[0])
			return nil
		},
	}
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netposter/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clean the local artifact cache",
		Long: `The local cache keeps rendered posters keyed by the input graph, the
events file and the settings, so re-rendering an unchanged day is instant.
A shared Redis cache (--redis) is not managed here.`,
	}
	cmd.AddCommand(
		c.cachePathCommand(),
		c.cacheStatsCommand(),
		c.cacheClearCommand(),
	)
	return cmd
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := cacheDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the number and size of cached artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fc, err := openFileCache()
			if err != nil {
				return err
			}
			entries, size, err := fc.Usage()
			if err != nil {
				return err
			}
			ui := newPrinter(cmd.OutOrStdout())
			ui.keyValue("Directory", fc.Dir())
			ui.keyValue("Entries", fmt.Sprint(entries))
			ui.keyValue("Size", formatBytes(size))
			return nil
		},
	}
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	var expired bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fc, err := openFileCache()
			if err != nil {
				return err
			}
			remove, what := fc.Clear, "cached"
			if expired {
				remove, what = fc.Prune, "expired"
			}
			n, err := remove()
			if err != nil {
				return err
			}
			ui := newPrinter(cmd.OutOrStdout())
			if n == 0 {
				ui.info("Nothing to remove")
				return nil
			}
			ui.success("Removed %d %s entries", n, what)
			ui.detail("Directory: %s", fc.Dir())
			return nil
		},
	}
	cmd.Flags().BoolVar(&expired, "expired", false, "only remove expired or unreadable entries")
	return cmd
}

func openFileCache() (*cache.FileCache, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	return cache.NewFileCache(dir)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

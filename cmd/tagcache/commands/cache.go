package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/jmgilman/go/tags/cache"
	"github.com/jmgilman/go/tags/internal/logging"
	"github.com/spf13/cobra"
)

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the tag cache",
	}

	cmd.AddCommand(c.newCacheStatsCmd())
	cmd.AddCommand(c.newCacheClearCmd())
	cmd.AddCommand(c.newCacheCleanupCmd())

	return cmd
}

func (c *CLI) newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the state of each cache artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, logging.OpCacheStats, func(ctx context.Context) error {
				store, err := c.store(cmd)
				if err != nil {
					return err
				}

				stats, err := store.Stats(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				printArtifact(out, stats.FileNodes)
				printArtifact(out, stats.VisibleTags)
				fmt.Fprintf(out, "temp files: %d\n", stats.TempFiles)
				return nil
			})
		},
	}
}

func printArtifact(out io.Writer, st cache.ArtifactStats) {
	if !st.Present {
		fmt.Fprintf(out, "%s: absent\n", st.Name)
		return
	}
	fmt.Fprintf(out, "%s: %s, %d bytes, %d entries\n", st.Name, st.State, st.Size, st.Entries)
}

func (c *CLI) newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete both cache artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, logging.OpCacheClear, func(ctx context.Context) error {
				store, err := c.store(cmd)
				if err != nil {
					return err
				}
				return store.Clear(ctx)
			})
		},
	}
}

func (c *CLI) newCacheCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove temporary files left by interrupted writers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, logging.OpCleanupTemp, func(ctx context.Context) error {
				store, err := c.store(cmd)
				if err != nil {
					return err
				}

				n, err := store.CleanupTempFiles(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d temp files\n", n)
				return nil
			})
		},
	}
}

func (c *CLI) store(cmd *cobra.Command) (*cache.Store, error) {
	engine, err := c.engine(cmd)
	if err != nil {
		return nil, err
	}
	return engine.Store(), nil
}

package commands

import (
	"context"
	"fmt"

	"github.com/jmgilman/go/tags/internal/logging"
	"github.com/spf13/cobra"
)

func (c *CLI) newObsoleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "obsolete [REV]",
		Short: "Mark a revision obsolete, or list the marked revisions",
		Long: `Mark a revision obsolete so it is hidden once none of its descendants
are visible. Without an argument the current markers are listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, logging.OpObsolete, func(context.Context) error {
				r, err := c.repository()
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(args) == 0 {
					marked, err := r.Obsolete()
					if err != nil {
						return err
					}
					for _, h := range marked {
						fmt.Fprintln(out, h)
					}
					return nil
				}

				rev, err := r.ResolveRevision(args[0])
				if err != nil {
					return err
				}
				if c.clearMarker {
					return r.ClearObsolete(rev)
				}
				return r.MarkObsolete(rev)
			})
		},
	}

	cmd.Flags().BoolVar(&c.clearMarker, "clear", false, "Remove the marker instead of adding it")

	return cmd
}

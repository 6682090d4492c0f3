package commands

import (
	"context"
	"fmt"

	"github.com/jmgilman/go/tags/internal/logging"
	"github.com/spf13/cobra"
)

func (c *CLI) newHeadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heads",
		Short: "Print the visible heads the tag cache is keyed on",
		Long: `Print the visible heads the tag cache is keyed on. With --hidden the
revisions excluded by obsolescence markers are printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, logging.OpHeads, func(ctx context.Context) error {
				r, err := c.repository()
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if c.showHidden {
					graph, err := r.LoadGraph(ctx)
					if err != nil {
						return err
					}
					for _, rev := range graph.Hidden() {
						fmt.Fprintln(out, rev.Hash)
					}
					return nil
				}

				heads, err := r.Heads(ctx)
				if err != nil {
					return err
				}
				for _, h := range heads.Hashes() {
					fmt.Fprintln(out, h)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&c.showHidden, "hidden", false, "Print hidden revisions instead of heads")

	return cmd
}

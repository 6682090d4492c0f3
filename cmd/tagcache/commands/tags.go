package commands

import (
	"fmt"

	"github.com/jmgilman/go/tags"
	"github.com/spf13/cobra"
)

func (c *CLI) newTagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var opts []tags.Option
			if c.disableTags {
				opts = append(opts, tags.WithConfig(tags.StaticConfig{Disabled: true}))
			}

			engine, err := c.engine(cmd, opts...)
			if err != nil {
				return err
			}

			res, err := engine.Tags(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, tag := range res.List() {
				fmt.Fprintf(out, "%s %s\n", tag.Name, tag.Target)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&c.disableTags, "disable-tags", false, "Resolve only tip, ignoring the tags file and the cache")

	return cmd
}

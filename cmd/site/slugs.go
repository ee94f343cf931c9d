package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSlugsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "slugs",
		Short: "Print every tool slug, one per line",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			slugs, err := a.content.EnumerateSlugs(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, slug := range slugs {
				fmt.Fprintln(out, slug)
			}
			return nil
		},
	}
}

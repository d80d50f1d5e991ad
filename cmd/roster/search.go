package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy-search character names",
		Long: `Matches a query against every character name in the world, ignoring
filters. Names containing the query come first, shortest first, followed
by names that contain its letters in order.

Examples:
  roster search zoro
  roster search "mky lfy" --limit 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				result, err := d.RosterHandler.HandleSearch(ctx, d.WorldID, args[0], limit)
				if err != nil {
					return fmt.Errorf("searching characters: %w", err)
				}

				w := cmd.OutOrStdout()
				if len(result.Characters) == 0 {
					fmt.Fprintf(w, "No characters match %q.\n", result.Query)
					return nil
				}
				for i, c := range result.Characters {
					fmt.Fprintf(w, "%2d. %s (%s)\n", i+1, c.Name, c.ID)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultSearchLimit, "Maximum number of results")

	return cmd
}

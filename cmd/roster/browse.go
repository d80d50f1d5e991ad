package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ersonp/lore-roster/internal/application/handlers"
	"github.com/ersonp/lore-roster/internal/domain/entities"
)

// selectionFlags are the filter, query and sort flags shared by browse and
// export.
type selectionFlags struct {
	query      string
	ignore     string
	content    string
	rating     string
	difficulty string
	nonTV      string
	sort       string
}

func (f *selectionFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.query, "query", "q", "", "Fuzzy name query")
	fs.StringVar(&f.ignore, "ignore", "", "Ignored filter (all, ignored, not-ignored)")
	fs.StringVar(&f.content, "content", "", "Content filter (all, canon, fillers)")
	fs.StringVar(&f.rating, "rating", "", "Rating filter (all, rated, unrated)")
	fs.StringVar(&f.difficulty, "difficulty", "", "Only characters rated exactly this (rank or label)")
	fs.StringVar(&f.nonTV, "non-tv", "", "Include non-TV characters (true, false; default true)")
	fs.StringVarP(&f.sort, "sort", "s", "", "Sort order (name-asc, name-desc, difficulty-asc, difficulty-desc)")
}

func (f *selectionFlags) params(limit, offset int) handlers.BrowseParams {
	return handlers.BrowseParams{
		Query:        f.query,
		Ignore:       f.ignore,
		Content:      f.content,
		Rating:       f.rating,
		Difficulty:   f.difficulty,
		IncludeNonTV: f.nonTV,
		Sort:         f.sort,
		Limit:        limit,
		Offset:       offset,
	}
}

func newBrowseCmd() *cobra.Command {
	var (
		sel    selectionFlags
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "List characters matching filters and a query",
		Long: `Lists the world's roster after filtering, fuzzy name search and sorting.

Examples:
  roster browse --content canon --rating unrated
  roster browse -q zoro --sort difficulty-desc
  roster browse --difficulty hard --non-tv false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				result, err := d.RosterHandler.HandleBrowse(ctx, d.WorldID, sel.params(limit, offset))
				if err != nil {
					return fmt.Errorf("browsing roster: %w", err)
				}

				w := cmd.OutOrStdout()
				if len(result.Characters) == 0 {
					fmt.Fprintln(w, "No characters found.")
					return nil
				}
				fmt.Fprintf(w, "Showing %d of %d characters:\n\n", len(result.Characters), result.Total)
				displayCharacters(w, result.Characters)
				return nil
			})
		},
	}

	sel.register(cmd.Flags())
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum number of characters to display (default: search.default_limit)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of characters to skip")

	return cmd
}

func displayCharacters(w io.Writer, chars []entities.Character) {
	fmt.Fprintf(w, "%-36s  %-30s  %-12s  %-11s  %s\n", "ID", "NAME", "DIFFICULTY", "STATUS", "FLAGS")
	for i := range chars {
		displayCharacter(w, &chars[i])
	}
}

func displayCharacter(w io.Writer, c *entities.Character) {
	flags := ""
	if c.IsIgnored {
		flags = "ignored"
	}
	fmt.Fprintf(w, "%-36s  %-30s  %-12s  %-11s  %s\n", c.ID, c.Name, c.Difficulty, c.FillerStatus, flags)
}

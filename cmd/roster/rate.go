package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-roster/internal/application/handlers"
	"github.com/ersonp/lore-roster/internal/domain/entities"
)

func newRateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rate <id> <difficulty>",
		Short: "Set a character's difficulty",
		Long: fmt.Sprintf("Sets how hard a character is to guess. Difficulty is a rank from 0 to %d\nor a label: %s.",
			entities.MaxDifficulty, handlers.DifficultyLabels()),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				c, err := d.RosterHandler.HandleRate(ctx, d.WorldID, args[0], args[1])
				if err != nil {
					return fmt.Errorf("rating character: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rated %s as %s\n", c.Name, c.Difficulty)
				return nil
			})
		},
	}
}

func newIgnoreCmd() *cobra.Command {
	return newSetIgnoredCmd("ignore", "Hide a character from the game", true)
}

func newUnignoreCmd() *cobra.Command {
	return newSetIgnoredCmd("unignore", "Return an ignored character to the game", false)
}

func newSetIgnoredCmd(use, short string, ignored bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				c, err := d.RosterHandler.HandleSetIgnored(ctx, d.WorldID, args[0], ignored)
				if err != nil {
					return fmt.Errorf("updating character: %w", err)
				}
				verb := "Ignored"
				if !ignored {
					verb = "Unignored"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, c.Name)
				return nil
			})
		},
	}
}

package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-roster/internal/domain/entities"
)

func newHistoryCmd() *cobra.Command {
	var (
		action string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Show a character's change history",
		Long: fmt.Sprintf(`Shows a character's change history, newest first.

With --action, shows the world's most recent entries for that action
instead. Actions: %s.`, strings.Join(entities.AuditActions(), ", ")),
		Args: func(cmd *cobra.Command, args []string) error {
			if action != "" {
				return cobra.MaximumNArgs(0)(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				var (
					entries []entities.AuditEntry
					err     error
				)
				if action != "" {
					entries, err = d.RosterHandler.HandleAuditLog(ctx, d.WorldID, action, limit)
				} else {
					entries, err = d.RosterHandler.HandleHistory(ctx, d.WorldID, args[0])
				}
				if err != nil {
					return fmt.Errorf("reading history: %w", err)
				}
				printHistory(cmd.OutOrStdout(), entries)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&action, "action", "a", "", "List the world's entries for one action instead of a character")
	cmd.Flags().IntVarP(&limit, "limit", "n", DefaultSearchLimit, "Maximum entries to show with --action (0 for all)")
	return cmd
}

func printHistory(w io.Writer, entries []entities.AuditEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %-8s  %-10s  %s\n", e.CreatedAt.Local().Format(time.DateTime), e.Action, e.CharacterID, formatDetails(e.Details))
	}
}

// formatDetails renders audit details as key=value pairs in key order.
func formatDetails(details map[string]any) string {
	keys := slices.Sorted(maps.Keys(details))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, details[k]))
	}
	return strings.Join(parts, " ")
}

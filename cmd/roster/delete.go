package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				c, err := d.RosterHandler.HandleGet(ctx, d.WorldID, args[0])
				if err != nil {
					return err
				}

				if !force && !confirmAction(os.Stdin, cmd.OutOrStdout(), fmt.Sprintf("Delete %s?", c.Name)) {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}

				if err := d.RosterHandler.HandleDelete(ctx, d.WorldID, c.ID); err != nil {
					return fmt.Errorf("deleting character: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", c.Name)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func confirmAction(in io.Reader, out io.Writer, prompt string) bool {
	reader := bufio.NewReader(in)
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	response, _ := reader.ReadString('\n') // Error ignored: EOF/error treated as "no"
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

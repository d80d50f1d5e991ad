package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-roster/internal/domain/entities"
)

type exportFlags struct {
	selection selectionFlags
	format    string
	output    string
	limit     int
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a derived roster view to file",
		Long: `Exports the characters matching the given filters, query and sort order
to JSON, CSV, or markdown. JSON and CSV output can be imported again.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, flags)
		},
	}

	flags.selection.register(cmd.Flags())
	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format (json, csv, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().IntVarP(&flags.limit, "limit", "l", DefaultExportLimit, "Maximum number of characters to export")

	return cmd
}

func runExport(cmd *cobra.Command, flags exportFlags) error {
	if !slices.Contains(validFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validFormats)
	}

	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		result, err := d.RosterHandler.HandleBrowse(ctx, d.WorldID, flags.selection.params(flags.limit, 0))
		if err != nil {
			return fmt.Errorf("browsing roster: %w", err)
		}

		if len(result.Characters) == 0 {
			return errors.New("no characters found to export")
		}

		return export(flags.format, flags.output, result.Characters)
	})
}

func export(format, output string, chars []entities.Character) (err error) {
	var w io.Writer = os.Stdout
	var f *os.File

	if output != "" {
		f, err = os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("creating file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing file: %w", cerr)
			}
		}()
		w = f
	}

	if err := formatCharacters(w, format, chars); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if output != "" {
		fmt.Printf("Exported %d characters to %s\n", len(chars), output)
	}

	return nil
}

func formatCharacters(w io.Writer, format string, chars []entities.Character) error {
	switch format {
	case "json":
		return formatJSON(w, chars)
	case "csv":
		return formatCSV(w, chars)
	case "markdown":
		return formatMarkdown(w, chars)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// exportCharacter mirrors the import record so exports can be re-imported.
type exportCharacter struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Image        string `json:"image,omitempty"`
	FillerStatus string `json:"filler_status"`
	Difficulty   int    `json:"difficulty"`
	Ignored      bool   `json:"ignored"`
	Arc          string `json:"arc,omitempty"`
	Chapter      int    `json:"chapter,omitempty"`
	Episode      int    `json:"episode,omitempty"`
}

func formatJSON(w io.Writer, chars []entities.Character) error {
	out := make([]exportCharacter, 0, len(chars))
	for i := range chars {
		c := &chars[i]
		out = append(out, exportCharacter{
			ID:           c.ID,
			Name:         c.Name,
			Description:  c.Description,
			Image:        c.Image,
			FillerStatus: string(c.FillerStatus),
			Difficulty:   c.Difficulty.Rank(),
			Ignored:      c.IsIgnored,
			Arc:          c.Arc,
			Chapter:      c.Chapter,
			Episode:      c.Episode,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

var csvHeader = []string{"id", "name", "description", "image", "filler_status", "difficulty", "ignored", "arc", "chapter", "episode"}

func formatCSV(w io.Writer, chars []entities.Character) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for i := range chars {
		c := &chars[i]
		row := []string{
			c.ID,
			c.Name,
			c.Description,
			c.Image,
			string(c.FillerStatus),
			strconv.Itoa(c.Difficulty.Rank()),
			strconv.FormatBool(c.IsIgnored),
			c.Arc,
			countField(c.Chapter),
			countField(c.Episode),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func countField(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func formatMarkdown(w io.Writer, chars []entities.Character) error {
	if _, err := fmt.Fprintf(w, "# Exported Characters\n\nTotal: %d characters\n\n", len(chars)); err != nil {
		return err
	}

	if _, err := fmt.Fprint(w, "| Name | Difficulty | Status | Ignored | Arc |\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "|------|------------|--------|---------|-----|\n"); err != nil {
		return err
	}

	for i := range chars {
		c := &chars[i]
		ignored := ""
		if c.IsIgnored {
			ignored = "yes"
		}
		if _, err := fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
			escapeMarkdown(c.Name),
			c.Difficulty,
			c.FillerStatus,
			ignored,
			escapeMarkdown(c.Arc),
		); err != nil {
			return err
		}
	}

	return nil
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/ersonp/lore-roster/internal/infrastructure/config"
)

func newWorldsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worlds",
		Short: "Manage worlds",
		RunE:  runWorldsList,
	}

	cmd.AddCommand(
		newWorldsListCmd(),
		newWorldsCreateCmd(),
		newWorldsDeleteCmd(),
	)

	return cmd
}

func newWorldsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all worlds",
		RunE:  runWorldsList,
	}
}

func runWorldsList(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	worlds, err := config.LoadWorlds(cwd)
	if err != nil {
		return fmt.Errorf("loading worlds: %w", err)
	}

	printWorlds(cmd.OutOrStdout(), worlds)
	return nil
}

func printWorlds(w io.Writer, worlds *config.WorldsConfig) {
	if len(worlds.Worlds) == 0 {
		fmt.Fprintln(w, "No worlds configured.")
		fmt.Fprintln(w, "Use 'roster worlds create NAME' to create a world.")
		return
	}

	fmt.Fprintf(w, "%-20s %-8s %s\n", "NAME", "LOCALE", "DESCRIPTION")
	fmt.Fprintf(w, "%-20s %-8s %s\n", "----", "------", "-----------")

	for _, name := range worlds.Names() {
		world := worlds.Worlds[name]
		locale := world.Locale
		if locale == "" {
			locale = "-"
		}
		fmt.Fprintf(w, "%-20s %-8s %s\n", name, locale, world.Description)
	}
}

func newWorldsCreateCmd() *cobra.Command {
	var entry config.WorldEntry

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}
			initialized, err := createWorld(cmd.Context(), cwd, args[0], entry)
			if err != nil {
				return err
			}
			if initialized {
				fmt.Printf("Initialized roster in %s\n", config.ConfigDir(cwd))
			}
			fmt.Printf("Created world %q\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&entry.Description, "description", "d", "", "World description")
	cmd.Flags().StringVar(&entry.Locale, "locale", "", "Collation locale for names (default: search.locale)")

	return cmd
}

// createWorld registers a world and creates its database. It writes the
// default config first if basePath has none, and reports whether it did.
func createWorld(ctx context.Context, basePath, name string, entry config.WorldEntry) (bool, error) {
	if entry.Locale != "" {
		if _, err := language.Parse(entry.Locale); err != nil {
			return false, fmt.Errorf("invalid locale %q: %w", entry.Locale, err)
		}
	}

	initialized := false
	if !config.Exists(basePath) {
		if err := config.WriteDefault(basePath); err != nil {
			return false, fmt.Errorf("initializing config: %w", err)
		}
		initialized = true
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return initialized, fmt.Errorf("loading config: %w", err)
	}

	worlds, err := config.LoadWorlds(basePath)
	if err != nil {
		return initialized, fmt.Errorf("loading worlds: %w", err)
	}

	if worlds.Exists(name) {
		return initialized, fmt.Errorf("world %q already exists", name)
	}

	store, err := openStore(ctx, cfg, basePath, name)
	if err != nil {
		return initialized, err
	}
	if err := store.Close(); err != nil {
		return initialized, fmt.Errorf("closing sqlite repository: %w", err)
	}

	worlds.Add(name, entry)
	if err := worlds.Save(basePath); err != nil {
		return initialized, fmt.Errorf("saving worlds: %w", err)
	}

	return initialized, nil
}

func newWorldsDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}
			if err := deleteWorld(cmd.Context(), cwd, args[0], force); err != nil {
				return err
			}
			fmt.Printf("Deleted world %q\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete even if world contains characters")

	return cmd
}

// deleteWorld unregisters a world and removes its directory. A world that
// still has characters is only deleted with force.
func deleteWorld(ctx context.Context, basePath, name string, force bool) error {
	cfg, err := config.Load(basePath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	worlds, err := config.LoadWorlds(basePath)
	if err != nil {
		return fmt.Errorf("loading worlds: %w", err)
	}

	if !worlds.Exists(name) {
		return fmt.Errorf("world %q not found", name)
	}

	if !force {
		count, err := countCharacters(ctx, cfg, basePath, name)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("world %q contains %d characters, use --force to delete", name, count)
		}
	}

	worlds.Remove(name)
	if err := worlds.Save(basePath); err != nil {
		return fmt.Errorf("saving worlds: %w", err)
	}

	if cfg.SQLite.Path == "" {
		if err := os.RemoveAll(config.WorldDir(basePath, name)); err != nil {
			return fmt.Errorf("removing world directory: %w", err)
		}
	}

	return nil
}

func countCharacters(ctx context.Context, cfg *config.Config, basePath, name string) (int, error) {
	store, err := openStore(ctx, cfg, basePath, name)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	count, err := store.CountCharacters(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("counting characters: %w", err)
	}
	return count, nil
}

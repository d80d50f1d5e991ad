package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/text/language"

	"github.com/ersonp/lore-roster/internal/application/handlers"
	"github.com/ersonp/lore-roster/internal/domain/search"
	"github.com/ersonp/lore-roster/internal/domain/services"
	"github.com/ersonp/lore-roster/internal/infrastructure/config"
	"github.com/ersonp/lore-roster/internal/infrastructure/relationaldb/sqlite"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config        *config.Config
	WorldID       string
	Logger        *slog.Logger
	RosterHandler *handlers.RosterHandler
	ImportHandler *handlers.ImportHandler
	// NewPipeline builds a pipeline with the world's matcher and locale.
	NewPipeline func() *search.Pipeline
}

// withDeps loads config, opens the selected world's store and builds the
// handlers, then calls fn. The store is closed when fn returns.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	worlds, err := config.LoadWorlds(cwd)
	if err != nil {
		return fmt.Errorf("loading worlds: %w", err)
	}

	if globalWorld == "" {
		return errors.New("world is required (use --world flag or ROSTER_WORLD)")
	}

	world, err := worlds.Get(globalWorld)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg, cwd, globalWorld)
	if err != nil {
		return err
	}
	defer store.Close()

	logger := slog.Default()
	matcher := newMatcher(cfg.Search)
	locale := worldLocale(cfg, world)
	newPipeline := func() *search.Pipeline {
		return search.NewPipeline(matcher, locale, search.WithLogger(logger))
	}

	rosterService := services.NewRosterService(store, newPipeline(), logger)
	importService := services.NewImportService(store, logger)

	logger.Debug("opened world", "world", globalWorld, "db", store.Path(), "matcher", cfg.Search.Matcher, "locale", locale)

	return fn(&Deps{
		Config:        cfg,
		WorldID:       globalWorld,
		Logger:        logger,
		RosterHandler: handlers.NewRosterHandler(rosterService, cfg.Search.DefaultLimit),
		ImportHandler: handlers.NewImportHandler(importService),
		NewPipeline:   newPipeline,
	})
}

// openStore opens the world's SQLite database, creating the file and schema
// if needed. An explicit sqlite.path in config is shared by all worlds.
func openStore(ctx context.Context, cfg *config.Config, basePath, worldName string) (*sqlite.Repository, error) {
	sqliteCfg := cfg.SQLite
	if sqliteCfg.Path == "" {
		sqliteCfg.Path = config.SQLitePathForWorld(basePath, worldName)
	}

	if err := os.MkdirAll(filepath.Dir(sqliteCfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("creating world directory: %w", err)
	}

	repo, err := sqlite.NewRepository(sqliteCfg)
	if err != nil {
		return nil, fmt.Errorf("creating sqlite repository: %w", err)
	}

	if err := repo.EnsureSchema(ctx); err != nil {
		repo.Close()
		return nil, fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	return repo, nil
}

func newMatcher(cfg config.SearchConfig) search.Matcher {
	if cfg.Matcher == config.MatcherSimilarity {
		return search.NewSimilarityIndex(search.SimilarityOptions{
			Tolerance:      cfg.Similarity.Tolerance,
			MinMatchLength: cfg.Similarity.MinMatchLength,
			IgnoreOrder:    cfg.Similarity.IgnoreOrder,
		})
	}
	return search.TwoTier{}
}

// worldLocale prefers the world's own locale over search.locale.
func worldLocale(cfg *config.Config, world *config.WorldEntry) language.Tag {
	if world != nil && world.Locale != "" {
		if tag, err := language.Parse(world.Locale); err == nil {
			return tag
		}
	}
	return cfg.LocaleTag()
}

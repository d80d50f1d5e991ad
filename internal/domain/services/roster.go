package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/ersonp/lore-roster/internal/domain/entities"
	"github.com/ersonp/lore-roster/internal/domain/ports"
	"github.com/ersonp/lore-roster/internal/domain/search"
)

// BrowseResult is one page of a derived roster view.
type BrowseResult struct {
	Version    uint64               `json:"version"`
	Total      int                  `json:"total"`
	Characters []entities.Character `json:"characters"`
}

// RosterService manages a world's roster: snapshots, derived views and edits.
type RosterService struct {
	store    ports.CharacterStore
	pipeline *search.Pipeline
	logger   *slog.Logger
}

// NewRosterService creates a new RosterService. A nil pipeline uses the
// two-tier matcher with English collation.
func NewRosterService(store ports.CharacterStore, pipeline *search.Pipeline, logger *slog.Logger) *RosterService {
	if logger == nil {
		logger = slog.Default()
	}
	if pipeline == nil {
		pipeline = search.NewPipeline(nil, search.DefaultLocale, search.WithLogger(logger))
	}
	return &RosterService{
		store:    store,
		pipeline: pipeline,
		logger:   logger,
	}
}

// Snapshot returns the world's current roster and its version.
func (s *RosterService) Snapshot(ctx context.Context, worldID string) (search.Roster, error) {
	version, err := s.store.RosterVersion(ctx, worldID)
	if err != nil {
		return search.Roster{}, fmt.Errorf("reading roster version: %w", err)
	}
	chars, err := s.store.ListCharacters(ctx, worldID)
	if err != nil {
		return search.Roster{}, fmt.Errorf("listing characters: %w", err)
	}
	return search.Roster{WorldID: worldID, Version: version, Characters: chars}, nil
}

// Browse derives the view for sel with the service's pipeline and returns
// the requested page. A limit of 0 returns everything after offset.
func (s *RosterService) Browse(ctx context.Context, worldID string, sel search.Selection, limit, offset int) (*BrowseResult, error) {
	return s.BrowseWith(ctx, s.pipeline, worldID, sel, limit, offset)
}

// BrowseWith is Browse with a caller-owned pipeline, so long-lived clients
// keep their own memo.
func (s *RosterService) BrowseWith(ctx context.Context, p *search.Pipeline, worldID string, sel search.Selection, limit, offset int) (*BrowseResult, error) {
	if limit < 0 || offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must not be negative", ErrInvalidInput)
	}
	if sel.NarrowRating && !sel.Exact.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDifficulty, sel.Exact)
	}

	roster, err := s.Snapshot(ctx, worldID)
	if err != nil {
		return nil, err
	}

	derived := p.Derive(roster, sel)
	return &BrowseResult{
		Version:    roster.Version,
		Total:      len(derived),
		Characters: page(derived, limit, offset),
	}, nil
}

// Search matches query against every character name in the world and
// returns the ranked matches. A blank query returns the roster unchanged.
func (s *RosterService) Search(ctx context.Context, worldID, query string, limit int) ([]entities.Character, error) {
	chars, err := s.store.ListCharacters(ctx, worldID)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}

	names := make([]string, len(chars))
	for i := range chars {
		names[i] = chars[i].Name
	}

	idx := s.pipeline.Match(query, names)
	matched := make([]entities.Character, len(idx))
	for i, j := range idx {
		matched[i] = chars[j]
	}
	return page(matched, limit, 0), nil
}

// Rate sets a character's difficulty and records it in the audit log.
func (s *RosterService) Rate(ctx context.Context, worldID, id string, d entities.Difficulty) (*entities.Character, error) {
	if !d.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDifficulty, d)
	}

	prev, err := s.find(ctx, worldID, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetDifficulty(ctx, worldID, id, d); err != nil {
		return nil, s.mapStoreErr(err, id, "setting difficulty")
	}

	s.audit(ctx, worldID, entities.ActionRate, id, map[string]any{
		"from":       prev.Difficulty.String(),
		"difficulty": d.String(),
	})

	prev.Difficulty = d
	return prev, nil
}

// SetIgnored marks a character as ignored or not.
func (s *RosterService) SetIgnored(ctx context.Context, worldID, id string, ignored bool) (*entities.Character, error) {
	c, err := s.find(ctx, worldID, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetIgnored(ctx, worldID, id, ignored); err != nil {
		return nil, s.mapStoreErr(err, id, "setting ignored")
	}

	action := entities.ActionUnignore
	if ignored {
		action = entities.ActionIgnore
	}
	s.audit(ctx, worldID, action, id, nil)

	c.IsIgnored = ignored
	return c, nil
}

// Delete removes a character from the roster.
func (s *RosterService) Delete(ctx context.Context, worldID, id string) error {
	if err := s.store.DeleteCharacter(ctx, worldID, id); err != nil {
		return s.mapStoreErr(err, id, "deleting character")
	}
	s.audit(ctx, worldID, entities.ActionDelete, id, nil)
	return nil
}

// Get returns a single character.
func (s *RosterService) Get(ctx context.Context, worldID, id string) (*entities.Character, error) {
	return s.find(ctx, worldID, id)
}

// History returns a character's audit trail in a world, newest first.
func (s *RosterService) History(ctx context.Context, worldID, id string) ([]entities.AuditEntry, error) {
	entries, err := s.store.FindAuditLog(ctx, worldID, id)
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	return entries, nil
}

// AuditLog returns up to limit of a world's most recent entries for one
// action. A limit of 0 returns every entry.
func (s *RosterService) AuditLog(ctx context.Context, worldID, action string, limit int) ([]entities.AuditEntry, error) {
	if !slices.Contains(entities.AuditActions(), action) {
		return nil, fmt.Errorf("%w: unknown action %q, want one of %s",
			ErrInvalidInput, action, strings.Join(entities.AuditActions(), ", "))
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	}
	entries, err := s.store.FindAuditLogByAction(ctx, worldID, action, limit)
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	return entries, nil
}

// Count returns the number of characters in a world.
func (s *RosterService) Count(ctx context.Context, worldID string) (int, error) {
	return s.store.CountCharacters(ctx, worldID)
}

func (s *RosterService) find(ctx context.Context, worldID, id string) (*entities.Character, error) {
	c, err := s.store.FindCharacterByID(ctx, worldID, id)
	if err != nil {
		return nil, fmt.Errorf("finding character: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrCharacterNotFound, id)
	}
	return c, nil
}

func (s *RosterService) mapStoreErr(err error, id, doing string) error {
	if errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrCharacterNotFound, id)
	}
	return fmt.Errorf("%s: %w", doing, err)
}

// audit failures are logged and never fail the edit that caused them.
func (s *RosterService) audit(ctx context.Context, worldID, action, id string, details map[string]any) {
	if err := s.store.LogAction(ctx, worldID, action, id, details); err != nil {
		s.logger.Warn("audit log write failed", "world", worldID, "action", action, "character", id, "error", err)
	}
}

func page(chars []entities.Character, limit, offset int) []entities.Character {
	if offset >= len(chars) {
		return []entities.Character{}
	}
	chars = chars[offset:]
	if limit > 0 && limit < len(chars) {
		chars = chars[:limit]
	}
	return chars
}

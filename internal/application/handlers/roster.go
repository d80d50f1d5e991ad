package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ersonp/lore-roster/internal/domain/entities"
	"github.com/ersonp/lore-roster/internal/domain/search"
	"github.com/ersonp/lore-roster/internal/domain/services"
)

// RosterHandler handles roster operations at the application layer.
type RosterHandler struct {
	rosterService *services.RosterService
	defaultLimit  int
}

// NewRosterHandler creates a new RosterHandler. defaultLimit applies when a
// request leaves the limit at 0; 0 means unlimited.
func NewRosterHandler(rosterService *services.RosterService, defaultLimit int) *RosterHandler {
	return &RosterHandler{
		rosterService: rosterService,
		defaultLimit:  defaultLimit,
	}
}

// BrowseParams is a browse request as text, the way flags and query strings
// carry it. Empty fields take their defaults.
type BrowseParams struct {
	Query        string
	Ignore       string
	Content      string
	Rating       string
	Difficulty   string
	IncludeNonTV string
	Sort         string
	Limit        int
	Offset       int
}

// Selection converts the params into a search.Selection. Unknown filter
// values fall back to "all"; an unknown difficulty is an error.
func (p BrowseParams) Selection() (search.Selection, error) {
	sel := search.DefaultSelection()
	sel.Query = p.Query
	sel.Ignore = entities.ParseIgnoreFilter(p.Ignore)
	sel.Content = entities.ParseContentFilter(p.Content)
	sel.Rating = entities.ParseRatingStatus(p.Rating)
	sel.Sort = entities.ParseSortKey(p.Sort)

	if strings.TrimSpace(p.Difficulty) != "" {
		d, ok := entities.ParseDifficulty(p.Difficulty)
		if !ok {
			return search.Selection{}, fmt.Errorf("%w: %q", services.ErrInvalidDifficulty, p.Difficulty)
		}
		sel.Exact = d
		sel.NarrowRating = true
	}

	if v := strings.TrimSpace(p.IncludeNonTV); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			return search.Selection{}, fmt.Errorf("%w: non_tv must be true or false, got %q", services.ErrInvalidInput, v)
		}
		sel.IncludeNonTV = include
	}
	return sel, nil
}

// HandleBrowse returns one page of the derived roster view.
func (h *RosterHandler) HandleBrowse(ctx context.Context, worldID string, params BrowseParams) (*services.BrowseResult, error) {
	sel, err := params.Selection()
	if err != nil {
		return nil, err
	}
	return h.rosterService.Browse(ctx, worldID, sel, h.limit(params.Limit), params.Offset)
}

// HandleDerive is HandleBrowse for a caller that owns its own pipeline and
// already holds a Selection.
func (h *RosterHandler) HandleDerive(ctx context.Context, p *search.Pipeline, worldID string, sel search.Selection, limit int) (*services.BrowseResult, error) {
	return h.rosterService.BrowseWith(ctx, p, worldID, sel, h.limit(limit), 0)
}

// SearchResult contains the result of a name search.
type SearchResult struct {
	Query      string               `json:"query"`
	Characters []entities.Character `json:"characters"`
	Total      int                  `json:"total"`
}

// HandleSearch matches a query against every character name in the world.
func (h *RosterHandler) HandleSearch(ctx context.Context, worldID, query string, limit int) (*SearchResult, error) {
	chars, err := h.rosterService.Search(ctx, worldID, query, h.limit(limit))
	if err != nil {
		return nil, err
	}
	return &SearchResult{Query: query, Characters: chars, Total: len(chars)}, nil
}

// HandleRate parses a difficulty (rank or label) and applies it.
func (h *RosterHandler) HandleRate(ctx context.Context, worldID, id, difficulty string) (*entities.Character, error) {
	d, ok := entities.ParseDifficulty(difficulty)
	if !ok {
		return nil, fmt.Errorf("%w: %q, want a rank from 0 to %d or one of %s",
			services.ErrInvalidDifficulty, difficulty, entities.MaxDifficulty, DifficultyLabels())
	}
	return h.rosterService.Rate(ctx, worldID, id, d)
}

// DifficultyLabels lists the accepted difficulty labels in rank order.
func DifficultyLabels() string {
	all := entities.Difficulties()
	labels := make([]string, len(all))
	for i, d := range all {
		labels[i] = strings.ReplaceAll(d.String(), " ", "-")
	}
	return strings.Join(labels, ", ")
}

// HandleSetIgnored marks a character as ignored or not.
func (h *RosterHandler) HandleSetIgnored(ctx context.Context, worldID, id string, ignored bool) (*entities.Character, error) {
	return h.rosterService.SetIgnored(ctx, worldID, id, ignored)
}

// HandleGet returns a single character.
func (h *RosterHandler) HandleGet(ctx context.Context, worldID, id string) (*entities.Character, error) {
	return h.rosterService.Get(ctx, worldID, id)
}

// HandleHistory returns a character's audit trail.
func (h *RosterHandler) HandleHistory(ctx context.Context, worldID, id string) ([]entities.AuditEntry, error) {
	if _, err := h.rosterService.Get(ctx, worldID, id); err != nil {
		return nil, err
	}
	return h.rosterService.History(ctx, worldID, id)
}

// HandleAuditLog returns a world's most recent entries for one action. A
// limit of 0 uses the handler's default.
func (h *RosterHandler) HandleAuditLog(ctx context.Context, worldID, action string, limit int) ([]entities.AuditEntry, error) {
	return h.rosterService.AuditLog(ctx, worldID, action, h.limit(limit))
}

// HandleDelete removes a character.
func (h *RosterHandler) HandleDelete(ctx context.Context, worldID, id string) error {
	return h.rosterService.Delete(ctx, worldID, id)
}

// HandleCount returns the number of characters in a world.
func (h *RosterHandler) HandleCount(ctx context.Context, worldID string) (int, error) {
	return h.rosterService.Count(ctx, worldID)
}

func (h *RosterHandler) limit(n int) int {
	if n == 0 {
		return h.defaultLimit
	}
	return n
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/lore-roster/internal/domain/entities"
	"github.com/ersonp/lore-roster/internal/domain/ports"
	"github.com/ersonp/lore-roster/internal/infrastructure/parsers"
)

// ConflictStrategy defines how to handle existing characters during import.
type ConflictStrategy string

const (
	// ConflictSkip skips characters that already exist (by ID).
	ConflictSkip ConflictStrategy = "skip"
	// ConflictOverwrite replaces existing characters with the imported data.
	ConflictOverwrite ConflictStrategy = "overwrite"
)

// ParseConflictStrategy returns the strategy named by s.
func ParseConflictStrategy(s string) (ConflictStrategy, error) {
	switch ConflictStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case ConflictSkip:
		return ConflictSkip, nil
	case ConflictOverwrite:
		return ConflictOverwrite, nil
	}
	return "", fmt.Errorf("%w: on-conflict must be skip or overwrite, got %q", ErrInvalidInput, s)
}

// characterNamespace seeds name-based character IDs.
var characterNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("lore-roster/character"))

// CharacterID returns the stable ID for a character imported without one.
// Names that normalize alike in the same world get the same ID.
func CharacterID(worldID, name string) string {
	return uuid.NewSHA1(characterNamespace, []byte(worldID+"\x00"+entities.NormalizeName(name))).String()
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun     bool             // Validate without saving
	OnConflict ConflictStrategy // How to handle existing characters
}

// ImportError represents an error for a specific record during import.
type ImportError struct {
	Line    int    // Line number (1-indexed, 0 if unknown)
	Field   string // Which field has the error
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []ImportError
}

// ImportService handles importing characters from external sources.
type ImportService struct {
	store  ports.CharacterStore
	logger *slog.Logger
}

// NewImportService creates a new import service.
func NewImportService(store ports.CharacterStore, logger *slog.Logger) *ImportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportService{
		store:  store,
		logger: logger,
	}
}

// importedCharacter remembers which optional fields the record actually set.
type importedCharacter struct {
	entities.Character
	hasDifficulty bool
	hasIgnored    bool
}

// Import validates raw records and saves them into the world's roster.
// Invalid records are reported in the result and never abort the import.
func (s *ImportService) Import(ctx context.Context, worldID string, raws []parsers.RawCharacter, opts ImportOptions) (*ImportResult, error) {
	if strings.TrimSpace(worldID) == "" {
		return nil, fmt.Errorf("%w: world is required", ErrInvalidInput)
	}

	result := &ImportResult{}
	valid, errs := s.validate(worldID, raws)
	result.Errors = errs

	if len(valid) == 0 {
		return result, nil
	}

	toSave, skipped, err := s.resolveConflicts(ctx, worldID, valid, opts.OnConflict)
	if err != nil {
		return nil, err
	}
	result.Imported = len(toSave)
	result.Skipped = skipped

	if opts.DryRun || len(toSave) == 0 {
		return result, nil
	}

	if err := s.store.SaveCharacters(ctx, toSave); err != nil {
		return nil, fmt.Errorf("saving characters: %w", err)
	}

	s.logger.Debug("imported characters", "world", worldID, "imported", result.Imported, "skipped", result.Skipped, "errors", len(result.Errors))
	if err := s.store.LogAction(ctx, worldID, entities.ActionImport, "", map[string]any{
		"imported": result.Imported,
		"skipped":  result.Skipped,
		"errors":   len(result.Errors),
	}); err != nil {
		s.logger.Warn("audit log write failed", "action", entities.ActionImport, "error", err)
	}

	return result, nil
}

// validate converts raw records, collecting one error per bad record.
// A record whose ID repeats an earlier one in the same input is rejected.
func (s *ImportService) validate(worldID string, raws []parsers.RawCharacter) ([]importedCharacter, []ImportError) {
	valid := make([]importedCharacter, 0, len(raws))
	var errs []ImportError
	seen := make(map[string]int, len(raws))
	now := time.Now()

	for i := range raws {
		raw := &raws[i]
		lineNum := raw.LineNum
		if lineNum == 0 {
			lineNum = i + 1
		}

		c, ierr := convertRaw(worldID, raw, lineNum, now)
		if ierr != nil {
			errs = append(errs, *ierr)
			continue
		}

		if first, dup := seen[c.ID]; dup {
			errs = append(errs, ImportError{
				Line:    lineNum,
				Field:   "id",
				Value:   c.ID,
				Message: fmt.Sprintf("duplicate character %q (first seen on line %d)", c.Name, first),
			})
			continue
		}
		seen[c.ID] = lineNum
		valid = append(valid, *c)
	}

	return valid, errs
}

// convertRaw validates a single raw record and converts it.
func convertRaw(worldID string, raw *parsers.RawCharacter, lineNum int, now time.Time) (*importedCharacter, *ImportError) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return nil, &ImportError{Line: lineNum, Field: "name", Message: "missing required field: name"}
	}

	status, ok := entities.ParseFillerStatus(raw.FillerStatus)
	if !ok {
		return nil, &ImportError{
			Line:    lineNum,
			Field:   "filler_status",
			Value:   raw.FillerStatus,
			Message: fmt.Sprintf("invalid filler_status %q (valid: %s)", raw.FillerStatus, entities.ValidFillerStatuses()),
		}
	}

	difficulty, ok := entities.ParseDifficulty(raw.Difficulty)
	if !ok {
		return nil, &ImportError{
			Line:    lineNum,
			Field:   "difficulty",
			Value:   raw.Difficulty,
			Message: fmt.Sprintf("invalid difficulty %q (valid: 0-%d or a label such as medium)", raw.Difficulty, entities.MaxDifficulty),
		}
	}

	ignored, ok := parseFlag(raw.Ignored)
	if !ok {
		return nil, &ImportError{Line: lineNum, Field: "ignored", Value: raw.Ignored, Message: fmt.Sprintf("invalid ignored value %q", raw.Ignored)}
	}

	chapter, ierr := parseCount(raw.Chapter, "chapter", lineNum)
	if ierr != nil {
		return nil, ierr
	}
	episode, ierr := parseCount(raw.Episode, "episode", lineNum)
	if ierr != nil {
		return nil, ierr
	}

	id := strings.TrimSpace(raw.ID)
	if id == "" {
		id = CharacterID(worldID, name)
	}

	return &importedCharacter{
		Character: entities.Character{
			ID:             id,
			WorldID:        worldID,
			Name:           name,
			NormalizedName: entities.NormalizeName(name),
			Description:    strings.TrimSpace(raw.Description),
			Image:          strings.TrimSpace(raw.Image),
			FillerStatus:   status,
			Difficulty:     difficulty,
			IsIgnored:      ignored,
			Arc:            strings.TrimSpace(raw.Arc),
			Chapter:        chapter,
			Episode:        episode,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		hasDifficulty: strings.TrimSpace(raw.Difficulty) != "",
		hasIgnored:    strings.TrimSpace(raw.Ignored) != "",
	}, nil
}

func parseFlag(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "no", "n":
		return false, true
	case "1", "true", "yes", "y":
		return true, true
	}
	return false, false
}

func parseCount(s, field string, lineNum int) (int, *ImportError) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, &ImportError{Line: lineNum, Field: field, Value: s, Message: fmt.Sprintf("%s must be a non-negative integer", field)}
	}
	return n, nil
}

// resolveConflicts looks up existing characters in one query and applies
// the conflict strategy. Overwrites keep the original CreatedAt, and a
// rating or ignored flag the record leaves blank keeps its stored value.
func (s *ImportService) resolveConflicts(ctx context.Context, worldID string, chars []importedCharacter, onConflict ConflictStrategy) ([]entities.Character, int, error) {
	ids := make([]string, len(chars))
	for i := range chars {
		ids[i] = chars[i].ID
	}

	existing, err := s.store.FindCharactersByIDs(ctx, worldID, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("checking existing characters: %w", err)
	}
	byID := make(map[string]*entities.Character, len(existing))
	for i := range existing {
		byID[existing[i].ID] = &existing[i]
	}

	toSave := make([]entities.Character, 0, len(chars))
	var skipped int
	for i := range chars {
		c := chars[i]
		prev, found := byID[c.ID]
		if !found {
			toSave = append(toSave, c.Character)
			continue
		}
		if onConflict == ConflictSkip {
			skipped++
			continue
		}

		c.CreatedAt = prev.CreatedAt
		if !c.hasDifficulty {
			c.Difficulty = prev.Difficulty
		}
		if !c.hasIgnored {
			c.IsIgnored = prev.IsIgnored
		}
		toSave = append(toSave, c.Character)
	}

	return toSave, skipped, nil
}

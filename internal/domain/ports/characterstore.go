// Package ports defines the interfaces the domain depends on.
package ports

import (
	"context"
	"errors"

	"github.com/ersonp/lore-roster/internal/domain/entities"
)

// ErrNotFound is returned by CharacterStore updates that match no character.
var ErrNotFound = errors.New("not found")

// CharacterStore defines persistence for world rosters.
// Every mutation bumps the world's roster version so that derived views
// can tell a stale snapshot from a fresh one.
type CharacterStore interface {
	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	// SaveCharacters inserts or replaces characters by ID in one transaction.
	SaveCharacters(ctx context.Context, chars []entities.Character) error

	// FindCharacterByID returns nil when no character has the ID.
	FindCharacterByID(ctx context.Context, worldID, id string) (*entities.Character, error)

	// FindCharactersByIDs returns the characters that exist among ids.
	FindCharactersByIDs(ctx context.Context, worldID string, ids []string) ([]entities.Character, error)

	// ListCharacters returns a world's roster in insertion order.
	ListCharacters(ctx context.Context, worldID string) ([]entities.Character, error)

	// CountCharacters returns the number of characters in a world.
	CountCharacters(ctx context.Context, worldID string) (int, error)

	// SetDifficulty updates a character's rating.
	SetDifficulty(ctx context.Context, worldID, id string, d entities.Difficulty) error

	// SetIgnored updates a character's ignored flag.
	SetIgnored(ctx context.Context, worldID, id string, ignored bool) error

	// DeleteCharacter removes a character.
	DeleteCharacter(ctx context.Context, worldID, id string) error

	// RosterVersion returns the world's current roster version (0 if never written).
	RosterVersion(ctx context.Context, worldID string) (uint64, error)

	// LogAction logs an action against a world to the audit log.
	LogAction(ctx context.Context, worldID, action, characterID string, details map[string]any) error

	// FindAuditLog finds a world's audit log entries for a specific character.
	FindAuditLog(ctx context.Context, worldID, characterID string) ([]entities.AuditEntry, error)

	// FindAuditLogByAction finds a world's audit log entries by action type.
	// A limit of 0 or less returns them all.
	FindAuditLogByAction(ctx context.Context, worldID, action string, limit int) ([]entities.AuditEntry, error)
}

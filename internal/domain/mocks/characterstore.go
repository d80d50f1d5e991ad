package mocks

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/ersonp/lore-roster/internal/domain/entities"
	"github.com/ersonp/lore-roster/internal/domain/ports"
)

// CharacterStore is an in-memory implementation of ports.CharacterStore.
type CharacterStore struct {
	mu       sync.Mutex
	chars    map[string][]entities.Character // world -> roster in insertion order
	versions map[string]uint64

	Audit []entities.AuditEntry
	Err   error
}

var _ ports.CharacterStore = (*CharacterStore)(nil)

// NewCharacterStore creates a new mock CharacterStore.
func NewCharacterStore() *CharacterStore {
	return &CharacterStore{
		chars:    make(map[string][]entities.Character),
		versions: make(map[string]uint64),
	}
}

// EnsureSchema creates the database schema if it doesn't exist.
func (m *CharacterStore) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close closes the database connection.
func (m *CharacterStore) Close() error {
	return nil
}

// SaveCharacters inserts or replaces characters by ID.
func (m *CharacterStore) SaveCharacters(_ context.Context, chars []entities.Character) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	touched := make(map[string]bool)
	for _, c := range chars {
		roster := m.chars[c.WorldID]
		idx := slices.IndexFunc(roster, func(e entities.Character) bool { return e.ID == c.ID })
		if idx >= 0 {
			roster[idx] = c
		} else {
			roster = append(roster, c)
		}
		m.chars[c.WorldID] = roster
		touched[c.WorldID] = true
	}
	for w := range touched {
		m.versions[w]++
	}
	return nil
}

// FindCharacterByID returns nil when no character has the ID.
func (m *CharacterStore) FindCharacterByID(_ context.Context, worldID, id string) (*entities.Character, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.chars[worldID] {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

// FindCharactersByIDs returns the characters that exist among ids.
func (m *CharacterStore) FindCharactersByIDs(_ context.Context, worldID string, ids []string) ([]entities.Character, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []entities.Character
	for _, c := range m.chars[worldID] {
		if slices.Contains(ids, c.ID) {
			out = append(out, c)
		}
	}
	return out, nil
}

// ListCharacters returns a world's roster in insertion order.
func (m *CharacterStore) ListCharacters(_ context.Context, worldID string) ([]entities.Character, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.chars[worldID]), nil
}

// CountCharacters returns the number of characters in a world.
func (m *CharacterStore) CountCharacters(_ context.Context, worldID string) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chars[worldID]), nil
}

// SetDifficulty updates a character's rating.
func (m *CharacterStore) SetDifficulty(_ context.Context, worldID, id string, d entities.Difficulty) error {
	return m.update(worldID, id, func(c *entities.Character) { c.Difficulty = d })
}

// SetIgnored updates a character's ignored flag.
func (m *CharacterStore) SetIgnored(_ context.Context, worldID, id string, ignored bool) error {
	return m.update(worldID, id, func(c *entities.Character) { c.IsIgnored = ignored })
}

// DeleteCharacter removes a character.
func (m *CharacterStore) DeleteCharacter(_ context.Context, worldID, id string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	roster := m.chars[worldID]
	idx := slices.IndexFunc(roster, func(e entities.Character) bool { return e.ID == id })
	if idx < 0 {
		return ports.ErrNotFound
	}
	m.chars[worldID] = slices.Delete(roster, idx, idx+1)
	m.versions[worldID]++
	return nil
}

// RosterVersion returns the world's current roster version.
func (m *CharacterStore) RosterVersion(_ context.Context, worldID string) (uint64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versions[worldID], nil
}

// LogAction logs an action to the audit log.
func (m *CharacterStore) LogAction(_ context.Context, worldID, action, characterID string, details map[string]any) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Audit = append(m.Audit, entities.AuditEntry{
		ID:          int64(len(m.Audit) + 1),
		WorldID:     worldID,
		Action:      action,
		CharacterID: characterID,
		Details:     details,
		CreatedAt:   time.Now(),
	})
	return nil
}

// FindAuditLog finds audit log entries for a specific character, newest first.
func (m *CharacterStore) FindAuditLog(_ context.Context, worldID, characterID string) ([]entities.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []entities.AuditEntry
	for i := len(m.Audit) - 1; i >= 0; i-- {
		if m.Audit[i].WorldID == worldID && m.Audit[i].CharacterID == characterID {
			out = append(out, m.Audit[i])
		}
	}
	return out, nil
}

// FindAuditLogByAction finds audit log entries by action type, newest first.
func (m *CharacterStore) FindAuditLogByAction(_ context.Context, worldID, action string, limit int) ([]entities.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []entities.AuditEntry
	for i := len(m.Audit) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if m.Audit[i].WorldID == worldID && m.Audit[i].Action == action {
			out = append(out, m.Audit[i])
		}
	}
	return out, nil
}

func (m *CharacterStore) update(worldID, id string, fn func(*entities.Character)) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	roster := m.chars[worldID]
	for i := range roster {
		if roster[i].ID == id {
			fn(&roster[i])
			m.versions[worldID]++
			return nil
		}
	}
	return ports.ErrNotFound
}

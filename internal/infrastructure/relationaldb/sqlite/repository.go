// Package sqlite provides a SQLite implementation of the CharacterStore interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/lore-roster/internal/domain/entities"
	"github.com/ersonp/lore-roster/internal/domain/ports"
	"github.com/ersonp/lore-roster/internal/infrastructure/config"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

const characterColumns = `id, world_id, name, normalized_name, description, image,
	filler_status, difficulty, is_ignored, arc, chapter, episode, created_at, updated_at`

// Repository implements ports.CharacterStore using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

var _ ports.CharacterStore = (*Repository)(nil)

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Each connection to :memory: is a separate database.
	if cfg.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeoutOrDefault()),
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", p, err)
		}
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Characters (rowid keeps insertion order)
	CREATE TABLE IF NOT EXISTS characters (
		id TEXT NOT NULL,
		world_id TEXT NOT NULL,
		name TEXT NOT NULL,
		normalized_name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		image TEXT NOT NULL DEFAULT '',
		filler_status TEXT NOT NULL DEFAULT 'canon',
		difficulty INTEGER NOT NULL DEFAULT 0,
		is_ignored INTEGER NOT NULL DEFAULT 0,
		arc TEXT NOT NULL DEFAULT '',
		chapter INTEGER NOT NULL DEFAULT 0,
		episode INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (world_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_characters_normalized ON characters(world_id, normalized_name);

	-- Roster versions (bumped on every write to a world)
	CREATE TABLE IF NOT EXISTS roster_versions (
		world_id TEXT PRIMARY KEY,
		version INTEGER NOT NULL DEFAULT 0
	);

	-- Audit log (tracks all actions)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		world_id TEXT NOT NULL DEFAULT '',
		action TEXT NOT NULL,
		character_id TEXT,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return r.migrateAuditLog(ctx)
}

// migrateAuditLog adds world_id to audit logs written before entries were
// scoped by world. Old rows keep an empty world.
func (r *Repository) migrateAuditLog(ctx context.Context) error {
	var hasWorld int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pragma_table_info('audit_log') WHERE name = 'world_id'`,
	).Scan(&hasWorld)
	if err != nil {
		return fmt.Errorf("inspecting audit log: %w", err)
	}
	if hasWorld == 0 {
		if _, err := r.db.ExecContext(ctx, `ALTER TABLE audit_log ADD COLUMN world_id TEXT NOT NULL DEFAULT ''`); err != nil {
			return fmt.Errorf("adding audit log world: %w", err)
		}
	}

	_, err = r.db.ExecContext(ctx, `
	CREATE INDEX IF NOT EXISTS idx_audit_log_character ON audit_log(world_id, character_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(world_id, action);
	`)
	if err != nil {
		return fmt.Errorf("indexing audit log: %w", err)
	}
	return nil
}

// SaveCharacters inserts or replaces characters by ID in one transaction.
// Replacing keeps the character's original position in the roster.
func (r *Repository) SaveCharacters(ctx context.Context, chars []entities.Character) error {
	if len(chars) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO characters (`+characterColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(world_id, id) DO UPDATE SET
			name = excluded.name,
			normalized_name = excluded.normalized_name,
			description = excluded.description,
			image = excluded.image,
			filler_status = excluded.filler_status,
			difficulty = excluded.difficulty,
			is_ignored = excluded.is_ignored,
			arc = excluded.arc,
			chapter = excluded.chapter,
			episode = excluded.episode,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := timeNow()
	worlds := make(map[string]struct{})
	for i := range chars {
		c := &chars[i]
		created := c.CreatedAt
		if created.IsZero() {
			created = now
		}
		if _, err := stmt.ExecContext(ctx,
			c.ID,
			c.WorldID,
			c.Name,
			entities.NormalizeName(c.Name),
			c.Description,
			c.Image,
			string(c.FillerStatus),
			int(c.Difficulty),
			c.IsIgnored,
			c.Arc,
			c.Chapter,
			c.Episode,
			created,
			now,
		); err != nil {
			return fmt.Errorf("saving character %s: %w", c.ID, err)
		}
		worlds[c.WorldID] = struct{}{}
	}

	for w := range worlds {
		if err := bumpVersion(ctx, tx, w); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing characters: %w", err)
	}
	return nil
}

// FindCharacterByID finds a character by its ID. Returns nil if none exists.
func (r *Repository) FindCharacterByID(ctx context.Context, worldID, id string) (*entities.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters WHERE world_id = ? AND id = ?`
	row := r.db.QueryRowContext(ctx, query, worldID, id)

	c, err := scanCharacter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// FindCharactersByIDs finds multiple characters by their IDs in a single query.
func (r *Repository) FindCharactersByIDs(ctx context.Context, worldID string, ids []string) ([]entities.Character, error) {
	if len(ids) == 0 {
		return []entities.Character{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, worldID)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM characters
		WHERE world_id = ? AND id IN (%s)
		ORDER BY rowid
	`, characterColumns, strings.Join(placeholders, ","))

	return r.queryCharacters(ctx, query, args...)
}

// ListCharacters returns a world's roster in insertion order.
func (r *Repository) ListCharacters(ctx context.Context, worldID string) ([]entities.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters WHERE world_id = ? ORDER BY rowid`
	return r.queryCharacters(ctx, query, worldID)
}

// CountCharacters returns the total number of characters for a world.
func (r *Repository) CountCharacters(ctx context.Context, worldID string) (int, error) {
	query := `SELECT COUNT(*) FROM characters WHERE world_id = ?`
	var count int
	err := r.db.QueryRowContext(ctx, query, worldID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting characters: %w", err)
	}
	return count, nil
}

// SetDifficulty updates a character's rating.
func (r *Repository) SetDifficulty(ctx context.Context, worldID, id string, d entities.Difficulty) error {
	return r.updateCharacter(ctx, worldID, id, `difficulty = ?`, int(d))
}

// SetIgnored updates a character's ignored flag.
func (r *Repository) SetIgnored(ctx context.Context, worldID, id string, ignored bool) error {
	return r.updateCharacter(ctx, worldID, id, `is_ignored = ?`, ignored)
}

// DeleteCharacter deletes a character by ID.
func (r *Repository) DeleteCharacter(ctx context.Context, worldID, id string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM characters WHERE world_id = ? AND id = ?`, worldID, id)
		if err != nil {
			return fmt.Errorf("deleting character: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return fmt.Errorf("character %s: %w", id, ports.ErrNotFound)
		}
		return bumpVersion(ctx, tx, worldID)
	})
}

// RosterVersion returns the world's current roster version.
func (r *Repository) RosterVersion(ctx context.Context, worldID string) (uint64, error) {
	var version int64
	err := r.db.QueryRowContext(ctx, `SELECT version FROM roster_versions WHERE world_id = ?`, worldID).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading roster version: %w", err)
	}
	return uint64(version), nil
}

// LogAction logs an action to the audit log.
func (r *Repository) LogAction(ctx context.Context, worldID, action, characterID string, details map[string]any) error {
	var detailsJSON sql.NullString
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshaling details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	var charID sql.NullString
	if characterID != "" {
		charID = sql.NullString{String: characterID, Valid: true}
	}

	query := `INSERT INTO audit_log (world_id, action, character_id, details, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, worldID, action, charID, detailsJSON, timeNow())
	if err != nil {
		return fmt.Errorf("logging action: %w", err)
	}
	return nil
}

// FindAuditLog finds a world's audit log entries for one character, newest first.
func (r *Repository) FindAuditLog(ctx context.Context, worldID, characterID string) ([]entities.AuditEntry, error) {
	query := `
		SELECT id, world_id, action, character_id, details, created_at
		FROM audit_log
		WHERE world_id = ? AND character_id = ?
		ORDER BY id DESC
	`
	return r.queryAuditLog(ctx, query, worldID, characterID)
}

// FindAuditLogByAction finds a world's audit log entries by action type,
// newest first. A limit of 0 or less returns them all.
func (r *Repository) FindAuditLogByAction(ctx context.Context, worldID, action string, limit int) ([]entities.AuditEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `
		SELECT id, world_id, action, character_id, details, created_at
		FROM audit_log
		WHERE world_id = ? AND action = ?
		ORDER BY id DESC
		LIMIT ?
	`
	return r.queryAuditLog(ctx, query, worldID, action, limit)
}

func (r *Repository) updateCharacter(ctx context.Context, worldID, id, set string, value any) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		query := `UPDATE characters SET ` + set + `, updated_at = ? WHERE world_id = ? AND id = ?`
		result, err := tx.ExecContext(ctx, query, value, timeNow(), worldID, id)
		if err != nil {
			return fmt.Errorf("updating character: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return fmt.Errorf("character %s: %w", id, ports.ErrNotFound)
		}
		return bumpVersion(ctx, tx, worldID)
	})
}

func (r *Repository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback() //nolint:errcheck // original error wins
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func bumpVersion(ctx context.Context, tx *sql.Tx, worldID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO roster_versions (world_id, version) VALUES (?, 1)
		ON CONFLICT(world_id) DO UPDATE SET version = version + 1
	`, worldID)
	if err != nil {
		return fmt.Errorf("bumping roster version: %w", err)
	}
	return nil
}

// queryCharacters is a helper to execute character queries.
func (r *Repository) queryCharacters(ctx context.Context, query string, args ...any) ([]entities.Character, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying characters: %w", err)
	}
	defer rows.Close()

	result := make([]entities.Character, 0, 64)
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCharacter(row rowScanner) (*entities.Character, error) {
	var c entities.Character
	var status string
	var difficulty int
	err := row.Scan(
		&c.ID,
		&c.WorldID,
		&c.Name,
		&c.NormalizedName,
		&c.Description,
		&c.Image,
		&status,
		&difficulty,
		&c.IsIgnored,
		&c.Arc,
		&c.Chapter,
		&c.Episode,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning character: %w", err)
	}
	c.FillerStatus = entities.FillerStatus(status)
	c.Difficulty = entities.Difficulty(difficulty)
	return &c, nil
}

// queryAuditLog is a helper to execute audit log queries.
func (r *Repository) queryAuditLog(ctx context.Context, query string, args ...any) ([]entities.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []entities.AuditEntry
	for rows.Next() {
		var entry entities.AuditEntry
		var charID, details sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&entry.WorldID,
			&entry.Action,
			&charID,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		entry.CharacterID = charID.String

		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling details: %w", err)
			}
		}

		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

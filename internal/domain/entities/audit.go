package entities

import "time"

// Audit actions recorded against characters.
const (
	ActionImport   = "import"
	ActionRate     = "rate"
	ActionIgnore   = "ignore"
	ActionUnignore = "unignore"
	ActionDelete   = "delete"
)

// AuditActions lists every recorded action.
func AuditActions() []string {
	return []string{ActionImport, ActionRate, ActionIgnore, ActionUnignore, ActionDelete}
}

// AuditEntry represents a logged action in the system.
type AuditEntry struct {
	ID          int64          `json:"id"`
	WorldID     string         `json:"world_id"`
	Action      string         `json:"action"`
	CharacterID string         `json:"character_id,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

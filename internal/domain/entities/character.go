// Package entities contains core domain data structures.
package entities

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FillerStatus classifies where a character originates.
type FillerStatus string

// Filler statuses.
const (
	FillerCanon  FillerStatus = "canon"
	FillerFiller FillerStatus = "filler"
	FillerNonTV  FillerStatus = "filler-non-tv"
)

// IsValid returns true if the status is one of the known classifications.
func (s FillerStatus) IsValid() bool {
	switch s {
	case FillerCanon, FillerFiller, FillerNonTV:
		return true
	}
	return false
}

// IsNonTV reports whether the character never appeared in the TV adaptation.
func (s FillerStatus) IsNonTV() bool {
	return s == FillerNonTV
}

// ParseFillerStatus converts user or file input into a FillerStatus.
// Empty input defaults to canon.
func ParseFillerStatus(s string) (FillerStatus, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "_", "-")
	key = strings.ReplaceAll(key, " ", "-")
	switch key {
	case "", "canon":
		return FillerCanon, true
	case "filler":
		return FillerFiller, true
	case "filler-non-tv", "non-tv":
		return FillerNonTV, true
	}
	return "", false
}

// ValidFillerStatuses lists the accepted filler statuses for error messages.
func ValidFillerStatuses() string {
	return "canon, filler, filler-non-tv"
}

// Character is a guessable member of a world's roster.
// ID is the only identity; Name is for display and searching.
type Character struct {
	ID             string       `json:"id"`
	WorldID        string       `json:"world_id"`
	Name           string       `json:"name"`
	NormalizedName string       `json:"normalized_name"`
	Description    string       `json:"description,omitempty"`
	Image          string       `json:"image,omitempty"`
	FillerStatus   FillerStatus `json:"filler_status"`
	Difficulty     Difficulty   `json:"difficulty"`
	IsIgnored      bool         `json:"is_ignored"`
	Arc            string       `json:"arc,omitempty"`
	Chapter        int          `json:"chapter,omitempty"`
	Episode        int          `json:"episode,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// IsRated reports whether a difficulty has been assigned.
func (c *Character) IsRated() bool {
	return c.Difficulty.IsRated()
}

// NormalizeName converts a name to a case- and accent-insensitive form
// used for deduplication ("Pérona " and "perona" normalize alike).
func NormalizeName(name string) string {
	// Chained transformers carry state, so build one per call.
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, strings.TrimSpace(name))
	if err != nil {
		folded = strings.TrimSpace(name)
	}
	return strings.ToLower(folded)
}

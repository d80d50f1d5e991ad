package entities

import "strings"

// IgnoreFilter selects characters by their ignored flag.
type IgnoreFilter string

// Ignore filters.
const (
	IgnoreAll        IgnoreFilter = "all"
	IgnoreOnly       IgnoreFilter = "ignored-only"
	IgnoreNotIgnored IgnoreFilter = "not-ignored-only"
)

// ContentFilter selects characters by filler status.
type ContentFilter string

// Content filters.
const (
	ContentAll     ContentFilter = "all"
	ContentCanon   ContentFilter = "canon-only"
	ContentFillers ContentFilter = "fillers-only"
)

// RatingStatus selects characters by whether they have been rated.
type RatingStatus string

// Rating statuses.
const (
	RatingAll     RatingStatus = "all"
	RatingRated   RatingStatus = "rated-only"
	RatingUnrated RatingStatus = "unrated-only"
)

// SortKey orders a derived roster.
type SortKey string

// Sort keys.
const (
	SortNameAsc        SortKey = "alphabetical-az"
	SortNameDesc       SortKey = "alphabetical-za"
	SortDifficultyAsc  SortKey = "difficulty-easy-hard"
	SortDifficultyDesc SortKey = "difficulty-hard-easy"
)

func enumKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "-")
	return strings.ReplaceAll(s, " ", "-")
}

// ParseIgnoreFilter maps input to an IgnoreFilter. Unknown values mean all.
func ParseIgnoreFilter(s string) IgnoreFilter {
	switch enumKey(s) {
	case "ignored-only", "ignored":
		return IgnoreOnly
	case "not-ignored-only", "not-ignored":
		return IgnoreNotIgnored
	}
	return IgnoreAll
}

// ParseContentFilter maps input to a ContentFilter. Unknown values mean all.
func ParseContentFilter(s string) ContentFilter {
	switch enumKey(s) {
	case "canon-only", "canon":
		return ContentCanon
	case "fillers-only", "fillers", "filler":
		return ContentFillers
	}
	return ContentAll
}

// ParseRatingStatus maps input to a RatingStatus. Unknown values mean all.
func ParseRatingStatus(s string) RatingStatus {
	switch enumKey(s) {
	case "rated-only", "rated":
		return RatingRated
	case "unrated-only", "unrated":
		return RatingUnrated
	}
	return RatingAll
}

// ParseSortKey maps input to a SortKey. Unknown values sort by name A-Z.
func ParseSortKey(s string) SortKey {
	switch enumKey(s) {
	case "alphabetical-za", "name-desc", "za":
		return SortNameDesc
	case "difficulty-easy-hard", "difficulty-asc", "easy-hard":
		return SortDifficultyAsc
	case "difficulty-hard-easy", "difficulty-desc", "hard-easy":
		return SortDifficultyDesc
	}
	return SortNameAsc
}

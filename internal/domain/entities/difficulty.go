package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// Difficulty is an ordered rating of how hard a character is to guess.
// The zero value means the character has not been rated.
type Difficulty int

// Difficulty levels in ascending order.
const (
	DifficultyUnrated Difficulty = iota
	DifficultyReallyEasy
	DifficultyEasy
	DifficultyMedium
	DifficultyHard
	DifficultyReallyHard
)

// MaxDifficulty is the highest rank on the scale.
const MaxDifficulty = DifficultyReallyHard

var difficultyLabels = [...]string{
	DifficultyUnrated:    "unrated",
	DifficultyReallyEasy: "really easy",
	DifficultyEasy:       "easy",
	DifficultyMedium:     "medium",
	DifficultyHard:       "hard",
	DifficultyReallyHard: "really hard",
}

// Rank returns the numeric position of d on the scale.
// Out-of-range values resolve to 0, the same as unset.
func (d Difficulty) Rank() int {
	if d < DifficultyUnrated || d > MaxDifficulty {
		return 0
	}
	return int(d)
}

// IsValid reports whether d lies on the scale.
func (d Difficulty) IsValid() bool {
	return d >= DifficultyUnrated && d <= MaxDifficulty
}

// IsRated reports whether d is a non-zero rating.
func (d Difficulty) IsRated() bool {
	return d.Rank() > 0
}

// String returns the label for d.
func (d Difficulty) String() string {
	return difficultyLabels[d.Rank()]
}

// ParseDifficulty accepts either a rank ("0".."5") or a label
// ("medium", "Really Hard", "really-hard"). Empty input is unrated.
func ParseDifficulty(s string) (Difficulty, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return DifficultyUnrated, true
	}

	if n, err := strconv.Atoi(key); err == nil {
		if n < 0 || n > int(MaxDifficulty) {
			return DifficultyUnrated, false
		}
		return Difficulty(n), true
	}

	key = strings.NewReplacer("-", " ", "_", " ").Replace(key)
	key = strings.Join(strings.Fields(key), " ")
	for i, label := range difficultyLabels {
		if label == key {
			return Difficulty(i), true
		}
	}
	return DifficultyUnrated, false
}

// Difficulties returns every level from unrated to really hard.
func Difficulties() []Difficulty {
	out := make([]Difficulty, 0, len(difficultyLabels))
	for i := range difficultyLabels {
		out = append(out, Difficulty(i))
	}
	return out
}

// UnmarshalJSON accepts a rank number, a numeric string, a label or null.
func (d *Difficulty) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*d = DifficultyUnrated
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	parsed, ok := ParseDifficulty(raw)
	if !ok {
		return fmt.Errorf("invalid difficulty %q (valid: 0-%d or %s)", raw, MaxDifficulty, strings.Join(difficultyLabels[:], ", "))
	}
	*d = parsed
	return nil
}

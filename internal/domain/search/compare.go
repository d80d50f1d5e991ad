package search

import (
	"cmp"
	"slices"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ersonp/lore-roster/internal/domain/entities"
)

// DefaultLocale is used when no collation locale is configured.
var DefaultLocale = language.English

// Comparator orders characters by a SortKey. Names are compared with the
// collation rules of a locale rather than byte order.
type Comparator struct {
	mu       sync.Mutex
	collator *collate.Collator
}

// NewComparator creates a Comparator for the given locale.
func NewComparator(tag language.Tag) *Comparator {
	return &Comparator{collator: collate.New(tag)}
}

// Compare returns -1, 0 or 1. Unknown keys compare equal.
func (c *Comparator) Compare(a, b *entities.Character, key entities.SortKey) int {
	switch key {
	case entities.SortNameAsc:
		return c.compareNames(a.Name, b.Name)
	case entities.SortNameDesc:
		return c.compareNames(b.Name, a.Name)
	case entities.SortDifficultyAsc:
		return cmp.Compare(a.Difficulty.Rank(), b.Difficulty.Rank())
	case entities.SortDifficultyDesc:
		return cmp.Compare(b.Difficulty.Rank(), a.Difficulty.Rank())
	}
	return 0
}

// Sort orders chars in place with a stable sort; equal keys keep their
// relative order.
func (c *Comparator) Sort(chars []entities.Character, key entities.SortKey) {
	slices.SortStableFunc(chars, func(a, b entities.Character) int {
		return c.Compare(&a, &b, key)
	})
}

// collate.Collator keeps scratch buffers and is not safe for concurrent use.
func (c *Comparator) compareNames(a, b string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collator.CompareString(a, b)
}

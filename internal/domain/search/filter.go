package search

import "github.com/ersonp/lore-roster/internal/domain/entities"

// Predicate reports whether a character survives a filter.
type Predicate func(c *entities.Character) bool

func keepAll(*entities.Character) bool { return true }

// ByIgnore filters on the ignored flag.
func ByIgnore(f entities.IgnoreFilter) Predicate {
	switch f {
	case entities.IgnoreOnly:
		return func(c *entities.Character) bool { return c.IsIgnored }
	case entities.IgnoreNotIgnored:
		return func(c *entities.Character) bool { return !c.IsIgnored }
	}
	return keepAll
}

// ByContent filters on filler status by strict equality, so non-TV
// characters only pass under ContentAll.
func ByContent(f entities.ContentFilter) Predicate {
	switch f {
	case entities.ContentCanon:
		return func(c *entities.Character) bool { return c.FillerStatus == entities.FillerCanon }
	case entities.ContentFillers:
		return func(c *entities.Character) bool { return c.FillerStatus == entities.FillerFiller }
	}
	return keepAll
}

// ByTV drops non-TV characters unless includeNonTV is set.
func ByTV(includeNonTV bool) Predicate {
	if includeNonTV {
		return keepAll
	}
	return func(c *entities.Character) bool { return !c.FillerStatus.IsNonTV() }
}

// ByRating filters on rating status. When exact is non-nil the character
// must also have exactly that difficulty.
func ByRating(status entities.RatingStatus, exact *entities.Difficulty) Predicate {
	var base Predicate
	switch status {
	case entities.RatingRated:
		base = func(c *entities.Character) bool { return c.IsRated() }
	case entities.RatingUnrated:
		base = func(c *entities.Character) bool { return !c.IsRated() }
	default:
		base = keepAll
	}
	if exact == nil {
		return base
	}
	want := exact.Rank()
	return func(c *entities.Character) bool {
		return base(c) && c.Difficulty.Rank() == want
	}
}

// Filter returns the characters passing p, in input order.
func Filter(chars []entities.Character, p Predicate) []entities.Character {
	out := make([]entities.Character, 0, len(chars))
	for i := range chars {
		if p(&chars[i]) {
			out = append(out, chars[i])
		}
	}
	return out
}

// All combines predicates with logical AND.
func All(preds ...Predicate) Predicate {
	return func(c *entities.Character) bool {
		for _, p := range preds {
			if !p(c) {
				return false
			}
		}
		return true
	}
}

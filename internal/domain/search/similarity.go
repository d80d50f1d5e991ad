package search

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
)

// SimilarityOptions tunes a SimilarityIndex.
type SimilarityOptions struct {
	// Tolerance bounds how far below zero a match score may fall before the
	// candidate is dropped. Zero or negative disables the bound.
	Tolerance int
	// MinMatchLength is the shortest query term, in runes, that filters the
	// roster. Shorter queries (or terms, with IgnoreOrder) are skipped.
	MinMatchLength int
	// IgnoreOrder matches each whitespace-separated term independently, so
	// "luffy monkey" finds "Monkey D. Luffy".
	IgnoreOrder bool
}

// SimilarityIndex is a score-based alternative to TwoTier backed by
// sahilm/fuzzy. It ranks by match quality instead of prefix and length.
type SimilarityIndex struct {
	opts SimilarityOptions
}

// NewSimilarityIndex creates a SimilarityIndex.
func NewSimilarityIndex(opts SimilarityOptions) *SimilarityIndex {
	return &SimilarityIndex{opts: opts}
}

type scored struct {
	index int
	score int
}

// MatchIndexes implements Matcher.
func (s *SimilarityIndex) MatchIndexes(query string, candidates []string) []int {
	terms := s.terms(query)
	if len(terms) == 0 {
		return identity(len(candidates))
	}

	totals := make(map[int]int, len(candidates))
	for n, term := range terms {
		seen := make(map[int]int)
		for _, m := range fuzzy.Find(term, candidates) {
			if !s.withinTolerance(m.Score) {
				continue
			}
			if n > 0 {
				if _, ok := totals[m.Index]; !ok {
					continue
				}
			}
			seen[m.Index] = totals[m.Index] + m.Score
		}
		totals = seen
		if len(totals) == 0 {
			return []int{}
		}
	}

	hits := make([]scored, 0, len(totals))
	for idx, score := range totals {
		hits = append(hits, scored{index: idx, score: score})
	}
	// Map iteration is random; order by index first so ties stay stable.
	slices.SortFunc(hits, func(a, b scored) int { return a.index - b.index })
	slices.SortStableFunc(hits, func(a, b scored) int { return b.score - a.score })

	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.index
	}
	return out
}

func (s *SimilarityIndex) terms(query string) []string {
	if isBlank(query) {
		return nil
	}

	var raw []string
	if s.opts.IgnoreOrder {
		raw = strings.Fields(query)
	} else {
		raw = []string{strings.TrimSpace(query)}
	}

	out := raw[:0]
	for _, t := range raw {
		if utf8.RuneCountInString(t) < s.opts.MinMatchLength {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (s *SimilarityIndex) withinTolerance(score int) bool {
	if s.opts.Tolerance <= 0 {
		return true
	}
	return score >= -s.opts.Tolerance
}

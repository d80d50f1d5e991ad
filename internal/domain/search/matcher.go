// Package search derives filtered, searched and sorted views of a character roster.
//
// Everything here is pure: inputs are never mutated and every call returns a
// fresh slice. The only state is the single-entry memo held by Pipeline.
package search

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Matcher selects and orders the candidates that match a query.
//
// Implementations return indexes into candidates rather than the strings
// themselves so that duplicate names still map back to distinct records.
// An empty or whitespace-only query must return every index in order.
type Matcher interface {
	MatchIndexes(query string, candidates []string) []int
}

// TwoTier is the default matcher. A candidate matches when it contains the
// query (case-insensitively), or failing that when the query's characters
// appear in the candidate in order. Matches that start with the query rank
// first, then shorter names before longer ones.
type TwoTier struct{}

type ranked struct {
	index  int
	prefix bool
	length int
}

// MatchIndexes implements Matcher.
func (TwoTier) MatchIndexes(query string, candidates []string) []int {
	if isBlank(query) {
		return identity(len(candidates))
	}

	q := strings.ToLower(query)
	hits := make([]ranked, 0, len(candidates))
	for i, c := range candidates {
		lc := strings.ToLower(c)
		if !strings.Contains(lc, q) && !isSubsequence(q, lc) {
			continue
		}
		hits = append(hits, ranked{
			index:  i,
			prefix: strings.HasPrefix(lc, q),
			length: utf8.RuneCountInString(c),
		})
	}

	slices.SortStableFunc(hits, func(a, b ranked) int {
		if a.prefix != b.prefix {
			if a.prefix {
				return -1
			}
			return 1
		}
		return a.length - b.length
	})

	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.index
	}
	return out
}

// isSubsequence reports whether every rune of q appears in s in order,
// each consuming the earliest remaining position.
func isSubsequence(q, s string) bool {
	if q == "" {
		return true
	}
	qr := []rune(q)
	pos := 0
	for _, r := range s {
		if r == qr[pos] {
			pos++
			if pos == len(qr) {
				return true
			}
		}
	}
	return false
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

package search

import (
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/text/language"

	"github.com/ersonp/lore-roster/internal/domain/entities"
)

// Selection holds every input of a derived view besides the roster itself.
// It is comparable and used directly as a memo key.
type Selection struct {
	Ignore       entities.IgnoreFilter  `json:"ignore"`
	Content      entities.ContentFilter `json:"content"`
	Rating       entities.RatingStatus  `json:"rating"`
	Exact        entities.Difficulty    `json:"difficulty"`
	NarrowRating bool                   `json:"narrow_rating"`
	IncludeNonTV bool                   `json:"include_non_tv"`
	Sort         entities.SortKey       `json:"sort"`
	Query        string                 `json:"query"`
}

// DefaultSelection shows the whole roster sorted by name.
func DefaultSelection() Selection {
	return Selection{
		Ignore:       entities.IgnoreAll,
		Content:      entities.ContentAll,
		Rating:       entities.RatingAll,
		IncludeNonTV: true,
		Sort:         entities.SortNameAsc,
	}
}

// Roster is a read-only snapshot of a world's characters. Version changes
// whenever the stored roster changes.
type Roster struct {
	WorldID    string
	Version    uint64
	Characters []entities.Character
}

// Apply derives the view for sel without memoisation. Filters run first,
// then the matcher over surviving names, then a stable sort.
func Apply(chars []entities.Character, sel Selection, m Matcher, c *Comparator) []entities.Character {
	var exact *entities.Difficulty
	if sel.NarrowRating {
		exact = &sel.Exact
	}

	out := Filter(chars, ByIgnore(sel.Ignore))
	out = Filter(out, ByContent(sel.Content))
	out = Filter(out, ByTV(sel.IncludeNonTV))
	out = Filter(out, ByRating(sel.Rating, exact))

	if !isBlank(sel.Query) {
		names := make([]string, len(out))
		for i := range out {
			names[i] = out[i].Name
		}
		idx := m.MatchIndexes(sel.Query, names)
		matched := make([]entities.Character, len(idx))
		for i, j := range idx {
			matched[i] = out[j]
		}
		out = matched
	}

	c.Sort(out, sel.Sort)
	return out
}

type memoKey struct {
	world   string
	version uint64
	sel     Selection
}

// Pipeline memoises the most recent derived view. A new view is computed
// only when the world, roster version or selection differs from the last call.
type Pipeline struct {
	matcher    Matcher
	comparator *Comparator
	logger     *slog.Logger

	mu         sync.Mutex
	key        memoKey
	valid      bool
	result     []entities.Character
	recomputes int
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger used for recompute traces.
func WithLogger(l *slog.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates a Pipeline. A nil matcher defaults to TwoTier.
func NewPipeline(m Matcher, locale language.Tag, opts ...PipelineOption) *Pipeline {
	if m == nil {
		m = TwoTier{}
	}
	p := &Pipeline{
		matcher:    m,
		comparator: NewComparator(locale),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Derive returns the view of r for sel. The returned slice is a copy the
// caller may modify.
func (p *Pipeline) Derive(r Roster, sel Selection) []entities.Character {
	key := memoKey{world: r.WorldID, version: r.Version, sel: sel}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.valid || p.key != key {
		p.result = Apply(r.Characters, sel, p.matcher, p.comparator)
		p.key = key
		p.valid = true
		p.recomputes++
		p.logger.Debug("derived roster view",
			"world", r.WorldID,
			"version", r.Version,
			"query", sel.Query,
			"input", len(r.Characters),
			"output", len(p.result),
		)
	}
	return slices.Clone(p.result)
}

// Match runs the pipeline's matcher over names; used by the standalone
// search box, which has no filters or sorting.
func (p *Pipeline) Match(query string, names []string) []int {
	return p.matcher.MatchIndexes(query, names)
}

// Recomputes returns how many times a view was actually computed.
func (p *Pipeline) Recomputes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.recomputes
}

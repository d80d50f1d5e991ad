// Package analyzers provides all custom static analyzers for the roster.
package analyzers

import (
	"golang.org/x/tools/go/analysis"

	"github.com/ersonp/lore-roster/tools/roster-lint/analyzers/ctorloop"
	"github.com/ersonp/lore-roster/tools/roster-lint/analyzers/loopcall"
)

// All returns all analyzers to run.
func All() []*analysis.Analyzer {
	return []*analysis.Analyzer{
		loopcall.Analyzer,
		ctorloop.Analyzer,
	}
}

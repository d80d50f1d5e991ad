// roster-lint is a custom static analyzer for roster performance patterns.
package main

import (
	"golang.org/x/tools/go/analysis/multichecker"

	"github.com/ersonp/lore-roster/tools/roster-lint/analyzers"
)

func main() {
	multichecker.Main(analyzers.All()...)
}

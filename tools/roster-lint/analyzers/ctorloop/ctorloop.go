// Package ctorloop detects expensive constructors called inside loops.
package ctorloop

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer detects regexp compilation and collator construction in loops.
var Analyzer = &analysis.Analyzer{
	Name:     "ctorloop",
	Doc:      "detects regexp, collator and search pipeline construction inside loops",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// constructors lists package-qualified calls to hoist, by package name.
var constructors = map[string]map[string]bool{
	"regexp": {
		"Compile":          true,
		"MustCompile":      true,
		"CompilePOSIX":     true,
		"MustCompilePOSIX": true,
	},
	"collate": {
		"New":          true,
		"NewFromTable": true,
	},
	"search": {
		"NewPipeline":        true,
		"NewComparator":      true,
		"NewSimilarityIndex": true,
	},
}

func run(pass *analysis.Pass) (any, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.RangeStmt)(nil),
		(*ast.ForStmt)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		var body *ast.BlockStmt
		switch stmt := n.(type) {
		case *ast.RangeStmt:
			body = stmt.Body
		case *ast.ForStmt:
			body = stmt.Body
		}
		if body == nil {
			return
		}

		ast.Inspect(body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}

			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}

			ident, ok := sel.X.(*ast.Ident)
			if !ok {
				return true
			}

			if constructors[ident.Name][sel.Sel.Name] {
				pass.Reportf(call.Pos(),
					"%s.%s called inside loop - construct once outside loop",
					ident.Name, sel.Sel.Name)
			}

			return true
		})
	})

	return nil, nil
}

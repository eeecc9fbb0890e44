// Package tsext is the Tree-sitter-based TypeScript/TSX extractor:
// approximate complexity/nesting/token metrics and raw call sites read
// straight off the parse tree, with no type resolution.
package tsext

import (
	"strings"

	"github.com/debtmap-go/debtmap/internal/extract"
	"github.com/debtmap-go/debtmap/internal/extract/tsshared"
	"github.com/debtmap-go/debtmap/internal/parser"
	"github.com/debtmap-go/debtmap/pkg/debt"
)

var tsSpec = tsshared.Spec{
	Language: debt.LangTypeScript,
	FunctionKinds: map[string]bool{
		"function_declaration": true, "method_definition": true,
		"arrow_function": true, "function_expression": true,
	},
	NameField:   "name",
	ParamsField: "parameters",
	BodyField:   "body",
	DecisionKinds: map[string]bool{
		"if_statement": true, "for_statement": true, "for_in_statement": true,
		"while_statement": true, "do_statement": true, "catch_clause": true,
		"ternary_expression": true, "switch_case": true,
	},
	NestingKinds: map[string]bool{
		"if_statement": true, "for_statement": true, "for_in_statement": true,
		"while_statement": true, "do_statement": true, "try_statement": true,
		"switch_statement": true,
	},
	BinaryKind:        "binary_expression",
	LogicalOperators:  map[string]bool{"&&": true, "||": true, "??": true},
	OperatorField:     "operator",
	CallKinds:         map[string]bool{"call_expression": true, "new_expression": true},
	CallFunctionField: "function",
	AnonymousName:     "<anonymous>",
}

// Extractor implements extract.LanguagePlugin over already-parsed
// TypeScript/TSX Tree-sitter files.
type Extractor struct {
	files []*parser.ParsedTreeSitterFile
}

// New builds a TypeScript extractor over files already parsed by
// parser.TreeSitterParser.ParseDiscoveredFiles(debt.LangTypeScript, ...).
func New(files []*parser.ParsedTreeSitterFile) *Extractor {
	return &Extractor{files: files}
}

func (e *Extractor) Language() debt.Language { return debt.LangTypeScript }

// Extract runs the approximate TypeScript pass over every parsed file.
func (e *Extractor) Extract() (extract.Result, error) {
	var metrics []debt.FunctionMetrics
	var errs []*debt.ExtractionError

	for _, f := range e.files {
		root := f.Tree.RootNode()
		pkgPath := modulePathFor(f.RelPath)
		m, fileErrs := tsshared.ExtractFile(root, f.Content, f.Path, pkgPath, tsSpec)
		metrics = append(metrics, m...)
		errs = append(errs, fileErrs...)
	}

	return extract.Result{Metrics: metrics, Errors: errs}, nil
}

// modulePathFor derives a module path from a relative file path,
// following Node/TS's own extension-less import convention.
func modulePathFor(relPath string) string {
	return strings.TrimSuffix(strings.TrimSuffix(relPath, ".tsx"), ".ts")
}

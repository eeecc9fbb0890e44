// Package pyext is the Tree-sitter-based Python extractor: approximate
// complexity/nesting/token metrics and raw call sites read straight off
// the parse tree, with no type resolution.
package pyext

import (
	"strings"

	"github.com/debtmap-go/debtmap/internal/extract"
	"github.com/debtmap-go/debtmap/internal/extract/tsshared"
	"github.com/debtmap-go/debtmap/internal/parser"
	"github.com/debtmap-go/debtmap/pkg/debt"
)

var pySpec = tsshared.Spec{
	Language:      debt.LangPython,
	FunctionKinds: map[string]bool{"function_definition": true},
	NameField:     "name",
	ParamsField:   "parameters",
	BodyField:     "body",
	DecisionKinds: map[string]bool{
		"if_statement": true, "for_statement": true, "while_statement": true,
		"except_clause": true, "conditional_expression": true, "case_clause": true,
	},
	NestingKinds: map[string]bool{
		"if_statement": true, "for_statement": true, "while_statement": true,
		"try_statement": true, "with_statement": true, "match_statement": true,
	},
	BinaryKind:       "boolean_operator",
	LogicalOperators: map[string]bool{"and": true, "or": true},
	OperatorField:    "operator",
	CallKinds:        map[string]bool{"call": true},
	CallFunctionField: "function",
	AnonymousName:    "<lambda>",
}

// Extractor implements extract.LanguagePlugin over already-parsed
// Python Tree-sitter files.
type Extractor struct {
	files []*parser.ParsedTreeSitterFile
}

// New builds a Python extractor over files already parsed by
// parser.TreeSitterParser.ParseDiscoveredFiles(debt.LangPython, ...).
func New(files []*parser.ParsedTreeSitterFile) *Extractor {
	return &Extractor{files: files}
}

func (e *Extractor) Language() debt.Language { return debt.LangPython }

// Extract runs the approximate Python pass over every parsed file.
func (e *Extractor) Extract() (extract.Result, error) {
	var metrics []debt.FunctionMetrics
	var errs []*debt.ExtractionError

	for _, f := range e.files {
		root := f.Tree.RootNode()
		pkgPath := modulePathFor(f.RelPath)
		m, fileErrs := tsshared.ExtractFile(root, f.Content, f.Path, pkgPath, pySpec)
		metrics = append(metrics, m...)
		errs = append(errs, fileErrs...)
	}

	return extract.Result{Metrics: metrics, Errors: errs}, nil
}

// modulePathFor derives a dotted module path from a relative file path,
// Python's own import-path convention (foo/bar.py -> foo.bar).
func modulePathFor(relPath string) string {
	trimmed := strings.TrimSuffix(relPath, ".py")
	return strings.ReplaceAll(trimmed, "/", ".")
}

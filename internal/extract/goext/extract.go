// Package goext is the extractor's primary, fully-featured Go extractor: go/ast
// walking plus a gocyclo cross-check for cyclomatic complexity, a
// Campbell-style cognitive-complexity walker, call-site resolution, and
// intrinsic side-effect detection.
package goext

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"regexp"
	"strings"

	"github.com/fzipp/gocyclo"

	"github.com/debtmap-go/debtmap/internal/extract"
	"github.com/debtmap-go/debtmap/internal/parser"
	"github.com/debtmap-go/debtmap/pkg/debt"
)

var testNamePattern = regexp.MustCompile(`(?i)^Test|^Benchmark|^Example|^Fuzz`)

// Extractor implements extract.LanguagePlugin for Go source, given
// packages already loaded by parser.GoPackagesParser.
type Extractor struct {
	pkgs []*parser.ParsedPackage
}

// New builds a Go extractor over already-loaded packages.
func New(pkgs []*parser.ParsedPackage) *Extractor {
	return &Extractor{pkgs: pkgs}
}

func (e *Extractor) Language() debt.Language { return debt.LangGo }

// analyzedPackage is the per-file view collectCallSites/effects.go need:
// a file's import alias table alongside the package's shared type info.
type analyzedPackage struct {
	fset    *token.FileSet
	info    *types.Info
	types   *types.Package
	path    string
	imports map[string]string // local alias -> import path
}

func (p *analyzedPackage) importPathFor(alias string) string {
	return p.imports[alias]
}

func fileImports(f *ast.File) map[string]string {
	out := make(map[string]string, len(f.Imports))
	for _, imp := range f.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		name := path
		if idx := strings.LastIndex(path, "/"); idx >= 0 {
			name = path[idx+1:]
		}
		if imp.Name != nil {
			name = imp.Name.Name
		}
		out[name] = path
	}
	return out
}

// Extract runs the full Go extraction pass over every loaded package.
func (e *Extractor) Extract() (extract.Result, error) {
	var metrics []debt.FunctionMetrics
	var errs []*debt.ExtractionError
	seen := make(map[debt.FunctionId]bool)

	for _, pkg := range e.pkgs {
		var stats gocyclo.Stats
		for _, f := range pkg.Syntax {
			stats = gocyclo.AnalyzeASTFile(f, pkg.Fset, stats)
		}
		complexityByPos := indexComplexity(stats)

		for _, f := range pkg.Syntax {
			ap := &analyzedPackage{
				fset:    pkg.Fset,
				info:    pkg.TypesInfo,
				types:   pkg.Types,
				path:    pkg.PkgPath,
				imports: fileImports(f),
			}

			ast.Inspect(f, func(n ast.Node) bool {
				fn, ok := n.(*ast.FuncDecl)
				if !ok || fn.Body == nil {
					return true
				}
				m, extractErr := extractFunction(ap, fn, complexityByPos)
				if seen[m.Id] {
					return false
				}
				seen[m.Id] = true
				metrics = append(metrics, m)
				if extractErr != nil {
					errs = append(errs, extractErr)
				}
				return false
			})
		}
	}

	return extract.Result{Metrics: metrics, Errors: errs}, nil
}

type posKey struct {
	file string
	line int
}

func indexComplexity(stats gocyclo.Stats) map[posKey]int {
	m := make(map[posKey]int, len(stats))
	for _, s := range stats {
		m[posKey{s.Pos.Filename, s.Pos.Line}] = s.Complexity
	}
	return m
}

func extractFunction(pkg *analyzedPackage, fn *ast.FuncDecl, complexityByPos map[posKey]int) (debt.FunctionMetrics, *debt.ExtractionError) {
	pos := pkg.fset.Position(fn.Pos())
	end := pkg.fset.Position(fn.End())
	lengthLines := end.Line - pos.Line + 1

	name := fn.Name.Name
	receiverType := ""
	if fn.Recv != nil && len(fn.Recv.List) > 0 {
		receiverType = receiverTypeName(fn.Recv.List[0].Type)
		name = receiverType + "." + name
	}
	qualifiedName := pkg.path + "." + name

	id := debt.FunctionId{FilePath: pos.Filename, QualifiedName: qualifiedName, StartLine: pos.Line}

	cyclomatic := complexityByPos[posKey{pos.Filename, pos.Line}]
	if cyclomatic == 0 {
		cyclomatic = 1
	}

	cognitive, nestingDepth := cognitiveComplexity(fn.Body, name)
	callSites := collectCallSites(pkg, fn.Body)
	effects := detectIntrinsicEffects(pkg, fn.Body)
	tokens, patterns, branches := collectEntropyInputs(fn.Body)

	visibility := debt.Private
	if ast.IsExported(fn.Name.Name) {
		visibility = debt.Public
	}

	isTest := strings.HasSuffix(pos.Filename, "_test.go") && testNamePattern.MatchString(fn.Name.Name)

	// Missing type info means call-site and side-effect classification
	// fell back to syntax-only heuristics: the
	// metrics are still usable, just less precise.
	var extractErr *debt.ExtractionError
	if pkg.info == nil {
		cognitive = 0
		extractErr = &debt.ExtractionError{File: pos.Filename, Line: pos.Line, Func: qualifiedName, Reason: "no type information available; call-site and effect resolution degraded to syntax-only heuristics"}
	}

	m := debt.FunctionMetrics{
		Id:                   id,
		Cyclomatic:           cyclomatic,
		Cognitive:            cognitive,
		NestingDepth:         nestingDepth,
		LengthLines:          lengthLines,
		ParamCount:           countParams(fn.Type),
		Tokens:               tokens,
		AstPatterns:          patterns,
		Branches:             branches,
		RawCallSites:         callSites,
		IntrinsicSideEffects: effects,
		IsTest:               isTest,
		IsEntryCandidate:     fn.Name.Name == "main",
		Visibility:           visibility,
		ReceiverType:         receiverType,
		IsClosure:            false,
		ExtractionPartial:    pkg.info == nil,
	}

	return m, extractErr
}

func countParams(ft *ast.FuncType) int {
	if ft.Params == nil {
		return 0
	}
	n := 0
	for _, field := range ft.Params.List {
		if len(field.Names) == 0 {
			n++
			continue
		}
		n += len(field.Names)
	}
	return n
}

func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverTypeName(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return receiverTypeName(t.X)
	default:
		return fmt.Sprintf("%T", expr)
	}
}

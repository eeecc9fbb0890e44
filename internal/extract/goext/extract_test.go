package goext

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	gparser "github.com/debtmap-go/debtmap/internal/parser"
	"github.com/debtmap-go/debtmap/pkg/debt"
)

func parsePackage(t *testing.T, src string) *gparser.ParsedPackage {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "sample.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("failed to parse fixture source: %v", err)
	}
	return &gparser.ParsedPackage{
		Name:    "sample",
		PkgPath: "example.com/sample",
		GoFiles: []string{"sample.go"},
		Syntax:  []*ast.File{f},
		Fset:    fset,
	}
}

func findMetric(t *testing.T, metrics []debt.FunctionMetrics, suffix string) debt.FunctionMetrics {
	t.Helper()
	for _, m := range metrics {
		if len(m.Id.QualifiedName) >= len(suffix) && m.Id.QualifiedName[len(m.Id.QualifiedName)-len(suffix):] == suffix {
			return m
		}
	}
	t.Fatalf("no metric found with qualified name suffix %q among %d metrics", suffix, len(metrics))
	return debt.FunctionMetrics{}
}

func TestExtractSimpleFunctionWithoutTypeInfoIsPartial(t *testing.T) {
	src := `package sample

func Add(a, b int) int {
	return a + b
}
`
	pkg := parsePackage(t, src)
	result, err := New([]*gparser.ParsedPackage{pkg}).Extract()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Metrics) != 1 {
		t.Fatalf("expected one extracted function, got %d", len(result.Metrics))
	}
	m := result.Metrics[0]
	if !m.ExtractionPartial {
		t.Error("expected extraction without type info to be marked partial")
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected one extraction error recorded for missing type info, got %d", len(result.Errors))
	}
	if m.ParamCount != 2 {
		t.Errorf("expected ParamCount=2, got %d", m.ParamCount)
	}
	if m.Visibility != debt.Public {
		t.Errorf("expected Add to be Public, got %v", m.Visibility)
	}
}

func TestExtractBranchingFunctionHasHigherCyclomatic(t *testing.T) {
	src := `package sample

func classify(n int) string {
	if n < 0 {
		return "negative"
	} else if n == 0 {
		return "zero"
	}
	return "positive"
}

func constant() int {
	return 1
}
`
	pkg := parsePackage(t, src)
	result, _ := New([]*gparser.ParsedPackage{pkg}).Extract()

	branching := findMetric(t, result.Metrics, "classify")
	flat := findMetric(t, result.Metrics, "constant")

	if branching.Cyclomatic <= flat.Cyclomatic {
		t.Errorf("expected classify's cyclomatic complexity (%d) to exceed constant's (%d)", branching.Cyclomatic, flat.Cyclomatic)
	}
}

func TestExtractMethodQualifiesNameWithReceiverType(t *testing.T) {
	src := `package sample

type Server struct{}

func (s *Server) Start() {}
`
	pkg := parsePackage(t, src)
	result, _ := New([]*gparser.ParsedPackage{pkg}).Extract()

	m := findMetric(t, result.Metrics, "Server.Start")
	if m.ReceiverType != "Server" {
		t.Errorf("expected ReceiverType=Server, got %q", m.ReceiverType)
	}
}

func TestExtractMainFunctionIsEntryCandidate(t *testing.T) {
	src := `package sample

func main() {}
`
	pkg := parsePackage(t, src)
	result, _ := New([]*gparser.ParsedPackage{pkg}).Extract()
	if !result.Metrics[0].IsEntryCandidate {
		t.Error("expected main to be marked as an entry candidate")
	}
}

func TestExtractTestFunctionIsMarkedIsTest(t *testing.T) {
	src := `package sample

func TestSomething() {}
`
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "sample_test.go", src, parser.ParseComments)
	if err != nil {
		t.Fatal(err)
	}
	pkg := &gparser.ParsedPackage{
		Name: "sample", PkgPath: "example.com/sample",
		GoFiles: []string{"sample_test.go"},
		Syntax:  []*ast.File{f},
		Fset:    fset,
	}
	result, _ := New([]*gparser.ParsedPackage{pkg}).Extract()
	if !result.Metrics[0].IsTest {
		t.Error("expected a Test-prefixed function in a _test.go file to be marked IsTest")
	}
}

func TestExtractPrivateFunctionIsNotVisible(t *testing.T) {
	src := `package sample

func helper() {}
`
	pkg := parsePackage(t, src)
	result, _ := New([]*gparser.ParsedPackage{pkg}).Extract()
	if result.Metrics[0].Visibility != debt.Private {
		t.Errorf("expected helper to be Private, got %v", result.Metrics[0].Visibility)
	}
}

func TestExtractVariadicAndGroupedParamsCountedCorrectly(t *testing.T) {
	src := `package sample

func sum(a, b int, rest ...int) int {
	return a + b
}
`
	pkg := parsePackage(t, src)
	result, _ := New([]*gparser.ParsedPackage{pkg}).Extract()
	if result.Metrics[0].ParamCount != 3 {
		t.Errorf("expected ParamCount=3 for grouped plus variadic params, got %d", result.Metrics[0].ParamCount)
	}
}

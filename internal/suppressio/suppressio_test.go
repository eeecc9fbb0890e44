package suppressio

import (
	"strings"
	"testing"

	"github.com/debtmap-go/debtmap/internal/suppress"
	"github.com/debtmap-go/debtmap/pkg/debt"
)

func TestParseFileAllowAttributesToNextFuncDecl(t *testing.T) {
	src := "package foo\n\n// debtmap:allow complexity too gnarly to split right now\nfunc doWork() {}\n"
	allows, lines := ParseFile("foo.go", strings.NewReader(src))

	if len(lines) != 0 {
		t.Fatalf("expected no ignore-line rules, got %d", len(lines))
	}
	if len(allows) != 1 {
		t.Fatalf("expected one allow rule, got %d", len(allows))
	}
	a := allows[0]
	if a.Function != "doWork" || a.Category != debt.CategoryComplexity || a.Justification != "too gnarly to split right now" {
		t.Errorf("unexpected allow rule: %+v", a)
	}
}

func TestParseFileAllowWithMethodReceiver(t *testing.T) {
	src := "// debtmap:allow testing\nfunc (s *Server) Handle() {}\n"
	allows, _ := ParseFile("foo.go", strings.NewReader(src))
	if len(allows) != 1 || allows[0].Function != "Handle" {
		t.Fatalf("expected the allow rule attributed to Handle, got %+v", allows)
	}
}

func TestParseFileIgnoreLineAttributesToOwnLine(t *testing.T) {
	src := "package foo\nx := compute() // debtmap:ignore-line dead known false positive\n"
	_, lines := ParseFile("foo.go", strings.NewReader(src))
	if len(lines) != 1 {
		t.Fatalf("expected one ignore-line rule, got %d", len(lines))
	}
	if lines[0].Line != 2 || lines[0].Category != debt.CategoryDead {
		t.Errorf("unexpected ignore-line rule: %+v", lines[0])
	}
}

func TestParseFileUnknownCategoryIsIgnored(t *testing.T) {
	src := "// debtmap:allow bogus\nfunc f() {}\n"
	allows, _ := ParseFile("foo.go", strings.NewReader(src))
	if len(allows) != 0 {
		t.Errorf("expected an unrecognized category to produce no allow rule, got %d", len(allows))
	}
}

func TestParseFileAllowClearedByInterveningCode(t *testing.T) {
	src := "// debtmap:allow complexity\nx := 1\nfunc f() {}\n"
	allows, _ := ParseFile("foo.go", strings.NewReader(src))
	if len(allows) != 0 {
		t.Errorf("expected intervening non-comment code to clear a pending allow, got %d", len(allows))
	}
}

func TestParseFileCategoryNamesAreCaseInsensitive(t *testing.T) {
	src := "// debtmap:allow COMPLEXITY\nfunc f() {}\n"
	allows, _ := ParseFile("foo.go", strings.NewReader(src))
	if len(allows) != 1 {
		t.Fatalf("expected a case-insensitive category match, got %d allows", len(allows))
	}
}

func TestBuildMergesAllFilesRulesIntoOneMap(t *testing.T) {
	allows := [][]suppress.AllowRule{
		{{FilePath: "a.go", Function: "f", Category: debt.CategoryComplexity}},
		{{FilePath: "b.go", Function: "g", Category: debt.CategoryTesting}},
	}
	lines := [][]suppress.IgnoreLineRule{
		{{FilePath: "a.go", Line: 3, Category: debt.CategoryDead}},
	}
	m := Build(allows, lines)
	if len(m.Allows) != 2 {
		t.Errorf("expected 2 merged allow rules, got %d", len(m.Allows))
	}
	if len(m.Lines) != 1 {
		t.Errorf("expected 1 merged ignore-line rule, got %d", len(m.Lines))
	}
}

// Package suppressio parses suppression directives out of source
// comments into the resolved suppress.Map the suppressor consumes. The core
// never parses comments itself; this is the external collaborator.
package suppressio

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/debtmap-go/debtmap/internal/suppress"
	"github.com/debtmap-go/debtmap/pkg/debt"
)

var (
	allowPattern      = regexp.MustCompile(`//\s*debtmap:allow\s+(\S+)(?:\s+(.*))?`)
	ignoreLinePattern = regexp.MustCompile(`//\s*debtmap:ignore-line\s+(\S+)(?:\s+(.*))?`)
	funcDeclPattern   = regexp.MustCompile(`^\s*func\s+(?:\([^)]*\)\s*)?([A-Za-z0-9_]+)\s*\(`)
)

var categoryNames = map[string]debt.Category{
	"complexity":  debt.CategoryComplexity,
	"testing":     debt.CategoryTesting,
	"architecture": debt.CategoryArchitecture,
	"dead":        debt.CategoryDead,
	"duplication": debt.CategoryDuplication,
	"smell":       debt.CategorySmell,
	"dependency":  debt.CategoryDependency,
}

// ParseFile scans one file's source for `// debtmap:allow <category>
// [reason]` (attributed to the next function declaration) and
// `// debtmap:ignore-line <category> [reason]` (attributed to its own
// line number) directives.
func ParseFile(path string, r io.Reader) ([]suppress.AllowRule, []suppress.IgnoreLineRule) {
	var allows []suppress.AllowRule
	var lines []suppress.IgnoreLineRule

	var pendingAllows []struct {
		category debt.Category
		reason   string
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()

		if m := ignoreLinePattern.FindStringSubmatch(text); m != nil {
			if cat, ok := categoryNames[strings.ToLower(m[1])]; ok {
				lines = append(lines, suppress.IgnoreLineRule{FilePath: path, Line: lineNo, Category: cat, Justification: strings.TrimSpace(m[2])})
			}
			continue
		}

		if m := allowPattern.FindStringSubmatch(text); m != nil {
			if cat, ok := categoryNames[strings.ToLower(m[1])]; ok {
				pendingAllows = append(pendingAllows, struct {
					category debt.Category
					reason   string
				}{cat, strings.TrimSpace(m[2])})
			}
			continue
		}

		if fn := funcDeclPattern.FindStringSubmatch(text); fn != nil && len(pendingAllows) > 0 {
			for _, p := range pendingAllows {
				allows = append(allows, suppress.AllowRule{FilePath: path, Function: fn[1], Category: p.category, Justification: p.reason})
			}
			pendingAllows = nil
			continue
		}

		if strings.TrimSpace(text) != "" && !strings.HasPrefix(strings.TrimSpace(text), "//") {
			pendingAllows = nil
		}
	}

	return allows, lines
}

// Build merges per-file allow/ignore-line rules into one suppress.Map.
func Build(allows [][]suppress.AllowRule, lines [][]suppress.IgnoreLineRule) suppress.Map {
	var m suppress.Map
	for _, a := range allows {
		m.Allows = append(m.Allows, a...)
	}
	for _, l := range lines {
		m.Lines = append(m.Lines, l...)
	}
	return m
}

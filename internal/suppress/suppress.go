// Package suppress applies a resolved SuppressionMap to the ranked
// DebtItem list, and synthesizes a Dependency item from the call
// graph's validation report when its health score is low.
package suppress

import "github.com/debtmap-go/debtmap/pkg/debt"

// AllowRule suppresses every item of Category on Function, wherever it
// appears in FilePath.
type AllowRule struct {
	FilePath      string
	Function      string // qualified name
	Category      debt.Category
	Justification string
}

// IgnoreLineRule suppresses items of Category whose location covers Line
// in FilePath.
type IgnoreLineRule struct {
	FilePath      string
	Line          int
	Category      debt.Category
	Justification string
}

// Map is the resolved suppression configuration the suppressor consumes.
type Map struct {
	Allows []AllowRule
	Lines  []IgnoreLineRule
}

const dependencyHealthFloor = 70.0

// functionMatches compares a suppression rule's function name against a
// DebtItem's fully qualified one. suppressio's comment-directive parser
// has no type information to qualify the name it scans off a `func`
// declaration line, so ruleFn is usually bare ("Foo"); itemFn is always
// qualified ("pkg/path.Foo" or "pkg/path.Receiver.Foo"). A bare name
// matches either the whole qualified name or its trailing segment.
func functionMatches(ruleFn, itemFn string) bool {
	if ruleFn == itemFn {
		return true
	}
	suffix := "." + ruleFn
	return len(itemFn) > len(suffix) && itemFn[len(itemFn)-len(suffix):] == suffix
}

// Apply tags every suppressed item with its justification and returns the filtered list: suppressed items are dropped unless
// showSuppressed is set, in which case they're kept with Suppressed
// populated.
func Apply(items []*debt.DebtItem, m Map, showSuppressed bool) []*debt.DebtItem {
	out := make([]*debt.DebtItem, 0, len(items))
	for _, item := range items {
		if rec := matchRule(item, m); rec != nil {
			item.Suppressed = rec
			if !showSuppressed {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

// noJustification fills SuppressionRecord.Justification when a directive
// carries no reason, so a suppressed item surfaced via --show-suppressed
// never carries an empty justification string.
const noJustification = "no justification provided"

func justificationOrPlaceholder(reason string) string {
	if reason == "" {
		return noJustification
	}
	return reason
}

func matchRule(item *debt.DebtItem, m Map) *debt.SuppressionRecord {
	for _, r := range m.Allows {
		if r.FilePath == item.Location.FilePath && functionMatches(r.Function, item.Location.Function) && r.Category == item.Category {
			return &debt.SuppressionRecord{Rule: "allow", Justification: justificationOrPlaceholder(r.Justification)}
		}
	}
	for _, r := range m.Lines {
		if r.FilePath == item.Location.FilePath && r.Category == item.Category && r.Line >= item.Location.StartLine && r.Line <= item.Location.EndLine {
			return &debt.SuppressionRecord{Rule: "ignore-line", Justification: justificationOrPlaceholder(r.Justification)}
		}
	}
	return nil
}

// SynthesizeDependencyItem builds a category-Dependency DebtItem from
// the call-graph builder's validation report when the call graph's health score drops below
// the configured floor, or nil if the graph is healthy.
func SynthesizeDependencyItem(report debt.ValidationReport) *debt.DebtItem {
	if report.HealthScore >= dependencyHealthFloor {
		return nil
	}

	return &debt.DebtItem{
		Location: debt.Location{FilePath: "", Function: ""},
		Category: debt.CategoryDependency,
		Kind: debt.DebtKind{
			Tag: debt.KindDependencyHealth,
			Dependency: &debt.DependencyHealthEvidence{
				HealthScore:   report.HealthScore,
				DanglingEdges: report.DanglingEdges,
				Duplicates:    report.DuplicateNodes,
				Orphans:       report.OrphanNodes,
			},
		},
		Severity: dependencySeverity(report.HealthScore),
		Evidence: debt.Evidence{
			"health_score":   report.HealthScore,
			"dangling_edges": float64(report.DanglingEdges),
			"orphan_nodes":   float64(report.OrphanNodes),
		},
		Rationale:         "call graph health score has dropped below the configured floor",
		RecommendedAction: "investigate dangling and unresolved call edges across the codebase",
		Score:             100 - report.HealthScore,
		Tier:              debt.T2,
	}
}

func dependencySeverity(health float64) debt.Severity {
	switch {
	case health < 40:
		return debt.SeverityCritical
	case health < 55:
		return debt.SeverityHigh
	default:
		return debt.SeverityMedium
	}
}

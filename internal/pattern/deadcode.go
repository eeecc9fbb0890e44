package pattern

import (
	"regexp"
	"strings"

	"github.com/debtmap-go/debtmap/pkg/debt"
)

var constructorAccessorPattern = regexp.MustCompile(`(?i)^(new|create|default|get|set|is|has)[A-Z_]?`)

const (
	highConfidence   = 0.9
	mediumConfidence = 0.6
	lowConfidence    = 0.2
)

// DetectDeadCode flags every function with call-graph in-degree 0
// (synthetic observer edges already folded into the graph by the call-graph builder and pattern detector, so
// Scenario 4's implementers are excluded here) as a dead-code candidate
// with a confidence tier.
//
// roots marks file paths considered a "root module" for the Medium-tier
// API-surface heuristic; coverage supplies transitive coverage for the
// Low-tier signal.
func DetectDeadCode(metrics []debt.FunctionMetrics, g *debt.CallGraph, entryPoints map[debt.FunctionId]bool, roots map[string]bool, coverage map[debt.FunctionId]float64, suppressed map[debt.FunctionId]bool) []*debt.DebtItem {
	var items []*debt.DebtItem
	for _, m := range metrics {
		if suppressed[m.Id] {
			continue
		}
		h, ok := g.Lookup(m.Id)
		if !ok {
			continue
		}
		if g.InDegree(h) > 0 {
			continue
		}
		if entryPoints[m.Id] {
			continue
		}

		confidence, tier := deadCodeConfidence(m, roots, coverage)

		items = append(items, &debt.DebtItem{
			Location: debt.Location{FilePath: m.Id.FilePath, Function: m.Id.QualifiedName, StartLine: m.Id.StartLine, EndLine: m.Id.StartLine + m.LengthLines},
			Category: debt.CategoryDead,
			Kind: debt.DebtKind{
				Tag:    debt.KindOrphan,
				Orphan: &debt.OrphanEvidence{Confidence: confidence, Tier: tier},
			},
			Severity:          severityForDeadCode(tier),
			Evidence:          debt.Evidence{"confidence": confidence},
			Rationale:         m.Id.QualifiedName + " has no callers in the resolved call graph",
			RecommendedAction: "remove if genuinely unused, or add an explicit entry point / suppression",
			Score:             confidence * 100,
		})
	}
	return items
}

func deadCodeConfidence(m debt.FunctionMetrics, roots map[string]bool, coverage map[debt.FunctionId]float64) (float64, string) {
	if cov, ok := coverage[m.Id]; ok && cov > 0 {
		return lowConfidence, "Low"
	}
	if m.IsTest || hasFrameworkSignal(m) {
		return lowConfidence, "Low"
	}

	if m.Visibility == debt.Private {
		return highConfidence, "High"
	}

	inRoot := roots[m.Id.FilePath]
	looksLikeApiSurface := constructorAccessorPattern.MatchString(lastIdentifier(m.Id.QualifiedName))
	if !inRoot && !looksLikeApiSurface {
		return mediumConfidence, "Medium"
	}

	return lowConfidence, "Low"
}

func hasFrameworkSignal(m debt.FunctionMetrics) bool {
	lower := strings.ToLower(m.Id.QualifiedName)
	for _, marker := range []string{"callback", "handler", "hook", "middleware"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func severityForDeadCode(tier string) debt.Severity {
	switch tier {
	case "High":
		return debt.SeverityMedium
	case "Medium":
		return debt.SeverityLow
	default:
		return debt.SeverityLow
	}
}

func lastIdentifier(qualifiedName string) string {
	idx := strings.LastIndexAny(qualifiedName, ".:")
	if idx == -1 {
		return qualifiedName
	}
	return qualifiedName[idx+1:]
}

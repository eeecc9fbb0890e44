// Package debtitem implements the fusion stage: fusing every upstream
// stage's output into typed, evidence-bearing DebtItems.
package debtitem

import (
	"github.com/debtmap-go/debtmap/internal/engineconfig"
	"github.com/debtmap-go/debtmap/pkg/debt"
)

// testingGapCoverageCeiling is the transitive-coverage level below which
// a sufficiently complex function earns a Testing debt item.
const testingGapCoverageCeiling = 0.5

// BuildFunctionItems produces one DebtItem per function that earns debt,
// merging the complexity and testing-gap candidates by the fixed
// category-priority order when both would otherwise apply to the
// same function.
func BuildFunctionItems(
	metrics []debt.FunctionMetrics,
	purity map[debt.FunctionId]debt.Purity,
	entropy map[debt.FunctionId]debt.EntropyScore,
	coverage map[debt.FunctionId]debt.Coverage,
	roles map[debt.FunctionId]debt.RoleClassification,
	thresholds engineconfig.ComplexityThresholds,
) []*debt.DebtItem {
	var out []*debt.DebtItem

	for _, m := range metrics {
		if m.ExtractionPartial {
			continue
		}

		complexityItem := complexityCandidate(m, entropy[m.Id], thresholds)
		testingItem := testingGapCandidate(m, coverage[m.Id], thresholds)

		item := pickByCategoryPriority(complexityItem, testingItem)
		if item == nil {
			continue
		}
		attachPurityEvidence(item, purity[m.Id])
		attachRoleEvidence(item, roles[m.Id])
		out = append(out, item)
	}

	return out
}

func pickByCategoryPriority(candidates ...*debt.DebtItem) *debt.DebtItem {
	var best *debt.DebtItem
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if best == nil || debt.CategoryPriority(c.Category) < debt.CategoryPriority(best.Category) {
			best = c
		}
	}
	return best
}

func complexityCandidate(m debt.FunctionMetrics, es debt.EntropyScore, thresholds engineconfig.ComplexityThresholds) *debt.DebtItem {
	if m.Cyclomatic < thresholds.CyclomaticT3 {
		return nil
	}

	factor := es.EffectiveComplexityFactor
	if factor == 0 {
		factor = 1.0
	}

	evidence := debt.Evidence{
		"cyclomatic":                  float64(m.Cyclomatic),
		"cognitive":                   float64(m.Cognitive),
		"nesting_depth":               float64(m.NestingDepth),
		"effective_complexity_factor": factor,
	}

	return &debt.DebtItem{
		Location:          debt.Location{FilePath: m.Id.FilePath, Function: m.Id.QualifiedName, StartLine: m.Id.StartLine, EndLine: m.Id.StartLine + m.LengthLines},
		Category:          debt.CategoryComplexity,
		Kind:              debt.DebtKind{Tag: debt.KindComplexityHotspot},
		Severity:          complexitySeverity(m.Cyclomatic, thresholds),
		Evidence:          evidence,
		Rationale:         "high cyclomatic/cognitive complexity relative to configured thresholds",
		RecommendedAction: "extract smaller functions to reduce branching complexity",
	}
}

func complexitySeverity(cyclomatic int, thresholds engineconfig.ComplexityThresholds) debt.Severity {
	switch {
	case cyclomatic > thresholds.CyclomaticHigh:
		return debt.SeverityCritical
	case cyclomatic >= thresholds.CyclomaticT2:
		return debt.SeverityHigh
	default:
		return debt.SeverityMedium
	}
}

func testingGapCandidate(m debt.FunctionMetrics, cov debt.Coverage, thresholds engineconfig.ComplexityThresholds) *debt.DebtItem {
	if m.Cyclomatic < thresholds.CyclomaticT3 || cov.Transitive >= testingGapCoverageCeiling {
		return nil
	}

	severity := debt.SeverityMedium
	if cov.Direct == 0 && m.Cyclomatic > thresholds.CyclomaticT2 {
		severity = debt.SeverityHigh
	}

	return &debt.DebtItem{
		Location: debt.Location{FilePath: m.Id.FilePath, Function: m.Id.QualifiedName, StartLine: m.Id.StartLine, EndLine: m.Id.StartLine + m.LengthLines},
		Category: debt.CategoryTesting,
		Kind: debt.DebtKind{
			Tag:        debt.KindTestingGap,
			TestingGap: &debt.TestingGapEvidence{Direct: cov.Direct, Transitive: cov.Transitive},
		},
		Severity:          severity,
		Evidence:          debt.Evidence{"direct_coverage": cov.Direct, "transitive_coverage": cov.Transitive, "cyclomatic": float64(m.Cyclomatic)},
		Rationale:         "complex function with insufficient transitive test coverage",
		RecommendedAction: "add direct unit tests covering this function's branches",
	}
}

func attachPurityEvidence(item *debt.DebtItem, p debt.Purity) {
	if p.Label == debt.Pure {
		item.Evidence["purity_confidence"] = p.Confidence
	}
}

func attachRoleEvidence(item *debt.DebtItem, r debt.RoleClassification) {
	item.Evidence["role"] = float64(r.Role)
	item.Evidence["delegation_ratio"] = r.DelegationRatio
}

// Package scorer implements per-factor normalization, role-adjusted
// base scoring, tiering, and final tie-breaking.
package scorer

import (
	"math"
	"sort"

	"github.com/debtmap-go/debtmap/internal/engineconfig"
	"github.com/debtmap-go/debtmap/pkg/debt"
)

// FunctionContext carries the per-function signals the scorer needs beyond what
// a DebtItem's own Evidence already holds: role, purity, coverage,
// upstream/downstream call-graph fan, and entropy's dampening factor.
type FunctionContext struct {
	Cyclomatic              int
	Cognitive               int
	EffectiveComplexityFactor float64
	DirectCoverage          float64
	TransitiveCoverage      float64
	UpstreamCallers         int
	DownstreamCallees       int
	Role                    debt.RoleClassification
	IsGodObjectFile         bool
	IsHighConfidenceBoilerplate bool
}

// Score computes a DebtItem's final score and tier in place, given its
// function context (zero-value context is fine for file-level items that
// carry no function context, e.g. god object/boilerplate).
func Score(item *debt.DebtItem, ctx FunctionContext, cfg *engineconfig.AnalysisConfig) {
	complexityFactor := normalizeComplexity(ctx, cfg)
	coverageFactor := normalizeCoverage(ctx)
	dependencyFactor := normalizeDependency(ctx)
	sizeFactor := 0.0
	if item.Kind.GodObject != nil {
		sizeFactor = float64(item.Kind.GodObject.Lines) / 1000.0
	}

	w := cfg.ScoringWeights
	base := w.Complexity*complexityFactor + w.Coverage*coverageFactor + w.Structural*dependencyFactor + w.Size*sizeFactor
	if item.Category == debt.CategorySmell {
		base += w.Smell
	}

	item.Tier = assignTier(item, ctx, cfg.ComplexityThresholds)
	tierWeight := tierWeight(item.Tier, cfg.TierWeights)

	item.Score = base * tierWeight
}

// normalizeComplexity implements the blended cyclomatic/cognitive
// factor, dampened by the entropy cache's entropy factor, then the
// three-stage curve mapping complexity onto [0,10].
func normalizeComplexity(ctx FunctionContext, cfg *engineconfig.AnalysisConfig) float64 {
	blended := 0.3*float64(ctx.Cyclomatic) + 0.7*float64(ctx.Cognitive)
	factor := ctx.EffectiveComplexityFactor
	if factor == 0 {
		factor = 1.0
	}
	blended *= factor

	normalized := threeStageCurve(blended)
	return applyRoleAdjustment(normalized, ctx)
}

// threeStageCurve is continuous and non-decreasing across its two
// breakpoints: linear on [0,10], square-root on (10,100],
// logarithmic above 100.
func threeStageCurve(x float64) float64 {
	switch {
	case x <= 10:
		return x
	case x <= 100:
		// sqrt branch anchored so f(10) matches the linear branch: 10.
		return 10 + (math.Sqrt(x) - math.Sqrt(10))*(10/(math.Sqrt(100)-math.Sqrt(10)))
	default:
		atHundred := 10 + (math.Sqrt(100)-math.Sqrt(10))*(10/(math.Sqrt(100)-math.Sqrt(10)))
		return atHundred + math.Log(x/100)
	}
}

const orchestratorConfidenceFloor = 0.7

// applyRoleAdjustment applies its role-based multipliers to the
// complexity contribution, capped so no adjustment reduces it by more
// than 30%.
func applyRoleAdjustment(complexity float64, ctx FunctionContext) float64 {
	switch ctx.Role.Role {
	case debt.RoleOrchestrator:
		if ctx.Role.Confidence >= orchestratorConfidenceFloor {
			reduction := ctx.Role.Confidence * 0.30
			if reduction > 0.30 {
				reduction = 0.30
			}
			return complexity * (1 - reduction)
		}
	case debt.RoleWorker:
		if ctx.Role.IsPure {
			return complexity * 0.9
		}
	case debt.RoleEntryPoint:
		if ctx.Role.DownstreamDepth > 3 {
			return complexity * 0.85
		}
	}
	return complexity
}

// normalizeCoverage is 1 - transitive_coverage, with an additive bonus
// when direct coverage is near zero and complexity is nontrivial.
func normalizeCoverage(ctx FunctionContext) float64 {
	factor := 1 - ctx.TransitiveCoverage
	if ctx.DirectCoverage < 0.2 && ctx.Cyclomatic > 10 {
		factor += 2
	}
	return factor
}

func normalizeDependency(ctx FunctionContext) float64 {
	return math.Log2(1+float64(ctx.UpstreamCallers)) + math.Log2(1+float64(ctx.DownstreamCallees))
}

func assignTier(item *debt.DebtItem, ctx FunctionContext, thresholds engineconfig.ComplexityThresholds) debt.Tier {
	if ctx.IsGodObjectFile || ctx.IsHighConfidenceBoilerplate || ctx.Cyclomatic > thresholds.CyclomaticHigh {
		return debt.T1
	}
	if (ctx.Cyclomatic >= thresholds.CyclomaticT2 && ctx.TransitiveCoverage < 0.10) ||
		(ctx.UpstreamCallers >= 10 && ctx.TransitiveCoverage < 0.10) {
		return debt.T2
	}
	if ctx.Cyclomatic >= thresholds.CyclomaticT3 && ctx.Cyclomatic < thresholds.CyclomaticT2 && ctx.TransitiveCoverage < 0.80 {
		return debt.T3
	}
	return debt.T4
}

func tierWeight(t debt.Tier, w engineconfig.TierWeights) float64 {
	switch t {
	case debt.T1:
		return w.T1
	case debt.T2:
		return w.T2
	case debt.T3:
		return w.T3
	default:
		return w.T4
	}
}

// Rank sorts items for final output: descending score, then the
// tie-break chain (severity desc, evidence-field count desc, file path
// then start line ascending).
func Rank(items []*debt.DebtItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if len(a.Evidence) != len(b.Evidence) {
			return len(a.Evidence) > len(b.Evidence)
		}
		if a.Location.FilePath != b.Location.FilePath {
			return a.Location.FilePath < b.Location.FilePath
		}
		return a.Location.StartLine < b.Location.StartLine
	})
}

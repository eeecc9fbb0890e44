package pattern

import (
	"github.com/hbollon/go-edlib"

	"github.com/debtmap-go/debtmap/internal/engineconfig"
	"github.com/debtmap-go/debtmap/pkg/debt"
)

const (
	weightImplCount        = 0.30
	weightMethodUniformity = 0.25
	weightLowComplexity    = 0.20
	weightStructDensity    = 0.15
	weightLowVariance      = 0.10

	signatureSimilarityThreshold = 0.95
	uniformityShareThreshold     = 0.70
)

// DetectBoilerplate groups a file's trait implementations by trait name
// and scores each group against the weighted signal set. The
// highest-scoring group at or above the configured confidence floor wins
// and its recommendation overrides any god-object finding for the file.
func DetectBoilerplate(file FileUnit, cfg engineconfig.BoilerplateDetectionConfig) *debt.DebtItem {
	if !cfg.Enabled {
		return nil
	}

	groups := groupByTrait(file.TraitImpls)
	var best *debt.DebtItem
	var bestScore float64
	for trait, impls := range groups {
		item, score := detectBoilerplateGroup(file, trait, impls, cfg)
		if item != nil && score > bestScore {
			best, bestScore = item, score
		}
	}
	return best
}

func groupByTrait(impls []TraitImplInfo) map[string][]TraitImplInfo {
	out := make(map[string][]TraitImplInfo)
	for _, impl := range impls {
		out[impl.TraitName] = append(out[impl.TraitName], impl)
	}
	return out
}

func detectBoilerplateGroup(file FileUnit, trait string, impls []TraitImplInfo, cfg engineconfig.BoilerplateDetectionConfig) (*debt.DebtItem, float64) {
	implCount := len(impls)
	if implCount < 2 {
		return nil, 0
	}

	uniformity := methodUniformity(impls)
	avgComplexity, variance := complexityStats(impls)
	density := structDensity(implCount, file.Lines)

	implSignal := clamp01(float64(implCount) / 50.0)
	lowComplexitySignal := clamp01(1.0 - avgComplexity/10.0)
	lowVarianceSignal := clamp01(1.0 - variance/10.0)

	score := implSignal*weightImplCount +
		uniformity*weightMethodUniformity +
		lowComplexitySignal*weightLowComplexity +
		density*weightStructDensity +
		lowVarianceSignal*weightLowVariance

	if score < cfg.MinConfidence {
		return nil, score
	}

	evidence := debt.Evidence{
		"impl_count":          float64(implCount),
		"method_uniformity":   uniformity,
		"avg_complexity":       avgComplexity,
		"struct_density":       density,
		"complexity_variance":  variance,
		"score":                score,
	}

	item := &debt.DebtItem{
		Location: debt.Location{FilePath: file.Path, Function: trait, StartLine: 1, EndLine: file.Lines},
		Category: debt.CategoryArchitecture,
		Kind: debt.DebtKind{
			Tag: debt.KindBoilerplate,
			Boilerplate: &debt.BoilerplateEvidence{
				ImplCount: implCount, MethodUniformity: uniformity, AvgComplexity: avgComplexity,
				StructDensity: density, ComplexityVariance: variance, Score: score,
			},
		},
		Severity:          debt.SeverityLow,
		Evidence:          evidence,
		Rationale:         "file has a repetitive set of " + trait + " implementations",
		RecommendedAction: "macro-ify or data-driven consolidation",
		Score:             score * 100,
	}
	return item, score
}

// methodUniformity is the fraction of distinct method names across impls
// whose signature is shared (exact or near-identical by JaroWinkler) by
// at least uniformityShareThreshold of the implementations.
func methodUniformity(impls []TraitImplInfo) float64 {
	byMethod := make(map[string][]string)
	for _, impl := range impls {
		for _, m := range impl.Methods {
			byMethod[m.Name] = append(byMethod[m.Name], m.Signature)
		}
	}
	if len(byMethod) == 0 {
		return 0
	}

	uniform := 0
	for _, sigs := range byMethod {
		if signatureShare(sigs) >= uniformityShareThreshold {
			uniform++
		}
	}
	return float64(uniform) / float64(len(byMethod))
}

func signatureShare(sigs []string) float64 {
	if len(sigs) == 0 {
		return 0
	}
	best := 0
	for i, ref := range sigs {
		matches := 0
		for j, other := range sigs {
			if i == j {
				matches++
				continue
			}
			if ref == other {
				matches++
				continue
			}
			sim, err := edlib.StringsSimilarity(ref, other, edlib.JaroWinkler)
			if err == nil && float64(sim) >= signatureSimilarityThreshold {
				matches++
			}
		}
		if matches > best {
			best = matches
		}
	}
	return float64(best) / float64(len(sigs))
}

func complexityStats(impls []TraitImplInfo) (avg, variance float64) {
	var values []float64
	for _, impl := range impls {
		for _, m := range impl.Methods {
			values = append(values, float64(m.Cyclomatic))
		}
	}
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	avg = sum / float64(len(values))

	var sqDiff float64
	for _, v := range values {
		d := v - avg
		sqDiff += d * d
	}
	variance = sqDiff / float64(len(values))
	return avg, variance
}

func structDensity(implCount, lines int) float64 {
	if lines <= 0 {
		return 0
	}
	return clamp01(float64(implCount) / float64(lines) * 50.0)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

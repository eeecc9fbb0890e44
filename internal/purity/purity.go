// Package purity implements intrinsic side-effect detection plus
// fixed-point propagation of purity over the call graph's condensation.
package purity

import (
	"sort"

	"github.com/debtmap-go/debtmap/pkg/debt"
)

const (
	sccDepthDecay       = 0.9
	recursionPenalty    = 0.3
	sccConfidenceFactor = 0.7
	unresolvedCapHigh   = 0.6
)

// Analyze runs both phases of purity analysis and returns a Purity
// verdict per FunctionId. metrics supplies intrinsic side-effect data;
// g supplies the resolved call graph.
func Analyze(metrics []debt.FunctionMetrics, g *debt.CallGraph) map[debt.FunctionId]debt.Purity {
	byId := make(map[debt.FunctionId]*debt.FunctionMetrics, len(metrics))
	for i := range metrics {
		byId[metrics[i].Id] = &metrics[i]
	}

	result := make(map[debt.FunctionId]debt.Purity, len(metrics))

	// Phase 1: intrinsic.
	for _, m := range metrics {
		result[m.Id] = intrinsicPurity(m)
	}

	// Phase 2: propagate over the condensation in reverse topological
	// order (SCCs() already returns that order).
	sccs := g.SCCs()
	for _, scc := range sccs {
		propagateSCC(scc, g, byId, result)
	}

	return result
}

func intrinsicPurity(m debt.FunctionMetrics) debt.Purity {
	if len(m.IntrinsicSideEffects) > 0 {
		kind := worstEffect(m.IntrinsicSideEffects)
		return debt.Purity{
			Label:      debt.Impure,
			Confidence: 1.0,
			Reason:     debt.ReasonSideEffects,
			EffectKind: kind,
		}
	}
	if m.LengthLines == 0 {
		return debt.Purity{Label: debt.UnknownPurity, Confidence: 0, Reason: debt.ReasonUnknownDeps}
	}
	// Default optimistic assumption pending propagation; a leaf with no
	// intrinsic effects and a body is tentatively Pure until dependency
	// evidence says otherwise.
	return debt.Purity{Label: debt.Pure, Confidence: 1.0, Reason: debt.ReasonIntrinsic}
}

// worstEffect picks a deterministic representative effect kind when a
// function has more than one, by enum ordinal.
func worstEffect(effects map[debt.EffectKind]bool) debt.EffectKind {
	var kinds []debt.EffectKind
	for k := range effects {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds[0]
}

func propagateSCC(scc []debt.NodeHandle, g *debt.CallGraph, byId map[debt.FunctionId]*debt.FunctionMetrics, result map[debt.FunctionId]debt.Purity) {
	if len(scc) == 1 && !g.IsSelfRecursive(scc[0]) {
		propagateSingleton(scc[0], g, result)
		return
	}
	if len(scc) == 1 {
		propagateSelfRecursive(scc[0], g, result)
		return
	}
	propagateMultiSCC(scc, g, result)
}

type calleeOutcome struct {
	allPure      bool
	minConf      float64
	maxDepth     int
	worstImpure  *debt.Purity
	hasUnresolved bool
	allResolvedPure bool
}

func scanCallees(h debt.NodeHandle, g *debt.CallGraph, result map[debt.FunctionId]debt.Purity, excludeSelf bool) calleeOutcome {
	out := calleeOutcome{allPure: true, minConf: 1.0, allResolvedPure: true}
	callees := g.Callees(h)
	for _, c := range callees {
		if excludeSelf && c == h {
			continue
		}
		if c == g.Sink() {
			out.hasUnresolved = true
			continue
		}
		cid := g.FunctionId(c)
		cp, ok := result[cid]
		if !ok {
			out.hasUnresolved = true
			continue
		}
		switch cp.Label {
		case debt.Impure:
			out.allPure = false
			out.allResolvedPure = false
			if out.worstImpure == nil {
				wc := cp
				out.worstImpure = &wc
			}
		case debt.UnknownPurity:
			out.hasUnresolved = true
			out.allResolvedPure = false
		case debt.Pure:
			if cp.Confidence < out.minConf {
				out.minConf = cp.Confidence
			}
			depth := cp.Depth + 1
			if depth > out.maxDepth {
				out.maxDepth = depth
			}
		}
	}
	return out
}

func propagateSingleton(h debt.NodeHandle, g *debt.CallGraph, result map[debt.FunctionId]debt.Purity) {
	id := g.FunctionId(h)
	current := result[id]
	if current.Label == debt.Impure {
		return // intrinsic impurity is final, confidence 1.0
	}
	if current.Label == debt.UnknownPurity {
		return // an empty body stays Unknown
	}

	out := scanCallees(h, g, result, false)

	if out.worstImpure != nil {
		result[id] = debt.Purity{
			Label:      debt.Impure,
			Confidence: current.Confidence,
			Reason:     debt.ReasonPropagatedFromDeps,
			EffectKind: out.worstImpure.EffectKind,
			Depth:      out.maxDepth,
		}
		return
	}

	if out.hasUnresolved {
		conf := unresolvedCapHigh
		if !out.allResolvedPure {
			conf = 0
		}
		result[id] = debt.Purity{Label: debt.UnknownPurity, Confidence: conf, Reason: debt.ReasonUnknownDeps, Depth: out.maxDepth}
		return
	}

	result[id] = debt.Purity{
		Label:      debt.Pure,
		Confidence: out.minConf * sccDepthDecay,
		Reason:     debt.ReasonPropagatedFromDeps,
		Depth:      out.maxDepth + 1,
	}
}

func propagateSelfRecursive(h debt.NodeHandle, g *debt.CallGraph, result map[debt.FunctionId]debt.Purity) {
	id := g.FunctionId(h)
	current := result[id]
	if current.Label == debt.Impure {
		return
	}

	out := scanCallees(h, g, result, true)

	if out.worstImpure != nil {
		result[id] = debt.Purity{
			Label:      debt.Impure,
			Confidence: current.Confidence,
			Reason:     debt.ReasonRecursiveWithSideEffects,
			EffectKind: out.worstImpure.EffectKind,
			Depth:      out.maxDepth,
		}
		return
	}

	if out.hasUnresolved {
		result[id] = debt.Purity{Label: debt.UnknownPurity, Confidence: 0, Reason: debt.ReasonUnknownDeps}
		return
	}

	// Tentatively pure excluding the self edge; recursion penalty applied.
	conf := out.minConf
	if len(g.Callees(h)) <= 1 { // only the self-loop, or truly no callees
		conf = 1.0
	}
	conf -= recursionPenalty
	if conf < 0 {
		conf = 0
	}
	result[id] = debt.Purity{
		Label:      debt.Pure,
		Confidence: conf,
		Reason:     debt.ReasonRecursivePure,
		Depth:      out.maxDepth + 1,
	}
}

func propagateMultiSCC(scc []debt.NodeHandle, g *debt.CallGraph, result map[debt.FunctionId]debt.Purity) {
	member := make(map[debt.NodeHandle]bool, len(scc))
	for _, h := range scc {
		member[h] = true
	}

	anyImpure := false
	var worst *debt.Purity
	for _, h := range scc {
		id := g.FunctionId(h)
		if result[id].Label == debt.Impure {
			anyImpure = true
			wc := result[id]
			worst = &wc
			break
		}
	}

	if anyImpure {
		for _, h := range scc {
			id := g.FunctionId(h)
			if result[id].Label == debt.Impure {
				continue
			}
			result[id] = debt.Purity{
				Label:      debt.Impure,
				Confidence: 1.0,
				Reason:     debt.ReasonRecursiveWithSideEffects,
				EffectKind: worst.EffectKind,
			}
		}
		return
	}

	// All members tentatively pure: compute min confidence across
	// external (non-member) callees only.
	minConf := 1.0
	hasUnresolved := false
	maxDepth := 0
	for _, h := range scc {
		for _, c := range g.Callees(h) {
			if member[c] {
				continue
			}
			if c == g.Sink() {
				hasUnresolved = true
				continue
			}
			cp, ok := result[g.FunctionId(c)]
			if !ok || cp.Label != debt.Pure {
				if ok && cp.Label == debt.Impure {
					anyImpure = true
				} else {
					hasUnresolved = true
				}
				continue
			}
			if cp.Confidence < minConf {
				minConf = cp.Confidence
			}
			if cp.Depth+1 > maxDepth {
				maxDepth = cp.Depth + 1
			}
		}
	}

	if anyImpure {
		for _, h := range scc {
			result[g.FunctionId(h)] = debt.Purity{Label: debt.Impure, Confidence: 1.0, Reason: debt.ReasonRecursiveWithSideEffects}
		}
		return
	}

	conf := minConf * sccConfidenceFactor
	if hasUnresolved && conf > unresolvedCapHigh {
		conf = unresolvedCapHigh
	}
	for _, h := range scc {
		result[g.FunctionId(h)] = debt.Purity{
			Label:      debt.Pure,
			Confidence: conf,
			Reason:     debt.ReasonRecursivePure,
			Depth:      maxDepth,
		}
	}
}

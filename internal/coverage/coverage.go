// Package coverage maps external line coverage into per-function direct
// coverage, then a fixed-point transitive coverage pass over the call
// graph.
package coverage

import (
	"math"
	"sort"

	"github.com/debtmap-go/debtmap/pkg/debt"
)

// LineHits is the external coverage collaborator's resolved map:
// file -> line -> hit count. The core only ever sees this materialized
// map, never a coverage-file format.
type LineHits map[string]map[int]int

const maxTransitivePasses = 32

// DirectCoverage computes the fraction of a function's executable line
// span marked covered, for every function.
// A function with no lines in the map (e.g. no coverage run reached its
// file) gets direct coverage 0.
func DirectCoverage(metrics []debt.FunctionMetrics, hits LineHits) map[debt.FunctionId]float64 {
	out := make(map[debt.FunctionId]float64, len(metrics))
	for _, m := range metrics {
		out[m.Id] = directCoverageOne(m, hits)
	}
	return out
}

func directCoverageOne(m debt.FunctionMetrics, hits LineHits) float64 {
	fileHits, ok := hits[m.Id.FilePath]
	if !ok || m.LengthLines <= 0 {
		return 0
	}
	start := m.Id.StartLine
	end := start + m.LengthLines
	var covered, total int
	for line := start; line < end; line++ {
		if count, tracked := fileHits[line]; tracked {
			total++
			if count > 0 {
				covered++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(covered) / float64(total)
}

// Transitive computes the fixed-point transitive coverage.
// weight(c) is the callee's complexity (heavier callees weigh more);
// callers pass a per-function complexity weight.
func Transitive(g *debt.CallGraph, direct map[debt.FunctionId]float64, weight map[debt.FunctionId]float64) (map[debt.FunctionId]float64, *debt.PropagationDivergence) {
	transitive := make(map[debt.FunctionId]float64, len(direct))
	for id, d := range direct {
		transitive[id] = d
	}

	sccs := g.SCCs()

	for pass := 0; pass < maxTransitivePasses; pass++ {
		changed := false
		for _, scc := range sccs {
			if len(scc) > 1 {
				changed = propagateSCCCoverage(scc, g, direct, weight, transitive) || changed
			} else {
				changed = propagateSingleCoverage(scc[0], g, direct, weight, transitive) || changed
			}
		}
		if !changed {
			return transitive, nil
		}
	}

	return transitive, &debt.PropagationDivergence{Pass: "coverage_transitive", Iterations: maxTransitivePasses}
}

func propagateSingleCoverage(h debt.NodeHandle, g *debt.CallGraph, direct, weight, transitive map[debt.FunctionId]float64) bool {
	id := g.FunctionId(h)
	callees := g.Callees(h)
	if len(callees) == 0 {
		return false
	}

	var weightedSum, weightTotal float64
	for _, c := range callees {
		if c == g.Sink() {
			weightTotal += 1
			continue
		}
		cid := g.FunctionId(c)
		w := weight[cid]
		if w <= 0 {
			w = 1
		}
		weightedSum += w * transitive[cid]
		weightTotal += w
	}
	if weightTotal == 0 {
		return false
	}
	avg := weightedSum / weightTotal
	next := math.Max(direct[id], avg)
	if next != transitive[id] {
		transitive[id] = next
		return true
	}
	return false
}

func propagateSCCCoverage(scc []debt.NodeHandle, g *debt.CallGraph, direct, weight, transitive map[debt.FunctionId]float64) bool {
	member := make(map[debt.NodeHandle]bool, len(scc))
	maxDirect := 0.0
	for _, h := range scc {
		member[h] = true
		id := g.FunctionId(h)
		if direct[id] > maxDirect {
			maxDirect = direct[id]
		}
	}

	var weightedSum, weightTotal float64
	for _, h := range scc {
		for _, c := range g.Callees(h) {
			if member[c] {
				continue
			}
			if c == g.Sink() {
				weightTotal += 1
				continue
			}
			cid := g.FunctionId(c)
			w := weight[cid]
			if w <= 0 {
				w = 1
			}
			weightedSum += w * transitive[cid]
			weightTotal += w
		}
	}

	avg := maxDirect
	if weightTotal > 0 {
		candidate := weightedSum / weightTotal
		if candidate > avg {
			avg = candidate
		}
	}

	changed := false
	for _, h := range scc {
		id := g.FunctionId(h)
		next := math.Max(maxDirect, avg)
		if next != transitive[id] {
			transitive[id] = next
			changed = true
		}
	}
	return changed
}

// SortedFunctionIds is a small determinism helper used by callers that
// need to iterate the coverage maps in stable order.
func SortedFunctionIds(m map[debt.FunctionId]float64) []debt.FunctionId {
	out := make([]debt.FunctionId, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

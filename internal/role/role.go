// Package role implements delegation-ratio and call-depth based role
// classification.
package role

import (
	"github.com/debtmap-go/debtmap/pkg/debt"
)

const maxDownstreamDepth = 10

// Config carries the caller-tunable thresholds from AnalysisConfig's
// role_classification section.
type Config struct {
	MinDelegationRatio float64
	MaxLocalComplexity int
	MinCoordinatedFuncs int
}

// DefaultConfig returns the documented default thresholds.
func DefaultConfig() Config {
	return Config{MinDelegationRatio: 0.65, MaxLocalComplexity: 5, MinCoordinatedFuncs: 3}
}

// Classify assigns a RoleClassification to every function, given its
// metrics, the call graph, purity verdicts, and entry-point membership.
func Classify(metrics []debt.FunctionMetrics, g *debt.CallGraph, purity map[debt.FunctionId]debt.Purity, entryPoints map[debt.FunctionId]bool, testCallers map[debt.FunctionId]bool, cfg Config) map[debt.FunctionId]debt.RoleClassification {
	out := make(map[debt.FunctionId]debt.RoleClassification, len(metrics))

	for _, m := range metrics {
		h, ok := g.Lookup(m.Id)
		if !ok {
			out[m.Id] = debt.RoleClassification{Role: debt.RoleUtility, Confidence: 0.5}
			continue
		}

		callees := distinctNonSink(g, h)
		calleeCount := len(callees)
		cyclomatic := m.Cyclomatic
		if cyclomatic < 1 {
			cyclomatic = 1
		}
		delegationRatio := float64(calleeCount) / float64(cyclomatic)
		localComplexity := m.Cyclomatic - calleeCount
		if localComplexity < 0 {
			localComplexity = 0
		}

		if noCallersOrOnlyTests(g, h, testCallers) {
			depth := downstreamDepth(g, h, maxDownstreamDepth)
			out[m.Id] = debt.RoleClassification{Role: debt.RoleEntryPoint, Confidence: 0.9, DelegationRatio: delegationRatio, LocalComplexity: localComplexity, DownstreamDepth: depth}
			continue
		}

		if delegationRatio >= cfg.MinDelegationRatio && localComplexity <= cfg.MaxLocalComplexity && calleeCount >= cfg.MinCoordinatedFuncs {
			conf := orchestratorConfidence(delegationRatio, localComplexity, callees, purity, g)
			out[m.Id] = debt.RoleClassification{Role: debt.RoleOrchestrator, Confidence: conf, DelegationRatio: delegationRatio, LocalComplexity: localComplexity}
			continue
		}

		if localComplexity >= cfg.MaxLocalComplexity || calleeCount <= 2 {
			isPure := false
			if p, ok := purity[m.Id]; ok {
				isPure = p.Label == debt.Pure
			}
			out[m.Id] = debt.RoleClassification{Role: debt.RoleWorker, Confidence: 0.8, DelegationRatio: delegationRatio, LocalComplexity: localComplexity, IsPure: isPure}
			continue
		}

		out[m.Id] = debt.RoleClassification{Role: debt.RoleUtility, Confidence: 0.6, DelegationRatio: delegationRatio, LocalComplexity: localComplexity}
	}

	return out
}

func distinctNonSink(g *debt.CallGraph, h debt.NodeHandle) []debt.NodeHandle {
	var out []debt.NodeHandle
	for _, c := range g.Callees(h) {
		if c != g.Sink() {
			out = append(out, c)
		}
	}
	return out
}

func noCallersOrOnlyTests(g *debt.CallGraph, h debt.NodeHandle, testCallers map[debt.FunctionId]bool) bool {
	callers := g.Callers(h)
	if len(callers) == 0 {
		return true
	}
	for _, c := range callers {
		if !testCallers[g.FunctionId(c)] {
			return false
		}
	}
	return true
}

// orchestratorConfidence additively composes four factors,
// capped at 1.0.
func orchestratorConfidence(delegationRatio float64, localComplexity int, callees []debt.NodeHandle, purity map[debt.FunctionId]debt.Purity, g *debt.CallGraph) float64 {
	var conf float64

	delegationScore := delegationRatio * 0.4
	if delegationScore > 0.4 {
		delegationScore = 0.4
	}
	conf += delegationScore

	if localComplexity <= 3 {
		conf += 0.3
	} else {
		conf += 0.1
	}

	pureCredit := 0.0
	for _, c := range callees {
		if p, ok := purity[g.FunctionId(c)]; ok && p.Label == debt.Pure {
			pureCredit += 0.05
		}
	}
	if pureCredit > 0.2 {
		pureCredit = 0.2
	}
	conf += pureCredit

	avgDepth := avgCalleeDepth(callees, g)
	if avgDepth <= 2 {
		conf += 0.1
	}

	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}

func avgCalleeDepth(callees []debt.NodeHandle, g *debt.CallGraph) float64 {
	if len(callees) == 0 {
		return 0
	}
	var total int
	for _, c := range callees {
		total += downstreamDepth(g, c, maxDownstreamDepth)
	}
	return float64(total) / float64(len(callees))
}

// downstreamDepth computes the maximum call-tree depth below h, bounded
// at bound, guarding against cycles
// with a visited set.
func downstreamDepth(g *debt.CallGraph, h debt.NodeHandle, bound int) int {
	visited := map[debt.NodeHandle]bool{h: true}
	return downstreamDepthRec(g, h, bound, visited)
}

func downstreamDepthRec(g *debt.CallGraph, h debt.NodeHandle, remaining int, visited map[debt.NodeHandle]bool) int {
	if remaining <= 0 {
		return 0
	}
	best := 0
	for _, c := range g.Callees(h) {
		if c == g.Sink() || visited[c] {
			continue
		}
		visited[c] = true
		d := 1 + downstreamDepthRec(g, c, remaining-1, visited)
		if d > best {
			best = d
		}
		delete(visited, c)
	}
	return best
}

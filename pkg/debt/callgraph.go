package debt

import "sort"

// NodeHandle is a dense integer handle for a FunctionId, used so the call
// graph can be stored as an arena rather than a web of pointers:
// edges hold only handles, never back-references, so no ownership cycle
// can form between node records.
type NodeHandle uint32

// Edge is one (caller, callee, dispatch-kind) triple. The graph is a
// multigraph: duplicate (From, To) pairs with different Kind, or the same
// Kind from multiple DynTrait candidates, are all retained.
type Edge struct {
	From NodeHandle
	To   NodeHandle
	Kind DispatchKind
}

// CallGraph is a directed multigraph of function nodes built once after
// all extraction output is assembled. It is mutated only by
// the trait-resolution pass (which may rewrite DynTrait edges into one or
// more Static edges) and is immutable thereafter.
type CallGraph struct {
	ids      []FunctionId // index by NodeHandle
	index    map[FunctionId]NodeHandle
	out      [][]Edge // out[h] = edges leaving node h
	in       [][]Edge // in[h] = edges entering node h
	sink     NodeHandle
	hasSink  bool
}

// NewCallGraph creates an empty graph with a synthetic sink node used for
// UnresolvedExternal edges.
func NewCallGraph() *CallGraph {
	g := &CallGraph{index: make(map[FunctionId]NodeHandle)}
	g.sink = g.internSink()
	g.hasSink = true
	return g
}

func (g *CallGraph) internSink() NodeHandle {
	sinkId := FunctionId{FilePath: "", QualifiedName: "<external-sink>", StartLine: -1}
	return g.Intern(sinkId)
}

// Sink returns the synthetic node every UnresolvedExternal edge targets.
func (g *CallGraph) Sink() NodeHandle { return g.sink }

// Intern returns the handle for id, creating a new node if it hasn't been
// seen before. Invariant (2): no duplicate nodes for the same FunctionId —
// a second Intern call with the same id returns the original handle.
func (g *CallGraph) Intern(id FunctionId) NodeHandle {
	if h, ok := g.index[id]; ok {
		return h
	}
	h := NodeHandle(len(g.ids))
	g.ids = append(g.ids, id)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	g.index[id] = h
	return h
}

// Lookup returns the handle for id without creating a node.
func (g *CallGraph) Lookup(id FunctionId) (NodeHandle, bool) {
	h, ok := g.index[id]
	return h, ok
}

// FunctionId returns the identity of node h.
func (g *CallGraph) FunctionId(h NodeHandle) FunctionId { return g.ids[h] }

// NodeCount returns the number of nodes, including the synthetic sink.
func (g *CallGraph) NodeCount() int { return len(g.ids) }

// Nodes returns all node handles in stable (intern) order.
func (g *CallGraph) Nodes() []NodeHandle {
	out := make([]NodeHandle, len(g.ids))
	for i := range g.ids {
		out[i] = NodeHandle(i)
	}
	return out
}

// AddEdge adds a directed edge. Self-loops are allowed.
func (g *CallGraph) AddEdge(from, to NodeHandle, kind DispatchKind) {
	e := Edge{From: from, To: to, Kind: kind}
	g.out[from] = append(g.out[from], e)
	g.in[to] = append(g.in[to], e)
}

// ReplaceDynTraitEdges removes all outgoing DynTrait edges from `from`
// matching the given trait/method set and installs Static edges to each
// concrete candidate in `candidates`. Used by the trait-resolution pass,
// the one phase permitted to mutate the graph after construction.
func (g *CallGraph) ReplaceDynTraitEdges(from NodeHandle, candidates []NodeHandle) {
	kept := g.out[from][:0:0]
	for _, e := range g.out[from] {
		if e.Kind != DispatchDynTrait {
			kept = append(kept, e)
		} else {
			// drop the reverse-index entry for this edge
			g.removeInEdge(e)
		}
	}
	g.out[from] = kept
	for _, c := range candidates {
		g.AddEdge(from, c, DispatchStatic)
	}
}

func (g *CallGraph) removeInEdge(e Edge) {
	kept := g.in[e.To][:0:0]
	for _, in := range g.in[e.To] {
		if in != e {
			kept = append(kept, in)
		}
	}
	g.in[e.To] = kept
}

// OutEdges returns the edges leaving h.
func (g *CallGraph) OutEdges(h NodeHandle) []Edge { return g.out[h] }

// InEdges returns the edges entering h.
func (g *CallGraph) InEdges(h NodeHandle) []Edge { return g.in[h] }

// InDegree excluding synthetic observer-dispatch edges is computed by the
// caller (the pattern detector needs this distinction); InDegree here is the raw count.
func (g *CallGraph) InDegree(h NodeHandle) int { return len(g.in[h]) }

// OutDegree returns raw fan-out.
func (g *CallGraph) OutDegree(h NodeHandle) int { return len(g.out[h]) }

// Callees returns the distinct set of handles reachable by a single
// outgoing edge from h, sorted by FunctionId for determinism.
func (g *CallGraph) Callees(h NodeHandle) []NodeHandle {
	seen := make(map[NodeHandle]bool)
	var out []NodeHandle
	for _, e := range g.out[h] {
		if !seen[e.To] {
			seen[e.To] = true
			out = append(out, e.To)
		}
	}
	g.sortByFunctionId(out)
	return out
}

// Callers returns the distinct set of handles with an edge into h, sorted
// by FunctionId for determinism.
func (g *CallGraph) Callers(h NodeHandle) []NodeHandle {
	seen := make(map[NodeHandle]bool)
	var out []NodeHandle
	for _, e := range g.in[h] {
		if !seen[e.From] {
			seen[e.From] = true
			out = append(out, e.From)
		}
	}
	g.sortByFunctionId(out)
	return out
}

func (g *CallGraph) sortByFunctionId(hs []NodeHandle) {
	sort.Slice(hs, func(i, j int) bool {
		return g.ids[hs[i]].Less(g.ids[hs[j]])
	})
}

// ValidationReport is the call-graph builder's health-check output, consumed by the suppressor.
type ValidationReport struct {
	DanglingEdges   int
	DuplicateNodes  int
	OrphanNodes     int // no callers
	IsolatedNodes   int // no callers and no callees
	HighFanInNodes  int // fan-in > 50
	HighFanOutNodes int // fan-out > 50
	HealthScore     float64
}

const (
	fanThreshold          = 50
	healthDanglingPenalty = 10.0
	healthDuplicatePenalty = 5.0
	healthUnreachablePenalty = 1.0
	healthIsolatedPenalty = 0.5
	healthWarningPenalty  = 2.0
)

// Validate computes the structural health report. "Dangling" edges
// are those whose target is the synthetic sink (unresolved externals).
// "Orphans" are non-entry nodes with zero in-degree; reachability from
// the supplied entry points further distinguishes unreachable nodes,
// which are penalized as warnings.
func (g *CallGraph) Validate(entryPoints map[NodeHandle]bool) ValidationReport {
	var report ValidationReport

	reachable := g.reachableFrom(entryPoints)

	for h := range g.ids {
		handle := NodeHandle(h)
		if handle == g.sink {
			continue
		}
		inDeg := len(g.in[handle])
		outDeg := len(g.out[handle])

		for _, e := range g.out[handle] {
			if e.To == g.sink {
				report.DanglingEdges++
			}
		}
		if inDeg == 0 && !entryPoints[handle] {
			report.OrphanNodes++
		}
		if inDeg == 0 && outDeg == 0 {
			report.IsolatedNodes++
		}
		if inDeg > fanThreshold {
			report.HighFanInNodes++
		}
		if outDeg > fanThreshold {
			report.HighFanOutNodes++
		}
	}

	unreachableWarnings := 0
	for h := range g.ids {
		handle := NodeHandle(h)
		if handle == g.sink {
			continue
		}
		if !reachable[handle] {
			unreachableWarnings++
		}
	}

	score := 100.0
	score -= float64(report.DanglingEdges) * healthDanglingPenalty
	score -= float64(report.DuplicateNodes) * healthDuplicatePenalty
	score -= float64(unreachableWarnings) * healthUnreachablePenalty
	score -= float64(report.IsolatedNodes) * healthIsolatedPenalty
	score -= float64(report.HighFanInNodes+report.HighFanOutNodes) * healthWarningPenalty
	if score < 0 {
		score = 0
	}
	report.HealthScore = score
	return report
}

func (g *CallGraph) reachableFrom(entryPoints map[NodeHandle]bool) map[NodeHandle]bool {
	visited := make(map[NodeHandle]bool)
	var stack []NodeHandle
	for h := range entryPoints {
		stack = append(stack, h)
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n] {
			continue
		}
		visited[n] = true
		for _, e := range g.out[n] {
			if !visited[e.To] {
				stack = append(stack, e.To)
			}
		}
	}
	return visited
}

// SCCs returns the graph's strongly connected components via Tarjan's
// algorithm, ordered so that a component never appears before any
// component it depends on has appeared — i.e. reverse topological order
// of the condensation, the iteration order both propagation passes require for
// their fixed-point passes. The synthetic sink is excluded.
func (g *CallGraph) SCCs() [][]NodeHandle {
	t := &tarjan{
		g:       g,
		index:   make(map[NodeHandle]int),
		lowlink: make(map[NodeHandle]int),
		onStack: make(map[NodeHandle]bool),
	}
	for h := range g.ids {
		handle := NodeHandle(h)
		if handle == g.sink {
			continue
		}
		if _, seen := t.index[handle]; !seen {
			t.strongconnect(handle)
		}
	}
	// Tarjan emits SCCs in reverse topological order relative to edge
	// direction already (a component is finished only after all its
	// successors), so t.result is already in the order the purity and coverage stages need.
	for _, scc := range t.result {
		sort.Slice(scc, func(i, j int) bool { return g.ids[scc[i]].Less(g.ids[scc[j]]) })
	}
	return t.result
}

type tarjan struct {
	g       *CallGraph
	index   map[NodeHandle]int
	lowlink map[NodeHandle]int
	onStack map[NodeHandle]bool
	stack   []NodeHandle
	counter int
	result  [][]NodeHandle
}

func (t *tarjan) strongconnect(v NodeHandle) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, e := range t.g.out[v] {
		w := e.To
		if w == t.g.sink {
			continue
		}
		if _, seen := t.index[w]; !seen {
			t.strongconnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var scc []NodeHandle
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		t.result = append(t.result, scc)
	}
}

// IsSelfRecursive reports whether h has a direct self-loop edge.
func (g *CallGraph) IsSelfRecursive(h NodeHandle) bool {
	for _, e := range g.out[h] {
		if e.To == h {
			return true
		}
	}
	return false
}

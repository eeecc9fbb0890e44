package debt

import "testing"

func fid(name string) FunctionId {
	return FunctionId{FilePath: "f.go", QualifiedName: name, StartLine: 1}
}

func TestInternReturnsSameHandleForRepeatedId(t *testing.T) {
	g := NewCallGraph()
	id := fid("a")

	h1 := g.Intern(id)
	h2 := g.Intern(id)
	if h1 != h2 {
		t.Errorf("Intern returned different handles for the same id: %v != %v", h1, h2)
	}
}

func TestNewCallGraphHasSyntheticSink(t *testing.T) {
	g := NewCallGraph()
	if !g.hasSink {
		t.Error("expected hasSink to be true")
	}
	if g.Sink() != g.sink {
		t.Error("Sink() should return the stored sink handle")
	}
	if g.NodeCount() != 1 {
		t.Errorf("expected a fresh graph to contain only the sink node, got %d nodes", g.NodeCount())
	}
}

func TestLookupMissingReturnsFalse(t *testing.T) {
	g := NewCallGraph()
	if _, ok := g.Lookup(fid("missing")); ok {
		t.Error("Lookup should report false for an id never interned")
	}
}

func TestAddEdgeAndDegrees(t *testing.T) {
	g := NewCallGraph()
	a := g.Intern(fid("a"))
	b := g.Intern(fid("b"))

	g.AddEdge(a, b, DispatchStatic)

	if g.OutDegree(a) != 1 || g.InDegree(b) != 1 {
		t.Errorf("expected out-degree(a)=1, in-degree(b)=1, got %d, %d", g.OutDegree(a), g.InDegree(b))
	}
	if g.OutDegree(b) != 0 || g.InDegree(a) != 0 {
		t.Errorf("expected no reverse edges, got out(b)=%d in(a)=%d", g.OutDegree(b), g.InDegree(a))
	}
}

func TestSelfLoopAllowed(t *testing.T) {
	g := NewCallGraph()
	a := g.Intern(fid("a"))
	g.AddEdge(a, a, DispatchStatic)

	if !g.IsSelfRecursive(a) {
		t.Error("expected a to be reported as self-recursive after a self-loop edge")
	}
}

func TestCalleesAndCallersDeduplicateAndSort(t *testing.T) {
	g := NewCallGraph()
	a := g.Intern(fid("a"))
	b := g.Intern(fid("b"))
	c := g.Intern(fid("c"))

	g.AddEdge(a, c, DispatchStatic)
	g.AddEdge(a, b, DispatchStatic)
	g.AddEdge(a, b, DispatchDynTrait) // duplicate target, different kind

	callees := g.Callees(a)
	if len(callees) != 2 {
		t.Fatalf("expected 2 distinct callees, got %d", len(callees))
	}
	if callees[0] != b || callees[1] != c {
		t.Errorf("expected callees sorted by FunctionId (b before c), got %v", callees)
	}

	callers := g.Callers(b)
	if len(callers) != 1 || callers[0] != a {
		t.Errorf("expected b's sole caller to be a, got %v", callers)
	}
}

func TestReplaceDynTraitEdgesRewritesToStatic(t *testing.T) {
	g := NewCallGraph()
	dispatcher := g.Intern(fid("dispatcher"))
	impl1 := g.Intern(fid("impl1"))
	impl2 := g.Intern(fid("impl2"))
	other := g.Intern(fid("other"))

	g.AddEdge(dispatcher, impl1, DispatchDynTrait)
	g.AddEdge(dispatcher, other, DispatchStatic)

	g.ReplaceDynTraitEdges(dispatcher, []NodeHandle{impl1, impl2})

	out := g.OutEdges(dispatcher)
	if len(out) != 3 {
		t.Fatalf("expected 3 outgoing edges after replacement (1 kept static + 2 new static), got %d", len(out))
	}
	for _, e := range out {
		if e.Kind == DispatchDynTrait {
			t.Error("expected no remaining DynTrait edges after ReplaceDynTraitEdges")
		}
	}

	inImpl1 := g.InEdges(impl1)
	if len(inImpl1) != 1 || inImpl1[0].Kind != DispatchStatic {
		t.Errorf("expected impl1's reverse index to reflect the new static edge, got %v", inImpl1)
	}
}

func TestValidateDetectsDanglingOrphanAndIsolatedNodes(t *testing.T) {
	g := NewCallGraph()
	entry := g.Intern(fid("main"))
	orphan := g.Intern(fid("orphan"))
	isolated := g.Intern(fid("isolated"))

	g.AddEdge(entry, g.Sink(), DispatchUnresolvedExternal)
	_ = orphan

	report := g.Validate(map[NodeHandle]bool{entry: true})

	if report.DanglingEdges != 1 {
		t.Errorf("expected 1 dangling edge, got %d", report.DanglingEdges)
	}
	if report.OrphanNodes < 1 {
		t.Errorf("expected at least 1 orphan node (non-entry, zero in-degree), got %d", report.OrphanNodes)
	}
	if report.IsolatedNodes < 1 {
		t.Errorf("expected isolated node to be counted, got %d", report.IsolatedNodes)
	}
	_ = isolated
	if report.HealthScore >= 100 {
		t.Errorf("expected health score to be penalized below 100, got %v", report.HealthScore)
	}
	if report.HealthScore < 0 {
		t.Errorf("health score must never go negative, got %v", report.HealthScore)
	}
}

func TestValidateEmptyGraphScoresPerfect(t *testing.T) {
	g := NewCallGraph()
	report := g.Validate(nil)
	if report.HealthScore != 100 {
		t.Errorf("expected a graph with only the sink to score 100, got %v", report.HealthScore)
	}
}

func TestSCCsOrdersReverseTopologically(t *testing.T) {
	g := NewCallGraph()
	a := g.Intern(fid("a"))
	b := g.Intern(fid("b"))
	c := g.Intern(fid("c"))

	// a -> b -> c, no cycles: three singleton SCCs, c (a leaf) first.
	g.AddEdge(a, b, DispatchStatic)
	g.AddEdge(b, c, DispatchStatic)

	sccs := g.SCCs()
	if len(sccs) != 3 {
		t.Fatalf("expected 3 singleton SCCs for an acyclic chain, got %d", len(sccs))
	}

	pos := make(map[NodeHandle]int)
	for i, scc := range sccs {
		for _, h := range scc {
			pos[h] = i
		}
	}
	if pos[c] >= pos[b] || pos[b] >= pos[a] {
		t.Errorf("expected order c, b, a (a leaf's SCC first), got positions a=%d b=%d c=%d", pos[a], pos[b], pos[c])
	}
}

func TestSCCsGroupsMutualRecursion(t *testing.T) {
	g := NewCallGraph()
	a := g.Intern(fid("a"))
	b := g.Intern(fid("b"))

	g.AddEdge(a, b, DispatchStatic)
	g.AddEdge(b, a, DispatchStatic)

	sccs := g.SCCs()
	if len(sccs) != 1 {
		t.Fatalf("expected a and b to collapse into one SCC, got %d components", len(sccs))
	}
	if len(sccs[0]) != 2 {
		t.Errorf("expected the single SCC to contain both nodes, got %d", len(sccs[0]))
	}
}

func TestSCCsExcludesSyntheticSink(t *testing.T) {
	g := NewCallGraph()
	a := g.Intern(fid("a"))
	g.AddEdge(a, g.Sink(), DispatchUnresolvedExternal)

	for _, scc := range g.SCCs() {
		for _, h := range scc {
			if h == g.Sink() {
				t.Error("SCCs must never include the synthetic sink node")
			}
		}
	}
}

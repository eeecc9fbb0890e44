package purity

import (
	"testing"

	"github.com/debtmap-go/debtmap/pkg/debt"
)

func metricsFor(g *debt.CallGraph, name string, effects map[debt.EffectKind]bool, lines int) debt.FunctionMetrics {
	return debt.FunctionMetrics{
		Id:                   debt.FunctionId{FilePath: "f.go", QualifiedName: name, StartLine: 1},
		IntrinsicSideEffects: effects,
		LengthLines:          lines,
	}
}

func TestAnalyzeMarksIntrinsicImpurity(t *testing.T) {
	g := debt.NewCallGraph()
	h := g.Intern(debt.FunctionId{FilePath: "f.go", QualifiedName: "writeFile", StartLine: 1})
	metrics := []debt.FunctionMetrics{
		metricsFor(g, "writeFile", map[debt.EffectKind]bool{debt.EffectIo: true}, 5),
	}
	_ = h

	result := Analyze(metrics, g)
	p := result[metrics[0].Id]
	if p.Label != debt.Impure {
		t.Errorf("expected Impure for a function with an IO side effect, got %v", p.Label)
	}
	if p.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0 for intrinsic impurity, got %v", p.Confidence)
	}
	if p.Reason != debt.ReasonSideEffects {
		t.Errorf("expected ReasonSideEffects, got %v", p.Reason)
	}
}

func TestAnalyzeLeafWithNoEffectsIsPure(t *testing.T) {
	g := debt.NewCallGraph()
	g.Intern(debt.FunctionId{FilePath: "f.go", QualifiedName: "add", StartLine: 1})
	metrics := []debt.FunctionMetrics{metricsFor(g, "add", nil, 3)}

	result := Analyze(metrics, g)
	p := result[metrics[0].Id]
	if p.Label != debt.Pure {
		t.Errorf("expected a side-effect-free leaf to be Pure, got %v", p.Label)
	}
}

func TestAnalyzeEmptyBodyIsUnknown(t *testing.T) {
	g := debt.NewCallGraph()
	g.Intern(debt.FunctionId{FilePath: "f.go", QualifiedName: "stub", StartLine: 1})
	metrics := []debt.FunctionMetrics{metricsFor(g, "stub", nil, 0)}

	result := Analyze(metrics, g)
	p := result[metrics[0].Id]
	if p.Label != debt.UnknownPurity {
		t.Errorf("expected a zero-length body to classify as UnknownPurity, got %v", p.Label)
	}
}

func TestAnalyzePropagatesImpurityThroughCallers(t *testing.T) {
	g := debt.NewCallGraph()
	caller := g.Intern(debt.FunctionId{FilePath: "f.go", QualifiedName: "caller", StartLine: 1})
	callee := g.Intern(debt.FunctionId{FilePath: "f.go", QualifiedName: "callee", StartLine: 1})
	g.AddEdge(caller, callee, debt.DispatchStatic)

	metrics := []debt.FunctionMetrics{
		metricsFor(g, "caller", nil, 5),
		metricsFor(g, "callee", map[debt.EffectKind]bool{debt.EffectMutation: true}, 5),
	}

	result := Analyze(metrics, g)
	if result[metrics[0].Id].Label != debt.Impure {
		t.Errorf("expected caller to inherit impurity from its callee, got %v", result[metrics[0].Id].Label)
	}
	if result[metrics[0].Id].Reason != debt.ReasonPropagatedFromDeps {
		t.Errorf("expected ReasonPropagatedFromDeps for the caller, got %v", result[metrics[0].Id].Reason)
	}
}

func TestAnalyzeUnresolvedCalleeYieldsUnknown(t *testing.T) {
	g := debt.NewCallGraph()
	caller := g.Intern(debt.FunctionId{FilePath: "f.go", QualifiedName: "caller", StartLine: 1})
	g.AddEdge(caller, g.Sink(), debt.DispatchUnresolvedExternal)

	metrics := []debt.FunctionMetrics{metricsFor(g, "caller", nil, 5)}

	result := Analyze(metrics, g)
	if result[metrics[0].Id].Label != debt.UnknownPurity {
		t.Errorf("expected a call into the unresolved sink to yield UnknownPurity, got %v", result[metrics[0].Id].Label)
	}
}

func TestAnalyzeSelfRecursiveAppliesPenalty(t *testing.T) {
	g := debt.NewCallGraph()
	h := g.Intern(debt.FunctionId{FilePath: "f.go", QualifiedName: "fact", StartLine: 1})
	g.AddEdge(h, h, debt.DispatchStatic)

	metrics := []debt.FunctionMetrics{metricsFor(g, "fact", nil, 5)}

	result := Analyze(metrics, g)
	p := result[metrics[0].Id]
	if p.Label != debt.Pure {
		t.Errorf("expected a self-recursive function with no side effects to remain Pure, got %v", p.Label)
	}
	if p.Confidence >= 1.0 {
		t.Errorf("expected the recursion penalty to reduce confidence below 1.0, got %v", p.Confidence)
	}
}

func TestAnalyzeMutualRecursionWithImpureMemberInfectsGroup(t *testing.T) {
	g := debt.NewCallGraph()
	a := g.Intern(debt.FunctionId{FilePath: "f.go", QualifiedName: "a", StartLine: 1})
	b := g.Intern(debt.FunctionId{FilePath: "f.go", QualifiedName: "b", StartLine: 1})
	g.AddEdge(a, b, debt.DispatchStatic)
	g.AddEdge(b, a, debt.DispatchStatic)

	metrics := []debt.FunctionMetrics{
		metricsFor(g, "a", nil, 5),
		metricsFor(g, "b", map[debt.EffectKind]bool{debt.EffectSysCall: true}, 5),
	}

	result := Analyze(metrics, g)
	if result[metrics[0].Id].Label != debt.Impure {
		t.Errorf("expected mutual recursion to spread impurity to every member, got %v", result[metrics[0].Id].Label)
	}
	if result[metrics[1].Id].Label != debt.Impure {
		t.Errorf("expected the intrinsically impure member to stay Impure, got %v", result[metrics[1].Id].Label)
	}
}

func TestAnalyzeMutualRecursionAllPureStaysPure(t *testing.T) {
	g := debt.NewCallGraph()
	a := g.Intern(debt.FunctionId{FilePath: "f.go", QualifiedName: "a", StartLine: 1})
	b := g.Intern(debt.FunctionId{FilePath: "f.go", QualifiedName: "b", StartLine: 1})
	g.AddEdge(a, b, debt.DispatchStatic)
	g.AddEdge(b, a, debt.DispatchStatic)

	metrics := []debt.FunctionMetrics{
		metricsFor(g, "a", nil, 5),
		metricsFor(g, "b", nil, 5),
	}

	result := Analyze(metrics, g)
	if result[metrics[0].Id].Label != debt.Pure || result[metrics[1].Id].Label != debt.Pure {
		t.Errorf("expected both mutually recursive members with no side effects to be Pure, got %v / %v",
			result[metrics[0].Id].Label, result[metrics[1].Id].Label)
	}
}

package pattern

import (
	"testing"

	"github.com/debtmap-go/debtmap/pkg/debt"
)

func deadFnId(name string) debt.FunctionId {
	return debt.FunctionId{FilePath: "internal/foo/foo.go", QualifiedName: name, StartLine: 1}
}

func TestDetectDeadCodeSkipsFunctionsWithCallers(t *testing.T) {
	g := debt.NewCallGraph()
	caller := g.Intern(deadFnId("caller"))
	callee := g.Intern(deadFnId("callee"))
	g.AddEdge(caller, callee, debt.DispatchStatic)

	metrics := []debt.FunctionMetrics{{Id: deadFnId("callee"), Visibility: debt.Public}}

	items := DetectDeadCode(metrics, g, nil, nil, nil, nil)
	if len(items) != 0 {
		t.Errorf("expected no dead-code item for a function with a caller, got %d", len(items))
	}
}

func TestDetectDeadCodeSkipsEntryPoints(t *testing.T) {
	g := debt.NewCallGraph()
	g.Intern(deadFnId("main"))
	metrics := []debt.FunctionMetrics{{Id: deadFnId("main"), Visibility: debt.Public}}

	items := DetectDeadCode(metrics, g, map[debt.FunctionId]bool{deadFnId("main"): true}, nil, nil, nil)
	if len(items) != 0 {
		t.Errorf("expected no dead-code item for a registered entry point, got %d", len(items))
	}
}

func TestDetectDeadCodeSkipsSuppressed(t *testing.T) {
	g := debt.NewCallGraph()
	g.Intern(deadFnId("orphan"))
	metrics := []debt.FunctionMetrics{{Id: deadFnId("orphan"), Visibility: debt.Public}}

	items := DetectDeadCode(metrics, g, nil, nil, nil, map[debt.FunctionId]bool{deadFnId("orphan"): true})
	if len(items) != 0 {
		t.Errorf("expected no dead-code item for a whitelisted orphan, got %d", len(items))
	}
}

func TestDetectDeadCodePrivateUnreachableIsHighConfidence(t *testing.T) {
	g := debt.NewCallGraph()
	g.Intern(deadFnId("helper"))
	metrics := []debt.FunctionMetrics{{Id: deadFnId("helper"), Visibility: debt.Private}}

	items := DetectDeadCode(metrics, g, nil, nil, nil, nil)
	if len(items) != 1 {
		t.Fatalf("expected one dead-code item, got %d", len(items))
	}
	if items[0].Kind.Orphan.Tier != "High" {
		t.Errorf("expected a private, uncovered, non-framework function to get High confidence, got %v", items[0].Kind.Orphan.Tier)
	}
}

func TestDetectDeadCodeCoveredFunctionIsLowConfidence(t *testing.T) {
	g := debt.NewCallGraph()
	g.Intern(deadFnId("tested"))
	metrics := []debt.FunctionMetrics{{Id: deadFnId("tested"), Visibility: debt.Private}}
	coverage := map[debt.FunctionId]float64{deadFnId("tested"): 0.8}

	items := DetectDeadCode(metrics, g, nil, nil, coverage, nil)
	if items[0].Kind.Orphan.Tier != "Low" {
		t.Errorf("expected coverage evidence to downgrade confidence to Low even for a private function, got %v", items[0].Kind.Orphan.Tier)
	}
}

func TestDetectDeadCodeFrameworkSignalIsLowConfidence(t *testing.T) {
	g := debt.NewCallGraph()
	g.Intern(deadFnId("OnRequestHandler"))
	metrics := []debt.FunctionMetrics{{Id: deadFnId("OnRequestHandler"), Visibility: debt.Public}}

	items := DetectDeadCode(metrics, g, nil, nil, nil, nil)
	if items[0].Kind.Orphan.Tier != "Low" {
		t.Errorf("expected a handler-named function to get Low confidence as a likely framework callback, got %v", items[0].Kind.Orphan.Tier)
	}
}

func TestDetectDeadCodePublicOutsideRootNonApiIsMediumConfidence(t *testing.T) {
	g := debt.NewCallGraph()
	g.Intern(deadFnId("ProcessBatch"))
	metrics := []debt.FunctionMetrics{{Id: deadFnId("ProcessBatch"), Visibility: debt.Public}}

	items := DetectDeadCode(metrics, g, nil, map[string]bool{}, nil, nil)
	if items[0].Kind.Orphan.Tier != "Medium" {
		t.Errorf("expected a public, non-constructor-named, non-root function to get Medium confidence, got %v", items[0].Kind.Orphan.Tier)
	}
}

func TestDetectDeadCodeRootModuleApiSurfaceIsLowConfidence(t *testing.T) {
	g := debt.NewCallGraph()
	g.Intern(deadFnId("NewThing"))
	metrics := []debt.FunctionMetrics{{Id: deadFnId("NewThing"), Visibility: debt.Public}}

	roots := map[string]bool{"internal/foo/foo.go": true}
	items := DetectDeadCode(metrics, g, nil, roots, nil, nil)
	if items[0].Kind.Orphan.Tier != "Low" {
		t.Errorf("expected a constructor-style name in a root module to get Low confidence, got %v", items[0].Kind.Orphan.Tier)
	}
}

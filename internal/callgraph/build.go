// Package callgraph builds the debt.CallGraph from every extracted
// FunctionMetrics plus a resolution index, and implements the
// trait/dyn-dispatch resolution order below.
package callgraph

import (
	"regexp"
	"sort"
	"strings"

	"github.com/debtmap-go/debtmap/pkg/debt"
)

// Index is the lookup structure the call-graph builder's contract requires: a qualified-name
// index for Static/Name targets, and a (type, method) / (method-name
// only) index for Method and Trait targets.
type Index struct {
	byQualifiedName map[string]debt.FunctionId
	byTypeAndMethod map[string]debt.FunctionId   // "Type.method"
	byMethodName    map[string][]debt.FunctionId // "method" -> all implementers
}

// BuildIndex constructs the lookup index from the full metrics set.
func BuildIndex(metrics []debt.FunctionMetrics) *Index {
	idx := &Index{
		byQualifiedName: make(map[string]debt.FunctionId),
		byTypeAndMethod: make(map[string]debt.FunctionId),
		byMethodName:    make(map[string][]debt.FunctionId),
	}
	for _, m := range metrics {
		idx.byQualifiedName[m.Id.QualifiedName] = m.Id
		if m.ReceiverType != "" {
			method := lastSegment(m.Id.QualifiedName)
			idx.byTypeAndMethod[m.ReceiverType+"."+method] = m.Id
			idx.byMethodName[method] = append(idx.byMethodName[method], m.Id)
		}
	}
	for k := range idx.byMethodName {
		sort.Slice(idx.byMethodName[k], func(i, j int) bool {
			return idx.byMethodName[k][i].Less(idx.byMethodName[k][j])
		})
	}
	return idx
}

func lastSegment(qualifiedName string) string {
	parts := strings.Split(qualifiedName, ".")
	return parts[len(parts)-1]
}

// testNamePattern and lifecycleMethods recognize test-prefix names and
// lifecycle methods for the entry-point heuristics below.
var (
	testNamePattern    = regexp.MustCompile(`(?i)^(test_|test$|Test)`)
	lifecycleMethods   = map[string]bool{
		"new": true, "default": true, "equals": true, "equal": true,
		"string": true, "display": true, "clone": true, "init": true,
	}
)

// IsEntryPoint applies the entry-point heuristics to a FunctionId plus
// caller-supplied extra entry points.
func IsEntryPoint(id debt.FunctionId, extra map[string]bool) bool {
	name := lastSegment(id.QualifiedName)
	if name == "main" {
		return true
	}
	if testNamePattern.MatchString(name) {
		return true
	}
	if strings.Contains(id.FilePath, "examples/") || strings.Contains(id.FilePath, "benches/") {
		return true
	}
	if lifecycleMethods[strings.ToLower(name)] {
		return true
	}
	if extra[id.QualifiedName] {
		return true
	}
	return false
}

// Build assembles the call graph per the resolution order below and returns
// the graph plus any resolution warnings.
func Build(metrics []debt.FunctionMetrics, idx *Index) (*debt.CallGraph, []*debt.ResolutionWarning) {
	g := debt.NewCallGraph()
	var warnings []*debt.ResolutionWarning

	// Ensure every function has a node even if it has no incoming or
	// outgoing edges.
	handles := make(map[debt.FunctionId]debt.NodeHandle, len(metrics))
	for _, m := range metrics {
		handles[m.Id] = g.Intern(m.Id)
	}

	sorted := make([]debt.FunctionMetrics, len(metrics))
	copy(sorted, metrics)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Id.Less(sorted[j].Id) })

	for _, m := range sorted {
		from := handles[m.Id]
		for _, cs := range m.RawCallSites {
			w := resolveOne(g, idx, from, cs)
			if w != nil {
				w.Caller = m.Id
				warnings = append(warnings, w)
			}
		}
	}

	return g, warnings
}

func resolveOne(g *debt.CallGraph, idx *Index, from debt.NodeHandle, cs debt.CallSite) *debt.ResolutionWarning {
	switch cs.Target.Kind {
	case debt.TargetName:
		if id, ok := idx.byQualifiedName[cs.Target.QualifiedName]; ok {
			to := g.Intern(id)
			g.AddEdge(from, to, debt.DispatchStatic)
			return nil
		}
		g.AddEdge(from, g.Sink(), debt.DispatchUnresolvedExternal)
		return &debt.ResolutionWarning{Hint: cs.Target, Reason: "name not found"}

	case debt.TargetMethod:
		if cs.Target.ReceiverTypeHint != "" {
			if id, ok := idx.byTypeAndMethod[cs.Target.ReceiverTypeHint+"."+cs.Target.MethodName]; ok {
				to := g.Intern(id)
				g.AddEdge(from, to, debt.DispatchStatic)
				return nil
			}
		}
		candidates := idx.byMethodName[cs.Target.MethodName]
		if len(candidates) == 0 {
			g.AddEdge(from, g.Sink(), debt.DispatchUnresolvedExternal)
			return &debt.ResolutionWarning{Hint: cs.Target, Reason: "no implementer found for method"}
		}
		for _, id := range candidates {
			g.AddEdge(from, g.Intern(id), debt.DispatchDynTrait)
		}
		return nil

	case debt.TargetTrait:
		candidates := idx.byMethodName[cs.Target.MethodName]
		if len(candidates) == 0 {
			g.AddEdge(from, g.Sink(), debt.DispatchUnresolvedExternal)
			return &debt.ResolutionWarning{Hint: cs.Target, Reason: "no trait implementer found"}
		}
		for _, id := range candidates {
			g.AddEdge(from, g.Intern(id), debt.DispatchDynTrait)
		}
		return nil

	case debt.TargetFnPtr, debt.TargetClosure:
		if cs.Target.LocalId != "" {
			if id, ok := idx.byQualifiedName[cs.Target.LocalId]; ok {
				to := g.Intern(id)
				g.AddEdge(from, to, debt.DispatchStatic)
				return nil
			}
		}
		kind := debt.DispatchFnPtr
		if cs.Target.Kind == debt.TargetClosure {
			kind = debt.DispatchClosure
		}
		g.AddEdge(from, g.Sink(), kind)
		return &debt.ResolutionWarning{Hint: cs.Target, Reason: "best-effort resolution failed"}

	default:
		g.AddEdge(from, g.Sink(), debt.DispatchUnresolvedExternal)
		return &debt.ResolutionWarning{Hint: cs.Target, Reason: "unknown target kind"}
	}
}

// InjectObserverEdges adds synthetic Static edges from a dispatcher node
// to every concrete implementer of a registry's element method.
// Detection of dispatcher/registry pairs lives in internal/pattern; this
// just performs the graph mutation once found.
func InjectObserverEdges(g *debt.CallGraph, idx *Index, dispatcher debt.FunctionId, registryMethod string) int {
	from, ok := g.Lookup(dispatcher)
	if !ok {
		from = g.Intern(dispatcher)
	}
	implementers := idx.byMethodName[registryMethod]
	for _, id := range implementers {
		g.AddEdge(from, g.Intern(id), debt.DispatchStatic)
	}
	return len(implementers)
}

package pattern

import (
	"strings"

	"github.com/debtmap-go/debtmap/internal/callgraph"
	"github.com/debtmap-go/debtmap/pkg/debt"
)

// IsRegistryFieldName reports whether a field name matches the
// configurable observer-registry name set, case-insensitively,
// as a substring match so "eventListeners" still matches "listeners".
func IsRegistryFieldName(fieldName string, patterns []string) bool {
	lower := strings.ToLower(fieldName)
	for _, p := range patterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// IsRegistryField reports whether f qualifies as a registry field: its
// name matches the configured pattern set, or (weaker signal) it has an
// element kind (an interface name, or "func").
func IsRegistryField(f RegistryField, patterns []string) bool {
	if IsRegistryFieldName(f.FieldName, patterns) {
		return true
	}
	return f.ElementKind != ""
}

// ResolveDispatchers wires every confirmed dispatcher candidate into the
// call graph by delegating to the call graph's own edge-injection
// primitive: one synthetic edge per concrete implementer of the
// registry element's invoked method. Returns the total edges injected.
func ResolveDispatchers(g *debt.CallGraph, idx *callgraph.Index, candidates []DispatcherCandidate, patterns []string) int {
	total := 0
	for _, c := range candidates {
		if !IsRegistryField(c.Field, patterns) || c.InvokedMethod == "" {
			continue
		}
		total += callgraph.InjectObserverEdges(g, idx, c.Function, c.InvokedMethod)
	}
	return total
}

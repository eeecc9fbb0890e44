// Package pattern implements the pattern detector: god object, boilerplate-trait-impl,
// observer-dispatch, and dead-code-with-confidence detection.
package pattern

import "github.com/debtmap-go/debtmap/pkg/debt"

// MethodInfo is one method/function belonging to a type, as surfaced by
// the extractor for file-level aggregation.
type MethodInfo struct {
	Id         debt.FunctionId
	Name       string
	Signature  string // parameter count as a decimal string, used for uniformity comparison
	Cyclomatic int
	Exported   bool
}

// StructInfo is one type declaration in a file (Go struct, or the
// closest analogue in another supported language).
type StructInfo struct {
	Name    string
	Fields  []string
	Methods []MethodInfo
}

// TraitImplInfo is one interface/trait implementation: a (trait,
// concrete type) pair and the methods it contributes to satisfy it.
type TraitImplInfo struct {
	TraitName  string
	StructName string
	Methods    []MethodInfo
}

// FileUnit aggregates everything the pattern detector needs about one source file beyond
// the per-function FunctionMetrics already produced by the extractor.
type FileUnit struct {
	Path       string
	Lines      int
	Structs    []StructInfo
	TraitImpls []TraitImplInfo
}

// RegistryField is a field identified as holding a collection of
// trait objects, function pointers, or closures.
type RegistryField struct {
	StructName  string
	FieldName   string
	ElementKind string // interface name, or "func" for function-typed collections
}

// DispatcherCandidate is a function whose body loops over a
// RegistryField and invokes its element.
type DispatcherCandidate struct {
	Function      debt.FunctionId
	Field         RegistryField
	InvokedMethod string // method called on the loop variable, "" for direct fn-ptr invocation
}

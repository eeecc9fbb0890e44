// Package tsshared holds the Tree-sitter walking logic shared by the
// Python and TypeScript extractors: a generic decision-point/nesting
// walk parameterized per-language by the grammar's node kind names.
// Neither pyext nor tsext carries go/types-level resolution, so every
// CallSite produced here is a TargetName or TargetMethod hint read off
// the call expression's raw text (TargetFnPtr when the callee field is missing).
package tsshared

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/debtmap-go/debtmap/pkg/debt"
)

// Spec describes one language grammar's node-kind vocabulary for the
// purposes of function discovery and approximate complexity counting.
type Spec struct {
	Language debt.Language

	// FunctionKinds are node kinds that open a new FunctionMetrics entry.
	FunctionKinds map[string]bool
	// NameField is the field name holding the function's identifier, if any.
	NameField string
	// ParamsField is the field name holding the parameter list.
	ParamsField string
	// BodyField is the field name holding the function body block.
	BodyField string

	// DecisionKinds are node kinds that each add 1 to cyclomatic complexity.
	DecisionKinds map[string]bool
	// NestingKinds are node kinds that increase nesting depth for their subtree.
	NestingKinds map[string]bool
	// LogicalOperators are binary-operator texts ("&&", "||", "and", "or")
	// that each add 1 to cyclomatic complexity, mirroring go/ast's BinaryExpr rule.
	LogicalOperators map[string]bool
	// BinaryKind is the node kind of a binary/logical expression in this grammar.
	BinaryKind string
	// OperatorField is the field name (if any) holding the operator token
	// inside a BinaryKind node; empty means scan children for the operator text directly.
	OperatorField string

	// CallKinds are node kinds representing a call expression.
	CallKinds map[string]bool
	// CallFunctionField is the field name holding the callee expression
	// inside a call node.
	CallFunctionField string

	// AnonymousName, when a function node has no name field (e.g. an
	// anonymous arrow function), names the synthetic identifier.
	AnonymousName string
}

func nodeText(n *tree_sitter.Node, source []byte) string {
	return string(source[n.StartByte():n.EndByte()])
}

func lineOf(n *tree_sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}

func endLineOf(n *tree_sitter.Node) int {
	return int(n.EndPosition().Row) + 1
}

// ExtractFile walks root and returns one FunctionMetrics per top-level
// (or top-level-in-class) function node found, attributing nested
// closures to their lexically enclosing function exactly as goext does
// for Go.
func ExtractFile(root *tree_sitter.Node, source []byte, filePath, pkgPath string, spec Spec) ([]debt.FunctionMetrics, []*debt.ExtractionError) {
	var metrics []debt.FunctionMetrics
	var errs []*debt.ExtractionError

	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		if spec.FunctionKinds[n.Kind()] {
			m, err := extractFunction(n, source, filePath, pkgPath, spec)
			metrics = append(metrics, m)
			if err != nil {
				errs = append(errs, err)
			}
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}

	for i := uint(0); i < root.ChildCount(); i++ {
		walk(root.Child(i))
	}

	return metrics, errs
}

func extractFunction(n *tree_sitter.Node, source []byte, filePath, pkgPath string, spec Spec) (debt.FunctionMetrics, *debt.ExtractionError) {
	name := spec.AnonymousName
	partial := false

	if spec.NameField != "" {
		if nameNode := n.ChildByFieldName(spec.NameField); nameNode != nil {
			name = nodeText(nameNode, source)
		} else {
			partial = true
		}
	}

	qualifiedName := pkgPath + "." + name
	startLine := lineOf(n)
	id := debt.FunctionId{FilePath: filePath, QualifiedName: qualifiedName, StartLine: startLine}

	body := n
	if spec.BodyField != "" {
		if b := n.ChildByFieldName(spec.BodyField); b != nil {
			body = b
		} else {
			partial = true
		}
	}

	cyclomatic := 1
	maxNesting := 0
	tokens := make(map[debt.TokenKind]int)
	var patterns []debt.PatternTag
	var branches []debt.TokenSequence
	var callSites []debt.CallSite

	var inner func(m *tree_sitter.Node, depth int)
	inner = func(m *tree_sitter.Node, depth int) {
		if m == nil {
			return
		}
		kind := m.Kind()

		switch {
		case spec.DecisionKinds[kind]:
			cyclomatic++
		case kind == spec.BinaryKind:
			if isLogicalOperator(m, source, spec) {
				cyclomatic++
			}
		case spec.CallKinds[kind]:
			callSites = append(callSites, debt.CallSite{Target: resolveCallTarget(m, source, spec), Line: lineOf(m)})
		}

		nextDepth := depth
		if spec.NestingKinds[kind] {
			nextDepth = depth + 1
			if nextDepth > maxNesting {
				maxNesting = nextDepth
			}
		}

		tokens[debt.TokenKind(strings.ToUpper(kind))]++
		if tag := patternTagFor(kind); tag != "" {
			patterns = append(patterns, debt.PatternTag(tag))
		}

		// Nested function literals belong to this same metric entry
		// unless they are themselves a named declaration the
		// outer walk will revisit independently — tree-sitter grammars
		// for Python/TS only have one function-like kind set, and
		// named nested defs are rare enough that over-counting a
		// nested def's body here is the conservative, documented
		// approximation for this extractor tier.
		for i := uint(0); i < m.ChildCount(); i++ {
			inner(m.Child(i), nextDepth)
		}
	}
	inner(body, 0)

	collectBranches(body, spec, source, &branches)

	cognitive := cyclomatic + maxNesting
	if partial {
		cognitive = 0
	}

	m := debt.FunctionMetrics{
		Id:                   id,
		Cyclomatic:           cyclomatic,
		Cognitive:            cognitive,
		NestingDepth:         maxNesting,
		LengthLines:          endLineOf(n) - startLine + 1,
		ParamCount:           paramCount(n, spec),
		Tokens:               tokens,
		AstPatterns:          patterns,
		Branches:             branches,
		RawCallSites:         callSites,
		IntrinsicSideEffects: map[debt.EffectKind]bool{},
		IsTest:               isTestName(name),
		IsEntryCandidate:     false,
		Visibility:           visibilityOf(name),
		ExtractionPartial:    partial,
	}

	var extractErr *debt.ExtractionError
	if partial {
		extractErr = &debt.ExtractionError{File: filePath, Line: startLine, Func: qualifiedName, Reason: "tree-sitter grammar did not match an expected name/body field; metrics are approximate"}
	}
	return m, extractErr
}

func isLogicalOperator(n *tree_sitter.Node, source []byte, spec Spec) bool {
	if spec.OperatorField != "" {
		if op := n.ChildByFieldName(spec.OperatorField); op != nil {
			return spec.LogicalOperators[nodeText(op, source)]
		}
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if !c.IsNamed() && spec.LogicalOperators[nodeText(c, source)] {
			return true
		}
	}
	return false
}

func resolveCallTarget(call *tree_sitter.Node, source []byte, spec Spec) debt.TargetHint {
	fn := call.ChildByFieldName(spec.CallFunctionField)
	if fn == nil {
		return debt.TargetHint{Kind: debt.TargetFnPtr, ExprShape: "call"}
	}
	text := nodeText(fn, source)
	if strings.Contains(text, ".") {
		return debt.TargetHint{Kind: debt.TargetMethod, MethodName: text[strings.LastIndex(text, ".")+1:], ExprShape: text}
	}
	return debt.TargetHint{Kind: debt.TargetName, QualifiedName: text}
}

func paramCount(n *tree_sitter.Node, spec Spec) int {
	params := n.ChildByFieldName(spec.ParamsField)
	if params == nil {
		return 0
	}
	return int(params.NamedChildCount())
}

func patternTagFor(kind string) string {
	switch kind {
	case "if_statement", "for_statement", "for_in_statement", "while_statement",
		"do_statement", "switch_statement", "try_statement", "except_clause",
		"catch_clause", "match_statement":
		return kind
	default:
		return ""
	}
}

func collectBranches(body *tree_sitter.Node, spec Spec, source []byte, out *[]debt.TokenSequence) {
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		if spec.DecisionKinds[n.Kind()] {
			var seq debt.TokenSequence
			var collect func(m *tree_sitter.Node)
			collect = func(m *tree_sitter.Node) {
				seq = append(seq, debt.TokenKind(strings.ToUpper(m.Kind())))
				for i := uint(0); i < m.ChildCount(); i++ {
					collect(m.Child(i))
				}
			}
			collect(n)
			*out = append(*out, seq)
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(body)
}

func isTestName(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "test_") || strings.HasPrefix(lower, "test")
}

func visibilityOf(name string) debt.Visibility {
	if strings.HasPrefix(name, "_") {
		return debt.Private
	}
	return debt.Public
}

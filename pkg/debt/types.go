// Package debt defines the data model shared by every stage of the
// debt-ranking pipeline: per-function metrics, the call graph, purity and
// coverage results, and the final DebtItem output. Types in this package
// are produced by one pipeline stage and consumed read-only by the next;
// see the package doc of internal/engine for the stage order.
package debt

// Language identifies the source language a FunctionId belongs to.
type Language string

const (
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangTypeScript Language = "typescript"
)

// FunctionId is the stable identity of a function across an analysis
// snapshot: (file path, qualified name, start line). Two FunctionIds are
// equal iff all three fields match. Identity is stable across snapshots
// as long as the file, name, and start line are unchanged.
type FunctionId struct {
	FilePath      string
	QualifiedName string
	StartLine     int
}

// Less provides a total order on FunctionId for deterministic sorting,
// satisfying the ordering guarantees in the concurrency model (iteration
// orders that affect output must be stabilized by sorting on FunctionId).
func (id FunctionId) Less(other FunctionId) bool {
	if id.FilePath != other.FilePath {
		return id.FilePath < other.FilePath
	}
	if id.QualifiedName != other.QualifiedName {
		return id.QualifiedName < other.QualifiedName
	}
	return id.StartLine < other.StartLine
}

func (id FunctionId) String() string {
	return id.FilePath + ":" + id.QualifiedName
}

// EffectKind enumerates the intrinsic side effects a function body can
// exhibit. This is a discriminated sum: every switch over EffectKind
// in this module is exhaustive and must be updated when a variant is added.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectIo
	EffectMutation
	EffectUnsafeOp
	EffectGlobalAccess
	EffectFfi
	EffectSysCall
)

func (e EffectKind) String() string {
	switch e {
	case EffectIo:
		return "io"
	case EffectMutation:
		return "mutation"
	case EffectUnsafeOp:
		return "unsafe_op"
	case EffectGlobalAccess:
		return "global_access"
	case EffectFfi:
		return "ffi"
	case EffectSysCall:
		return "syscall"
	default:
		return "none"
	}
}

// Visibility distinguishes exported from unexported functions, used by
// the dead-code detector's confidence tiering.
type Visibility int

const (
	Private Visibility = iota
	Public
)

// DispatchKind labels how a call-site target was resolved by the call
// graph builder.
type DispatchKind int

const (
	DispatchStatic DispatchKind = iota
	DispatchDynTrait
	DispatchClosure
	DispatchFnPtr
	DispatchUnresolvedMacro
	DispatchUnresolvedExternal
)

func (k DispatchKind) String() string {
	switch k {
	case DispatchStatic:
		return "static"
	case DispatchDynTrait:
		return "dyn_trait"
	case DispatchClosure:
		return "closure"
	case DispatchFnPtr:
		return "fn_ptr"
	case DispatchUnresolvedMacro:
		return "unresolved_macro"
	case DispatchUnresolvedExternal:
		return "unresolved_external"
	default:
		return "unknown"
	}
}

// TargetHintKind discriminates the shape of an unresolved call-site target
// extracted by the extractor. Resolution to a concrete FunctionId is deferred to the call-graph builder.
type TargetHintKind int

const (
	TargetName TargetHintKind = iota
	TargetMethod
	TargetTrait
	TargetFnPtr
	TargetClosure
)

// TargetHint is the unresolved description of a call site's target,
// produced during extraction and consumed during call-graph
// resolution.
type TargetHint struct {
	Kind             TargetHintKind
	QualifiedName    string // Name variant
	ReceiverTypeHint string // Method/Trait variant: concrete type if statically known, else ""
	MethodName       string // Method/Trait variant
	TraitName        string // Trait variant
	ExprShape        string // FnPtr variant: best-effort textual shape
	LocalId          string // Closure variant: local binding identifier
}

// CallSite is a single, as-yet-unresolved call expression discovered by
// the extractor.
type CallSite struct {
	Target TargetHint
	Line   int
}

// PatternTag is a coarse structural label assigned to one AST node for
// entropy's pattern-repetition computation.
type PatternTag string

// TokenKind classifies one lexical token for token-entropy computation.
type TokenKind string

// TokenSequence is an ordered list of token kinds, used for branch
// similarity.
type TokenSequence []TokenKind

// FunctionMetrics holds everything the extractor observes about one
// function. It is created once and is read-only for the rest of the
// pipeline.
type FunctionMetrics struct {
	Id FunctionId

	Cyclomatic   int
	Cognitive    int
	NestingDepth int
	LengthLines  int
	ParamCount   int

	Tokens       map[TokenKind]int // multiset for entropy
	AstPatterns  []PatternTag      // for pattern repetition
	Branches     []TokenSequence   // for branch similarity

	RawCallSites []CallSite

	IntrinsicSideEffects map[EffectKind]bool

	IsTest           bool
	IsEntryCandidate bool
	Visibility       Visibility

	// Language-specific hints consumed by later stages without the core
	// needing to know the concrete language.
	ReceiverType string // non-empty for methods
	IsClosure    bool

	// ExtractionPartial is set when a recoverable per-function extraction
	// error occurred; Cognitive is zeroed and
	// analysis continues with whatever else was recovered.
	ExtractionPartial bool
}

// TotalTokens returns the sum of all token counts, used by the entropy
// engine's min_tokens gate.
func (m *FunctionMetrics) TotalTokens() int {
	n := 0
	for _, c := range m.Tokens {
		n += c
	}
	return n
}

// PurityReasonKind discriminates why a function received its purity
// classification.
type PurityReasonKind int

const (
	ReasonIntrinsic PurityReasonKind = iota
	ReasonPropagatedFromDeps
	ReasonRecursivePure
	ReasonSideEffects
	ReasonUnknownDeps
	ReasonRecursiveWithSideEffects
)

// PurityLabel is the three-valued purity classification.
type PurityLabel int

const (
	Pure PurityLabel = iota
	Impure
	UnknownPurity
)

func (p PurityLabel) String() string {
	switch p {
	case Pure:
		return "pure"
	case Impure:
		return "impure"
	default:
		return "unknown"
	}
}

// Purity is the per-function result of the purity analyzer's two-phase analysis.
type Purity struct {
	Label      PurityLabel
	Confidence float64
	Reason     PurityReasonKind
	Depth      int        // valid when Reason == ReasonPropagatedFromDeps
	EffectKind EffectKind // valid when Reason implies side effects
}

// EntropyScore is the entropy cache's per-function output.
type EntropyScore struct {
	TokenEntropy             float64
	PatternRepetition        float64
	BranchSimilarity         float64
	EffectiveComplexityFactor float64
}

// Coverage is the coverage mapper's per-function output: direct line coverage and the
// fixed-point transitive coverage computed over the call graph.
type Coverage struct {
	Direct      float64
	Transitive  float64
}

// Role is the role classifier's coarse functional classification.
type Role int

const (
	RoleUtility Role = iota
	RoleOrchestrator
	RoleWorker
	RoleEntryPoint
)

func (r Role) String() string {
	switch r {
	case RoleOrchestrator:
		return "orchestrator"
	case RoleWorker:
		return "worker"
	case RoleEntryPoint:
		return "entry_point"
	default:
		return "utility"
	}
}

// RoleClassification is the role classifier's per-function output.
type RoleClassification struct {
	Role             Role
	Confidence       float64
	DelegationRatio  float64
	LocalComplexity  int
	IsPure           bool      // valid when Role == RoleWorker
	DownstreamDepth  int       // valid when Role == RoleEntryPoint
}

// Category is the top-level classification of a DebtItem.
type Category int

const (
	CategoryComplexity Category = iota
	CategoryTesting
	CategoryArchitecture
	CategoryDead
	CategoryDuplication
	CategorySmell
	CategoryDependency
)

func (c Category) String() string {
	switch c {
	case CategoryComplexity:
		return "complexity"
	case CategoryTesting:
		return "testing"
	case CategoryArchitecture:
		return "architecture"
	case CategoryDead:
		return "dead"
	case CategoryDuplication:
		return "duplication"
	case CategorySmell:
		return "smell"
	case CategoryDependency:
		return "dependency"
	default:
		return "unknown"
	}
}

// categoryOrder is the fixed priority order the fusion stage uses to pick
// the single leading category when a function earns more than one kind
// of debt: Architecture > Testing > Complexity > Dead > Duplication >
// Smell > Dependency.
var categoryOrder = map[Category]int{
	CategoryArchitecture: 0,
	CategoryTesting:      1,
	CategoryComplexity:   2,
	CategoryDead:         3,
	CategoryDuplication:  4,
	CategorySmell:        5,
	CategoryDependency:   6,
}

// CategoryPriority returns the ordinal rank used to break ties between
// debt kinds competing for the same function (lower sorts first).
func CategoryPriority(c Category) int {
	if p, ok := categoryOrder[c]; ok {
		return p
	}
	return len(categoryOrder)
}

// Severity is the qualitative impact level of one DebtItem.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	default:
		return "low"
	}
}

// Tier is the scorer's multiplicative priority band.
type Tier int

const (
	T4 Tier = iota // everything else
	T3             // testing gaps
	T2             // complex & untested
	T1             // critical architecture
)

func (t Tier) String() string {
	switch t {
	case T1:
		return "T1"
	case T2:
		return "T2"
	case T3:
		return "T3"
	default:
		return "T4"
	}
}

// Location pinpoints a DebtItem in source.
type Location struct {
	FilePath  string
	Function  string // qualified name; empty for file-level items
	StartLine int
	EndLine   int
}

// Evidence is an open map of the metric values that justified a DebtItem,
// so that score and rationale can be reconstructed or audited. Every
// DebtItem must have at least one entry.
type Evidence map[string]float64

// DebtKindTag discriminates the variant carried by DebtItem.Kind. Every
// switch over DebtKindTag is exhaustive.
type DebtKindTag int

const (
	KindComplexityHotspot DebtKindTag = iota
	KindTestingGap
	KindGodObject
	KindBoilerplate
	KindOrphan
	KindDuplication
	KindDependencyHealth
)

// GodObjectEvidence carries god-object-specific evidence.
type GodObjectEvidence struct {
	Methods           int
	Fields            int
	Responsibilities  int
	Lines             int
	TotalComplexity   int
	Confidence        string // Definite | Probable | Possible
}

// BoilerplateEvidence carries boilerplate-trait-impl evidence.
type BoilerplateEvidence struct {
	ImplCount           int
	MethodUniformity    float64
	AvgComplexity       float64
	StructDensity       float64
	ComplexityVariance  float64
	Score               float64
}

// OrphanEvidence carries dead-code evidence.
type OrphanEvidence struct {
	Confidence float64 // 0-1, see confidence tiers
	Tier       string  // High | Medium | Low
}

// TestingGapEvidence carries direct/transitive coverage for a Testing
// debt item.
type TestingGapEvidence struct {
	Direct     float64
	Transitive float64
}

// DuplicationEvidence carries duplicate-block evidence.
type DuplicationEvidence struct {
	OtherFile  string
	OtherStart int
	OtherEnd   int
	LineCount  int
}

// DependencyHealthEvidence carries the call-graph validation summary that
// triggers a synthesized Dependency debt item.
type DependencyHealthEvidence struct {
	HealthScore   float64
	DanglingEdges int
	Duplicates    int
	Orphans       int
}

// DebtKind is a tagged union over the per-kind evidence variants.
type DebtKind struct {
	Tag          DebtKindTag
	GodObject    *GodObjectEvidence
	Boilerplate  *BoilerplateEvidence
	Orphan       *OrphanEvidence
	TestingGap   *TestingGapEvidence
	Duplication  *DuplicationEvidence
	Dependency   *DependencyHealthEvidence
}

// SuppressionRecord carries a suppressed item's justification verbatim.
type SuppressionRecord struct {
	Rule          string // "allow" | "ignore-line"
	Justification string
}

// DebtItem is the unit of ranked output.
type DebtItem struct {
	Location           Location
	Category           Category
	Kind               DebtKind
	Severity           Severity
	Tier               Tier
	Evidence           Evidence
	Rationale          string
	RecommendedAction  string
	Score              float64
	Suppressed         *SuppressionRecord
}

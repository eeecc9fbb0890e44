// Package engine orchestrates the full analysis pipeline: discovery,
// extraction, call-graph construction, purity/entropy/coverage/role
// analysis, pattern detection, debt-item fusion, scoring, and
// suppression, producing one debt.AnalysisSnapshot per run.
//
// Stage order is sequential except for extraction, which runs one
// goroutine per detected language via errgroup since each language
// plugin's work over its own file set is independent. Every stage
// boundary is a cancellation checkpoint: ctx.Err() is checked and
// wrapped in a debt.CancellationError rather than letting a stage start
// against an already-cancelled run.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/debtmap-go/debtmap/internal/callgraph"
	"github.com/debtmap-go/debtmap/internal/coverage"
	"github.com/debtmap-go/debtmap/internal/debtitem"
	"github.com/debtmap-go/debtmap/internal/discovery"
	"github.com/debtmap-go/debtmap/internal/engineconfig"
	"github.com/debtmap-go/debtmap/internal/entropy"
	"github.com/debtmap-go/debtmap/internal/extract"
	"github.com/debtmap-go/debtmap/internal/extract/goext"
	"github.com/debtmap-go/debtmap/internal/extract/pyext"
	"github.com/debtmap-go/debtmap/internal/extract/tsext"
	"github.com/debtmap-go/debtmap/internal/parser"
	"github.com/debtmap-go/debtmap/internal/pattern"
	"github.com/debtmap-go/debtmap/internal/progress"
	"github.com/debtmap-go/debtmap/internal/purity"
	"github.com/debtmap-go/debtmap/internal/role"
	"github.com/debtmap-go/debtmap/internal/scorer"
	"github.com/debtmap-go/debtmap/internal/suppress"
	"github.com/debtmap-go/debtmap/internal/suppressio"
	"github.com/debtmap-go/debtmap/pkg/debt"
	"github.com/debtmap-go/debtmap/pkg/version"
)

// Options carries everything a Run needs beyond the root directory: the
// resolved config, optionally an external coverage map, and the two
// collaborators the core never owns directly (progress reporting,
// warning output).
type Options struct {
	Config         *engineconfig.AnalysisConfig
	Coverage       coverage.LineHits
	ShowSuppressed bool
	OnProgress     progress.Func
	Warnings       io.Writer

	// Clock stamps Metadata.Timestamp. Defaults to time.Now; tests and
	// callers needing byte-identical snapshots across repeated runs over
	// identical inputs (caching, determinism assertions) inject a fixed
	// clock instead.
	Clock func() time.Time
}

func (o *Options) normalize() {
	if o.Config == nil {
		o.Config = engineconfig.Default()
	}
	if o.OnProgress == nil {
		o.OnProgress = progress.Noop
	}
	if o.Warnings == nil {
		o.Warnings = io.Discard
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
}

// Run executes the full analysis pipeline over rootDir and returns the
// ranked result as a snapshot.
func Run(ctx context.Context, rootDir string, opts Options) (*debt.AnalysisSnapshot, error) {
	opts.normalize()
	cfg := opts.Config

	if err := checkpoint(ctx, "discover"); err != nil {
		return nil, err
	}
	opts.OnProgress("discover", "scanning files...")
	walker := discovery.NewWalker(cfg.DiscoveryExcludes...)
	scan, err := walker.Discover(rootDir)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}

	langs := discovery.DetectProjectLanguages(rootDir)
	if len(langs) == 0 {
		return nil, fmt.Errorf("no recognized source files found in %s", rootDir)
	}
	hasGo := false
	for _, l := range langs {
		if l == debt.LangGo {
			hasGo = true
		}
	}

	if err := checkpoint(ctx, "parse"); err != nil {
		return nil, err
	}
	opts.OnProgress("parse", "parsing packages...")

	var pkgs []*parser.ParsedPackage
	if hasGo {
		gp := &parser.GoPackagesParser{}
		pkgs, err = gp.Parse(rootDir)
		if err != nil {
			fmt.Fprintf(opts.Warnings, "warning: go parsing error: %v\n", err)
		}
	}

	tsParser, tsErr := parser.NewTreeSitterParser()
	if tsErr != nil {
		fmt.Fprintf(opts.Warnings, "warning: tree-sitter unavailable, skipping python/typescript: %v\n", tsErr)
		tsParser = nil
	} else {
		defer tsParser.Close()
	}

	byLang := scan.FilesByLanguage()

	var pyFiles, tsFiles []*parser.ParsedTreeSitterFile
	if tsParser != nil {
		if files, ok := byLang[debt.LangPython]; ok && len(files) > 0 {
			pyFiles, err = tsParser.ParseDiscoveredFiles(debt.LangPython, files)
			if err != nil {
				fmt.Fprintf(opts.Warnings, "warning: python parse error: %v\n", err)
			} else {
				defer parser.CloseAll(pyFiles)
			}
		}
		if files, ok := byLang[debt.LangTypeScript]; ok && len(files) > 0 {
			tsFiles, err = tsParser.ParseDiscoveredFiles(debt.LangTypeScript, files)
			if err != nil {
				fmt.Fprintf(opts.Warnings, "warning: typescript parse error: %v\n", err)
			} else {
				defer parser.CloseAll(tsFiles)
			}
		}
	}

	if err := checkpoint(ctx, "extract"); err != nil {
		return nil, err
	}
	opts.OnProgress("extract", "extracting function metrics...")
	metrics, extractionErrors, err := extractAll(pkgs, pyFiles, tsFiles)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	for _, e := range extractionErrors {
		fmt.Fprintf(opts.Warnings, "warning: %v\n", e)
	}
	if len(metrics) == 0 {
		return nil, fmt.Errorf("no functions extracted from %s", rootDir)
	}

	if err := checkpoint(ctx, "callgraph"); err != nil {
		return nil, err
	}
	opts.OnProgress("callgraph", "building call graph...")
	idx := callgraph.BuildIndex(metrics)
	g, resolutionWarnings := callgraph.Build(metrics, idx)
	for _, w := range resolutionWarnings {
		fmt.Fprintf(opts.Warnings, "warning: %v\n", w)
	}

	extraEntry := stringSet(cfg.ExtraEntryPoints)
	entryPoints := make(map[debt.FunctionId]bool, len(metrics))
	for _, m := range metrics {
		if callgraph.IsEntryPoint(m.Id, extraEntry) {
			entryPoints[m.Id] = true
		}
	}

	var fileUnits []pattern.FileUnit
	if hasGo && len(pkgs) > 0 {
		var candidates []pattern.DispatcherCandidate
		fileUnits, candidates = pattern.BuildGoFileUnits(pkgs, metrics)
		pattern.ResolveDispatchers(g, idx, candidates, cfg.ObserverRegistryNames)
	}

	if err := checkpoint(ctx, "purity"); err != nil {
		return nil, err
	}
	opts.OnProgress("purity", "analyzing purity...")
	purityByFn := purity.Analyze(metrics, g)

	if err := checkpoint(ctx, "entropy"); err != nil {
		return nil, err
	}
	opts.OnProgress("entropy", "computing entropy...")
	entropyByFn, err := computeEntropy(metrics, cfg)
	if err != nil {
		return nil, fmt.Errorf("entropy: %w", err)
	}

	if err := checkpoint(ctx, "coverage"); err != nil {
		return nil, err
	}
	opts.OnProgress("coverage", "propagating coverage...")
	weight := complexityWeight(metrics)
	direct := coverage.DirectCoverage(metrics, opts.Coverage)
	transitive, divergence := coverage.Transitive(g, direct, weight)
	if divergence != nil {
		fmt.Fprintf(opts.Warnings, "warning: %v\n", divergence)
	}
	coverageByFn := make(map[debt.FunctionId]debt.Coverage, len(metrics))
	for _, m := range metrics {
		coverageByFn[m.Id] = debt.Coverage{Direct: direct[m.Id], Transitive: transitive[m.Id]}
	}

	if err := checkpoint(ctx, "role"); err != nil {
		return nil, err
	}
	opts.OnProgress("role", "classifying roles...")
	roles := classifyRoles(metrics, g, purityByFn, entryPoints, cfg)

	if err := checkpoint(ctx, "patterns"); err != nil {
		return nil, err
	}
	opts.OnProgress("patterns", "detecting architectural patterns...")
	var fileLevelItems []*debt.DebtItem
	for _, fu := range fileUnits {
		if item := pattern.DetectBoilerplate(fu, cfg.BoilerplateDetection); item != nil {
			fileLevelItems = append(fileLevelItems, item)
			continue
		}
		if item := pattern.DetectGodObject(fu, cfg.GodObjectThresholds); item != nil {
			fileLevelItems = append(fileLevelItems, item)
		}
	}

	roots := rootModuleFiles(scan)
	whitelist := stringSet(cfg.OrphanWhitelist)
	suppressedByWhitelist := make(map[debt.FunctionId]bool, len(metrics))
	for _, m := range metrics {
		if orphanWhitelisted(m.Id.QualifiedName, whitelist) {
			suppressedByWhitelist[m.Id] = true
		}
	}
	deadCodeItems := pattern.DetectDeadCode(metrics, g, entryPoints, roots, transitive, suppressedByWhitelist)

	if err := checkpoint(ctx, "fuse"); err != nil {
		return nil, err
	}
	opts.OnProgress("fuse", "fusing debt items...")
	functionItems := debtitem.BuildFunctionItems(metrics, purityByFn, entropyByFn, coverageByFn, roles, cfg.ComplexityThresholds)
	items := debtitem.MergeAll(functionItems, fileLevelItems, deadCodeItems)

	if err := checkpoint(ctx, "score"); err != nil {
		return nil, err
	}
	opts.OnProgress("score", "scoring and ranking...")
	metricsById := make(map[debt.FunctionId]*debt.FunctionMetrics, len(metrics))
	for i := range metrics {
		metricsById[metrics[i].Id] = &metrics[i]
	}
	for _, item := range items {
		ctxFn := buildFunctionContext(item, metricsById, g, purityByFn, coverageByFn, roles, entropyByFn)
		scorer.Score(item, ctxFn, cfg)
	}
	scorer.Rank(items)

	if err := checkpoint(ctx, "suppress"); err != nil {
		return nil, err
	}
	opts.OnProgress("suppress", "applying suppressions...")
	suppressionMap, err := loadSuppressions(scan)
	if err != nil {
		fmt.Fprintf(opts.Warnings, "warning: suppression scan error: %v\n", err)
	}
	items = suppress.Apply(items, suppressionMap, opts.ShowSuppressed)

	validation := g.Validate(entryPointHandles(g, entryPoints))
	if depItem := suppress.SynthesizeDependencyItem(validation); depItem != nil {
		items = append(items, depItem)
		scorer.Rank(items)
	}

	snapshot := &debt.AnalysisSnapshot{
		Metadata:  buildMetadata(cfg, opts.Clock),
		DebtItems: items,
		Summary:   debt.BuildSummary(items, validation.HealthScore),
	}
	return snapshot, nil
}

func checkpoint(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return &debt.CancellationError{Stage: stage, Cause: err}
	}
	return nil
}

// extractAll runs every applicable language plugin concurrently: each
// plugin already iterates its own file set internally, so the
// per-language split is the unit of parallelism.
func extractAll(pkgs []*parser.ParsedPackage, pyFiles, tsFiles []*parser.ParsedTreeSitterFile) ([]debt.FunctionMetrics, []*debt.ExtractionError, error) {
	var plugins []extract.LanguagePlugin
	if len(pkgs) > 0 {
		plugins = append(plugins, goext.New(pkgs))
	}
	if len(pyFiles) > 0 {
		plugins = append(plugins, pyext.New(pyFiles))
	}
	if len(tsFiles) > 0 {
		plugins = append(plugins, tsext.New(tsFiles))
	}

	results := make([]extract.Result, len(plugins))
	g := new(errgroup.Group)
	for i, p := range plugins {
		i, p := i, p
		g.Go(func() error {
			r, err := p.Extract()
			if err != nil {
				return fmt.Errorf("%s extractor: %w", p.Language(), err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var metrics []debt.FunctionMetrics
	var errs []*debt.ExtractionError
	for _, r := range results {
		metrics = append(metrics, r.Metrics...)
		errs = append(errs, r.Errors...)
	}
	return metrics, errs, nil
}

// complexityWeight computes the standalone per-function complexity
// weight coverage.Transitive needs for its callee-weighted average: a
// blend matching the same 0.3/0.7 cyclomatic/cognitive split the later
// scoring stage uses, but computed independently and before role
// adjustment since coverage propagation runs ahead of role
// classification in this pipeline's stage order.
func complexityWeight(metrics []debt.FunctionMetrics) map[debt.FunctionId]float64 {
	out := make(map[debt.FunctionId]float64, len(metrics))
	for _, m := range metrics {
		out[m.Id] = 0.3*float64(m.Cyclomatic) + 0.7*float64(m.Cognitive)
	}
	return out
}

func computeEntropy(metrics []debt.FunctionMetrics, cfg *engineconfig.AnalysisConfig) (map[debt.FunctionId]debt.EntropyScore, error) {
	out := make(map[debt.FunctionId]debt.EntropyScore, len(metrics))
	if !cfg.Entropy.Enabled {
		for _, m := range metrics {
			out[m.Id] = debt.EntropyScore{EffectiveComplexityFactor: 1.0}
		}
		return out, nil
	}
	cache, err := entropy.NewCache(0)
	if err != nil {
		return nil, err
	}
	for _, m := range metrics {
		out[m.Id] = entropy.Compute(m, cfg.Entropy.MinTokens, cache)
	}
	return out, nil
}

func classifyRoles(metrics []debt.FunctionMetrics, g *debt.CallGraph, purityByFn map[debt.FunctionId]debt.Purity, entryPoints map[debt.FunctionId]bool, cfg *engineconfig.AnalysisConfig) map[debt.FunctionId]debt.RoleClassification {
	if !cfg.RoleClassification.Enabled {
		out := make(map[debt.FunctionId]debt.RoleClassification, len(metrics))
		for _, m := range metrics {
			out[m.Id] = debt.RoleClassification{Role: debt.RoleUtility}
		}
		return out
	}
	testCallers := make(map[debt.FunctionId]bool, len(metrics))
	for _, m := range metrics {
		testCallers[m.Id] = m.IsTest
	}
	rcfg := role.Config{
		MinDelegationRatio:  cfg.RoleClassification.MinDelegationRatio,
		MaxLocalComplexity:  cfg.RoleClassification.MaxLocalComplexity,
		MinCoordinatedFuncs: cfg.RoleClassification.MinCoordinatedFuncs,
	}
	return role.Classify(metrics, g, purityByFn, entryPoints, testCallers, rcfg)
}

// rootModuleFiles marks files living directly at the project root or
// under a conventional cmd/ entrypoint directory as "root module" for
// the dead-code detector's API-surface heuristic.
func rootModuleFiles(scan *discovery.ScanResult) map[string]bool {
	out := make(map[string]bool)
	for _, f := range scan.SourceFiles() {
		dir := filepath.Dir(f.RelPath)
		if dir == "." || strings.HasPrefix(f.RelPath, "cmd/") {
			out[f.Path] = true
		}
	}
	return out
}

func stringSet(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}

// orphanWhitelisted checks a qualified function name against the
// configured orphan whitelist, accepting either an exact match or a
// trailing-segment match (the whitelist is typically authored with bare
// names, same accommodation as suppression directives).
func orphanWhitelisted(qualifiedName string, whitelist map[string]bool) bool {
	if whitelist[qualifiedName] {
		return true
	}
	for name := range whitelist {
		suffix := "." + name
		if len(qualifiedName) > len(suffix) && strings.HasSuffix(qualifiedName, suffix) {
			return true
		}
	}
	return false
}

// loadSuppressions scans every discovered source file's comments for
// debtmap:allow/ignore directives. Files that can't be opened are
// skipped; suppression scanning never aborts the run.
func loadSuppressions(scan *discovery.ScanResult) (suppress.Map, error) {
	var allAllows [][]suppress.AllowRule
	var allLines [][]suppress.IgnoreLineRule
	for _, f := range scan.SourceFiles() {
		func() {
			file, err := os.Open(f.Path)
			if err != nil {
				return
			}
			defer file.Close()
			fa, fl := suppressio.ParseFile(f.Path, file)
			allAllows = append(allAllows, fa)
			allLines = append(allLines, fl)
		}()
	}
	return suppressio.Build(allAllows, allLines), nil
}

func entryPointHandles(g *debt.CallGraph, entryPoints map[debt.FunctionId]bool) map[debt.NodeHandle]bool {
	out := make(map[debt.NodeHandle]bool, len(entryPoints))
	for id := range entryPoints {
		if h, ok := g.Lookup(id); ok {
			out[h] = true
		}
	}
	return out
}

// buildFunctionContext reconstructs a scorer.FunctionContext for item.
// Complexity/testing items carry a qualified function name resolvable
// back to a FunctionId (FilePath, Function, StartLine all round-trip
// through debtitem.BuildFunctionItems unchanged); file-level items
// (god object, boilerplate, dependency) carry no function identity and
// get the applicable flags set directly instead.
func buildFunctionContext(item *debt.DebtItem, metricsById map[debt.FunctionId]*debt.FunctionMetrics, g *debt.CallGraph, purityByFn map[debt.FunctionId]debt.Purity, coverageByFn map[debt.FunctionId]debt.Coverage, roles map[debt.FunctionId]debt.RoleClassification, entropyByFn map[debt.FunctionId]debt.EntropyScore) scorer.FunctionContext {
	var ctx scorer.FunctionContext
	ctx.IsGodObjectFile = item.Kind.GodObject != nil
	ctx.IsHighConfidenceBoilerplate = item.Kind.Boilerplate != nil && item.Kind.Boilerplate.Score >= 0.70

	if item.Category != debt.CategoryComplexity && item.Category != debt.CategoryTesting && item.Category != debt.CategoryDead {
		return ctx
	}

	id := debt.FunctionId{FilePath: item.Location.FilePath, QualifiedName: item.Location.Function, StartLine: item.Location.StartLine}
	m, ok := metricsById[id]
	if !ok {
		return ctx
	}

	es := entropyByFn[id]
	cov := coverageByFn[id]
	ctx.Cyclomatic = m.Cyclomatic
	ctx.Cognitive = m.Cognitive
	ctx.EffectiveComplexityFactor = es.EffectiveComplexityFactor
	ctx.DirectCoverage = cov.Direct
	ctx.TransitiveCoverage = cov.Transitive
	ctx.Role = roles[id]

	if h, ok := g.Lookup(id); ok {
		ctx.UpstreamCallers = len(g.Callers(h))
		ctx.DownstreamCallees = len(g.Callees(h))
	}

	return ctx
}

func buildMetadata(cfg *engineconfig.AnalysisConfig, clock func() time.Time) debt.Metadata {
	configMap := make(map[string]interface{})
	if raw, err := json.Marshal(cfg); err == nil {
		_ = json.Unmarshal(raw, &configMap)
	}
	return debt.Metadata{
		Version:   version.Version,
		Timestamp: clock().UTC().Format(time.RFC3339),
		Config:    configMap,
	}
}

// Package extract defines the LanguagePlugin seam: Go is the
// fully-featured primary extractor (internal/extract/goext); Python and
// TypeScript are best-effort secondary extractors built on tree-sitter
// (internal/extract/pyext, internal/extract/tsext).
package extract

import "github.com/debtmap-go/debtmap/pkg/debt"

// Result is one extraction pass's output: the metrics it recovered, plus
// any recoverable per-function errors.
type Result struct {
	Metrics []debt.FunctionMetrics
	Errors  []*debt.ExtractionError
}

// LanguagePlugin extracts FunctionMetrics from the already-parsed files
// or packages it was constructed over. Implementations own their own parse-tree type; the
// core only ever sees the returned FunctionMetrics.
type LanguagePlugin interface {
	Language() debt.Language
	Extract() (Result, error)
}

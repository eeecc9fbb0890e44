package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/debtmap-go/debtmap/pkg/debt"
)

// Terminal renders snap to w as a human-readable, color-coded report.
// Non-verbose output caps the item list at nonVerboseTopN entries so a
// large codebase's first scan is readable; verbose prints every item.
func Terminal(w io.Writer, snap *debt.AnalysisSnapshot, verbose bool) {
	bold := color.New(color.Bold)

	bold.Fprintln(w, "Debtmap Analysis")
	fmt.Fprintln(w, "════════════════════════════════════════")
	fmt.Fprintf(w, "Version:   %s\n", snap.Metadata.Version)
	fmt.Fprintf(w, "Timestamp: %s\n", snap.Metadata.Timestamp)
	fmt.Fprintln(w)

	hc := healthColor(snap.Summary.HealthScore)
	fmt.Fprintf(w, "Call graph health: ")
	hc.Fprintf(w, "%.1f / 100\n", snap.Summary.HealthScore)

	fmt.Fprintln(w, "────────────────────────────────────────")
	fmt.Fprintln(w, "By category:")
	for _, cat := range []debt.Category{debt.CategoryArchitecture, debt.CategoryTesting, debt.CategoryComplexity, debt.CategoryDead, debt.CategoryDuplication, debt.CategorySmell, debt.CategoryDependency} {
		if n := snap.Summary.CountsByCategory[cat.String()]; n > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", cat.String()+":", n)
		}
	}
	fmt.Fprintln(w, "By severity:")
	for _, sev := range []debt.Severity{debt.SeverityCritical, debt.SeverityHigh, debt.SeverityMedium, debt.SeverityLow} {
		if n := snap.Summary.CountsBySeverity[sev.String()]; n > 0 {
			sc := severityColor(sev)
			sc.Fprintf(w, "  %-10s %d\n", sev.String()+":", n)
		}
	}

	items := snap.DebtItems
	limit := len(items)
	if !verbose && limit > nonVerboseTopN {
		limit = nonVerboseTopN
	}

	fmt.Fprintln(w)
	bold.Fprintln(w, "Ranked debt items")
	fmt.Fprintln(w, "════════════════════════════════════════")
	if len(items) == 0 {
		color.New(color.FgGreen).Fprintln(w, "  No debt items found.")
		return
	}

	for i, item := range items[:limit] {
		renderItem(w, i+1, item)
	}
	if !verbose && len(items) > limit {
		fmt.Fprintf(w, "\n... %d more item(s), rerun with --verbose to see all\n", len(items)-limit)
	}
}

func renderItem(w io.Writer, rank int, item *debt.DebtItem) {
	bold := color.New(color.Bold)
	sc := severityColor(item.Severity)

	loc := item.Location.FilePath
	if item.Location.Function != "" {
		loc = fmt.Sprintf("%s:%d %s", item.Location.FilePath, item.Location.StartLine, item.Location.Function)
	}

	bold.Fprintf(w, "%d. ", rank)
	sc.Fprintf(w, "[%s/%s] ", item.Category, item.Tier)
	fmt.Fprintf(w, "%s\n", loc)
	fmt.Fprintf(w, "     score=%.2f severity=%s\n", item.Score, item.Severity)
	fmt.Fprintf(w, "     %s\n", item.Rationale)
	if item.RecommendedAction != "" {
		fmt.Fprintf(w, "     -> %s\n", item.RecommendedAction)
	}
	if item.Suppressed != nil {
		color.New(color.FgHiBlack).Fprintf(w, "     suppressed (%s): %s\n", item.Suppressed.Rule, item.Suppressed.Justification)
	}
}

func severityColor(s debt.Severity) *color.Color {
	switch s {
	case debt.SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	case debt.SeverityHigh:
		return color.New(color.FgRed)
	case debt.SeverityMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

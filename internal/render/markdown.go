package render

import (
	"fmt"
	"io"

	"github.com/debtmap-go/debtmap/pkg/debt"
)

// Markdown renders snap as a Markdown report suitable for a PR comment
// or CI artifact: a summary table followed by one row per debt item.
func Markdown(w io.Writer, snap *debt.AnalysisSnapshot) {
	fmt.Fprintf(w, "# Debtmap Analysis\n\n")
	fmt.Fprintf(w, "Generated by debtmap %s at %s\n\n", snap.Metadata.Version, snap.Metadata.Timestamp)
	fmt.Fprintf(w, "Call graph health: **%.1f / 100**\n\n", snap.Summary.HealthScore)

	fmt.Fprintf(w, "| Category | Count |\n|---|---|\n")
	for _, cat := range []debt.Category{debt.CategoryArchitecture, debt.CategoryTesting, debt.CategoryComplexity, debt.CategoryDead, debt.CategoryDuplication, debt.CategorySmell, debt.CategoryDependency} {
		if n := snap.Summary.CountsByCategory[cat.String()]; n > 0 {
			fmt.Fprintf(w, "| %s | %d |\n", cat.String(), n)
		}
	}
	fmt.Fprintln(w)

	if len(snap.DebtItems) == 0 {
		fmt.Fprintln(w, "No debt items found.")
		return
	}

	fmt.Fprintf(w, "| # | Location | Category | Tier | Score | Rationale |\n|---|---|---|---|---|---|\n")
	for i, item := range snap.DebtItems {
		loc := item.Location.FilePath
		if item.Location.Function != "" {
			loc = fmt.Sprintf("%s:%d `%s`", item.Location.FilePath, item.Location.StartLine, item.Location.Function)
		}
		fmt.Fprintf(w, "| %d | %s | %s | %s | %.2f | %s |\n", i+1, loc, item.Category, item.Tier, item.Score, item.Rationale)
	}
}

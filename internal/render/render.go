// Package render formats an AnalysisSnapshot for terminal, JSON, and
// Markdown output: color-coded terminal display plus two machine- and
// PR-friendly serializations.
package render

import "github.com/fatih/color"

const (
	healthGreenMin  = 80.0
	healthYellowMin = 50.0

	nonVerboseTopN = 20
)

func healthColor(score float64) *color.Color {
	switch {
	case score >= healthGreenMin:
		return color.New(color.FgGreen)
	case score >= healthYellowMin:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

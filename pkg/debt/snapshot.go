package debt

import (
	"encoding/json"
	"math"
)

// Metadata identifies the run that produced a Snapshot.
type Metadata struct {
	Version   string                 `json:"version"`
	Timestamp string                 `json:"timestamp"`
	Config    map[string]interface{} `json:"config"`
}

// Summary aggregates a Snapshot's DebtItems for a quick-glance report:
// counts by category, counts by severity, and an overall health score
// derived from the call graph's ValidationReport.
type Summary struct {
	CountsByCategory map[string]int `json:"counts_by_category"`
	CountsBySeverity map[string]int `json:"counts_by_severity"`
	HealthScore      float64        `json:"health_score"`
}

// AnalysisSnapshot is the core's full output for one run:
// metadata, the ranked debt item list, and a summary. It is the unit
// the comparator diffs between two runs.
type AnalysisSnapshot struct {
	Metadata  Metadata    `json:"metadata"`
	DebtItems []*DebtItem `json:"debt_items"`
	Summary   Summary     `json:"summary"`
}

// BuildSummary derives a Summary from a ranked item list and a call
// graph health score.
func BuildSummary(items []*DebtItem, healthScore float64) Summary {
	byCategory := make(map[string]int)
	bySeverity := make(map[string]int)
	for _, item := range items {
		byCategory[item.Category.String()]++
		bySeverity[item.Severity.String()]++
	}
	return Summary{CountsByCategory: byCategory, CountsBySeverity: bySeverity, HealthScore: healthScore}
}

// CanonicalJSON renders snap per the canonicalization contract: object
// keys sorted and every float rounded to 6 significant digits, so two
// snapshots differing only in floating-point noise serialize
// byte-identical (needed for comparator/snapshot-diff testing).
func (snap *AnalysisSnapshot) CanonicalJSON() ([]byte, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return json.MarshalIndent(roundFloats(generic), "", "  ")
}

func roundFloats(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, inner := range val {
			val[k] = roundFloats(inner)
		}
		return val
	case []interface{}:
		for i, inner := range val {
			val[i] = roundFloats(inner)
		}
		return val
	case float64:
		return roundSignificant(val, 6)
	default:
		return v
	}
}

func roundSignificant(f float64, digits int) float64 {
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	magnitude := math.Ceil(math.Log10(math.Abs(f)))
	factor := math.Pow(10, float64(digits)-magnitude)
	return math.Round(f*factor) / factor
}

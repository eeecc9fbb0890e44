package debt

import (
	"math"
	"strings"
	"testing"
)

func TestBuildSummaryCountsByCategoryAndSeverity(t *testing.T) {
	items := []*DebtItem{
		{Category: CategoryComplexity, Severity: SeverityHigh},
		{Category: CategoryComplexity, Severity: SeverityMedium},
		{Category: CategoryTesting, Severity: SeverityHigh},
	}
	s := BuildSummary(items, 0.75)

	if s.CountsByCategory["complexity"] != 2 {
		t.Errorf("expected 2 complexity items, got %d", s.CountsByCategory["complexity"])
	}
	if s.CountsByCategory["testing"] != 1 {
		t.Errorf("expected 1 testing item, got %d", s.CountsByCategory["testing"])
	}
	if s.CountsBySeverity["high"] != 2 {
		t.Errorf("expected 2 high-severity items, got %d", s.CountsBySeverity["high"])
	}
	if s.HealthScore != 0.75 {
		t.Errorf("expected the health score to pass through unmodified, got %v", s.HealthScore)
	}
}

func TestBuildSummaryEmptyItemsYieldsEmptyCounts(t *testing.T) {
	s := BuildSummary(nil, 1.0)
	if len(s.CountsByCategory) != 0 || len(s.CountsBySeverity) != 0 {
		t.Error("expected empty count maps for no items")
	}
}

func TestCanonicalJSONRoundsFloatingPointNoise(t *testing.T) {
	snap := &AnalysisSnapshot{
		Metadata: Metadata{Version: "v1"},
		DebtItems: []*DebtItem{
			{Category: CategoryComplexity, Evidence: Evidence{"score": 12.0000000001}},
		},
	}
	out, err := snap.CanonicalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(out), "0000000001") {
		t.Error("expected floating-point noise to be rounded away")
	}
}

func TestCanonicalJSONIsByteIdenticalForNoiseDifferingSnapshots(t *testing.T) {
	snapA := &AnalysisSnapshot{DebtItems: []*DebtItem{{Evidence: Evidence{"x": 1.0000000001}}}}
	snapB := &AnalysisSnapshot{DebtItems: []*DebtItem{{Evidence: Evidence{"x": 1.0000000002}}}}

	outA, err := snapA.CanonicalJSON()
	if err != nil {
		t.Fatal(err)
	}
	outB, err := snapB.CanonicalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(outA) != string(outB) {
		t.Error("expected two snapshots differing only in floating-point noise to canonicalize identically")
	}
}

func TestRoundSignificantPreservesZeroNaNAndInf(t *testing.T) {
	if got := roundSignificant(0, 6); got != 0 {
		t.Errorf("expected 0 to round to 0, got %v", got)
	}
	if got := roundSignificant(math.NaN(), 6); !math.IsNaN(got) {
		t.Errorf("expected NaN to stay NaN, got %v", got)
	}
	if got := roundSignificant(math.Inf(1), 6); !math.IsInf(got, 1) {
		t.Errorf("expected +Inf to stay +Inf, got %v", got)
	}
}

func TestRoundSignificantRoundsToSixDigits(t *testing.T) {
	got := roundSignificant(1.0/3.0, 6)
	want := 0.333333
	if got != want {
		t.Errorf("roundSignificant(1/3, 6) = %v, want %v", got, want)
	}
}

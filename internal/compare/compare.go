// Package compare classifies debt-item deltas between two snapshots.
package compare

import "github.com/debtmap-go/debtmap/pkg/debt"

// Status is the classification of one matched or unmatched item pair.
type Status int

const (
	StatusResolved Status = iota
	StatusImproved
	StatusWorsened
	StatusNew
	StatusUnchanged
)

func (s Status) String() string {
	switch s {
	case StatusResolved:
		return "resolved"
	case StatusImproved:
		return "improved"
	case StatusWorsened:
		return "worsened"
	case StatusNew:
		return "new"
	default:
		return "unchanged"
	}
}

// key is the (file, function_name, category) matching key.
type key struct {
	filePath string
	function string
	category debt.Category
}

func keyOf(item *debt.DebtItem) key {
	return key{item.Location.FilePath, item.Location.Function, item.Category}
}

// Delta is one comparison result.
type Delta struct {
	Status Status
	Before *debt.DebtItem
	After  *debt.DebtItem
}

const (
	improvedRatio = 0.9
	worsenedRatio = 1.1
)

// Compare classifies every item in before/after per the matching rules.
func Compare(before, after []*debt.DebtItem) []Delta {
	beforeByKey := make(map[key]*debt.DebtItem, len(before))
	for _, item := range before {
		beforeByKey[keyOf(item)] = item
	}
	afterByKey := make(map[key]*debt.DebtItem, len(after))
	for _, item := range after {
		afterByKey[keyOf(item)] = item
	}

	var deltas []Delta

	for k, b := range beforeByKey {
		a, ok := afterByKey[k]
		if !ok {
			deltas = append(deltas, Delta{Status: StatusResolved, Before: b})
			continue
		}
		switch {
		case a.Score < b.Score*improvedRatio:
			deltas = append(deltas, Delta{Status: StatusImproved, Before: b, After: a})
		case a.Score > b.Score*worsenedRatio:
			deltas = append(deltas, Delta{Status: StatusWorsened, Before: b, After: a})
		default:
			deltas = append(deltas, Delta{Status: StatusUnchanged, Before: b, After: a})
		}
	}

	for k, a := range afterByKey {
		if _, ok := beforeByKey[k]; !ok {
			deltas = append(deltas, Delta{Status: StatusNew, After: a})
		}
	}

	return deltas
}

// TargetDelta is the detailed per-metric comparison record for a single
// caller-specified target location.
type TargetDelta struct {
	Status       Status
	ScoreBefore  float64
	ScoreAfter   float64
	MetricDeltas map[string]float64
}

// Target finds the before/after pair matching (filePath, function, category) and
// computes its detailed metric deltas, or nil if the target doesn't
// appear in either snapshot.
func Target(before, after []*debt.DebtItem, filePath, function string, category debt.Category) *TargetDelta {
	k := key{filePath, function, category}

	var b, a *debt.DebtItem
	for _, item := range before {
		if keyOf(item) == k {
			b = item
			break
		}
	}
	for _, item := range after {
		if keyOf(item) == k {
			a = item
			break
		}
	}

	if b == nil && a == nil {
		return nil
	}

	td := &TargetDelta{MetricDeltas: make(map[string]float64)}
	switch {
	case b == nil:
		td.Status = StatusNew
		td.ScoreAfter = a.Score
		for m, v := range a.Evidence {
			td.MetricDeltas[m] = v
		}
	case a == nil:
		td.Status = StatusResolved
		td.ScoreBefore = b.Score
		for m, v := range b.Evidence {
			td.MetricDeltas[m] = -v
		}
	default:
		td.ScoreBefore, td.ScoreAfter = b.Score, a.Score
		switch {
		case a.Score < b.Score*improvedRatio:
			td.Status = StatusImproved
		case a.Score > b.Score*worsenedRatio:
			td.Status = StatusWorsened
		default:
			td.Status = StatusUnchanged
		}
		for m, v := range a.Evidence {
			td.MetricDeltas[m] = v - b.Evidence[m]
		}
		for m, v := range b.Evidence {
			if _, ok := a.Evidence[m]; !ok {
				td.MetricDeltas[m] = -v
			}
		}
	}

	return td
}

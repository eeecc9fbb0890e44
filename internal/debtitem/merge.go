package debtitem

import "github.com/debtmap-go/debtmap/pkg/debt"

// MergeAll concatenates every item source (function-level complexity/
// testing items, file-level architecture items, dead-code items) into
// the single flat list the scorer scores and tiers. Ordering here is not the
// final ranked order; the scorer's tie-breaking rules own that.
func MergeAll(sources ...[]*debt.DebtItem) []*debt.DebtItem {
	var out []*debt.DebtItem
	for _, s := range sources {
		out = append(out, s...)
	}
	return out
}

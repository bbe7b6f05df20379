package engine

import (
	"math"
	"time"
)

// ============================================================================
// FILTERS — Dimension and Date Filtering via RecordView
// ============================================================================
// Single-pass filters: check every constraint per record in one loop.
// Return a SubView (index list into parent) — zero data copy.
// ============================================================================

// Filters define which records to include.
// Keys are dimension names. Values are allowed values.
// OR within a dimension, AND across dimensions. Empty = all.
type Filters struct {
	Dimensions map[string][]string `json:"dimensions"`
}

// IsEmpty returns true if no filters are set.
func (f Filters) IsEmpty() bool {
	for _, vals := range f.Dimensions {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// ApplyFilters returns a view of records matching all dimension filters.
// Matching is exact: category labels are identifiers, not free text.
// Empty filter = no restriction (returns original view).
func ApplyFilters(view RecordView, filters Filters) RecordView {
	if filters.IsEmpty() {
		return view
	}

	sets := make(map[string]map[string]bool)
	for dim, allowed := range filters.Dimensions {
		if len(allowed) > 0 {
			sets[dim] = toSet(allowed)
		}
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pass := true
		for dim, set := range sets {
			if !set[view.Dimension(i, dim)] {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}

	return newSubView(view, indices)
}

// ApplyDateRange keeps records whose timestamp measure (unix seconds) falls
// on a calendar day in [from, to], both inclusive. A zero bound is open.
// Records with no timestamp are dropped once any bound is set.
func ApplyDateRange(view RecordView, measure string, from, to time.Time) RecordView {
	if from.IsZero() && to.IsZero() {
		return view
	}
	from, to = Day(from), Day(to)

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		ts := view.Measure(i, measure)
		if math.IsNaN(ts) {
			continue
		}
		day := Day(time.Unix(int64(ts), 0))
		if !from.IsZero() && day.Before(from) {
			continue
		}
		if !to.IsZero() && day.After(to) {
			continue
		}
		indices = append(indices, i)
	}
	return newSubView(view, indices)
}

// Day truncates t to midnight UTC of its calendar day. Zero stays zero.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

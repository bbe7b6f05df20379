package engine

import (
	"math"
	"sort"
	"strings"
)

// ============================================================================
// AGGREGATORS — Grouping, Aggregation, and Sorting via RecordView
// ============================================================================
// All functions operate on RecordView — zero-copy access to any data source.
// Grouping produces SubViews (index lists into parent view).
// ============================================================================

// Aggregation functions understood by GroupAndAggregate.
const (
	AggCount         = "count"          // rows with a non-empty Field dimension (all rows if Field is empty)
	AggCountDistinct = "count_distinct" // distinct non-empty Field dimension values
	AggSum           = "sum"
	AggAvg           = "avg"
	AggMin           = "min"
	AggMax           = "max"
)

// KeySeparator joins the parts of a composite group key.
const KeySeparator = "\x1f"

// Aggregate names one measure computed per group.
type Aggregate struct {
	Name  string // output name, e.g. "total_sales"
	Func  string // one of the Agg* constants
	Field string // dimension key for counts, measure key otherwise
}

// SortKey orders groups by one aggregate.
type SortKey struct {
	Name string
	Desc bool
}

// GroupSpec describes one group → aggregate → sort → limit pass.
type GroupSpec struct {
	GroupBy    []string
	Aggregates []Aggregate
	SortBy     []SortKey
	Require    []string // drop groups whose value for any of these is NaN
	Limit      int      // 0 = all
}

// GroupAndAggregate is the main entry point for the aggregation pipeline.
// Pipeline: group → aggregate → drop undefined → sort → limit.
// Ties on every sort key are broken by ascending group key, so the output
// never depends on input order.
func GroupAndAggregate(view RecordView, spec GroupSpec) []Group {
	if view.Len() == 0 {
		return nil
	}

	// 1. Group
	var groups []Group
	if len(spec.GroupBy) == 0 {
		groups = []Group{{
			Key:   "all",
			Label: "Total",
			View:  view,
		}}
	} else {
		groups = groupByKeys(view, spec.GroupBy)
	}

	// 2. Aggregate
	for i := range groups {
		aggregateGroup(&groups[i], spec.Aggregates)
	}

	// 3. Drop groups with undefined required measures
	if len(spec.Require) > 0 {
		kept := groups[:0]
		for _, g := range groups {
			if g.defined(spec.Require) {
				kept = append(kept, g)
			}
		}
		groups = kept
	}

	// 4. Sort
	SortGroups(groups, spec.SortBy)

	// 5. Limit
	if spec.Limit > 0 && len(groups) > spec.Limit {
		groups = groups[:spec.Limit]
	}

	return groups
}

// ============================================================================
// GROUPING
// ============================================================================

func groupByKeys(view RecordView, dimensions []string) []Group {
	grouped := make(map[string][]int)
	parts := make(map[string][]string)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		keys := make([]string, len(dimensions))
		for d, dim := range dimensions {
			keys[d] = view.Dimension(i, dim)
		}
		key := strings.Join(keys, KeySeparator)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
			parts[key] = keys
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key,
			Keys:  parts[key],
			Label: strings.Join(parts[key], ", "),
			View:  newSubView(view, grouped[key]),
		})
	}
	return groups
}

// ============================================================================
// AGGREGATION
// ============================================================================

func aggregateGroup(group *Group, aggregates []Aggregate) {
	group.Count = group.View.Len()
	group.Values = make(map[string]float64, len(aggregates))

	for _, agg := range aggregates {
		var v float64
		switch agg.Func {
		case AggCount:
			v = float64(CountDimension(group.View, agg.Field))
		case AggCountDistinct:
			v = float64(CountDistinct(group.View, agg.Field))
		case AggAvg:
			v = AvgMeasure(group.View, agg.Field)
		case AggMin:
			v = MinMeasure(group.View, agg.Field)
		case AggMax:
			v = MaxMeasure(group.View, agg.Field)
		default:
			v = SumMeasure(group.View, agg.Field)
		}
		group.Values[agg.Name] = v
	}
}

// CountDimension counts rows with a non-empty value for dimension.
// An empty dimension key counts every row.
func CountDimension(view RecordView, dimension string) int {
	if dimension == "" {
		return view.Len()
	}
	n := 0
	for i := 0; i < view.Len(); i++ {
		if view.Dimension(i, dimension) != "" {
			n++
		}
	}
	return n
}

// CountDistinct counts distinct non-empty values of a dimension.
func CountDistinct(view RecordView, dimension string) int {
	seen := make(map[string]struct{})
	for i := 0; i < view.Len(); i++ {
		if v := view.Dimension(i, dimension); v != "" {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}

// SumMeasure sums a named measure across a view, skipping NaN.
func SumMeasure(view RecordView, measure string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		if v := view.Measure(i, measure); !math.IsNaN(v) {
			total += v
		}
	}
	return total
}

// AvgMeasure computes the mean of the defined values of a measure.
// Returns NaN when the view holds no defined value.
func AvgMeasure(view RecordView, measure string) float64 {
	var total float64
	n := 0
	for i := 0; i < view.Len(); i++ {
		v := view.Measure(i, measure)
		if math.IsNaN(v) {
			continue
		}
		total += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return total / float64(n)
}

// MaxMeasure returns the largest defined value of a measure, or NaN.
func MaxMeasure(view RecordView, measure string) float64 {
	m := math.NaN()
	for i := 0; i < view.Len(); i++ {
		v := view.Measure(i, measure)
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(m) || v > m {
			m = v
		}
	}
	return m
}

// MinMeasure returns the smallest defined value of a measure, or NaN.
func MinMeasure(view RecordView, measure string) float64 {
	m := math.NaN()
	for i := 0; i < view.Len(); i++ {
		v := view.Measure(i, measure)
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(m) || v < m {
			m = v
		}
	}
	return m
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups orders groups by the given keys. NaN values sort last in either
// direction; remaining ties fall back to ascending group key.
func SortGroups(groups []Group, keys []SortKey) {
	sort.SliceStable(groups, func(i, j int) bool {
		for _, k := range keys {
			a, b := groups[i].Values[k.Name], groups[j].Values[k.Name]
			aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
			switch {
			case aNaN && bNaN:
				continue
			case aNaN:
				return false
			case bNaN:
				return true
			case a == b:
				continue
			case k.Desc:
				return a > b
			default:
				return a < b
			}
		}
		return groups[i].Key < groups[j].Key
	})
}

// ============================================================================
// DISTINCT VALUES
// ============================================================================

// UniqueValues returns the sorted distinct non-empty values of a dimension.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Dimension(i, dimension)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	sort.Strings(result)
	return result
}

package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spektr-org/orderlens/engine"
	"github.com/spektr-org/orderlens/schema"
	"github.com/spektr-org/orderlens/store"
)

// ErrInvalidRange is returned when the start date is after the end date.
var ErrInvalidRange = errors.New("start date is after end date")

const dateLayout = "2006-01-02"

// Filter is the immutable filter configuration passed into every pipeline
// run. Bounds are calendar days; a zero bound is open. An empty category
// set means no restriction.
type Filter struct {
	start      time.Time
	end        time.Time
	categories []string
}

// NewFilter builds a Filter. Bounds are truncated to the day and the
// categories are deduplicated and sorted.
func NewFilter(start, end time.Time, categories ...string) Filter {
	return Filter{
		start:      engine.Day(start),
		end:        engine.Day(end),
		categories: normalizeCategories(categories),
	}
}

func normalizeCategories(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

// Start returns the first day of the range; zero means open.
func (f Filter) Start() time.Time { return f.start }

// End returns the last day of the range; zero means open.
func (f Filter) End() time.Time { return f.end }

// Categories returns a copy of the selected categories.
func (f Filter) Categories() []string {
	if f.categories == nil {
		return nil
	}
	out := make([]string, len(f.categories))
	copy(out, f.categories)
	return out
}

// WithRange returns a copy of f with new bounds.
func (f Filter) WithRange(start, end time.Time) Filter {
	return Filter{start: engine.Day(start), end: engine.Day(end), categories: f.categories}
}

// WithCategories returns a copy of f with a new category set.
func (f Filter) WithCategories(categories ...string) Filter {
	return Filter{start: f.start, end: f.end, categories: normalizeCategories(categories)}
}

// Validate reports ErrInvalidRange when both bounds are set and start > end.
func (f Filter) Validate() error {
	if !f.start.IsZero() && !f.end.IsZero() && f.start.After(f.end) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidRange, f.start.Format(dateLayout), f.end.Format(dateLayout))
	}
	return nil
}

// Apply is the scan form of the filter stage over any view exposing the
// order schema. It never mutates view.
func (f Filter) Apply(view engine.RecordView) engine.RecordView {
	out := engine.ApplyDateRange(view, schema.KeyPurchasedAt, f.start, f.end)
	if len(f.categories) > 0 {
		out = engine.ApplyFilters(out, engine.Filters{
			Dimensions: map[string][]string{schema.KeyCategory: f.categories},
		})
	}
	return out
}

// Select is the indexed form of the filter stage. It returns the same rows,
// in the same order, as Apply over st.View().
func (f Filter) Select(st *store.Store) engine.RecordView {
	return st.Subset(st.Select(f.start, f.end, f.categories))
}

// Period renders the date range for display.
func (f Filter) Period() string {
	switch {
	case f.start.IsZero() && f.end.IsZero():
		return "All time"
	case f.end.IsZero():
		return "From " + f.start.Format(dateLayout)
	case f.start.IsZero():
		return "Until " + f.end.Format(dateLayout)
	case f.start.Equal(f.end):
		return f.start.Format(dateLayout)
	}
	return fmt.Sprintf("%s – %s", f.start.Format(dateLayout), f.end.Format(dateLayout))
}

func (f Filter) String() string {
	if len(f.categories) == 0 {
		return f.Period() + ", all categories"
	}
	return f.Period() + ", " + strings.Join(f.categories, ", ")
}

// AppliedFilter is the serialisable form of a Filter.
type AppliedFilter struct {
	Start      string   `json:"start,omitempty" yaml:"start,omitempty"`
	End        string   `json:"end,omitempty" yaml:"end,omitempty"`
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	Period     string   `json:"period" yaml:"period"`
}

// Summary returns the serialisable form of f.
func (f Filter) Summary() AppliedFilter {
	a := AppliedFilter{Categories: f.Categories(), Period: f.Period()}
	if !f.start.IsZero() {
		a.Start = f.start.Format(dateLayout)
	}
	if !f.end.IsZero() {
		a.End = f.end.Format(dateLayout)
	}
	return a
}

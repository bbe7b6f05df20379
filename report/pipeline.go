package report

import (
	"context"
	"fmt"

	"github.com/op/go-logging"

	"github.com/spektr-org/orderlens/engine"
	"github.com/spektr-org/orderlens/schema"
	"github.com/spektr-org/orderlens/store"
)

// ============================================================================
// PIPELINE — Filter + all aggregators in one pass
// ============================================================================
// Entry point: Run(ctx, store, filter, opts...)
//
// Pipeline:
//   1. Validate the filter
//   2. Select the filtered view through the store's bitmaps
//   3. Run each aggregator whose columns were loaded
//   4. Return a Dashboard
//
// The context is checked between aggregators so a superseded run stops
// early. The store is never mutated.
// ============================================================================

var log = logging.MustGetLogger("report")

// Dashboard is the result of one pipeline run. It is immutable once
// returned.
type Dashboard struct {
	Filter          AppliedFilter   `json:"filter" yaml:"filter"`
	TotalRecords    int             `json:"totalRecords" yaml:"totalRecords"`
	FilteredRecords int             `json:"filteredRecords" yaml:"filteredRecords"`
	Warnings        []string        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	TopCategories   []CategorySales `json:"topCategories" yaml:"topCategories"`
	Reviews         ReviewRanking   `json:"reviews" yaml:"reviews"`
	BestSellers     []SellerStats   `json:"bestSellers" yaml:"bestSellers"`
	Payments        []PaymentShare  `json:"payments" yaml:"payments"`
	Regions         RegionMap       `json:"regions" yaml:"regions"`
}

// Empty reports whether the filter matched no record.
func (d *Dashboard) Empty() bool { return d.FilteredRecords == 0 }

// Run validates f, filters st and computes every report.
//
// Options:
//   - WithLimits(l) — table sizes
//   - WithMaxRadius(r) — radius of the busiest region marker
//   - WithRegionScope(s) — map the filtered view or the whole store
func Run(ctx context.Context, st *store.Store, f Filter, opts ...Option) (*Dashboard, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	cfg := applyOptions(opts)

	view := f.Select(st)
	log.Debugf("📊 Filter %s: %d of %d records", f, view.Len(), st.Len())

	d := &Dashboard{
		Filter:          f.Summary(),
		TotalRecords:    st.Len(),
		FilteredRecords: view.Len(),
		TopCategories:   []CategorySales{},
		Reviews:         ReviewRanking{Best: []CategoryScore{}, Worst: []CategoryScore{}},
		BestSellers:     []SellerStats{},
		Payments:        []PaymentShare{},
		Regions:         RegionMap{Regions: []Region{}},
	}
	if view.Len() == 0 {
		d.Warnings = append(d.Warnings, "no records match the current filter")
	}

	unavailable := make(map[string]bool)
	for _, r := range st.Unavailable() {
		unavailable[r] = true
		d.Warnings = append(d.Warnings, fmt.Sprintf("%s skipped: missing columns %v", r, missingFor(st, r)))
	}

	steps := []struct {
		name string
		run  func()
	}{
		{schema.ReportTopCategories, func() { d.TopCategories = TopCategories(view, cfg.Limits.TopCategories) }},
		{schema.ReportReviews, func() { d.Reviews = ReviewScores(view, cfg.Limits.Reviews) }},
		{schema.ReportBestSellers, func() { d.BestSellers = BestSellers(view, cfg.Limits.Sellers) }},
		{schema.ReportPayments, func() { d.Payments = PaymentMethods(view, cfg.Limits.Payments) }},
		{schema.ReportRegions, func() {
			source := view
			if cfg.RegionScope == ScopeAll {
				source = st.View()
			}
			d.Regions = TopRegions(source, cfg.Limits.Regions, cfg.MaxRadius)
		}},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if unavailable[step.name] {
			continue
		}
		step.run()
	}

	return d, nil
}

func missingFor(st *store.Store, report string) []string {
	var out []string
	for _, key := range schema.RequiredFor(report) {
		if !st.Available(key) {
			out = append(out, key)
		}
	}
	return out
}

// Scan runs the aggregators over an arbitrary view with the order schema,
// bypassing the store indexes. Useful for ad-hoc record slices.
func Scan(view engine.RecordView, f Filter, opts ...Option) (*Dashboard, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	cfg := applyOptions(opts)
	filtered := f.Apply(view)

	regionSource := filtered
	if cfg.RegionScope == ScopeAll {
		regionSource = view
	}

	d := &Dashboard{
		Filter:          f.Summary(),
		TotalRecords:    view.Len(),
		FilteredRecords: filtered.Len(),
		TopCategories:   TopCategories(filtered, cfg.Limits.TopCategories),
		Reviews:         ReviewScores(filtered, cfg.Limits.Reviews),
		BestSellers:     BestSellers(filtered, cfg.Limits.Sellers),
		Payments:        PaymentMethods(filtered, cfg.Limits.Payments),
		Regions:         TopRegions(regionSource, cfg.Limits.Regions, cfg.MaxRadius),
	}
	if filtered.Len() == 0 {
		d.Warnings = append(d.Warnings, "no records match the current filter")
	}
	return d, nil
}

package store

import (
	"math"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/orderlens/engine"
	"github.com/spektr-org/orderlens/schema"
)

// ============================================================================
// FIXTURES
// ============================================================================

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func order(id, ts, category string) Order {
	return Order{
		OrderID:     id,
		PurchasedAt: day(ts),
		Category:    category,
		ReviewScore: math.NaN(),
		Latitude:    math.NaN(),
		Longitude:   math.NaN(),
	}
}

// Deliberately out of time order.
func sampleOrders() []Order {
	return []Order{
		order("5", "2018-01-03 09:00", "toys"),
		order("1", "2018-01-01 08:00", "toys"),
		order("3", "2018-01-02 23:59", "books"),
		order("2", "2018-01-01 22:30", "books"),
		order("4", "2018-01-03 00:00", "garden"),
		order("6", "2018-01-05 12:00", "books"),
	}
}

func ids(view engine.RecordView) []string {
	out := make([]string, view.Len())
	for i := range out {
		out[i] = view.Dimension(i, schema.KeyOrderID)
	}
	return out
}

// ============================================================================
// STORE TESTS
// ============================================================================

func TestNewSortsByPurchaseTime(t *testing.T) {
	s := New(sampleOrders(), nil)
	require.Equal(t, 6, s.Len())
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, ids(s.View()))
}

func TestNewDoesNotAliasInput(t *testing.T) {
	in := sampleOrders()
	s := New(in, nil)
	in[0].Category = "changed"
	assert.NotContains(t, s.Categories(), "changed")
}

func TestCategories(t *testing.T) {
	s := New(sampleOrders(), nil)
	assert.Equal(t, []string{"books", "garden", "toys"}, s.Categories())
}

func TestBounds(t *testing.T) {
	s := New(sampleOrders(), nil)
	first, last, ok := s.Bounds()
	require.True(t, ok)
	assert.Equal(t, day("2018-01-01 00:00"), first)
	assert.Equal(t, day("2018-01-05 00:00"), last)

	_, _, ok = New(nil, nil).Bounds()
	assert.False(t, ok)
}

func TestSelectDateRangeInclusive(t *testing.T) {
	s := New(sampleOrders(), nil)

	bm := s.Select(day("2018-01-01 00:00"), day("2018-01-02 00:00"), nil)
	assert.Equal(t, []string{"1", "2", "3"}, ids(s.Subset(bm)))

	bm = s.Select(day("2018-01-03 00:00"), day("2018-01-03 00:00"), nil)
	assert.Equal(t, []string{"4", "5"}, ids(s.Subset(bm)))
}

func TestSelectOpenBounds(t *testing.T) {
	s := New(sampleOrders(), nil)

	assert.Equal(t, uint64(6), s.Select(time.Time{}, time.Time{}, nil).GetCardinality())
	assert.Equal(t, []string{"4", "5", "6"}, ids(s.Subset(s.Select(day("2018-01-03 00:00"), time.Time{}, nil))))
	assert.Equal(t, []string{"1", "2"}, ids(s.Subset(s.Select(time.Time{}, day("2018-01-01 00:00"), nil))))
}

func TestSelectCategories(t *testing.T) {
	s := New(sampleOrders(), nil)

	bm := s.Select(time.Time{}, time.Time{}, []string{"books"})
	assert.Equal(t, []string{"2", "3", "6"}, ids(s.Subset(bm)))

	bm = s.Select(day("2018-01-01 00:00"), day("2018-01-03 00:00"), []string{"books", "garden"})
	assert.Equal(t, []string{"2", "3", "4"}, ids(s.Subset(bm)))
}

func TestSelectUnknownCategoryIsEmpty(t *testing.T) {
	s := New(sampleOrders(), nil)
	assert.True(t, s.Select(time.Time{}, time.Time{}, []string{"nope"}).IsEmpty())
}

func TestSelectEmptyRange(t *testing.T) {
	s := New(sampleOrders(), nil)
	assert.True(t, s.Select(day("2019-01-01 00:00"), day("2019-02-01 00:00"), nil).IsEmpty())
}

// The bitmap path must agree with a plain scan over the same rows.
func TestSelectMatchesScan(t *testing.T) {
	s := New(sampleOrders(), nil)

	cases := []struct {
		from, to time.Time
		cats     []string
	}{
		{time.Time{}, time.Time{}, nil},
		{day("2018-01-01 00:00"), day("2018-01-01 00:00"), nil},
		{day("2018-01-02 00:00"), day("2018-01-05 00:00"), []string{"toys"}},
		{day("2018-01-01 00:00"), day("2018-01-04 00:00"), []string{"books", "toys"}},
		{time.Time{}, day("2018-01-03 00:00"), []string{"garden"}},
	}

	for _, tc := range cases {
		scan := engine.ApplyDateRange(s.View(), schema.KeyPurchasedAt, tc.from, tc.to)
		if len(tc.cats) > 0 {
			scan = engine.ApplyFilters(scan, engine.Filters{
				Dimensions: map[string][]string{schema.KeyCategory: tc.cats},
			})
		}
		got := s.Subset(s.Select(tc.from, tc.to, tc.cats))
		assert.Equal(t, ids(scan), ids(got), spew.Sdump(tc))
	}
}

func TestSelectResultIsCallerOwned(t *testing.T) {
	s := New(sampleOrders(), nil)
	bm := s.Select(time.Time{}, time.Time{}, []string{"books"})
	bm.Clear()
	assert.Equal(t, uint64(3), s.Select(time.Time{}, time.Time{}, []string{"books"}).GetCardinality())
}

func TestAvailable(t *testing.T) {
	s := New(sampleOrders(), []string{schema.KeyOrderID, schema.KeyPurchasedAt, schema.KeyCategoryPT})
	assert.True(t, s.Available(schema.KeyCategory))
	assert.False(t, s.Available(schema.KeySellerID))
	assert.Equal(t,
		[]string{schema.ReportReviews, schema.ReportBestSellers, schema.ReportPayments, schema.ReportRegions},
		s.Unavailable())
}

// ============================================================================
// ORDER TESTS
// ============================================================================

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, "toys", NormalizeCategory("toys", "brinquedos"))
	assert.Equal(t, "brinquedos", NormalizeCategory("", "brinquedos"))
	assert.Equal(t, schema.UnknownCategory, NormalizeCategory("", ""))
}

func TestNormalizeScore(t *testing.T) {
	assert.Equal(t, 5.0, NormalizeScore(5))
	assert.Equal(t, 1.0, NormalizeScore(1))
	assert.True(t, math.IsNaN(NormalizeScore(0)))
	assert.True(t, math.IsNaN(NormalizeScore(6)))
	assert.True(t, math.IsNaN(NormalizeScore(math.NaN())))
}

func TestViewExposesMeasures(t *testing.T) {
	o := order("1", "2018-01-01 08:00", "toys")
	o.ReviewScore = 4
	o.PaymentCount = 2
	v := View([]Order{o})

	assert.Equal(t, "toys", v.Dimension(0, schema.KeyCategory))
	assert.Equal(t, 4.0, v.Measure(0, schema.KeyReviewScore))
	assert.Equal(t, 2.0, v.Measure(0, schema.KeyPaymentCount))
	assert.Equal(t, float64(o.PurchasedAt.Unix()), v.Measure(0, schema.KeyPurchasedAt))
	assert.True(t, math.IsNaN(v.Measure(0, schema.KeyLatitude)))
	assert.True(t, math.IsNaN(v.Measure(0, "nope")))
}

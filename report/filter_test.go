package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/orderlens/store"
)

// ============================================================================
// FILTER STAGE TESTS
// ============================================================================

func TestFilterThreeRecordScenario(t *testing.T) {
	st := store.New([]store.Order{
		row("1", "2018-01-01", "A"),
		row("2", "2018-01-02", "A"),
		row("3", "2018-01-01", "B"),
	}, nil)

	f := NewFilter(date("2018-01-01"), date("2018-01-01"))
	view := f.Select(st)
	assert.ElementsMatch(t, []string{"1", "3"}, orderIDs(view))

	assert.Equal(t, []CategorySales{{"A", 1}, {"B", 1}}, TopCategories(view, 10))
}

func TestFilterIdempotent(t *testing.T) {
	view := store.View(marketOrders())
	f := NewFilter(date("2018-01-02"), date("2018-01-05"), "books", "toys")

	once := f.Apply(view)
	twice := f.Apply(once)
	assert.Equal(t, orderIDs(once), orderIDs(twice))
	assert.Equal(t, []string{"o2", "o3", "o5"}, orderIDs(once))
}

func TestFilterSelectMatchesApply(t *testing.T) {
	st := marketStore()
	filters := []Filter{
		NewFilter(time.Time{}, time.Time{}),
		NewFilter(date("2018-01-03"), date("2018-01-03")),
		NewFilter(date("2018-01-01"), date("2018-01-04"), "toys"),
		NewFilter(time.Time{}, date("2018-01-05"), "books", "garden"),
		NewFilter(date("2018-01-06"), time.Time{}, "toys", "health"),
	}
	for _, f := range filters {
		assert.Equal(t, orderIDs(f.Apply(st.View())), orderIDs(f.Select(st)), f.String())
	}
}

func TestFilterDoesNotMutateStore(t *testing.T) {
	st := marketStore()
	before := orderIDs(st.View())
	NewFilter(date("2018-01-03"), date("2018-01-04"), "books").Select(st)
	assert.Equal(t, before, orderIDs(st.View()))
}

func TestFilterFilteredCountNeverExceedsUnfiltered(t *testing.T) {
	st := marketStore()
	all := make(map[string]int)
	for _, c := range TopCategories(st.View(), 0) {
		all[c.Category] = c.TotalSales
	}

	for _, f := range []Filter{
		NewFilter(date("2018-01-01"), date("2018-01-03")),
		NewFilter(date("2018-01-05"), date("2018-01-07"), "toys"),
		NewFilter(date("2018-01-02"), date("2018-01-02")),
	} {
		for _, c := range TopCategories(f.Select(st), 0) {
			assert.LessOrEqual(t, c.TotalSales, all[c.Category], f.String())
		}
	}
}

func TestFilterValidate(t *testing.T) {
	assert.NoError(t, NewFilter(date("2018-01-01"), date("2018-01-01")).Validate())
	assert.NoError(t, NewFilter(time.Time{}, date("2018-01-01")).Validate())

	err := NewFilter(date("2018-02-01"), date("2018-01-01")).Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Contains(t, err.Error(), "2018-02-01 > 2018-01-01")
}

func TestNewFilterNormalizes(t *testing.T) {
	f := NewFilter(date("2018-01-01").Add(15*time.Hour), time.Time{}, "toys", " books ", "toys", "")
	assert.Equal(t, date("2018-01-01"), f.Start())
	assert.True(t, f.End().IsZero())
	assert.Equal(t, []string{"books", "toys"}, f.Categories())

	cats := f.Categories()
	cats[0] = "changed"
	assert.Equal(t, []string{"books", "toys"}, f.Categories())

	assert.Nil(t, NewFilter(time.Time{}, time.Time{}, "", " ").Categories())
}

func TestFilterWithCopies(t *testing.T) {
	f := NewFilter(date("2018-01-01"), date("2018-01-31"), "toys")
	g := f.WithRange(date("2018-02-01"), date("2018-02-28"))
	h := f.WithCategories()

	assert.Equal(t, date("2018-01-01"), f.Start())
	assert.Equal(t, []string{"toys"}, g.Categories())
	assert.Equal(t, date("2018-02-01"), g.Start())
	assert.Nil(t, h.Categories())
	assert.Equal(t, f.End(), h.End())
}

func TestFilterPeriod(t *testing.T) {
	assert.Equal(t, "All time", NewFilter(time.Time{}, time.Time{}).Period())
	assert.Equal(t, "From 2018-01-01", NewFilter(date("2018-01-01"), time.Time{}).Period())
	assert.Equal(t, "Until 2018-01-31", NewFilter(time.Time{}, date("2018-01-31")).Period())
	assert.Equal(t, "2018-01-05", NewFilter(date("2018-01-05"), date("2018-01-05")).Period())
	assert.Equal(t, "2018-01-01 – 2018-01-31", NewFilter(date("2018-01-01"), date("2018-01-31")).Period())
}

func TestFilterSummary(t *testing.T) {
	s := NewFilter(date("2018-01-01"), time.Time{}, "toys").Summary()
	assert.Equal(t, AppliedFilter{Start: "2018-01-01", Categories: []string{"toys"}, Period: "From 2018-01-01"}, s)
}

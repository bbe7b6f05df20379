package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestApplyFilters(t *testing.T) {
	view := marketView()

	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{"or within a dimension",
			Filters{Dimensions: map[string][]string{"category": {"toys", "books"}}},
			[]string{"o1", "o1", "o2", "o3", "o5"}},
		{"and across dimensions",
			Filters{Dimensions: map[string][]string{"category": {"toys"}, "seller_id": {"s1"}}},
			[]string{"o1"}},
		{"matching is exact",
			Filters{Dimensions: map[string][]string{"category": {"Toys"}}},
			[]string{}},
		{"empty value list is no restriction",
			Filters{Dimensions: map[string][]string{"category": {}}},
			[]string{"o1", "o1", "o2", "o3", "o4", "o5", "o6"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dims(ApplyFilters(view, tt.filters), "order_id"))
		})
	}
}

func TestApplyFiltersEmptyReturnsView(t *testing.T) {
	view := marketView()
	assert.Same(t, view, ApplyFilters(view, Filters{}))
	assert.True(t, Filters{}.IsEmpty())
	assert.False(t, Filters{Dimensions: map[string][]string{"a": {"b"}}}.IsEmpty())
}

func TestApplyDateRange(t *testing.T) {
	view := marketView()

	tests := []struct {
		name     string
		from, to time.Time
		want     []string
	}{
		{"single day includes its last minute", date(2018, 1, 1), date(2018, 1, 1), []string{"o1", "o1"}},
		{"open start", time.Time{}, date(2018, 1, 3), []string{"o1", "o1", "o2", "o6"}},
		{"open end", date(2018, 1, 5), time.Time{}, []string{"o3", "o5"}},
		{"bounds are truncated to the day", date(2018, 1, 5).Add(15 * time.Hour), date(2018, 1, 6).Add(time.Hour), []string{"o3", "o5"}},
		{"nothing in range", date(2019, 1, 1), date(2019, 12, 31), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dims(ApplyDateRange(view, "ts", tt.from, tt.to), "order_id"))
		})
	}
}

func TestApplyDateRangeOpenKeepsUndated(t *testing.T) {
	view := marketView()
	assert.Same(t, view, ApplyDateRange(view, "ts", time.Time{}, time.Time{}))
}

func TestDay(t *testing.T) {
	plus5 := time.FixedZone("UTC+5", 5*60*60)
	assert.Equal(t, date(2018, 1, 4), Day(time.Date(2018, 1, 5, 3, 0, 0, 0, plus5)))
	assert.Equal(t, date(2018, 1, 5), Day(time.Date(2018, 1, 5, 23, 59, 59, 0, time.UTC)))
	assert.True(t, Day(time.Time{}).IsZero())
}

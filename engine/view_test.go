package engine

import (
	"math"
	"testing"

	"github.com/RoaringBitmap/roaring"
	"github.com/stretchr/testify/assert"
)

func TestSliceView(t *testing.T) {
	view := marketView()
	assert.Equal(t, 7, view.Len())
	assert.ElementsMatch(t, []string{"category", "order_id", "seller_id"}, view.DimensionKeys())
	assert.ElementsMatch(t, []string{"score", "ts"}, view.MeasureKeys())

	assert.Equal(t, "", view.Dimension(-1, "category"))
	assert.Equal(t, "", view.Dimension(7, "category"))
	assert.True(t, math.IsNaN(view.Measure(2, "score")), "absent measure reads as NaN")
	assert.True(t, math.IsNaN(view.Measure(99, "score")))
}

func TestBitmapView(t *testing.T) {
	parent := marketView()

	sub := NewBitmapView(parent, roaring.BitmapOf(1, 3, 100))
	assert.Equal(t, 2, sub.Len(), "indices past the parent are ignored")
	assert.Equal(t, []string{"toys", "books"}, dims(sub, "category"))
	assert.Equal(t, 4.0, sub.Measure(1, "score"))
	assert.Equal(t, "", sub.Dimension(2, "category"))
	assert.True(t, math.IsNaN(sub.Measure(-1, "score")))
	assert.Equal(t, parent.DimensionKeys(), sub.DimensionKeys())

	assert.Equal(t, 0, NewBitmapView(parent, nil).Len())
	assert.Equal(t, 0, NewBitmapView(parent, roaring.New()).Len())
}

func TestBitmapViewOfSubView(t *testing.T) {
	toys := ApplyFilters(marketView(), Filters{Dimensions: map[string][]string{"category": {"toys"}}})
	sub := NewBitmapView(toys, roaring.BitmapOf(2))
	assert.Equal(t, []string{"o5"}, dims(sub, "order_id"))
}

type point struct {
	name  string
	value float64
}

func TestDomainAdapter(t *testing.T) {
	adapter := NewDomainAdapter[point]().
		Dimension("name", func(p point) string { return p.name }).
		Measure("value", func(p point) float64 { return p.value }).
		Measure("double", func(p point) float64 { return 2 * p.value })

	data := []point{{"a", 1}, {"b", 2}}
	view := adapter.Bind(data)

	assert.Equal(t, 2, view.Len())
	assert.Equal(t, []string{"name"}, view.DimensionKeys())
	assert.Equal(t, []string{"value", "double"}, view.MeasureKeys())
	assert.Equal(t, "b", view.Dimension(1, "name"))
	assert.Equal(t, 4.0, view.Measure(1, "double"))
	assert.Equal(t, "", view.Dimension(0, "missing"))
	assert.True(t, math.IsNaN(view.Measure(0, "missing")))
	assert.True(t, math.IsNaN(view.Measure(5, "value")))

	data[0].value = 10
	assert.Equal(t, 10.0, view.Measure(0, "value"), "bound views read the caller's slice")
}

func TestDomainAdapterReregister(t *testing.T) {
	adapter := NewDomainAdapter[point]().
		Measure("value", func(p point) float64 { return p.value }).
		Measure("value", func(p point) float64 { return -p.value })

	view := adapter.Bind([]point{{"a", 3}})
	assert.Equal(t, []string{"value"}, view.MeasureKeys())
	assert.Equal(t, -3.0, view.Measure(0, "value"))
}

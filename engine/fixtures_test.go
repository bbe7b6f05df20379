package engine

import (
	"math"
	"time"
)

func ts(day string, hour, minute int) float64 {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return float64(t.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute).Unix())
}

func rec(category, seller, order string, measures map[string]float64) Record {
	dims := map[string]string{"category": category, "order_id": order}
	if seller != "" {
		dims["seller_id"] = seller
	}
	return Record{Dimensions: dims, Measures: measures}
}

// marketView holds seven rows over five categories. Row 2 has no score,
// row 4 no timestamp, rows 5 and 6 no seller.
func marketView() RecordView {
	return NewSliceView([]Record{
		rec("toys", "s1", "o1", map[string]float64{"score": 5, "ts": ts("2018-01-01", 10, 0)}),
		rec("toys", "s2", "o1", map[string]float64{"score": 3, "ts": ts("2018-01-01", 23, 59)}),
		rec("books", "s1", "o2", map[string]float64{"ts": ts("2018-01-03", 8, 0)}),
		rec("books", "s3", "o3", map[string]float64{"score": 4, "ts": ts("2018-01-05", 12, 0)}),
		rec("garden", "s3", "o4", map[string]float64{"score": 1}),
		rec("toys", "", "o5", map[string]float64{"score": 2, "ts": ts("2018-01-06", 0, 0)}),
		rec("music", "", "o6", map[string]float64{"score": math.NaN(), "ts": ts("2018-01-02", 9, 30)}),
	})
}

func dims(view RecordView, key string) []string {
	out := make([]string, view.Len())
	for i := range out {
		out[i] = view.Dimension(i, key)
	}
	return out
}

func groupKeys(groups []Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}

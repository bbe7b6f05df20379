package report

import (
	"math"

	"github.com/spektr-org/orderlens/engine"
	"github.com/spektr-org/orderlens/schema"
)

// ============================================================================
// AGGREGATORS — The five ranked reports
// ============================================================================
// Each aggregator is a pure function of a filtered view. Empty input yields
// an empty table, never an error. Ties on the ranking measures fall back to
// the group key in ascending order.
// ============================================================================

const (
	aggTotalSales  = "total_sales"
	aggReviewScore = "review_score"
	aggLatitude    = "latitude"
	aggLongitude   = "longitude"
)

// CategorySales is one row of the top-categories table.
type CategorySales struct {
	Category   string `json:"category" yaml:"category"`
	TotalSales int    `json:"total_sales" yaml:"total_sales"`
}

// TopCategories counts distinct orders per category, busiest first.
func TopCategories(view engine.RecordView, limit int) []CategorySales {
	groups := engine.GroupAndAggregate(view, engine.GroupSpec{
		GroupBy:    []string{schema.KeyCategory},
		Aggregates: []engine.Aggregate{{Name: aggTotalSales, Func: engine.AggCountDistinct, Field: schema.KeyOrderID}},
		SortBy:     []engine.SortKey{{Name: aggTotalSales, Desc: true}},
		Limit:      limit,
	})

	out := make([]CategorySales, 0, len(groups))
	for _, g := range groups {
		out = append(out, CategorySales{
			Category:   g.Keys[0],
			TotalSales: int(g.Value(aggTotalSales)),
		})
	}
	return out
}

// CategoryScore is one row of a review ranking.
type CategoryScore struct {
	Category    string  `json:"category" yaml:"category"`
	ReviewScore float64 `json:"review_score" yaml:"review_score"`
}

// ReviewRanking holds the best and worst reviewed categories.
type ReviewRanking struct {
	Best  []CategoryScore `json:"best" yaml:"best"`
	Worst []CategoryScore `json:"worst" yaml:"worst"`
}

// ReviewScores ranks categories by mean review score. Categories without a
// single score are left out of both lists.
func ReviewScores(view engine.RecordView, limit int) ReviewRanking {
	spec := engine.GroupSpec{
		GroupBy:    []string{schema.KeyCategory},
		Aggregates: []engine.Aggregate{{Name: aggReviewScore, Func: engine.AggAvg, Field: schema.KeyReviewScore}},
		Require:    []string{aggReviewScore},
	}

	spec.SortBy = []engine.SortKey{{Name: aggReviewScore, Desc: true}}
	spec.Limit = limit
	best := engine.GroupAndAggregate(view, spec)

	spec.SortBy = []engine.SortKey{{Name: aggReviewScore}}
	worst := engine.GroupAndAggregate(view, spec)

	return ReviewRanking{
		Best:  categoryScores(best),
		Worst: categoryScores(worst),
	}
}

func categoryScores(groups []engine.Group) []CategoryScore {
	out := make([]CategoryScore, 0, len(groups))
	for _, g := range groups {
		out = append(out, CategoryScore{Category: g.Keys[0], ReviewScore: g.Value(aggReviewScore)})
	}
	return out
}

// SellerStats is one row of the best-sellers table. ReviewScore is nil when
// none of the seller's rows carries a score.
type SellerStats struct {
	SellerID    string   `json:"seller_id" yaml:"seller_id"`
	TotalSales  int      `json:"total_sales" yaml:"total_sales"`
	ReviewScore *float64 `json:"review_score,omitempty" yaml:"review_score,omitempty"`
}

// BestSellers ranks sellers by order rows, then by mean review score.
// Sellers without scores rank after scored sellers with the same count.
func BestSellers(view engine.RecordView, limit int) []SellerStats {
	groups := engine.GroupAndAggregate(view, engine.GroupSpec{
		GroupBy: []string{schema.KeySellerID},
		Aggregates: []engine.Aggregate{
			{Name: aggTotalSales, Func: engine.AggCount, Field: schema.KeyOrderID},
			{Name: aggReviewScore, Func: engine.AggAvg, Field: schema.KeyReviewScore},
		},
		SortBy: []engine.SortKey{
			{Name: aggTotalSales, Desc: true},
			{Name: aggReviewScore, Desc: true},
		},
		Limit: limit,
	})

	out := make([]SellerStats, 0, len(groups))
	for _, g := range groups {
		s := SellerStats{SellerID: g.Keys[0], TotalSales: int(g.Value(aggTotalSales))}
		if score := g.Value(aggReviewScore); !math.IsNaN(score) {
			s.ReviewScore = &score
		}
		out = append(out, s)
	}
	return out
}

// PaymentShare is one row of the payment-method table.
type PaymentShare struct {
	PaymentType string  `json:"payment_type" yaml:"payment_type"`
	Code        string  `json:"code" yaml:"code"`
	TotalSales  int     `json:"total_sales" yaml:"total_sales"`
	Share       float64 `json:"share" yaml:"share"` // percent of all counted rows
}

// PaymentMethods counts order rows per payment type, most used first.
// Shares are taken over every payment type, before the limit.
func PaymentMethods(view engine.RecordView, limit int) []PaymentShare {
	groups := engine.GroupAndAggregate(view, engine.GroupSpec{
		GroupBy:    []string{schema.KeyPaymentType},
		Aggregates: []engine.Aggregate{{Name: aggTotalSales, Func: engine.AggCount, Field: schema.KeyOrderID}},
		SortBy:     []engine.SortKey{{Name: aggTotalSales, Desc: true}},
	})

	var total float64
	for _, g := range groups {
		total += g.Value(aggTotalSales)
	}

	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}

	out := make([]PaymentShare, 0, len(groups))
	for _, g := range groups {
		code := g.Keys[0]
		count := g.Value(aggTotalSales)
		var share float64
		if total > 0 {
			share = count / total * 100
		}
		out = append(out, PaymentShare{
			PaymentType: PaymentLabel(code),
			Code:        code,
			TotalSales:  int(count),
			Share:       share,
		})
	}
	return out
}

// Region is one row of the top-regions table. Coordinates are nil when no
// row of the region is located.
type Region struct {
	City       string   `json:"city" yaml:"city"`
	State      string   `json:"state" yaml:"state"`
	TotalSales int      `json:"total_sales" yaml:"total_sales"`
	Latitude   *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Radius     float64  `json:"radius" yaml:"radius"`
	Intensity  float64  `json:"intensity" yaml:"intensity"`
	Color      string   `json:"color" yaml:"color"`
}

// Located reports whether the region can be placed on a map.
func (r Region) Located() bool { return r.Latitude != nil && r.Longitude != nil }

// RegionMap is the top-regions table plus the map centre, the mean
// position of the located regions. Center is nil when none is located.
type RegionMap struct {
	Regions []Region       `json:"regions" yaml:"regions"`
	Center  *engine.LatLng `json:"center,omitempty" yaml:"center,omitempty"`
}

// TopRegions counts order rows per (city, state) and averages their
// coordinates. Radius, intensity and colour are normalised over the emitted
// rows.
func TopRegions(view engine.RecordView, limit int, maxRadius float64) RegionMap {
	groups := engine.GroupAndAggregate(view, engine.GroupSpec{
		GroupBy: []string{schema.KeyCity, schema.KeyState},
		Aggregates: []engine.Aggregate{
			{Name: aggTotalSales, Func: engine.AggCount, Field: schema.KeyOrderID},
			{Name: aggLatitude, Func: engine.AggAvg, Field: schema.KeyLatitude},
			{Name: aggLongitude, Func: engine.AggAvg, Field: schema.KeyLongitude},
		},
		SortBy: []engine.SortKey{{Name: aggTotalSales, Desc: true}},
		Limit:  limit,
	})
	if len(groups) == 0 {
		return RegionMap{Regions: []Region{}}
	}

	minCount, maxCount := math.MaxInt, 0
	for _, g := range groups {
		n := int(g.Value(aggTotalSales))
		minCount = min(minCount, n)
		maxCount = max(maxCount, n)
	}

	out := RegionMap{Regions: make([]Region, 0, len(groups))}
	var sumLat, sumLng float64
	located := 0
	for _, g := range groups {
		n := int(g.Value(aggTotalSales))
		intensity := Intensity(n, minCount, maxCount)
		r := Region{
			City:       g.Keys[0],
			State:      g.Keys[1],
			TotalSales: n,
			Radius:     MarkerRadius(n, maxCount, maxRadius),
			Intensity:  intensity,
			Color:      DivergingColor(intensity),
		}
		lat, lng := g.Value(aggLatitude), g.Value(aggLongitude)
		if !math.IsNaN(lat) && !math.IsNaN(lng) {
			r.Latitude, r.Longitude = &lat, &lng
			sumLat += lat
			sumLng += lng
			located++
		}
		out.Regions = append(out.Regions, r)
	}

	if located > 0 {
		out.Center = &engine.LatLng{Lat: sumLat / float64(located), Lng: sumLng / float64(located)}
	}
	return out
}

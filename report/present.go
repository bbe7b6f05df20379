package report

import (
	"fmt"
	"strings"

	"github.com/spektr-org/orderlens/engine"
)

// ============================================================================
// PRESENTATION — Render-ready charts and tables for a Dashboard
// ============================================================================
// Nothing here computes new numbers; it only reshapes aggregator output
// into engine.ChartConfig and engine.TableData.
// ============================================================================

// Table and chart names.
const (
	NameTopCategories = "top_categories"
	NameBestReviews   = "best_reviews"
	NameWorstReviews  = "worst_reviews"
	NameBestSellers   = "best_sellers"
	NameSalesVsReview = "sales_vs_review"
	NamePayments      = "payment_methods"
	NameRegions       = "top_regions"
)

// maxReviewScore bounds the review bar charts.
const maxReviewScore = 5

var (
	bluesPalette   = []string{"#08306B", "#08519C", "#2171B5", "#4292C6", "#6BAED6", "#9ECAE1", "#C6DBEF", "#DEEBF7", "#EFF3FF", "#F7FBFF"}
	paymentPalette = []string{"#8B4513", "#FFF8DC", "#93C572", "#E67F0D"}
)

// Charts returns the dashboard's charts. Reports with no rows produce no
// chart.
func (d *Dashboard) Charts() []*engine.ChartConfig {
	var charts []*engine.ChartConfig
	add := func(c *engine.ChartConfig) {
		if c != nil {
			charts = append(charts, c)
		}
	}

	add(engine.BuildBarChart(engine.ChartSpec{
		Name: NameTopCategories, Title: "Best Selling Product Category",
		XAxis: "Total Sales", Colors: bluesPalette,
	}, categoryPoints(d.TopCategories)))

	best := engine.BuildBarChart(engine.ChartSpec{
		Name: NameBestReviews, Title: "Top Reviewed Products",
		XAxis: "Review Score", Colors: bluesPalette,
	}, scorePoints(d.Reviews.Best))
	if best != nil {
		best.XMax = maxReviewScore
	}
	add(best)

	worst := engine.BuildBarChart(engine.ChartSpec{
		Name: NameWorstReviews, Title: "Lowest Reviewed Products",
		XAxis: "Review Score", Colors: bluesPalette,
	}, scorePoints(d.Reviews.Worst))
	if worst != nil {
		worst.XMax = maxReviewScore
	}
	add(worst)

	add(engine.BuildBarChart(engine.ChartSpec{
		Name: NameBestSellers, Title: "Best Sellers in Terms of Selling",
		XAxis: "Total Sales", Colors: bluesPalette,
	}, sellerPoints(d.BestSellers)))

	scatter, maxScore := sellerScatter(d.BestSellers)
	sc := engine.BuildScatterChart(engine.ChartSpec{
		Name: NameSalesVsReview, Title: "Sales vs Review Score",
		XAxis: "Total Sales", YAxis: "Review Score",
	}, scatter)
	if sc != nil {
		sc.YMax = maxScore + 1
	}
	add(sc)

	add(engine.BuildPieChart(engine.ChartSpec{
		Name: NamePayments, Title: "Popular Payment Method", Colors: paymentPalette,
	}, paymentPoints(d.Payments)))

	add(engine.BuildMapChart(engine.ChartSpec{
		Name: NameRegions, Title: "Top Region Sales Map",
	}, regionMarkers(d.Regions.Regions), d.Regions.Center))

	return charts
}

func categoryPoints(rows []CategorySales) []engine.ChartPoint {
	out := make([]engine.ChartPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, engine.ChartPoint{Label: r.Category, Value: float64(r.TotalSales)})
	}
	return out
}

func scorePoints(rows []CategoryScore) []engine.ChartPoint {
	out := make([]engine.ChartPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, engine.ChartPoint{Label: r.Category, Value: r.ReviewScore})
	}
	return out
}

func sellerPoints(rows []SellerStats) []engine.ChartPoint {
	out := make([]engine.ChartPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, engine.ChartPoint{Label: r.SellerID, Value: float64(r.TotalSales)})
	}
	return out
}

// sellerScatter plots sales (x) against score (y). Unscored sellers are
// left out.
func sellerScatter(rows []SellerStats) ([]engine.ChartPoint, float64) {
	var out []engine.ChartPoint
	var maxScore float64
	for _, r := range rows {
		if r.ReviewScore == nil {
			continue
		}
		out = append(out, engine.ChartPoint{Label: r.SellerID, X: float64(r.TotalSales), Value: *r.ReviewScore})
		maxScore = max(maxScore, *r.ReviewScore)
	}
	return out, maxScore
}

func paymentPoints(rows []PaymentShare) []engine.ChartPoint {
	out := make([]engine.ChartPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, engine.ChartPoint{Label: r.PaymentType, Value: float64(r.TotalSales)})
	}
	return out
}

func regionMarkers(rows []Region) []engine.MapMarker {
	var out []engine.MapMarker
	for _, r := range rows {
		if !r.Located() {
			continue
		}
		out = append(out, engine.MapMarker{
			Position: engine.LatLng{Lat: *r.Latitude, Lng: *r.Longitude},
			Radius:   engine.RoundTo2(r.Radius),
			Color:    r.Color,
			Tooltip:  fmt.Sprintf("%s - %d", strings.ToUpper(r.City), r.TotalSales),
			Popup:    fmt.Sprintf("City: %s\nState: %s\nTotal Sales: %d", r.City, r.State, r.TotalSales),
		})
	}
	return out
}

// ============================================================================
// TABLES
// ============================================================================

// Tables returns every report as a named table with a fixed column set.
// Empty reports still produce a table with headers and no rows.
func (d *Dashboard) Tables() []*engine.TableData {
	return []*engine.TableData{
		d.topCategoriesTable(),
		reviewTable(NameBestReviews, "Top Reviewed Products", d.Reviews.Best),
		reviewTable(NameWorstReviews, "Lowest Reviewed Products", d.Reviews.Worst),
		d.bestSellersTable(),
		d.paymentsTable(),
		d.regionsTable(),
	}
}

func (d *Dashboard) topCategoriesTable() *engine.TableData {
	rows := make([][]string, 0, len(d.TopCategories))
	for _, r := range d.TopCategories {
		rows = append(rows, []string{r.Category, engine.FormatInt(r.TotalSales)})
	}
	return engine.BuildTable(NameTopCategories, "Best Selling Product Category", []engine.Column{
		engine.TextColumn("category", "Category"),
		engine.NumberColumn("total_sales", "Total Sales"),
	}, rows)
}

func reviewTable(name, title string, scores []CategoryScore) *engine.TableData {
	rows := make([][]string, 0, len(scores))
	for _, r := range scores {
		rows = append(rows, []string{r.Category, engine.FormatNumber(r.ReviewScore, 2)})
	}
	return engine.BuildTable(name, title, []engine.Column{
		engine.TextColumn("category", "Category"),
		engine.NumberColumn("review_score", "Review Score"),
	}, rows)
}

func (d *Dashboard) bestSellersTable() *engine.TableData {
	rows := make([][]string, 0, len(d.BestSellers))
	for _, r := range d.BestSellers {
		score := ""
		if r.ReviewScore != nil {
			score = engine.FormatNumber(*r.ReviewScore, 2)
		}
		rows = append(rows, []string{r.SellerID, engine.FormatInt(r.TotalSales), score})
	}
	return engine.BuildTable(NameBestSellers, "Best Seller Performance", []engine.Column{
		engine.TextColumn("seller_id", "Seller ID"),
		engine.NumberColumn("total_sales", "Total Sales"),
		engine.NumberColumn("review_score", "Review Score"),
	}, rows)
}

func (d *Dashboard) paymentsTable() *engine.TableData {
	rows := make([][]string, 0, len(d.Payments))
	total := 0
	for _, r := range d.Payments {
		rows = append(rows, []string{r.PaymentType, engine.FormatInt(r.TotalSales), engine.FormatPercent(r.Share)})
		total += r.TotalSales
	}
	t := engine.BuildTable(NamePayments, "Most Used Payment Method", []engine.Column{
		engine.TextColumn("payment_type", "Payment Type"),
		engine.NumberColumn("total_sales", "Total Sales"),
		engine.PercentColumn("share", "Share"),
	}, rows)
	if len(rows) > 0 {
		t.WithSummary("Total", map[string]string{"total_sales": engine.FormatInt(total)})
	}
	return t
}

func (d *Dashboard) regionsTable() *engine.TableData {
	rows := make([][]string, 0, len(d.Regions.Regions))
	for _, r := range d.Regions.Regions {
		lat, lng := "", ""
		if r.Located() {
			lat = engine.FormatNumber(*r.Latitude, 4)
			lng = engine.FormatNumber(*r.Longitude, 4)
		}
		rows = append(rows, []string{
			r.City, r.State, engine.FormatInt(r.TotalSales), lat, lng,
			engine.FormatNumber(r.Radius, 2), r.Color,
		})
	}
	return engine.BuildTable(NameRegions, "Top Region Sales", []engine.Column{
		engine.TextColumn("city", "City"),
		engine.TextColumn("state", "State"),
		engine.NumberColumn("total_sales", "Total Sales"),
		engine.NumberColumn("latitude", "Latitude"),
		engine.NumberColumn("longitude", "Longitude"),
		engine.NumberColumn("radius", "Radius"),
		engine.TextColumn("color", "Color"),
	}, rows)
}

package engine

// ============================================================================
// CHART BUILDER — Produces ChartConfig from labelled values
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// ChartSpec carries the labels shared by every chart type.
type ChartSpec struct {
	Name   string
	Title  string
	XAxis  string
	YAxis  string
	Colors []string // overrides the default palette
}

// BuildBarChart produces a horizontal bar chart with one point per label.
// Returns nil when there is nothing to plot.
func BuildBarChart(spec ChartSpec, points []ChartPoint) *ChartConfig {
	if len(points) == 0 {
		return nil
	}
	cfg := newChart(spec, ChartBar)
	cfg.Horizontal = true
	cfg.ShowLegend = false
	cfg.Series = buildSingleSeries(points, spec.Title)
	cfg.Colors = pickColors(spec.Colors, len(points))
	return cfg
}

// BuildPieChart produces a pie chart. Point values are slice sizes.
func BuildPieChart(spec ChartSpec, points []ChartPoint) *ChartConfig {
	if len(points) == 0 {
		return nil
	}
	cfg := newChart(spec, ChartPie)
	cfg.ShowGrid = false
	cfg.Series = buildSingleSeries(points, spec.Title)
	cfg.Colors = pickColors(spec.Colors, len(points))
	return cfg
}

// BuildScatterChart produces a scatter plot; each point carries X and Value.
func BuildScatterChart(spec ChartSpec, points []ChartPoint) *ChartConfig {
	if len(points) == 0 {
		return nil
	}
	cfg := newChart(spec, ChartScatter)
	cfg.ShowLegend = false
	cfg.Series = buildSingleSeries(points, spec.Title)
	cfg.Colors = pickColors(spec.Colors, 1)
	return cfg
}

// BuildMapChart produces a marker map centred on center.
func BuildMapChart(spec ChartSpec, markers []MapMarker, center *LatLng) *ChartConfig {
	if len(markers) == 0 {
		return nil
	}
	cfg := newChart(spec, ChartMap)
	cfg.ShowGrid = false
	cfg.ShowLegend = false
	cfg.Series = []ChartSeries{}
	cfg.Markers = markers
	cfg.Center = center
	return cfg
}

func newChart(spec ChartSpec, chartType string) *ChartConfig {
	return &ChartConfig{
		Name:       spec.Name,
		ChartType:  chartType,
		Title:      spec.Title,
		XAxis:      spec.XAxis,
		YAxis:      spec.YAxis,
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func buildSingleSeries(points []ChartPoint, seriesName string) []ChartSeries {
	if seriesName == "" {
		seriesName = "Value"
	}

	data := make([]ChartPoint, 0, len(points))
	for _, p := range points {
		data = append(data, ChartPoint{
			Label: p.Label,
			Value: RoundTo2(p.Value),
			X:     RoundTo2(p.X),
		})
	}

	return []ChartSeries{{
		Name: seriesName,
		Data: data,
	}}
}

func pickColors(palette []string, count int) []string {
	if len(palette) == 0 {
		palette = defaultColors
	}
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = palette[i%len(palette)]
	}
	return colors
}

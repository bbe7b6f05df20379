package engine

import "math"

// ============================================================================
// ENGINE TYPES — Groups and render-ready output shapes
// ============================================================================
// Groups are the intermediate result of GroupAndAggregate.
// Builders convert them (or report rows) into ChartConfig and TableData,
// which the presentation layer renders without further computation.
// ============================================================================

// ============================================================================
// GROUP — Intermediate computation result
// ============================================================================

// Group represents a grouped/aggregated result.
type Group struct {
	Key    string             `json:"key"`
	Keys   []string           `json:"keys,omitempty"` // one entry per GroupBy dimension
	Label  string             `json:"label"`
	Values map[string]float64 `json:"values"`
	Count  int                `json:"count"`
	View   RecordView         `json:"-"` // Sub-view for records in this group (zero-copy)
}

// Value returns the named aggregate, or NaN if it was not computed.
func (g Group) Value(name string) float64 {
	v, ok := g.Values[name]
	if !ok {
		return math.NaN()
	}
	return v
}

func (g Group) defined(names []string) bool {
	for _, n := range names {
		if math.IsNaN(g.Value(n)) {
			return false
		}
	}
	return true
}

// ============================================================================
// CHART TYPES
// ============================================================================

// Chart types produced by the builders.
const (
	ChartBar     = "bar"
	ChartPie     = "pie"
	ChartScatter = "scatter"
	ChartMap     = "map"
)

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	Name       string        `json:"name" yaml:"name"`
	ChartType  string        `json:"chartType" yaml:"chartType"`
	Title      string        `json:"title" yaml:"title"`
	XAxis      string        `json:"xAxis,omitempty" yaml:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty" yaml:"yAxis,omitempty"`
	Horizontal bool          `json:"horizontal,omitempty" yaml:"horizontal,omitempty"`
	XMax       float64       `json:"xMax,omitempty" yaml:"xMax,omitempty"` // fixed x-axis upper bound
	YMax       float64       `json:"yMax,omitempty" yaml:"yMax,omitempty"` // fixed y-axis upper bound
	Series     []ChartSeries `json:"series" yaml:"series"`
	Markers    []MapMarker   `json:"markers,omitempty" yaml:"markers,omitempty"`
	Center     *LatLng       `json:"center,omitempty" yaml:"center,omitempty"`
	Colors     []string      `json:"colors,omitempty" yaml:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend" yaml:"showLegend"`
	ShowGrid   bool          `json:"showGrid" yaml:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name" yaml:"name"`
	Data  []ChartPoint `json:"data" yaml:"data"`
	Color string       `json:"color,omitempty" yaml:"color,omitempty"`
}

// ChartPoint represents a single data point. Scatter points also carry X.
type ChartPoint struct {
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
	X     float64 `json:"x,omitempty" yaml:"x,omitempty"`
}

// LatLng is a geographic coordinate.
type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// MapMarker is a circle marker on a map chart.
type MapMarker struct {
	Position LatLng  `json:"position" yaml:"position"`
	Radius   float64 `json:"radius" yaml:"radius"`
	Color    string  `json:"color" yaml:"color"`
	Tooltip  string  `json:"tooltip" yaml:"tooltip"`
	Popup    string  `json:"popup,omitempty" yaml:"popup,omitempty"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Name    string     `json:"name" yaml:"name"`
	Title   string     `json:"title" yaml:"title"`
	Columns []Column   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows" yaml:"rows"`
	Summary *Summary   `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
	Type  string `json:"type" yaml:"type"`   // "text", "number", "percent"
	Align string `json:"align" yaml:"align"` // "left", "center", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label" yaml:"label"`
	Values map[string]string `json:"values" yaml:"values"`
}

// Headers returns the column labels in order.
func (t TableData) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Label
	}
	return out
}

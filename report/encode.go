package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/spektr-org/orderlens/engine"
)

// ============================================================================
// ENCODERS — Dashboard → json / pretty / yaml / csv / text
// ============================================================================

// Output formats.
const (
	FormatJSON   = "json"
	FormatPretty = "pretty"
	FormatYAML   = "yaml"
	FormatCSV    = "csv"
	FormatText   = "text"
)

// Formats lists every supported output format.
var Formats = []string{FormatJSON, FormatPretty, FormatYAML, FormatCSV, FormatText}

// Document is the full render-ready output: the dashboard data plus its
// charts and tables.
type Document struct {
	Dashboard `yaml:",inline"`

	Summary string                `json:"summary" yaml:"summary"`
	Charts  []*engine.ChartConfig `json:"charts" yaml:"charts"`
	Tables  []*engine.TableData   `json:"tables" yaml:"tables"`
}

// NewDocument wraps d with its presentation.
func NewDocument(d *Dashboard) *Document {
	charts := d.Charts()
	if charts == nil {
		charts = []*engine.ChartConfig{}
	}
	return &Document{
		Dashboard: *d,
		Summary:   Summarize(d),
		Charts:    charts,
		Tables:    d.Tables(),
	}
}

// Encode writes d to w in the given format.
func Encode(w io.Writer, d *Dashboard, format string) error {
	switch format {
	case FormatJSON, "":
		return json.NewEncoder(w).Encode(NewDocument(d))
	case FormatPretty:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewDocument(d))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewDocument(d)); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatCSV:
		return writeCSV(w, d.Tables())
	case FormatText:
		return writeText(w, d)
	}
	return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

// ============================================================================
// CSV OUTPUT — one block per table, separated by a blank line
// ============================================================================

func writeCSV(w io.Writer, tables []*engine.TableData) error {
	cw := csv.NewWriter(w)
	for i, t := range tables {
		if i > 0 {
			cw.Write(nil)
		}
		cw.Write([]string{"# " + t.Name})
		cw.Write(t.Headers())
		for _, row := range t.Rows {
			cw.Write(row)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ============================================================================
// TEXT OUTPUT
// ============================================================================

// Summarize builds a one-paragraph description of a dashboard.
func Summarize(d *Dashboard) string {
	if d.Empty() {
		return fmt.Sprintf("No orders match %s.", d.Filter.Period)
	}

	parts := []string{fmt.Sprintf("%s of %s order rows in %s",
		engine.FormatInt(d.FilteredRecords), engine.FormatInt(d.TotalRecords), d.Filter.Period)}
	if len(d.Filter.Categories) > 0 {
		parts[0] += " (" + strings.Join(d.Filter.Categories, ", ") + ")"
	}
	if len(d.TopCategories) > 0 {
		top := d.TopCategories[0]
		parts = append(parts, fmt.Sprintf("top category %s with %s orders", top.Category, engine.FormatInt(top.TotalSales)))
	}
	if len(d.Reviews.Best) > 0 {
		best := d.Reviews.Best[0]
		parts = append(parts, fmt.Sprintf("best reviewed %s (%s)", best.Category, engine.FormatNumber(best.ReviewScore, 2)))
	}
	if len(d.Payments) > 0 {
		p := d.Payments[0]
		parts = append(parts, fmt.Sprintf("%s used for %s", p.PaymentType, engine.FormatPercent(p.Share)))
	}
	if len(d.Regions.Regions) > 0 {
		r := d.Regions.Regions[0]
		parts = append(parts, fmt.Sprintf("busiest region %s/%s", r.City, r.State))
	}
	return strings.Join(parts, "; ") + "."
}

func writeText(w io.Writer, d *Dashboard) error {
	if _, err := fmt.Fprintln(w, Summarize(d)); err != nil {
		return err
	}
	for _, warning := range d.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}

	for _, t := range d.Tables() {
		fmt.Fprintf(w, "\n%s\n", t.Title)
		if len(t.Rows) == 0 {
			fmt.Fprintln(w, "  (no data)")
			continue
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  "+strings.Join(t.Headers(), "\t"))
		for _, row := range t.Rows {
			fmt.Fprintln(tw, "  "+strings.Join(row, "\t"))
		}
		if t.Summary != nil {
			cells := make([]string, len(t.Columns))
			cells[0] = t.Summary.Label
			for i, c := range t.Columns {
				if v, ok := t.Summary.Values[c.Key]; ok {
					cells[i] = v
				}
			}
			fmt.Fprintln(tw, "  "+strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

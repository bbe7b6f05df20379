package engine

// ============================================================================
// TABLE BUILDER — Produces TableData from fixed column sets
// ============================================================================

// TextColumn declares a left-aligned text column.
func TextColumn(key, label string) Column {
	return Column{Key: key, Label: label, Type: "text", Align: "left"}
}

// NumberColumn declares a right-aligned numeric column.
func NumberColumn(key, label string) Column {
	return Column{Key: key, Label: label, Type: "number", Align: "right"}
}

// PercentColumn declares a right-aligned percentage column.
func PercentColumn(key, label string) Column {
	return Column{Key: key, Label: label, Type: "percent", Align: "right"}
}

// BuildTable assembles a TableData. Rows shorter than the column set are
// padded with empty cells so renderers can index every column safely.
func BuildTable(name, title string, columns []Column, rows [][]string) *TableData {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		if len(r) < len(columns) {
			padded := make([]string, len(columns))
			copy(padded, r)
			r = padded
		}
		out = append(out, r)
	}
	return &TableData{
		Name:    name,
		Title:   title,
		Columns: columns,
		Rows:    out,
	}
}

// WithSummary attaches a totals row keyed by column key.
func (t *TableData) WithSummary(label string, values map[string]string) *TableData {
	t.Summary = &Summary{Label: label, Values: values}
	return t
}

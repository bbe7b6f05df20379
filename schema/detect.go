package schema

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// ============================================================================
// LAYOUT DETECTION — which marketplace table a CSV header belongs to
// ============================================================================
// A directory of raw marketplace tables is joined at load time. Each table
// is recognised from its header alone: the first layout whose required
// columns are all present wins. The joined layout is checked first since it
// is a superset of several raw tables.
// ============================================================================

// Layout identifies a CSV table shape.
type Layout string

const (
	LayoutUnknown     Layout = ""
	LayoutJoined      Layout = "joined"
	LayoutOrders      Layout = "orders"
	LayoutItems       Layout = "order_items"
	LayoutProducts    Layout = "products"
	LayoutTranslation Layout = "category_translation"
	LayoutReviews     Layout = "reviews"
	LayoutPayments    Layout = "payments"
	LayoutCustomers   Layout = "customers"
	LayoutGeolocation Layout = "geolocation"
)

// layoutColumns lists the snake_cased headers each raw table must carry.
var layoutColumns = []struct {
	Layout  Layout
	Columns []string
}{
	{LayoutJoined, []string{"order_id", "order_purchase_timestamp", "seller_id", "payment_type"}},
	{LayoutItems, []string{"order_id", "order_item_id", "product_id", "seller_id"}},
	{LayoutReviews, []string{"review_id", "order_id", "review_score"}},
	{LayoutPayments, []string{"order_id", "payment_sequential", "payment_type"}},
	{LayoutOrders, []string{"order_id", "customer_id", "order_purchase_timestamp"}},
	{LayoutTranslation, []string{"product_category_name", "product_category_name_english"}},
	{LayoutProducts, []string{"product_id", "product_category_name"}},
	{LayoutCustomers, []string{"customer_id", "customer_zip_code_prefix", "customer_city", "customer_state"}},
	{LayoutGeolocation, []string{"geolocation_zip_code_prefix", "geolocation_lat", "geolocation_lng"}},
}

// TableFiles are the conventional file names of the raw marketplace tables.
var TableFiles = map[Layout]string{
	LayoutOrders:      "olist_orders_dataset.csv",
	LayoutItems:       "olist_order_items_dataset.csv",
	LayoutProducts:    "olist_products_dataset.csv",
	LayoutTranslation: "product_category_name_translation.csv",
	LayoutReviews:     "olist_order_reviews_dataset.csv",
	LayoutPayments:    "olist_order_payments_dataset.csv",
	LayoutCustomers:   "olist_customers_dataset.csv",
	LayoutGeolocation: "olist_geolocation_dataset.csv",
}

// Detect classifies a header row.
func Detect(headers []string) Layout {
	idx := HeaderIndex(headers)
	for _, l := range layoutColumns {
		if hasAll(idx, l.Columns) {
			return l.Layout
		}
	}
	return LayoutUnknown
}

// Require returns the header index for a table and fails with
// ErrMissingColumn when the header does not carry the layout's columns.
func Require(layout Layout, headers []string) (map[string]int, error) {
	idx := HeaderIndex(headers)
	for _, l := range layoutColumns {
		if l.Layout != layout {
			continue
		}
		var missing []string
		for _, c := range l.Columns {
			if _, ok := idx[c]; !ok {
				missing = append(missing, c)
			}
		}
		if len(missing) > 0 {
			return idx, fmt.Errorf("%s table: %w: %s", layout, ErrMissingColumn, strings.Join(missing, ", "))
		}
		return idx, nil
	}
	return idx, fmt.Errorf("unknown layout %q", layout)
}

// HeaderIndex maps snake_cased header names to their positions.
func HeaderIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		key := ToSnakeCase(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

func hasAll(idx map[string]int, cols []string) bool {
	for _, c := range cols {
		if _, ok := idx[c]; !ok {
			return false
		}
	}
	return true
}

// ============================================================================
// TIMESTAMPS
// ============================================================================

var dateFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
}

// ParseTime parses a purchase timestamp in any of the accepted layouts.
// The result is the timestamp's wall clock in UTC: an offset is dropped, not
// applied, so the purchase date stays the one written in the data.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return wallClock(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// ParseDate parses a calendar date ("2006-01-02"). Empty input is the zero
// time, which filters read as an open bound.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// ToSnakeCase converts "Column Name" or "columnName" → "column_name".
func ToSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			prev := rune(s[i-1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(r)
	}

	s = result.String()
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "__", "_")
	s = strings.Trim(s, "_")
	return s
}

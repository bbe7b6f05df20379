package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
// SCHEMA — Column catalogue of the joined order table
// ============================================================================
// Every loader maps CSV headers onto these canonical keys. The same keys
// name the dimensions and measures the store exposes to the engine.
// ============================================================================

// Canonical column keys.
const (
	KeyOrderID      = "order_id"
	KeyCustomerID   = "customer_id"
	KeyPurchasedAt  = "order_purchase_timestamp"
	KeyCategory     = "category"
	KeyCategoryPT   = "product_category_name"
	KeySellerID     = "seller_id"
	KeyReviewScore  = "review_score"
	KeyPaymentType  = "payment_type"
	KeyPaymentCount = "payment_count"
	KeyCity         = "customer_city"
	KeyState        = "customer_state"
	KeyLatitude     = "geolocation_lat"
	KeyLongitude    = "geolocation_lng"
)

// UnknownCategory labels rows without any category name.
const UnknownCategory = "unknown"

// ErrMissingColumn is returned when a required column is absent.
var ErrMissingColumn = errors.New("missing required column")

// Column describes one canonical column.
type Column struct {
	Key         string   `json:"key"`
	DisplayName string   `json:"displayName"`
	Aliases     []string `json:"aliases,omitempty"` // snake_cased header names accepted besides Key
	Required    bool     `json:"required"`
	UsedBy      []string `json:"usedBy,omitempty"` // reports that cannot run without it
}

// Report names, used in UsedBy and in warnings.
const (
	ReportTopCategories = "top_categories"
	ReportReviews       = "review_scores"
	ReportBestSellers   = "best_sellers"
	ReportPayments      = "payment_methods"
	ReportRegions       = "top_regions"
)

// OrderColumns is the catalogue in canonical order.
var OrderColumns = []Column{
	{Key: KeyOrderID, DisplayName: "Order ID", Required: true,
		UsedBy: []string{ReportTopCategories, ReportBestSellers, ReportPayments, ReportRegions}},
	{Key: KeyCustomerID, DisplayName: "Customer ID"},
	{Key: KeyPurchasedAt, DisplayName: "Purchase Timestamp", Required: true,
		Aliases: []string{"purchase_timestamp", "order_date"}},
	{Key: KeyCategory, DisplayName: "Product Category",
		Aliases: []string{"product_category_name_english", "product_category"},
		UsedBy:  []string{ReportTopCategories, ReportReviews}},
	{Key: KeyCategoryPT, DisplayName: "Product Category (original)"},
	{Key: KeySellerID, DisplayName: "Seller ID", UsedBy: []string{ReportBestSellers}},
	{Key: KeyReviewScore, DisplayName: "Review Score", UsedBy: []string{ReportReviews}},
	{Key: KeyPaymentType, DisplayName: "Payment Type", UsedBy: []string{ReportPayments}},
	{Key: KeyPaymentCount, DisplayName: "Payment Count", Aliases: []string{"payment_sequential"}},
	{Key: KeyCity, DisplayName: "City", Aliases: []string{"city"}, UsedBy: []string{ReportRegions}},
	{Key: KeyState, DisplayName: "State", Aliases: []string{"state"}, UsedBy: []string{ReportRegions}},
	{Key: KeyLatitude, DisplayName: "Latitude", Aliases: []string{"latitude", "lat"}},
	{Key: KeyLongitude, DisplayName: "Longitude", Aliases: []string{"longitude", "lng"}},
}

// RequiredFor returns the columns a report cannot run without.
func RequiredFor(report string) []string {
	var keys []string
	for _, c := range OrderColumns {
		for _, r := range c.UsedBy {
			if r == report {
				keys = append(keys, c.Key)
			}
		}
	}
	return keys
}

// ============================================================================
// MAPPING — header positions of canonical keys
// ============================================================================

// Mapping maps canonical keys to CSV column indices.
type Mapping map[string]int

// Has reports whether key was found in the header.
func (m Mapping) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Get returns the trimmed cell for key, or "" when the column is absent or
// the row is short.
func (m Mapping) Get(row []string, key string) string {
	idx, ok := m[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Keys lists the mapped canonical keys in catalogue order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for _, c := range OrderColumns {
		if m.Has(c.Key) {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// Resolve maps a joined-table header onto canonical keys. An exact key match
// wins over an alias. Missing required columns yield ErrMissingColumn.
func Resolve(headers []string) (Mapping, error) {
	positions := HeaderIndex(headers)

	m := make(Mapping)
	var missing []string
	for _, c := range OrderColumns {
		if idx, ok := positions[c.Key]; ok {
			m[c.Key] = idx
			continue
		}
		for _, alias := range c.Aliases {
			if idx, ok := positions[alias]; ok {
				m[c.Key] = idx
				break
			}
		}
		if c.Required && !m.Has(c.Key) {
			missing = append(missing, c.Key)
		}
	}

	if len(missing) > 0 {
		return m, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return m, nil
}

// Unavailable lists the reports that cannot run with the mapped columns.
func (m Mapping) Unavailable() []string {
	var out []string
	for _, r := range []string{ReportTopCategories, ReportReviews, ReportBestSellers, ReportPayments, ReportRegions} {
		for _, key := range RequiredFor(r) {
			if !m.Has(key) && !(key == KeyCategory && m.Has(KeyCategoryPT)) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

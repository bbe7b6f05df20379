package store

import (
	"math"
	"time"

	"github.com/spektr-org/orderlens/engine"
	"github.com/spektr-org/orderlens/schema"
)

// Order is one row of the joined order table: a single (order, item,
// review, payment) combination. Absent review scores and coordinates are
// NaN.
type Order struct {
	OrderID      string    `json:"order_id"`
	CustomerID   string    `json:"customer_id"`
	PurchasedAt  time.Time `json:"order_purchase_timestamp"`
	Category     string    `json:"category"`
	SellerID     string    `json:"seller_id"`
	ReviewScore  float64   `json:"-"`
	PaymentType  string    `json:"payment_type"`
	PaymentCount int       `json:"payment_count"`
	City         string    `json:"customer_city"`
	State        string    `json:"customer_state"`
	Latitude     float64   `json:"-"`
	Longitude    float64   `json:"-"`
}

// Reviewed reports whether the row carries a review score.
func (o Order) Reviewed() bool { return !math.IsNaN(o.ReviewScore) }

// Located reports whether the row carries both coordinates.
func (o Order) Located() bool { return !math.IsNaN(o.Latitude) && !math.IsNaN(o.Longitude) }

// NormalizeCategory picks the display label for a product category: the
// English name, then the original name, then "unknown".
func NormalizeCategory(english, original string) string {
	if english != "" {
		return english
	}
	if original != "" {
		return original
	}
	return schema.UnknownCategory
}

// NormalizeScore keeps review scores in [1,5]; anything else is absent.
func NormalizeScore(v float64) float64 {
	if math.IsNaN(v) || v < 1 || v > 5 {
		return math.NaN()
	}
	return v
}

// orderAdapter exposes Order fields under the schema keys. The purchase
// timestamp is a measure in unix seconds so generic date filters can read it.
var orderAdapter = engine.NewDomainAdapter[Order]().
	Dimension(schema.KeyOrderID, func(o Order) string { return o.OrderID }).
	Dimension(schema.KeyCustomerID, func(o Order) string { return o.CustomerID }).
	Dimension(schema.KeyCategory, func(o Order) string { return o.Category }).
	Dimension(schema.KeySellerID, func(o Order) string { return o.SellerID }).
	Dimension(schema.KeyPaymentType, func(o Order) string { return o.PaymentType }).
	Dimension(schema.KeyCity, func(o Order) string { return o.City }).
	Dimension(schema.KeyState, func(o Order) string { return o.State }).
	Measure(schema.KeyPurchasedAt, func(o Order) float64 {
		if o.PurchasedAt.IsZero() {
			return math.NaN()
		}
		return float64(o.PurchasedAt.Unix())
	}).
	Measure(schema.KeyReviewScore, func(o Order) float64 { return o.ReviewScore }).
	Measure(schema.KeyPaymentCount, func(o Order) float64 { return float64(o.PaymentCount) }).
	Measure(schema.KeyLatitude, func(o Order) float64 { return o.Latitude }).
	Measure(schema.KeyLongitude, func(o Order) float64 { return o.Longitude })

// View binds orders to a RecordView without copying them.
func View(orders []Order) engine.RecordView {
	return orderAdapter.Bind(orders)
}

package report

import (
	"math"
	"time"

	"github.com/spektr-org/orderlens/engine"
	"github.com/spektr-org/orderlens/schema"
	"github.com/spektr-org/orderlens/store"
)

// ============================================================================
// SHARED FIXTURES
// ============================================================================

var nan = math.NaN()

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// row builds an order with no score, payment or location.
func row(id, day, category string) store.Order {
	return store.Order{
		OrderID:     id,
		PurchasedAt: date(day).Add(10 * time.Hour),
		Category:    category,
		ReviewScore: nan,
		Latitude:    nan,
		Longitude:   nan,
	}
}

func scored(o store.Order, score float64) store.Order {
	o.ReviewScore = score
	return o
}

func sold(o store.Order, seller string) store.Order {
	o.SellerID = seller
	return o
}

func paid(o store.Order, kind string) store.Order {
	o.PaymentType = kind
	return o
}

func located(o store.Order, city, state string, lat, lng float64) store.Order {
	o.City, o.State, o.Latitude, o.Longitude = city, state, lat, lng
	return o
}

func orderIDs(view engine.RecordView) []string {
	out := make([]string, view.Len())
	for i := range out {
		out[i] = view.Dimension(i, schema.KeyOrderID)
	}
	return out
}

// marketOrders is a small but complete marketplace sample over one week.
func marketOrders() []store.Order {
	return []store.Order{
		located(paid(sold(scored(row("o1", "2018-01-01", "toys"), 5), "s1"), "credit_card"), "sao paulo", "SP", -23.5, -46.6),
		located(paid(sold(scored(row("o1", "2018-01-01", "toys"), 4), "s1"), "credit_card"), "sao paulo", "SP", -23.5, -46.6),
		located(paid(sold(scored(row("o2", "2018-01-02", "books"), 2), "s2"), "boleto"), "sao paulo", "SP", -23.7, -46.8),
		located(paid(sold(scored(row("o3", "2018-01-03", "books"), 3), "s2"), "voucher"), "rio de janeiro", "RJ", -22.9, -43.2),
		located(paid(sold(row("o4", "2018-01-04", "garden"), "s3"), "credit_card"), "curitiba", "PR", -25.4, -49.3),
		located(paid(sold(scored(row("o5", "2018-01-05", "toys"), 1), "s3"), "debit_card"), "rio de janeiro", "RJ", -22.9, -43.2),
		paid(sold(scored(row("o6", "2018-01-06", "health"), 5), "s4"), "pix"),
		located(paid(sold(scored(row("o7", "2018-01-07", "toys"), 4), "s1"), "credit_card"), "sao paulo", "SP", -23.5, -46.6),
	}
}

func marketStore() *store.Store {
	return store.New(marketOrders(), nil)
}
